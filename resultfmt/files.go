// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resultfmt

import (
	"fmt"
	"os"
	"strings"
)

// Files reads a sequence of results files that share one set of
// Options.
//
// Each resulting Table is labeled with its path. Duplicate paths are
// disambiguated by appending "#N". If AllowLabels is true, a path may
// be given as label=path, and label is used as is.
type Files struct {
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin.
	AllowStdin bool

	// AllowLabels indicates that entries in Paths may be of the form
	// label=path.
	AllowLabels bool

	Options Options
}

type input struct {
	path, label string
	isStdin     bool
}

func (f *Files) inputs() []input {
	var inputs []input
	pathCount := make(map[string]int)
	labeled := make(map[int]bool)
	for _, path := range f.Paths {
		label := path
		if i := strings.Index(path, "="); f.AllowLabels && i >= 0 {
			label, path = path[:i], path[i+1:]
			labeled[len(inputs)] = true
		} else {
			pathCount[path]++
		}
		inputs = append(inputs, input{path, label, f.AllowStdin && path == "-"})
	}
	pathI := make(map[string]int)
	for i := range inputs {
		inp := &inputs[i]
		if labeled[i] || pathCount[inp.path] == 1 {
			continue
		}
		inp.label = fmt.Sprintf("%s#%d", inp.path, pathI[inp.path])
		pathI[inp.path]++
	}
	return inputs
}

// Load reads every file in f and returns one Table per path, in
// order. It stops at the first error.
func (f *Files) Load() ([]*Table, error) {
	var tables []*Table
	for _, inp := range f.inputs() {
		t, err := loadOne(inp, f.Options)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func loadOne(inp input, opts Options) (*Table, error) {
	file := os.Stdin
	if !inp.isStdin {
		var err error
		file, err = os.Open(inp.path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
	}
	t, err := ReadTable(file, inp.path, opts)
	if err != nil {
		return nil, err
	}
	t.Label = inp.label
	return t, nil
}

// Open reads the single results file at path.
func Open(path string, opts Options) (*Table, error) {
	return loadOne(input{path: path, label: path}, opts)
}
