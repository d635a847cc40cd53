// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resultfmt

import (
	"fmt"
	"strings"
)

// A Kind identifies what the per-target cells of a results file hold.
type Kind int

const (
	// Correctness cells hold a status string. StatusPassed means
	// the test passed on that target; anything else is a failure.
	Correctness Kind = iota
	// Performance cells hold a duration in microseconds.
	Performance
)

func (k Kind) String() string {
	switch k {
	case Correctness:
		return "correctness"
	case Performance:
		return "performance"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses the name of a Kind as returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "correctness":
		return Correctness, nil
	case "performance":
		return Performance, nil
	}
	return 0, fmt.Errorf("unknown result kind %q", s)
}

// StatusPassed is the only correctness status treated as a pass.
const StatusPassed = "Passed"

// A Row is one named test and its value on every target.
type Row struct {
	// Name is the display name of the test, with any configured
	// suffix removed.
	Name string

	// RawName is the test name exactly as it appears in the file.
	RawName string

	// Statuses holds one status per target for Correctness
	// tables. It is nil for Performance tables.
	Statuses []string

	// Durations holds one duration in microseconds per target for
	// Performance tables. It is nil for Correctness tables.
	Durations []float64

	// Line is the line of the input file this row came from.
	Line int
}

// Passed reports whether the test passed on target i.
func (r *Row) Passed(i int) bool {
	return r.Statuses[i] == StatusPassed
}

// Len returns the number of per-target values in r.
func (r *Row) Len() int {
	if r.Durations != nil {
		return len(r.Durations)
	}
	return len(r.Statuses)
}

// A Table is a complete results file: the target names from the
// header and every data row in file order. Every row has exactly
// len(Targets) values.
type Table struct {
	// Label identifies the table in logs, reports and the history
	// database. It defaults to the file name.
	Label string

	// FileName is the file the table was read from.
	FileName string

	Kind    Kind
	Targets []string
	Rows    []*Row
}

// Names returns the display names of all rows, in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		names[i] = r.Name
	}
	return names
}

// TargetIndex returns the column index of the named target.
func (t *Table) TargetIndex(target string) (int, error) {
	for i, name := range t.Targets {
		if name == target {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s: no target %q (have %s)", t.Label, target, strings.Join(t.Targets, ", "))
}
