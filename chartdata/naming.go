// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chartdata

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Naming determines output file names.
type Naming struct {
	// CorrectnessPrefix names per-target correctness charts:
	// <prefix>_<target>.png.
	CorrectnessPrefix string `yaml:"correctness_prefix"`

	// PairPrefix names pairwise performance charts:
	// <prefix>_<a>_vs_<b>.png.
	PairPrefix string `yaml:"pair_prefix"`

	// OverviewFile and TrendFile name the all-targets charts.
	OverviewFile string `yaml:"overview_file"`
	TrendFile    string `yaml:"trend_file"`
}

// DefaultNaming is the naming used unless configured otherwise.
var DefaultNaming = Naming{
	CorrectnessPrefix: "correctness_results",
	PairPrefix:        "performance_comparison",
	OverviewFile:      "performance_comparison_across_targets.png",
	TrendFile:         "performance_trend_across_targets.png",
}

var lower = cases.Lower(language.Und)

// Slug converts a target name into the form used in file names:
// lower case with spaces replaced by dashes. For example,
// "QEMU RISCV64" becomes "qemu-riscv64".
func Slug(name string) string {
	return lower.String(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

func (n Naming) correctness(target string) string {
	return n.CorrectnessPrefix + "_" + Slug(target) + ".png"
}

func (n Naming) pair(a, b string) string {
	return n.PairPrefix + "_" + Slug(a) + "_vs_" + Slug(b) + ".png"
}

// A Pair names two targets compared against each other.
type Pair struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

func (p Pair) String() string { return p.A + " vs " + p.B }

// ParsePair parses "A,B".
func ParsePair(s string) (Pair, error) {
	a, b, ok := strings.Cut(s, ",")
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if !ok || a == "" || b == "" || strings.Contains(b, ",") {
		return Pair{}, fmt.Errorf("invalid target pair %q: want A,B", s)
	}
	return Pair{A: a, B: b}, nil
}
