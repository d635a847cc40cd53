// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chartdata

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/10xengineers/rvvcharts/resultfmt"
)

// Colors of the correctness chart series.
const (
	PassedColor = "#4CAF50"
	FailedColor = "#F44336"
)

// A Builder makes chart specifications from result tables.
type Builder struct {
	// Baseline names the reference platform the correctness results
	// were checked against. It only appears in titles.
	Baseline string

	Naming Naming

	Logger *zerolog.Logger
}

// NewBuilder returns a Builder with the default naming and baseline.
func NewBuilder() *Builder {
	return &Builder{Baseline: "QEMU-AARCH64", Naming: DefaultNaming}
}

func (b *Builder) log() *zerolog.Logger {
	if b.Logger == nil {
		l := zerolog.Nop()
		return &l
	}
	return b.Logger
}

func checkKind(t *resultfmt.Table, want resultfmt.Kind) error {
	if t.Kind != want {
		return fmt.Errorf("%s: have %v results, want %v", t.Label, t.Kind, want)
	}
	return nil
}

// PassFail maps the statuses of target column i to a pair of series.
// passed[k] is 1 if row k passed and 0 otherwise; failed[k] is -1 if
// row k failed and 0 otherwise. Failures are negative so they are
// drawn below the axis. Exactly one of passed[k] and failed[k] is
// nonzero.
func PassFail(t *resultfmt.Table, i int) (passed, failed []float64) {
	passed = make([]float64, len(t.Rows))
	failed = make([]float64, len(t.Rows))
	for k, row := range t.Rows {
		if row.Passed(i) {
			passed[k] = 1
		} else {
			failed[k] = -1
		}
	}
	return passed, failed
}

// CorrectnessSpec returns the pass/fail chart of one target.
func (b *Builder) CorrectnessSpec(t *resultfmt.Table, target string) (*Spec, error) {
	if err := checkKind(t, resultfmt.Correctness); err != nil {
		return nil, err
	}
	i, err := t.TargetIndex(target)
	if err != nil {
		return nil, err
	}
	passed, failed := PassFail(t, i)
	s := &Spec{
		Kind:   Bar,
		Title:  fmt.Sprintf("Correctness comparison of %s with %s", target, b.Baseline),
		Labels: t.Names(),
		Datasets: []Dataset{
			{Label: "Passed", Values: passed, Color: PassedColor},
			{Label: "Failed", Values: failed, Color: FailedColor},
		},
		Options: Options{
			Width:        800,
			Height:       600,
			YLabel:       "Number of Tests",
			Stacked:      true,
			SuggestedMin: float(-1),
			SuggestedMax: float(1),
		},
		File: b.Naming.correctness(target),
	}
	b.log().Debug().Str("target", target).Int("tests", len(s.Labels)).Str("file", s.File).Msg("correctness chart")
	return s, nil
}

// CorrectnessSpecs returns one pass/fail chart per target. If targets
// is empty, every target of t is charted.
func (b *Builder) CorrectnessSpecs(t *resultfmt.Table, targets []string) ([]*Spec, error) {
	if len(targets) == 0 {
		targets = t.Targets
	}
	var specs []*Spec
	for _, target := range targets {
		s, err := b.CorrectnessSpec(t, target)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Durations returns the duration series of target, in row order.
func Durations(t *resultfmt.Table, target string) ([]float64, error) {
	if err := checkKind(t, resultfmt.Performance); err != nil {
		return nil, err
	}
	i, err := t.TargetIndex(target)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, len(t.Rows))
	for k, row := range t.Rows {
		vals[k] = row.Durations[i]
	}
	return vals, nil
}

func (b *Builder) datasets(t *resultfmt.Table, targets []string) ([]Dataset, error) {
	var sets []Dataset
	for _, target := range targets {
		vals, err := Durations(t, target)
		if err != nil {
			return nil, err
		}
		sets = append(sets, Dataset{Label: target, Values: vals})
	}
	return sets, nil
}

// PairSpec returns a bar chart comparing the durations of targets x
// and y.
func (b *Builder) PairSpec(t *resultfmt.Table, x, y string) (*Spec, error) {
	sets, err := b.datasets(t, []string{x, y})
	if err != nil {
		return nil, err
	}
	s := &Spec{
		Kind:     Bar,
		Title:    fmt.Sprintf("Performance Comparison: %s vs %s", x, y),
		Labels:   t.Names(),
		Datasets: sets,
		Options: Options{
			Width:  1200,
			Height: 800,
			YLabel: "Time (us)",
		},
		File: b.Naming.pair(x, y),
	}
	if _, max := s.Bounds(); len(s.Labels) > 0 {
		s.Options.SuggestedMax = float(max * 1.1)
	}
	b.log().Debug().Str("a", x).Str("b", y).Str("file", s.File).Msg("pair chart")
	return s, nil
}

// OverviewSpec returns a grouped bar chart of every target's
// durations on a logarithmic axis.
func (b *Builder) OverviewSpec(t *resultfmt.Table) (*Spec, error) {
	sets, err := b.datasets(t, t.Targets)
	if err != nil {
		return nil, err
	}
	s := &Spec{
		Kind:     Bar,
		Title:    "Performance Comparison Across Targets (Logarithmic Scale)",
		Labels:   t.Names(),
		Datasets: sets,
		Options: Options{
			Width:       4800,
			Height:      2400,
			DPI:         300,
			XLabel:      "Function Name",
			YLabel:      "Execution Time (µs)",
			LogScale:    true,
			ValueLabels: true,
			ValueFormat: "%.2f",
			LegendTitle: "Target",
		},
		File: b.Naming.OverviewFile,
	}
	return s, b.checkLog(s)
}

// TrendSpec returns the overview data as a line chart, one line per
// target.
func (b *Builder) TrendSpec(t *resultfmt.Table) (*Spec, error) {
	sets, err := b.datasets(t, t.Targets)
	if err != nil {
		return nil, err
	}
	s := &Spec{
		Kind:     Line,
		Title:    "Performance Across Targets",
		Labels:   t.Names(),
		Datasets: sets,
		Options: Options{
			Width:       1600,
			Height:      800,
			XLabel:      "Function Name",
			YLabel:      "Execution Time (µs)",
			LogScale:    true,
			LegendTitle: "Target",
		},
		File: b.Naming.TrendFile,
	}
	return s, b.checkLog(s)
}

// checkLog validates a log scale spec and warns about every value it
// has to leave out.
func (b *Builder) checkLog(s *Spec) error {
	if err := s.Validate(); err != nil {
		return err
	}
	for _, m := range s.Masked() {
		b.log().Warn().Str("chart", s.File).Str("test", m.Label).Str("target", m.Dataset).
			Float64("value", m.Value).Msg("value not drawn on log scale")
	}
	return nil
}
