// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package summary computes per-target statistics of a result table.
package summary

import (
	"fmt"
	"math"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
	"github.com/rs/zerolog"

	"github.com/10xengineers/rvvcharts/chartdata"
	"github.com/10xengineers/rvvcharts/resultfmt"
)

// Status counts for one target of a correctness table.
type Status struct {
	Target         string
	Passed, Failed int
}

// PassRate returns the fraction of tests that passed, or 0 if there
// are none.
func (s Status) PassRate() float64 {
	if n := s.Passed + s.Failed; n > 0 {
		return float64(s.Passed) / float64(n)
	}
	return 0
}

// Timing describes the durations of one target of a performance
// table, in microseconds.
type Timing struct {
	Target            string
	N                 int
	GeoMean, Min, Max float64
}

// Ratio is the geometric mean of the per-test ratios B/A. A value
// below 1 means B is faster.
type Ratio struct {
	chartdata.Pair
	N       int // tests with positive durations on both targets
	Skipped int
	GeoMean float64
}

// A Summary holds the statistics of one table.
type Summary struct {
	Label string
	Kind  resultfmt.Kind
	Tests int

	Statuses []Status // correctness tables
	Timings  []Timing // performance tables
	Ratios   []Ratio  // performance tables with pairs
}

// Options configure Compute.
type Options struct {
	// Pairs lists target pairs whose ratio to report.
	Pairs []chartdata.Pair

	Logger *zerolog.Logger
}

// Compute summarizes t.
func Compute(t *resultfmt.Table, opts Options) (*Summary, error) {
	s := &Summary{Label: t.Label, Kind: t.Kind, Tests: len(t.Rows)}
	switch t.Kind {
	case resultfmt.Correctness:
		s.Statuses = statuses(t)
	case resultfmt.Performance:
		var err error
		if s.Timings, err = timings(t); err != nil {
			return nil, err
		}
		for _, p := range opts.Pairs {
			r, err := ratio(t, p)
			if err != nil {
				return nil, err
			}
			if r.Skipped > 0 && opts.Logger != nil {
				opts.Logger.Warn().Str("pair", p.String()).Int("skipped", r.Skipped).Msg("ignoring non-positive durations")
			}
			s.Ratios = append(s.Ratios, r)
		}
	default:
		return nil, fmt.Errorf("%s: unknown result kind %v", t.Label, t.Kind)
	}
	return s, nil
}

func statuses(t *resultfmt.Table) []Status {
	out := make([]Status, len(t.Targets))
	for i, target := range t.Targets {
		out[i].Target = target
		for _, row := range t.Rows {
			if row.Passed(i) {
				out[i].Passed++
			} else {
				out[i].Failed++
			}
		}
	}
	return out
}

// Column names of the long-form table. Target names become column
// names of the wide table, so they must not collide with these.
const (
	colTest     = "test"
	colTarget   = "target"
	colDuration = "duration"
)

// timings reshapes t into one (test, target, duration) row per cell
// and aggregates by target.
func timings(t *resultfmt.Table) ([]Timing, error) {
	if len(t.Rows) == 0 {
		out := make([]Timing, len(t.Targets))
		for i, target := range t.Targets {
			out[i].Target = target
		}
		return out, nil
	}

	b := table.NewBuilder(nil).Add(colTest, t.Names())
	seen := make(map[string]bool)
	for i, target := range t.Targets {
		switch {
		case target == colTest, target == colTarget, target == colDuration:
			return nil, fmt.Errorf("%s: target name %q is reserved", t.Label, target)
		case seen[target]:
			return nil, fmt.Errorf("%s: duplicate target %q", t.Label, target)
		}
		seen[target] = true
		col := make([]float64, len(t.Rows))
		for k, row := range t.Rows {
			col[k] = row.Durations[i]
		}
		b.Add(target, col)
	}

	long := table.Unpivot(b.Done(), colTarget, colDuration, t.Targets...)
	agg := ggstat.Agg(colTarget)(
		ggstat.AggCount("n"),
		ggstat.AggGeoMean(colDuration),
		ggstat.AggMin(colDuration),
		ggstat.AggMax(colDuration),
	).F(long)
	res := table.Flatten(agg)

	targets := res.MustColumn(colTarget).([]string)
	ns := res.MustColumn("n").([]int)
	geo := res.MustColumn("geomean " + colDuration).([]float64)
	min := res.MustColumn("min " + colDuration).([]float64)
	max := res.MustColumn("max " + colDuration).([]float64)
	out := make([]Timing, len(targets))
	for i := range targets {
		out[i] = Timing{Target: targets[i], N: ns[i], GeoMean: geo[i], Min: min[i], Max: max[i]}
	}
	return out, nil
}

func ratio(t *resultfmt.Table, p chartdata.Pair) (Ratio, error) {
	a, err := chartdata.Durations(t, p.A)
	if err != nil {
		return Ratio{}, err
	}
	b, err := chartdata.Durations(t, p.B)
	if err != nil {
		return Ratio{}, err
	}
	r := Ratio{Pair: p}
	var xs []float64
	for k := range a {
		if a[k] <= 0 || b[k] <= 0 {
			r.Skipped++
			continue
		}
		xs = append(xs, b[k]/a[k])
	}
	r.N = len(xs)
	r.GeoMean = math.NaN()
	if len(xs) > 0 {
		r.GeoMean = stats.GeoMean(xs)
	}
	return r, nil
}
