// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chartdata turns result tables into chart specifications.
//
// A Spec is everything a renderer needs to draw one chart: the
// category labels along the x axis, one Dataset per plotted series,
// and presentation options. Builders in this package never draw
// anything; see package render for that.
package chartdata

import (
	"fmt"
	"math"
)

// A Kind is the type of chart to draw.
type Kind string

const (
	Bar  Kind = "bar"
	Line Kind = "line"
)

// A Dataset is one named series of values. Values[i] belongs to the
// i'th label of the enclosing Spec.
type Dataset struct {
	Label  string    `json:"label"`
	Values []float64 `json:"data"`
	// Color is an optional "#rrggbb" fill color. Renderers choose
	// from a palette when it is empty.
	Color string `json:"color,omitempty"`
}

// Options control chart presentation.
type Options struct {
	// Width and Height are the image size in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// DPI is the output resolution for renderers that work in
	// physical units. Zero means 96.
	DPI int `json:"dpi,omitempty"`

	XLabel string `json:"xLabel,omitempty"`
	YLabel string `json:"yLabel,omitempty"`

	// LogScale selects a logarithmic y axis. Values that are not
	// positive are left out of the chart.
	LogScale bool `json:"logScale,omitempty"`

	// Stacked draws the datasets of a bar chart on top of each
	// other instead of side by side.
	Stacked bool `json:"stacked,omitempty"`

	// SuggestedMin and SuggestedMax widen the y axis to include
	// these values. They never narrow it.
	SuggestedMin *float64 `json:"suggestedMin,omitempty"`
	SuggestedMax *float64 `json:"suggestedMax,omitempty"`

	// ValueLabels prints each value above its bar using
	// ValueFormat.
	ValueLabels bool   `json:"valueLabels,omitempty"`
	ValueFormat string `json:"valueFormat,omitempty"`

	LegendTitle string `json:"legendTitle,omitempty"`
}

// A Spec describes one chart.
type Spec struct {
	Kind     Kind      `json:"type"`
	Title    string    `json:"title"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	Options  Options   `json:"options"`

	// File is the output file name, including extension.
	File string `json:"file"`
}

// Validate checks that every dataset is aligned with s.Labels and
// that the values are drawable with s's options.
func (s *Spec) Validate() error {
	if len(s.Datasets) == 0 {
		return fmt.Errorf("chart %q: no datasets", s.Title)
	}
	for _, ds := range s.Datasets {
		if len(ds.Values) != len(s.Labels) {
			return fmt.Errorf("chart %q: dataset %q has %d values for %d labels", s.Title, ds.Label, len(ds.Values), len(s.Labels))
		}
		for i, v := range ds.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("chart %q: dataset %q: %s: value %v is not finite", s.Title, ds.Label, s.Labels[i], v)
			}
		}
	}
	if min, _ := s.Bounds(); s.Options.LogScale && len(s.Labels) > 0 && math.IsInf(min, 1) {
		return fmt.Errorf("chart %q: no positive values to draw on a log scale", s.Title)
	}
	if s.Options.Width <= 0 || s.Options.Height <= 0 {
		return fmt.Errorf("chart %q: invalid size %dx%d", s.Title, s.Options.Width, s.Options.Height)
	}
	return nil
}

// Drawable reports whether v can be placed on s's y axis.
func (s *Spec) Drawable(v float64) bool {
	return !s.Options.LogScale || v > 0
}

// A Masked value is left out of a log scale chart.
type Masked struct {
	Label   string
	Dataset string
	Value   float64
}

// Masked returns the values of s that are not drawable.
func (s *Spec) Masked() []Masked {
	var out []Masked
	for _, ds := range s.Datasets {
		for i, v := range ds.Values {
			if i < len(s.Labels) && !s.Drawable(v) {
				out = append(out, Masked{Label: s.Labels[i], Dataset: ds.Label, Value: v})
			}
		}
	}
	return out
}

// Bounds returns the smallest and largest drawable value across all
// datasets.
func (s *Spec) Bounds() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, ds := range s.Datasets {
		for _, v := range ds.Values {
			if !s.Drawable(v) {
				continue
			}
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	return
}

// EffectiveDPI returns the output resolution, defaulting to 96.
func (o *Options) EffectiveDPI() int {
	if o.DPI <= 0 {
		return 96
	}
	return o.DPI
}

func float(x float64) *float64 {
	return &x
}
