// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/10xengineers/rvvcharts/chartdata"
)

// GoChart renders charts locally with github.com/wcharczuk/go-chart.
//
// go-chart has no grouped bar chart. A bar Spec whose datasets never
// overlap (at most one nonzero value per label, as in the pass/fail
// charts) is drawn as a single bar chart colored by dataset. Every
// other Spec is drawn as one line per dataset.
type GoChart struct{}

// Render implements Renderer.
func (r *GoChart) Render(ctx context.Context, s *chartdata.Spec, w io.Writer) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if len(s.Labels) == 0 {
		return fmt.Errorf("chart %q: %w", s.Title, errNoLabels)
	}
	var err error
	if s.Kind == chartdata.Bar && disjoint(s) && !s.Options.LogScale {
		err = r.barChart(s).Render(chart.PNG, w)
	} else {
		err = r.lineChart(s).Render(chart.PNG, w)
	}
	if err != nil {
		return fmt.Errorf("chart %q: %w", s.Title, err)
	}
	return nil
}

// disjoint reports whether at most one dataset of s is nonzero at
// every label.
func disjoint(s *chartdata.Spec) bool {
	for i := range s.Labels {
		n := 0
		for _, ds := range s.Datasets {
			if ds.Values[i] != 0 {
				n++
			}
		}
		if n > 1 {
			return false
		}
	}
	return true
}

var chartPadding = chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}

func yRange(s *chartdata.Spec) (min, max float64) {
	min, max = s.Bounds()
	min, max = math.Min(min, 0), math.Max(max, 0)
	if p := s.Options.SuggestedMin; p != nil {
		min = math.Min(min, *p)
	}
	if p := s.Options.SuggestedMax; p != nil {
		max = math.Max(max, *p)
	}
	if min == max {
		max = min + 1
	}
	return min, max
}

func (r *GoChart) barChart(s *chartdata.Spec) chart.BarChart {
	colors := seriesColors(s)
	bars := make([]chart.Value, len(s.Labels))
	for i, label := range s.Labels {
		bars[i] = chart.Value{Label: label}
		for k, ds := range s.Datasets {
			if v := ds.Values[i]; v != 0 || k == 0 {
				bars[i].Value = v
				bars[i].Style = chart.Style{FillColor: colors[k], StrokeColor: colors[k], StrokeWidth: 1}
			}
		}
	}

	min, max := yRange(s)
	barWidth := (s.Options.Width - 200) / (2 * len(bars))
	if barWidth < 1 {
		barWidth = 1
	}
	return chart.BarChart{
		Title:        s.Title,
		Width:        s.Options.Width,
		Height:       s.Options.Height,
		Background:   chart.Style{Padding: chartPadding},
		BarWidth:     barWidth,
		BarSpacing:   barWidth,
		UseBaseValue: true,
		BaseValue:    0,
		XAxis:        chart.Style{TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Name:  s.Options.YLabel,
			Range: &chart.ContinuousRange{Min: min, Max: max},
		},
		Bars: bars,
	}
}

func (r *GoChart) lineChart(s *chartdata.Spec) *chart.Chart {
	colors := seriesColors(s)
	xs := make([]float64, len(s.Labels))
	xticks := make([]chart.Tick, len(s.Labels))
	for i, label := range s.Labels {
		xs[i] = float64(i)
		xticks[i] = chart.Tick{Value: float64(i), Label: label}
	}

	yaxis := chart.YAxis{Name: s.Options.YLabel}
	transform := func(v float64) float64 { return v }
	if s.Options.LogScale {
		min, max := s.Bounds()
		lo, hi := math.Floor(math.Log10(min)), math.Ceil(math.Log10(max))
		if lo == hi {
			hi++
		}
		for k := lo; k <= hi; k++ {
			yaxis.Ticks = append(yaxis.Ticks, chart.Tick{Value: k, Label: strconv.FormatFloat(math.Pow(10, k), 'g', -1, 64)})
		}
		yaxis.Range = &chart.ContinuousRange{Min: lo, Max: hi}
		transform = math.Log10
	} else {
		min, max := yRange(s)
		yaxis.Range = &chart.ContinuousRange{Min: min, Max: max}
	}

	var series []chart.Series
	for i, ds := range s.Datasets {
		var dx, dy []float64
		for j, v := range ds.Values {
			if s.Drawable(v) {
				dx = append(dx, xs[j])
				dy = append(dy, transform(v))
			}
		}
		if len(dx) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: dx,
			YValues: dy,
			Style: chart.Style{
				StrokeColor: colors[i],
				StrokeWidth: 2,
				DotColor:    colors[i],
				DotWidth:    3,
			},
		})
	}

	ch := &chart.Chart{
		Title:      s.Title,
		Width:      s.Options.Width,
		Height:     s.Options.Height,
		Background: chart.Style{Padding: chartPadding},
		XAxis: chart.XAxis{
			Name:      s.Options.XLabel,
			Range:     &chart.ContinuousRange{Min: -0.5, Max: float64(len(s.Labels)) - 0.5},
			Ticks:     xticks,
			TickStyle: chart.Style{TextRotationDegrees: 45},
		},
		YAxis:  yaxis,
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch
}
