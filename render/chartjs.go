// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"encoding/json"

	"github.com/10xengineers/rvvcharts/chartdata"
)

// Chart.js version 2 configuration, limited to the fields the charts
// in this module use.

type cjsConfig struct {
	Type    string     `json:"type"`
	Data    cjsData    `json:"data"`
	Options cjsOptions `json:"options"`
}

type cjsData struct {
	Labels   []string     `json:"labels"`
	Datasets []cjsDataset `json:"datasets"`
}

type cjsDataset struct {
	Label string `json:"label"`

	// Data holds null where a value is left out.
	Data            []*float64 `json:"data"`
	BackgroundColor string     `json:"backgroundColor"`
	BorderColor     string     `json:"borderColor,omitempty"`
	Fill            *bool      `json:"fill,omitempty"`
}

type cjsOptions struct {
	Title   cjsTitle    `json:"title"`
	Scales  cjsScales   `json:"scales"`
	Legend  *cjsLegend  `json:"legend,omitempty"`
	Plugins *cjsPlugins `json:"plugins,omitempty"`
}

type cjsTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type cjsScales struct {
	XAxes []cjsAxis `json:"xAxes"`
	YAxes []cjsAxis `json:"yAxes"`
}

type cjsAxis struct {
	Type       string         `json:"type,omitempty"`
	Stacked    bool           `json:"stacked"`
	Ticks      *cjsTicks      `json:"ticks,omitempty"`
	ScaleLabel *cjsScaleLabel `json:"scaleLabel,omitempty"`
}

type cjsTicks struct {
	BeginAtZero  bool     `json:"beginAtZero"`
	SuggestedMin *float64 `json:"suggestedMin,omitempty"`
	SuggestedMax *float64 `json:"suggestedMax,omitempty"`
}

type cjsScaleLabel struct {
	Display     bool   `json:"display"`
	LabelString string `json:"labelString"`
}

type cjsLegend struct {
	Title cjsTitle `json:"title"`
}

type cjsPlugins struct {
	DataLabels cjsDataLabels `json:"datalabels"`
}

type cjsDataLabels struct {
	Display bool   `json:"display"`
	Anchor  string `json:"anchor"`
	Align   string `json:"align"`
}

// ChartJS encodes s as a Chart.js version 2 configuration, the format
// chart image services such as QuickChart accept.
func ChartJS(s *chartdata.Spec) ([]byte, error) {
	cfg, err := chartJSConfig(s)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(cfg, "", "  ")
}

func chartJSConfig(s *chartdata.Spec) (*cjsConfig, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	opts := &s.Options
	colors := seriesColors(s)

	cfg := &cjsConfig{
		Type: string(s.Kind),
		Data: cjsData{Labels: s.Labels},
	}
	if cfg.Data.Labels == nil {
		cfg.Data.Labels = []string{}
	}
	for i, ds := range s.Datasets {
		d := cjsDataset{
			Label:           ds.Label,
			Data:            make([]*float64, len(ds.Values)),
			BackgroundColor: cssColor(colors[i]),
		}
		for j, v := range ds.Values {
			if s.Drawable(v) {
				d.Data[j] = &ds.Values[j]
			}
		}
		if s.Kind == chartdata.Line {
			no := false
			d.BorderColor = d.BackgroundColor
			d.Fill = &no
		}
		cfg.Data.Datasets = append(cfg.Data.Datasets, d)
	}

	y := cjsAxis{
		Stacked: opts.Stacked,
		Ticks: &cjsTicks{
			BeginAtZero:  !opts.LogScale,
			SuggestedMin: opts.SuggestedMin,
			SuggestedMax: opts.SuggestedMax,
		},
	}
	if opts.LogScale {
		y.Type = "logarithmic"
	}
	if opts.YLabel != "" {
		y.ScaleLabel = &cjsScaleLabel{Display: true, LabelString: opts.YLabel}
	}
	x := cjsAxis{Stacked: opts.Stacked}
	if opts.XLabel != "" {
		x.ScaleLabel = &cjsScaleLabel{Display: true, LabelString: opts.XLabel}
	}

	cfg.Options = cjsOptions{
		Title:  cjsTitle{Display: true, Text: s.Title},
		Scales: cjsScales{XAxes: []cjsAxis{x}, YAxes: []cjsAxis{y}},
	}
	if opts.LegendTitle != "" {
		cfg.Options.Legend = &cjsLegend{Title: cjsTitle{Display: true, Text: opts.LegendTitle}}
	}
	if opts.ValueLabels {
		cfg.Options.Plugins = &cjsPlugins{DataLabels: cjsDataLabels{
			Display: true,
			Anchor:  "end",
			Align:   "top",
		}}
	}
	return cfg, nil
}
