// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render draws chart specifications as PNG images.
//
// Three backends implement Renderer: Plot draws locally with
// gonum.org/v1/plot, GoChart draws locally with go-chart, and
// QuickChart sends a Chart.js configuration to a chart image service.
package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/10xengineers/rvvcharts/chartdata"
)

// A Renderer draws one chart as a PNG image to w.
type Renderer interface {
	Render(ctx context.Context, s *chartdata.Spec, w io.Writer) error
}

// Config selects and configures a backend.
type Config struct {
	// Name is "plot", "gochart" or "quickchart". Empty means
	// "plot".
	Name string

	// QuickChart settings; ignored by the local backends.
	QuickChartURL   string
	QuickChartKey   string
	QuickChartToken string
	HTTPClient      *http.Client

	Logger *zerolog.Logger
}

// Names lists the backends New accepts.
var Names = []string{"plot", "gochart", "quickchart"}

// New returns the backend described by cfg.
func New(cfg Config) (Renderer, error) {
	lg := zerolog.Nop()
	if cfg.Logger != nil {
		lg = *cfg.Logger
	}
	switch strings.ToLower(cfg.Name) {
	case "", "plot", "gonum":
		return &Plot{}, nil
	case "gochart", "go-chart":
		return &GoChart{}, nil
	case "quickchart":
		return &QuickChart{
			BaseURL: cfg.QuickChartURL,
			Key:     cfg.QuickChartKey,
			Token:   cfg.QuickChartToken,
			Client:  cfg.HTTPClient,
			Logger:  lg,
		}, nil
	}
	return nil, fmt.Errorf("unknown renderer %q (want one of %s)", cfg.Name, strings.Join(Names, ", "))
}
