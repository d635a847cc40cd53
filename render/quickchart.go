// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/context/ctxhttp"
	"golang.org/x/oauth2"

	"github.com/10xengineers/rvvcharts/chartdata"
)

// DefaultQuickChartURL is the public QuickChart service.
const DefaultQuickChartURL = "https://quickchart.io"

// QuickChart renders charts with a QuickChart compatible chart image
// service. The Spec is sent as a Chart.js configuration and the
// service returns the PNG.
type QuickChart struct {
	// BaseURL is the service root. Empty means DefaultQuickChartURL.
	BaseURL string

	// Key is an optional API key sent in the request body.
	Key string

	// Token is an optional bearer token.
	Token string

	// Client is the HTTP client to use. nil means
	// http.DefaultClient.
	Client *http.Client

	Logger zerolog.Logger
}

type quickChartRequest struct {
	Chart           *cjsConfig `json:"chart"`
	Width           int        `json:"width"`
	Height          int        `json:"height"`
	DevicePixel     float64    `json:"devicePixelRatio"`
	Format          string     `json:"format"`
	BackgroundColor string     `json:"backgroundColor"`
	Version         string     `json:"version"`
	Key             string     `json:"key,omitempty"`
}

// Render implements Renderer.
func (r *QuickChart) Render(ctx context.Context, s *chartdata.Spec, w io.Writer) error {
	cfg, err := chartJSConfig(s)
	if err != nil {
		return err
	}
	body, err := json.Marshal(&quickChartRequest{
		Chart:           cfg,
		Width:           s.Options.Width,
		Height:          s.Options.Height,
		DevicePixel:     1,
		Format:          "png",
		BackgroundColor: "white",
		Version:         "2",
		Key:             r.Key,
	})
	if err != nil {
		return err
	}

	url := strings.TrimSuffix(r.baseURL(), "/") + "/chart"
	r.Logger.Debug().Str("url", url).Str("chart", s.Title).Int("bytes", len(body)).Msg("requesting chart")
	resp, err := ctxhttp.Post(ctx, r.client(ctx), url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("chart %q: %w", s.Title, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("chart %q: %s: %s: %s", s.Title, url, resp.Status, bytes.TrimSpace(msg))
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("chart %q: reading response: %w", s.Title, err)
	}
	return nil
}

func (r *QuickChart) baseURL() string {
	if r.BaseURL == "" {
		return DefaultQuickChartURL
	}
	return r.BaseURL
}

func (r *QuickChart) client(ctx context.Context) *http.Client {
	base := r.Client
	if base == nil {
		base = http.DefaultClient
	}
	if r.Token == "" {
		return base
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: r.Token}))
}
