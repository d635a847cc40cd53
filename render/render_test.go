// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/10xengineers/rvvcharts/chartdata"
)

func ptr(x float64) *float64 { return &x }

func passFailSpec() *chartdata.Spec {
	return &chartdata.Spec{
		Kind:   chartdata.Bar,
		Title:  "Correctness comparison of BPIF3 with QEMU-AARCH64",
		Labels: []string{"t1", "t2", "t3"},
		Datasets: []chartdata.Dataset{
			{Label: "Passed", Values: []float64{1, 0, 1}, Color: chartdata.PassedColor},
			{Label: "Failed", Values: []float64{0, -1, 0}, Color: chartdata.FailedColor},
		},
		Options: chartdata.Options{
			Width: 800, Height: 600,
			YLabel:       "Number of Tests",
			Stacked:      true,
			SuggestedMin: ptr(-1),
			SuggestedMax: ptr(1),
		},
		File: "correctness_results_bpif3.png",
	}
}

func overviewSpec() *chartdata.Spec {
	return &chartdata.Spec{
		Kind:   chartdata.Bar,
		Title:  "Performance Comparison Across Targets (Logarithmic Scale)",
		Labels: []string{"vadd", "vmul", "vdot"},
		Datasets: []chartdata.Dataset{
			{Label: "A", Values: []float64{12.5, 3.25, 100}},
			{Label: "B", Values: []float64{48.25, 0.5, 1000}},
			{Label: "C", Values: []float64{3.125, 7, 10}},
		},
		Options: chartdata.Options{
			Width: 640, Height: 320, DPI: 150,
			XLabel:      "Function Name",
			YLabel:      "Execution Time (µs)",
			LogScale:    true,
			ValueLabels: true,
			ValueFormat: "%.2f",
			LegendTitle: "Target",
		},
	}
}

func trendSpec() *chartdata.Spec {
	s := overviewSpec()
	s.Kind = chartdata.Line
	s.Options.ValueLabels = false
	return s
}

func pairSpec() *chartdata.Spec {
	return &chartdata.Spec{
		Kind:   chartdata.Bar,
		Title:  "Performance Comparison: RASPI4 vs BPIF3",
		Labels: []string{"foo", "bar"},
		Datasets: []chartdata.Dataset{
			{Label: "RASPI4", Values: []float64{4, 8}},
			{Label: "BPIF3", Values: []float64{3, 7}},
		},
		Options: chartdata.Options{Width: 600, Height: 400, YLabel: "Time (us)", SuggestedMax: ptr(8.8)},
	}
}

func TestLocalRenderers(t *testing.T) {
	for _, name := range []string{"plot", "gochart"} {
		r, err := New(Config{Name: name})
		require.NoError(t, err)
		for _, s := range []*chartdata.Spec{passFailSpec(), overviewSpec(), trendSpec(), pairSpec()} {
			t.Run(name+"/"+s.Title, func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, r.Render(context.Background(), s, &buf))
				img, err := png.Decode(&buf)
				require.NoError(t, err)
				b := img.Bounds()
				assert.InDelta(t, s.Options.Width, b.Dx(), 1)
				assert.InDelta(t, s.Options.Height, b.Dy(), 1)
			})
		}
	}
}

func TestRenderNonPositiveLog(t *testing.T) {
	for _, s := range []*chartdata.Spec{overviewSpec(), trendSpec()} {
		s.Datasets[1].Values[0] = 0
		s.Datasets[2].Values[1] = -3
		for _, r := range []Renderer{&Plot{}, &GoChart{}} {
			var buf bytes.Buffer
			require.NoError(t, r.Render(context.Background(), s, &buf), "%T %s", r, s.Kind)
			_, err := png.Decode(&buf)
			require.NoError(t, err)
		}

		data, err := ChartJS(s)
		require.NoError(t, err)
		var cfg struct {
			Data struct {
				Datasets []struct {
					Data []*float64 `json:"data"`
				} `json:"datasets"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &cfg))
		assert.Nil(t, cfg.Data.Datasets[1].Data[0])
		assert.Nil(t, cfg.Data.Datasets[2].Data[1])
		require.NotNil(t, cfg.Data.Datasets[2].Data[0])
		assert.Equal(t, 3.125, *cfg.Data.Datasets[2].Data[0])
	}

	// A dataset with nothing drawable still gets drawn around.
	s := trendSpec()
	s.Datasets[0].Values = []float64{0, 0, 0}
	for _, r := range []Renderer{&Plot{}, &GoChart{}} {
		require.NoError(t, r.Render(context.Background(), s, io.Discard), "%T", r)
	}
}

func TestRenderInvalid(t *testing.T) {
	s := overviewSpec()
	for _, ds := range s.Datasets {
		for i := range ds.Values {
			ds.Values[i] = 0
		}
	}
	for _, r := range []Renderer{&Plot{}, &GoChart{}, &QuickChart{}} {
		err := r.Render(context.Background(), s, io.Discard)
		assert.ErrorContains(t, err, "no positive values")
	}

	empty := pairSpec()
	empty.Labels = nil
	empty.Datasets = []chartdata.Dataset{{Label: "x"}}
	for _, r := range []Renderer{&Plot{}, &GoChart{}} {
		assert.ErrorIs(t, r.Render(context.Background(), empty, io.Discard), errNoLabels)
	}
}

func TestNew(t *testing.T) {
	r, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &Plot{}, r)

	r, err = New(Config{Name: "QuickChart", QuickChartURL: "http://localhost:1"})
	require.NoError(t, err)
	require.IsType(t, &QuickChart{}, r)
	assert.Equal(t, "http://localhost:1", r.(*QuickChart).BaseURL)

	_, err = New(Config{Name: "matplotlib"})
	assert.ErrorContains(t, err, `unknown renderer "matplotlib"`)
}

func TestChartJS(t *testing.T) {
	data, err := ChartJS(passFailSpec())
	require.NoError(t, err)

	var cfg map[string]any
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Equal(t, "bar", cfg["type"])

	d := cfg["data"].(map[string]any)
	assert.Equal(t, []any{"t1", "t2", "t3"}, d["labels"])
	ds := d["datasets"].([]any)
	require.Len(t, ds, 2)
	passed := ds[0].(map[string]any)
	assert.Equal(t, "Passed", passed["label"])
	assert.Equal(t, []any{1.0, 0.0, 1.0}, passed["data"])
	assert.Equal(t, "#4caf50", passed["backgroundColor"])
	assert.Equal(t, "#f44336", ds[1].(map[string]any)["backgroundColor"])

	opts := cfg["options"].(map[string]any)
	assert.Equal(t, map[string]any{"display": true, "text": "Correctness comparison of BPIF3 with QEMU-AARCH64"}, opts["title"])
	scales := opts["scales"].(map[string]any)
	y := scales["yAxes"].([]any)[0].(map[string]any)
	assert.Equal(t, true, y["stacked"])
	assert.NotContains(t, y, "type")
	ticks := y["ticks"].(map[string]any)
	assert.Equal(t, true, ticks["beginAtZero"])
	assert.Equal(t, -1.0, ticks["suggestedMin"])
	assert.Equal(t, 1.0, ticks["suggestedMax"])
	assert.Equal(t, "Number of Tests", y["scaleLabel"].(map[string]any)["labelString"])
	assert.Equal(t, true, scales["xAxes"].([]any)[0].(map[string]any)["stacked"])
	assert.NotContains(t, opts, "plugins")

	data, err = ChartJS(overviewSpec())
	require.NoError(t, err)
	cfg = nil
	require.NoError(t, json.Unmarshal(data, &cfg))
	opts = cfg["options"].(map[string]any)
	y = opts["scales"].(map[string]any)["yAxes"].([]any)[0].(map[string]any)
	assert.Equal(t, "logarithmic", y["type"])
	assert.Equal(t, false, y["ticks"].(map[string]any)["beginAtZero"])
	require.Contains(t, opts, "plugins")
	labels := opts["plugins"].(map[string]any)["datalabels"].(map[string]any)
	assert.Equal(t, true, labels["display"])
	assert.NotContains(t, labels, "formatter")
	assert.Equal(t, "Target", opts["legend"].(map[string]any)["title"].(map[string]any)["text"])
}

func TestQuickChart(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chart" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG fake"))
	}))
	defer srv.Close()

	r := &QuickChart{BaseURL: srv.URL + "/", Key: "k", Client: srv.Client()}
	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), pairSpec(), &buf))
	assert.Equal(t, "\x89PNG fake", buf.String())
	assert.Empty(t, auth)

	assert.Equal(t, 600.0, got["width"])
	assert.Equal(t, 400.0, got["height"])
	assert.Equal(t, "png", got["format"])
	assert.Equal(t, "white", got["backgroundColor"])
	assert.Equal(t, "2", got["version"])
	assert.Equal(t, "k", got["key"])
	chart := got["chart"].(map[string]any)
	assert.Equal(t, "bar", chart["type"])
	assert.Len(t, chart["data"].(map[string]any)["datasets"], 2)

	r.Token = "secret"
	require.NoError(t, r.Render(context.Background(), pairSpec(), io.Discard))
	assert.Equal(t, "Bearer secret", auth)
}

func TestQuickChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := &QuickChart{BaseURL: srv.URL}
	err := r.Render(context.Background(), pairSpec(), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = r.Render(ctx, pairSpec(), io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}
