// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package publish

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts", "run1")
	s, err := Open(context.Background(), dir, "")
	require.NoError(t, err)
	defer s.Close()

	loc, err := s.Put(context.Background(), "correctness_results_bpif3.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "correctness_results_bpif3.png"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	// Names never escape the directory.
	loc, err = s.Put(context.Background(), "../x.png", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "x.png"), loc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Put(ctx, "y.png", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenDefault(t *testing.T) {
	s, err := Open(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, &Dir{Path: "."}, s)
}

func TestParseGCS(t *testing.T) {
	for _, tc := range []struct {
		in             string
		bucket, prefix string
		ok             bool
	}{
		{"gs://perf-charts/rvv/2024", "perf-charts", "rvv/2024", true},
		{"gs://perf-charts", "perf-charts", "", true},
		{"gs://perf-charts/", "perf-charts", "", true},
		{"gs:///x", "", "", false},
		{"charts", "", "", false},
		{"/tmp/gs://x", "", "", false},
	} {
		bucket, prefix, ok := ParseGCS(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.bucket, bucket, tc.in)
		assert.Equal(t, tc.prefix, prefix, tc.in)
	}
}

func TestGCSObject(t *testing.T) {
	g := NewGCS(nil, "b", "/out/")
	assert.Equal(t, "out/index.html", g.Object("index.html"))
	assert.Equal(t, "out/a.png", g.Object("dir/a.png"))
	assert.Equal(t, "a.png", NewGCS(nil, "b", "").Object("a.png"))

	assert.Equal(t, "image/png", contentType("a.png"))
	assert.Equal(t, "application/octet-stream", contentType("a"))
}

// upload is one object received by fakeGCS.
type upload struct {
	path        string
	name        string
	contentType string
	data        string
}

// fakeGCS accepts single request multipart uploads of the JSON API.
func fakeGCS(t *testing.T) (*httptest.Server, func() []upload) {
	var mu sync.Mutex
	var got []upload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || params["boundary"] == "" {
			http.Error(w, "want multipart upload", http.StatusBadRequest)
			return
		}
		mr := multipart.NewReader(r.Body, params["boundary"])
		var meta struct {
			Name        string `json:"name"`
			ContentType string `json:"contentType"`
		}
		part, err := mr.NextPart()
		if err == nil {
			err = json.NewDecoder(part).Decode(&meta)
		}
		var data []byte
		if err == nil {
			part, err = mr.NextPart()
		}
		if err == nil {
			data, err = io.ReadAll(part)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		got = append(got, upload{r.URL.Path, meta.Name, meta.ContentType, string(data)})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"bucket":      "perf-charts",
			"name":        meta.Name,
			"contentType": meta.ContentType,
			"size":        len(data),
		})
	}))
	t.Cleanup(srv.Close)
	return srv, func() []upload {
		mu.Lock()
		defer mu.Unlock()
		return append([]upload(nil), got...)
	}
}

func TestGCSPut(t *testing.T) {
	srv, uploads := fakeGCS(t)
	ctx := context.Background()
	client, err := storage.NewClient(ctx, option.WithEndpoint(srv.URL+"/storage/v1/"), option.WithoutAuthentication())
	require.NoError(t, err)
	g := NewGCS(client, "perf-charts", "rvv/2024")
	defer g.Close()

	loc, err := g.Put(ctx, "out/correctness_results_bpif3.png", []byte("png data"))
	require.NoError(t, err)
	assert.Equal(t, "gs://perf-charts/rvv/2024/correctness_results_bpif3.png", loc)

	loc, err = g.Put(ctx, "index.html", []byte("<html>"))
	require.NoError(t, err)
	assert.Equal(t, "gs://perf-charts/rvv/2024/index.html", loc)

	got := uploads()
	require.Len(t, got, 2)
	assert.Equal(t, "/upload/storage/v1/b/perf-charts/o", got[0].path)
	assert.Equal(t, "rvv/2024/correctness_results_bpif3.png", got[0].name)
	assert.Equal(t, "image/png", got[0].contentType)
	assert.Equal(t, "png data", got[0].data)
	assert.Equal(t, "rvv/2024/index.html", got[1].name)
	assert.Equal(t, "text/html; charset=utf-8", got[1].contentType)
}

func TestGCSPutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))
	defer srv.Close()
	ctx := context.Background()
	client, err := storage.NewClient(ctx, option.WithEndpoint(srv.URL+"/storage/v1/"), option.WithoutAuthentication())
	require.NoError(t, err)
	g := NewGCS(client, "perf-charts", "")
	defer g.Close()

	_, err = g.Put(ctx, "a.png", []byte("x"))
	assert.ErrorContains(t, err, "gs://perf-charts/a.png")
}
