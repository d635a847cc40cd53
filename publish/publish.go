// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package publish writes rendered charts to their destination: a
// local directory or a Google Cloud Storage bucket.
package publish

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// A Sink stores named output files.
type Sink interface {
	// Put stores data under name and returns where it went.
	Put(ctx context.Context, name string, data []byte) (location string, err error)
	io.Closer
}

// Open returns the Sink for dest. A dest of the form
// gs://bucket/prefix selects a GCS bucket, authenticated with the
// given credentials file if non-empty. Anything else is a local
// directory.
func Open(ctx context.Context, dest, credentials string) (Sink, error) {
	if bucket, prefix, ok := ParseGCS(dest); ok {
		var opts []option.ClientOption
		if credentials != "" {
			opts = append(opts, option.WithCredentialsFile(credentials))
		}
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", dest, err)
		}
		return &GCS{Bucket: bucket, Prefix: prefix, client: client}, nil
	}
	if dest == "" {
		dest = "."
	}
	return &Dir{Path: dest}, nil
}

// ParseGCS splits a gs://bucket/prefix URL.
func ParseGCS(dest string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(dest, "gs://")
	if !found {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, strings.Trim(prefix, "/"), true
}

// Dir writes files into a local directory, creating it on first use.
type Dir struct {
	Path string
}

func (d *Dir) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Path, 0777); err != nil {
		return "", err
	}
	p := filepath.Join(d.Path, filepath.Base(name))
	if err := os.WriteFile(p, data, 0666); err != nil {
		return "", err
	}
	return p, nil
}

func (d *Dir) Close() error { return nil }

// GCS writes objects to a Cloud Storage bucket.
type GCS struct {
	Bucket string
	Prefix string

	client *storage.Client
}

// NewGCS returns a GCS sink that uses an existing client.
func NewGCS(client *storage.Client, bucket, prefix string) *GCS {
	return &GCS{Bucket: bucket, Prefix: strings.Trim(prefix, "/"), client: client}
}

// Object returns the object name for a file name.
func (g *GCS) Object(name string) string {
	return path.Join(g.Prefix, path.Base(name))
}

func (g *GCS) Put(ctx context.Context, name string, data []byte) (string, error) {
	obj := g.Object(name)
	w := g.client.Bucket(g.Bucket).Object(obj).NewWriter(ctx)
	w.ContentType = contentType(name)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("writing gs://%s/%s: %w", g.Bucket, obj, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("writing gs://%s/%s: %w", g.Bucket, obj, err)
	}
	return "gs://" + g.Bucket + "/" + obj, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

func contentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
