// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report writes an HTML index of the charts of one run.
package report

import (
	"io"
	"time"

	"github.com/google/safehtml/template"
)

// A Chart is one image on the page.
type Chart struct {
	Title string
	File  string // relative to the page
}

// A Page is the content of an index page.
type Page struct {
	Title     string
	Generated time.Time

	// Summaries are preformatted text blocks, such as the output
	// of summary.Format.
	Summaries []string

	Charts []Chart
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
pre { background: #f6f6f6; padding: 1em; }
figure { margin: 2em 0; }
img { max-width: 100%; border: 1px solid #ddd; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if not .Generated.IsZero}}<p>Generated {{.Generated.UTC.Format "2006-01-02 15:04:05 MST"}}</p>{{end}}
{{range .Summaries}}<pre>{{.}}</pre>
{{end}}
{{- range .Charts}}<figure>
<a href="{{.File}}"><img src="{{.File}}" alt="{{.Title}}"></a>
<figcaption>{{.Title}}</figcaption>
</figure>
{{end -}}
</body>
</html>
`))

// Write renders p as a complete HTML document.
func Write(w io.Writer, p *Page) error {
	return indexTemplate.Execute(w, p)
}
