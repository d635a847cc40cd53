// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	p := &Page{
		Title:     "RVV results <nightly>",
		Generated: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Summaries: []string{"target  passed\nBPIF3   3"},
		Charts: []Chart{
			{Title: "Correctness comparison of BPIF3 with QEMU-AARCH64", File: "correctness_results_bpif3.png"},
			{Title: "Performance Comparison: RASPI4 vs BPIF3", File: "performance_comparison_raspi4_vs_bpif3.png"},
		},
	}
	var sb strings.Builder
	require.NoError(t, Write(&sb, p))
	out := sb.String()

	assert.Contains(t, out, "<title>RVV results &lt;nightly&gt;</title>")
	assert.Contains(t, out, "Generated 2024-05-01 12:00:00 UTC")
	assert.Contains(t, out, "<pre>target  passed\nBPIF3   3</pre>")
	assert.Contains(t, out, `<img src="correctness_results_bpif3.png"`)
	assert.Contains(t, out, `<img src="performance_comparison_raspi4_vs_bpif3.png"`)
	assert.Equal(t, 2, strings.Count(out, "<figure>"))
}

func TestWriteUnsafeURL(t *testing.T) {
	p := &Page{Title: "x", Charts: []Chart{{Title: "bad", File: "javascript:alert(1)"}}}
	var sb strings.Builder
	require.NoError(t, Write(&sb, p))
	assert.NotContains(t, sb.String(), "javascript:")
}
