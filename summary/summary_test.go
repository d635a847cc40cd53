// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package summary

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/10xengineers/rvvcharts/chartdata"
	"github.com/10xengineers/rvvcharts/resultfmt"
)

func read(t *testing.T, kind resultfmt.Kind, data string) *resultfmt.Table {
	t.Helper()
	opts := resultfmt.DefaultOptions(kind)
	opts.FooterRows = 0
	tab, err := resultfmt.ReadTable(strings.NewReader(data), "in.csv", opts)
	require.NoError(t, err)
	return tab
}

func TestCorrectness(t *testing.T) {
	tab := read(t, resultfmt.Correctness, "testname,A,B\nt1,Passed,Failed\nt2,Passed,Passed\nt3,Failed,Passed\nt4,Passed,Passed\n")
	s, err := Compute(tab, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Tests)
	assert.Equal(t, []Status{{Target: "A", Passed: 3, Failed: 1}, {Target: "B", Passed: 3, Failed: 1}}, s.Statuses)
	assert.Equal(t, 0.75, s.Statuses[0].PassRate())
	assert.Equal(t, 0.0, Status{}.PassRate())
	assert.Empty(t, s.Timings)
}

func TestPerformance(t *testing.T) {
	tab := read(t, resultfmt.Performance, "testname,A,B,C\nx_test,1,2,5\ny_test,4,8,5\n")
	s, err := Compute(tab, Options{Pairs: []chartdata.Pair{{A: "A", B: "B"}, {A: "B", B: "A"}}})
	require.NoError(t, err)

	want := []Timing{
		{Target: "A", N: 2, GeoMean: 2, Min: 1, Max: 4},
		{Target: "B", N: 2, GeoMean: 4, Min: 2, Max: 8},
		{Target: "C", N: 2, GeoMean: 5, Min: 5, Max: 5},
	}
	if diff := cmp.Diff(want, s.Timings, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("timings (-want +got):\n%s", diff)
	}

	require.Len(t, s.Ratios, 2)
	assert.InDelta(t, 2, s.Ratios[0].GeoMean, 1e-9)
	assert.Equal(t, 2, s.Ratios[0].N)
	assert.InDelta(t, 0.5, s.Ratios[1].GeoMean, 1e-9)

	_, err = Compute(tab, Options{Pairs: []chartdata.Pair{{A: "A", B: "Z"}}})
	assert.ErrorContains(t, err, `no target "Z"`)
}

func TestRatioSkipsNonPositive(t *testing.T) {
	tab := read(t, resultfmt.Performance, "testname,A,B\nx,0,2\ny,1,3\n")
	s, err := Compute(tab, Options{Pairs: []chartdata.Pair{{A: "A", B: "B"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Ratios[0].N)
	assert.Equal(t, 1, s.Ratios[0].Skipped)
	assert.InDelta(t, 3, s.Ratios[0].GeoMean, 1e-9)

	tab = read(t, resultfmt.Performance, "testname,A,B\nx,0,2\n")
	s, err = Compute(tab, Options{Pairs: []chartdata.Pair{{A: "A", B: "B"}}})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(s.Ratios[0].GeoMean))
}

func TestReservedTarget(t *testing.T) {
	tab := read(t, resultfmt.Performance, "testname,target,B\nx,1,2\n")
	_, err := Compute(tab, Options{})
	assert.ErrorContains(t, err, "reserved")
}

func TestFormat(t *testing.T) {
	tab := read(t, resultfmt.Correctness, "testname,QEMU RISCV64,BPIF3\nt1,Passed,Failed\nt2,Passed,Passed\n")
	tab.Label = "correctness"
	s, err := Compute(tab, Options{})
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, Format(&sb, s, false))
	want := `correctness: 2 tests

target        passed  failed  pass rate
QEMU RISCV64       2       0     100.0%
BPIF3              1       1      50.0%
`
	assert.Equal(t, want, sb.String())

	tab = read(t, resultfmt.Performance, "testname,A,B\nx_test,1,2\ny_test,4,8\n")
	s, err = Compute(tab, Options{Pairs: []chartdata.Pair{{A: "A", B: "B"}}})
	require.NoError(t, err)
	sb.Reset()
	require.NoError(t, Format(&sb, s, false))
	want = `in.csv: 2 tests

target  n  geomean (us)  min (us)  max (us)
A       2         2.000     1.000     4.000
B       2         4.000     2.000     8.000

pair    n  geomean B/A
A vs B  2       2.000x
`
	assert.Equal(t, want, sb.String())
}
