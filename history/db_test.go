// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package history_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/10xengineers/rvvcharts/history"
	"github.com/10xengineers/rvvcharts/history/dbtest"
	"github.com/10xengineers/rvvcharts/resultfmt"
)

const (
	correctnessCSV = "testname,QEMU RISCV64,BPIF3\nvadd_test,Passed,Failed\nvmul_test,Failed,Passed\nvdot_test,Passed,Passed\n"
	performanceCSV = "testname,QEMU AARCH64,QEMU RISCV64,BPIF3\nvadd_s8_rvv_test,12.5,48.25,3.125\nvmul_test,0.1,1e-7,123456.789\n"
)

func read(t *testing.T, kind resultfmt.Kind, data string) *resultfmt.Table {
	t.Helper()
	opts := resultfmt.DefaultOptions(kind)
	opts.FooterRows = 0
	tab, err := resultfmt.ReadTable(strings.NewReader(data), "results.csv", opts)
	require.NoError(t, err)
	return tab
}

func store(t *testing.T, db *DB, tab *resultfmt.Table) *Run {
	t.Helper()
	run, err := db.InsertRun(context.Background(), tab)
	require.NoError(t, err)
	return run
}

var ignoreLine = cmpopts.IgnoreFields(resultfmt.Row{}, "Line")

func TestRoundTrip(t *testing.T) {
	db := dbtest.NewDB(t)
	ctx := context.Background()

	for _, tc := range []struct {
		kind resultfmt.Kind
		data string
	}{
		{resultfmt.Correctness, correctnessCSV},
		{resultfmt.Performance, performanceCSV},
	} {
		t.Run(tc.kind.String(), func(t *testing.T) {
			want := read(t, tc.kind, tc.data)
			run := store(t, db, want)

			got, err := db.LoadTable(ctx, run.ID)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got, ignoreLine); diff != "" {
				t.Errorf("LoadTable (-stored +loaded):\n%s", diff)
			}
		})
	}
}

func TestListRuns(t *testing.T) {
	SetNow(time.Unix(86400, 0))
	defer SetNow(time.Time{})

	db := dbtest.NewDB(t)
	ctx := context.Background()

	first := store(t, db, read(t, resultfmt.Correctness, correctnessCSV))
	second := store(t, db, read(t, resultfmt.Performance, performanceCSV))
	assert.Greater(t, second.ID, first.ID)

	n, err := db.CountRuns()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	runs, err := db.ListRuns(ctx, 0)
	require.NoError(t, err)
	want := []RunInfo{
		{ID: second.ID, Kind: resultfmt.Performance, Label: "results.csv", Source: "results.csv", Created: time.Unix(86400, 0), Tests: 2},
		{ID: first.ID, Kind: resultfmt.Correctness, Label: "results.csv", Source: "results.csv", Created: time.Unix(86400, 0), Tests: 3},
	}
	if diff := cmp.Diff(want, runs); diff != "" {
		t.Errorf("ListRuns (-want +got):\n%s", diff)
	}

	runs, err = db.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, second.ID, runs[0].ID)
}

func TestInsertRunAtomic(t *testing.T) {
	db := dbtest.NewDB(t)
	ctx := context.Background()
	store(t, db, read(t, resultfmt.Correctness, correctnessCSV))

	// NaN is stored as NULL and violates the NOT NULL constraint on
	// the second row, after the run and its targets are inserted.
	bad := read(t, resultfmt.Performance, "testname,A,B\nfoo_test,1,2\nbar_test,NaN,3\n")
	run, err := db.InsertRun(ctx, bad)
	require.Error(t, err)
	assert.Nil(t, run)

	n, err := db.CountRuns()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	runs, err := db.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, resultfmt.Correctness, runs[0].Kind)
}

func TestLoadMissing(t *testing.T) {
	db := dbtest.NewDB(t)
	_, err := db.LoadTable(context.Background(), 42)
	assert.ErrorContains(t, err, "run 42 not found")
}

func TestEmptyTable(t *testing.T) {
	db := dbtest.NewDB(t)
	want := read(t, resultfmt.Performance, "testname,A,B\n")
	run := store(t, db, want)

	got, err := db.LoadTable(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got.Targets)
	assert.Empty(t, got.Rows)
}
