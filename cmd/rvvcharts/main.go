// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Rvvcharts draws charts from CSV files of per-target RVV test and
// benchmark results.
//
// Usage:
//
//	rvvcharts [--config FILE] [--out DIR|gs://bucket/prefix] correctness [FILE]
//	rvvcharts performance [--pair A,B]... [--trend] [FILE]
//	rvvcharts summary --kind correctness FILE
//	rvvcharts run
//	rvvcharts --db-driver sqlite3 --db-dsn history.db history
//
// The correctness command draws a stacked pass/fail bar chart for each
// target. The performance command draws a grouped bar chart for each
// configured target pair plus an all-targets chart on a log scale.
// Both commands take the input from the configuration when FILE is
// omitted, and record the table in the history database when one is
// configured.
package main

import (
	"context"
	"os"
	"os/signal"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"

	_ "github.com/10xengineers/rvvcharts/history/sqlite3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := New(os.Stdout, os.Stderr)
	if err := a.Run(ctx, os.Args); err != nil {
		a.logger.Error().Err(err).Msg(appName + " failed")
		stop()
		os.Exit(1)
	}
}
