// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/10xengineers/rvvcharts/chartdata"
	"github.com/10xengineers/rvvcharts/history"
	"github.com/10xengineers/rvvcharts/internal/texttab"
	"github.com/10xengineers/rvvcharts/resultfmt"
	"github.com/10xengineers/rvvcharts/summary"
)

func (a *App) readOptions(kind resultfmt.Kind) resultfmt.Options {
	opts := resultfmt.DefaultOptions(kind)
	switch kind {
	case resultfmt.Correctness:
		opts.HeaderRows = a.cfg.Correctness.HeaderRows
		opts.FooterRows = a.cfg.Correctness.FooterRows
	case resultfmt.Performance:
		opts.NameSuffix = a.cfg.Performance.NameSuffix
	}
	opts.Logger = &a.logger
	return opts
}

// load reads the single input named by the command line, or path if
// there is none.
func (a *App) load(c *cli.Context, kind resultfmt.Kind, path string) (*resultfmt.Table, error) {
	switch c.Args().Len() {
	case 0:
		if path == "" {
			return nil, fmt.Errorf("no %s input file", kind)
		}
	case 1:
		path = c.Args().First()
	default:
		return nil, fmt.Errorf("want at most one input file, got %d", c.Args().Len())
	}
	files := resultfmt.Files{Paths: []string{path}, AllowStdin: true, AllowLabels: true, Options: a.readOptions(kind)}
	tables, err := files.Load()
	if err != nil {
		return nil, err
	}
	t := tables[0]
	a.logger.Info().Str("file", t.FileName).Int("tests", len(t.Rows)).Strs("targets", t.Targets).Msgf("loaded %s results", kind)
	return t, nil
}

func (a *App) builder() *chartdata.Builder {
	b := chartdata.NewBuilder()
	b.Baseline = a.cfg.Correctness.Baseline
	b.Naming = a.cfg.Naming
	b.Logger = &a.logger
	return b
}

func (a *App) correctness(c *cli.Context) error {
	if n := c.Int("footer-rows"); n >= 0 {
		a.cfg.Correctness.FooterRows = n
	}
	if v := c.String("baseline"); v != "" {
		a.cfg.Correctness.Baseline = v
	}
	if v := c.StringSlice("target"); len(v) > 0 {
		a.cfg.Correctness.Targets = v
	}
	s, err := a.newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	t, err := a.load(c, resultfmt.Correctness, a.cfg.Inputs.Correctness)
	if err != nil {
		return err
	}
	if err := s.correctness(t); err != nil {
		return err
	}
	return s.finish()
}

func (a *App) performance(c *cli.Context) error {
	if v := c.StringSlice("pair"); len(v) > 0 {
		a.cfg.Performance.Pairs = nil
		for _, p := range v {
			pair, err := chartdata.ParsePair(p)
			if err != nil {
				return err
			}
			a.cfg.Performance.Pairs = append(a.cfg.Performance.Pairs, pair)
		}
	}
	if c.Bool("no-overview") {
		a.cfg.Performance.Overview = false
	}
	if c.Bool("trend") {
		a.cfg.Performance.Trend = true
	}
	s, err := a.newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	t, err := a.load(c, resultfmt.Performance, a.cfg.Inputs.Performance)
	if err != nil {
		return err
	}
	if err := s.performance(t); err != nil {
		return err
	}
	return s.finish()
}

func (a *App) run(c *cli.Context) error {
	if c.Args().Len() > 0 {
		return fmt.Errorf("run takes no arguments; set inputs in the configuration")
	}
	s, err := a.newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	if p := a.cfg.Inputs.Correctness; p != "" {
		t, err := resultfmt.Open(p, a.readOptions(resultfmt.Correctness))
		if err != nil {
			return err
		}
		if err := s.correctness(t); err != nil {
			return err
		}
	}
	if p := a.cfg.Inputs.Performance; p != "" {
		t, err := resultfmt.Open(p, a.readOptions(resultfmt.Performance))
		if err != nil {
			return err
		}
		if err := s.performance(t); err != nil {
			return err
		}
	}
	return s.finish()
}

func (a *App) summary(c *cli.Context) error {
	kind, err := resultfmt.ParseKind(c.String("kind"))
	if err != nil {
		return err
	}
	path := a.cfg.Inputs.Performance
	if kind == resultfmt.Correctness {
		path = a.cfg.Inputs.Correctness
	}
	t, err := a.load(c, kind, path)
	if err != nil {
		return err
	}
	sum, err := summary.Compute(t, summary.Options{Pairs: a.cfg.Performance.Pairs, Logger: &a.logger})
	if err != nil {
		return err
	}
	return summary.Format(a.stdout, sum, isTerminal(a.stdout))
}

func (a *App) history(c *cli.Context) error {
	if a.cfg.Database.Driver == "" {
		return fmt.Errorf("no history database configured (use --db-driver and --db-dsn)")
	}
	db, err := history.OpenSQL(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "No runs recorded")
		return nil
	}
	var tab texttab.Table
	tab.Row().Cell("id", texttab.Right).Cells("created", "kind").Cell("tests", texttab.Right).Cells("label", "source")
	for _, r := range runs {
		tab.Row().Cell(fmt.Sprint(r.ID), texttab.Right).
			Cells(r.Created.Local().Format(time.DateTime), r.Kind.String()).
			Cell(fmt.Sprint(r.Tests), texttab.Right).
			Cells(r.Label, strings.TrimSpace(r.Source))
	}
	return tab.Format(a.stdout)
}
