// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/10xengineers/rvvcharts/chartdata"
	"github.com/10xengineers/rvvcharts/history"
	"github.com/10xengineers/rvvcharts/publish"
	"github.com/10xengineers/rvvcharts/render"
	"github.com/10xengineers/rvvcharts/report"
	"github.com/10xengineers/rvvcharts/resultfmt"
	"github.com/10xengineers/rvvcharts/summary"
)

// A session draws the charts of one invocation and stores them.
type session struct {
	a   *App
	ctx context.Context

	renderer render.Renderer
	sink     publish.Sink
	db       *history.DB // nil without a configured database

	html bool
	dump bool

	charts    []report.Chart
	summaries []string
}

func (a *App) newSession(c *cli.Context) (*session, error) {
	s := &session{
		a:    a,
		ctx:  c.Context,
		html: c.Bool("html") || a.cfg.Output.HTML,
		dump: c.Bool("dump-config"),
	}
	if s.dump {
		return s, nil
	}

	var err error
	s.renderer, err = render.New(render.Config{
		Name:            a.cfg.Render.Renderer,
		QuickChartURL:   a.cfg.Render.QuickChartURL,
		QuickChartKey:   a.cfg.Render.QuickChartKey,
		QuickChartToken: a.cfg.Render.QuickChartToken,
		Logger:          &a.logger,
	})
	if err != nil {
		return nil, err
	}
	s.sink, err = publish.Open(s.ctx, a.cfg.Output.Dest, a.cfg.Output.Credentials)
	if err != nil {
		return nil, err
	}
	if d := a.cfg.Database; d.Driver != "" {
		s.db, err = history.OpenSQL(d.Driver, d.DSN)
		if err != nil {
			s.sink.Close()
			return nil, fmt.Errorf("opening history database: %w", err)
		}
	}
	return s, nil
}

func (s *session) close() {
	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			s.a.logger.Warn().Err(err).Msg("closing output")
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.a.logger.Warn().Err(err).Msg("closing history database")
		}
	}
}

// draw renders spec and stores the image, or prints its Chart.js
// configuration in dump mode.
func (s *session) draw(spec *chartdata.Spec) error {
	if s.dump {
		js, err := render.ChartJS(spec)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(s.a.stdout, "// %s\n%s\n", spec.File, js)
		return err
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := s.renderer.Render(s.ctx, spec, &buf); err != nil {
		return err
	}
	loc, err := s.sink.Put(s.ctx, spec.File, buf.Bytes())
	if err != nil {
		return err
	}
	s.a.logger.Info().Str("chart", spec.Title).Str("file", loc).Dur("took", time.Since(start)).Msg("chart written")
	s.charts = append(s.charts, report.Chart{Title: spec.Title, File: spec.File})
	return nil
}

// record stores t in the history database, if there is one.
func (s *session) record(t *resultfmt.Table) error {
	if s.db == nil || s.dump {
		return nil
	}
	run, err := s.db.InsertRun(s.ctx, t)
	if err != nil {
		return err
	}
	s.a.logger.Info().Int64("run", run.ID).Str("label", t.Label).Msg("results recorded")
	return nil
}

// summarize keeps a plain text summary of t for the index page.
func (s *session) summarize(t *resultfmt.Table) error {
	if !s.html || s.dump {
		return nil
	}
	sum, err := summary.Compute(t, summary.Options{Pairs: s.a.cfg.Performance.Pairs, Logger: &s.a.logger})
	if err != nil {
		return err
	}
	var sb strings.Builder
	if err := summary.Format(&sb, sum, false); err != nil {
		return err
	}
	s.summaries = append(s.summaries, sb.String())
	return nil
}

func (s *session) correctness(t *resultfmt.Table) error {
	specs, err := s.a.builder().CorrectnessSpecs(t, s.a.cfg.Correctness.Targets)
	if err != nil {
		return err
	}
	for _, spec := range specs {
		if err := s.draw(spec); err != nil {
			return err
		}
	}
	if err := s.record(t); err != nil {
		return err
	}
	return s.summarize(t)
}

// performance draws every performance chart of t. A chart that
// cannot be built or drawn does not stop the others; the failures are
// returned together and t is not recorded.
func (s *session) performance(t *resultfmt.Table) error {
	b := s.a.builder()
	var errs []error
	add := func(spec *chartdata.Spec, err error) {
		if err == nil {
			err = s.draw(spec)
		}
		if err != nil {
			s.a.logger.Error().Err(err).Msg("chart failed")
			errs = append(errs, err)
		}
	}
	for _, p := range s.a.cfg.Performance.Pairs {
		add(b.PairSpec(t, p.A, p.B))
	}
	if s.a.cfg.Performance.Overview {
		add(b.OverviewSpec(t))
	}
	if s.a.cfg.Performance.Trend {
		add(b.TrendSpec(t))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if err := s.record(t); err != nil {
		return err
	}
	return s.summarize(t)
}

// finish writes the index page if one was requested.
func (s *session) finish() error {
	if !s.html || s.dump {
		return nil
	}
	var buf bytes.Buffer
	page := &report.Page{
		Title:     s.a.cfg.Output.Title,
		Generated: time.Now(),
		Summaries: s.summaries,
		Charts:    s.charts,
	}
	if err := report.Write(&buf, page); err != nil {
		return err
	}
	loc, err := s.sink.Put(s.ctx, "index.html", buf.Bytes())
	if err != nil {
		return err
	}
	s.a.logger.Info().Str("file", loc).Msg("index written")
	return nil
}
