// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/10xengineers/rvvcharts/internal/config"
	"github.com/10xengineers/rvvcharts/render"
)

const appName = "rvvcharts"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
	cfg    config.Config

	stdout io.Writer
	stderr io.Writer
}

// New returns the application writing results to stdout and logs to
// stderr.
func New(stdout, stderr io.Writer) *App {
	a := &App{
		stdout: stdout,
		stderr: stderr,
		cfg:    config.Default(),
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal(stderr),
	}).With().Timestamp().Logger().Level(zerolog.InfoLevel)

	a.cli = &cli.App{
		Name:                      appName,
		Usage:                     "draw charts of per-target RVV test and benchmark results",
		Writer:                    stdout,
		ErrWriter:                 stderr,
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration `FILE`",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose (debug) logging",
			},
			&cli.StringFlag{
				Name:  "renderer",
				Usage: "chart backend: " + strings.Join(render.Names, ", "),
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "output directory or gs://bucket/prefix",
			},
			&cli.StringFlag{
				Name:  "db-driver",
				Usage: "history database driver (sqlite3 or mysql)",
			},
			&cli.StringFlag{
				Name:  "db-dsn",
				Usage: "history database data source name",
			},
		},
		Before: a.before,
	}
	a.cli.Commands = []*cli.Command{
		{
			Name:      "correctness",
			Usage:     "Draw a pass/fail chart per target",
			ArgsUsage: "[[label=]FILE]",
			Action:    a.correctness,
			Flags: append([]cli.Flag{
				&cli.IntFlag{
					Name:  "footer-rows",
					Usage: "number of trailing summary rows to drop",
					Value: -1,
				},
				&cli.StringFlag{
					Name:  "baseline",
					Usage: "reference target named in chart titles",
				},
				&cli.StringSliceFlag{
					Name:  "target",
					Usage: "chart only this target (repeatable)",
				},
			}, outputFlags()...),
		},
		{
			Name:      "performance",
			Usage:     "Draw pairwise and all-target timing charts",
			ArgsUsage: "[[label=]FILE]",
			Action:    a.performance,
			Flags: append([]cli.Flag{
				&cli.StringSliceFlag{
					Name:  "pair",
					Usage: "compare targets `A,B` (repeatable; replaces the configured pairs)",
				},
				&cli.BoolFlag{
					Name:  "no-overview",
					Usage: "skip the all-targets bar chart",
				},
				&cli.BoolFlag{
					Name:  "trend",
					Usage: "also draw the all-targets line chart",
				},
			}, outputFlags()...),
		},
		{
			Name:      "summary",
			Usage:     "Print per-target statistics",
			ArgsUsage: "FILE",
			Action:    a.summary,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kind",
					Usage: "correctness or performance",
					Value: "performance",
				},
			},
		},
		{
			Name:   "run",
			Usage:  "Draw every chart for the configured inputs",
			Action: a.run,
			Flags:  outputFlags(),
		},
		{
			Name:   "history",
			Usage:  "List stored runs",
			Action: a.history,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "limit",
					Usage: "show at most `N` runs",
					Value: 20,
				},
			},
		},
	}
	return a
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "html",
			Usage: "also write an index.html of the charts",
		},
		&cli.BoolFlag{
			Name:  "dump-config",
			Usage: "print the Chart.js configuration of each chart instead of drawing it",
		},
	}
}

// Run runs the command line args.
func (a *App) Run(ctx context.Context, args []string) error {
	return a.cli.RunContext(ctx, args)
}

func (a *App) before(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if v := c.String("renderer"); v != "" {
		cfg.Render.Renderer = v
	}
	if v := c.String("out"); v != "" {
		cfg.Output.Dest = v
	}
	if v := c.String("db-driver"); v != "" {
		cfg.Database.Driver = v
	}
	if v := c.String("db-dsn"); v != "" {
		cfg.Database.DSN = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	a.logger = a.logger.Level(level)
	a.logger.Debug().Str("renderer", cfg.Render.Renderer).Str("out", cfg.Output.Dest).Msg("configuration loaded")
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
