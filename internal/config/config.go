// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds rvvcharts settings. Values come from the
// defaults, then an optional YAML file, then RVVCHARTS_* environment
// variables. Command line flags are applied last by the caller.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/10xengineers/rvvcharts/chartdata"
	"github.com/10xengineers/rvvcharts/render"
)

type Config struct {
	Inputs struct {
		Correctness string `yaml:"correctness"`
		Performance string `yaml:"performance"`
	} `yaml:"inputs"`

	Correctness struct {
		// Baseline is the reference target named in chart titles.
		Baseline string `yaml:"baseline"`
		// Targets selects the charted columns. Empty means all.
		Targets    []string `yaml:"targets"`
		HeaderRows int      `yaml:"header_rows"`
		FooterRows int      `yaml:"footer_rows"`
	} `yaml:"correctness"`

	Performance struct {
		Pairs      []chartdata.Pair `yaml:"pairs"`
		NameSuffix string           `yaml:"name_suffix"`
		Overview   bool             `yaml:"overview"`
		Trend      bool             `yaml:"trend"`
	} `yaml:"performance"`

	Output struct {
		// Dest is a directory or gs://bucket/prefix.
		Dest        string `yaml:"dest"`
		Credentials string `yaml:"credentials"`
		HTML        bool   `yaml:"html"`
		Title       string `yaml:"title"`
	} `yaml:"output"`

	Render struct {
		Renderer      string `yaml:"renderer"`
		QuickChartURL string `yaml:"quickchart_url"`
		QuickChartKey string `yaml:"quickchart_key"`
		// QuickChartToken is sent as a bearer token, for services
		// behind an authenticating proxy.
		QuickChartToken string `yaml:"quickchart_token"`
	} `yaml:"render"`

	Database struct {
		Driver string `yaml:"driver"` // "sqlite3" or "mysql"; empty disables history
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	Naming chartdata.Naming `yaml:"naming"`

	Logging struct {
		Level string `yaml:"level"` // "debug"|"info"|"warn"|"error"
	} `yaml:"logging"`
}

func Default() Config {
	var c Config
	c.Inputs.Correctness = "combined_correctness_results.csv"
	c.Inputs.Performance = "combined_performance_results.csv"
	c.Correctness.Baseline = "QEMU-AARCH64"
	c.Correctness.HeaderRows = 1
	c.Correctness.FooterRows = 2
	c.Performance.Pairs = []chartdata.Pair{
		{A: "QEMU AARCH64", B: "QEMU RISCV64"},
		{A: "RASPI4", B: "BPIF3"},
	}
	c.Performance.NameSuffix = "_test"
	c.Performance.Overview = true
	c.Output.Dest = "."
	c.Output.Title = "RVV benchmark results"
	c.Render.Renderer = "plot"
	c.Render.QuickChartURL = render.DefaultQuickChartURL
	c.Naming = chartdata.DefaultNaming
	c.Logging.Level = "info"
	return c
}

// Load reads the YAML file at path over the defaults and applies the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	for _, s := range []struct {
		name string
		dst  *string
	}{
		{"RVVCHARTS_OUT", &c.Output.Dest},
		{"RVVCHARTS_RENDERER", &c.Render.Renderer},
		{"RVVCHARTS_DB_DRIVER", &c.Database.Driver},
		{"RVVCHARTS_DB_DSN", &c.Database.DSN},
		{"RVVCHARTS_QUICKCHART_URL", &c.Render.QuickChartURL},
		{"RVVCHARTS_QUICKCHART_KEY", &c.Render.QuickChartKey},
		{"RVVCHARTS_QUICKCHART_TOKEN", &c.Render.QuickChartToken},
		{"RVVCHARTS_LOG_LEVEL", &c.Logging.Level},
		{"RVVCHARTS_CREDENTIALS", &c.Output.Credentials},
	} {
		if v := getenv(s.name); v != "" {
			*s.dst = v
		}
	}
	if v := getenv("RVVCHARTS_FOOTER_ROWS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RVVCHARTS_FOOTER_ROWS: %w", err)
		}
		c.Correctness.FooterRows = n
	}
	return nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.Correctness.HeaderRows < 1 {
		return fmt.Errorf("correctness.header_rows must be at least 1, got %d", c.Correctness.HeaderRows)
	}
	if c.Correctness.FooterRows < 0 {
		return fmt.Errorf("correctness.footer_rows must not be negative, got %d", c.Correctness.FooterRows)
	}
	for _, p := range c.Performance.Pairs {
		if p.A == "" || p.B == "" {
			return fmt.Errorf("performance.pairs: incomplete pair %q", p.String())
		}
	}
	switch c.Database.Driver {
	case "", "sqlite3", "mysql":
	default:
		return fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver)
	}
	if c.Database.Driver != "" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required with driver %q", c.Database.Driver)
	}
	return nil
}
