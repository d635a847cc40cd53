// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package summary

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/10xengineers/rvvcharts/internal/texttab"
)

var (
	headStyle = lipgloss.NewStyle().Bold(true)
	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Format writes s as text tables to w. If styled is set, headers are
// bold and pass and fail counts are colored.
func Format(w io.Writer, s *Summary, styled bool) error {
	style := func(st lipgloss.Style) []texttab.CellOption {
		if !styled {
			return nil
		}
		return []texttab.CellOption{texttab.Style(st)}
	}
	head := func(tab *texttab.Table, cols ...string) {
		tab.Row()
		for i, c := range cols {
			opts := style(headStyle)
			if i > 0 {
				opts = append(opts, texttab.Right)
			}
			tab.Cell(c, opts...)
		}
	}
	num := func(tab *texttab.Table, v string, st ...texttab.CellOption) {
		tab.Cell(v, append([]texttab.CellOption{texttab.Right}, st...)...)
	}

	title := s.Label
	if title == "" {
		title = s.Kind.String()
	}
	if _, err := fmt.Fprintf(w, "%s: %d tests\n\n", title, s.Tests); err != nil {
		return err
	}

	var tab texttab.Table
	if len(s.Statuses) > 0 {
		head(&tab, "target", "passed", "failed", "pass rate")
		for _, st := range s.Statuses {
			tab.Row().Cell(st.Target)
			num(&tab, strconv.Itoa(st.Passed), style(goodStyle)...)
			failStyle := style(badStyle)
			if st.Failed == 0 {
				failStyle = nil
			}
			num(&tab, strconv.Itoa(st.Failed), failStyle...)
			num(&tab, fmt.Sprintf("%.1f%%", 100*st.PassRate()))
		}
	}
	if len(s.Timings) > 0 {
		head(&tab, "target", "n", "geomean (us)", "min (us)", "max (us)")
		for _, tm := range s.Timings {
			tab.Row().Cell(tm.Target)
			num(&tab, strconv.Itoa(tm.N))
			num(&tab, duration(tm.GeoMean))
			num(&tab, duration(tm.Min))
			num(&tab, duration(tm.Max))
		}
	}
	if err := tab.Format(w); err != nil {
		return err
	}

	if len(s.Ratios) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	var rt texttab.Table
	head(&rt, "pair", "n", "geomean B/A")
	for _, r := range s.Ratios {
		rt.Row().Cell(r.String())
		num(&rt, strconv.Itoa(r.N))
		var st []texttab.CellOption
		switch {
		case r.GeoMean < 1:
			st = style(goodStyle)
		case r.GeoMean > 1:
			st = style(badStyle)
		}
		num(&rt, formatRatio(r.GeoMean), st...)
	}
	return rt.Format(w)
}

func duration(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatRatio(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.3fx", v)
}
