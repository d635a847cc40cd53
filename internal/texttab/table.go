// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out plain-text tables for terminal output.
//
// Cells are padded to column width before any style is applied, so
// ANSI escapes added by a style never disturb the alignment.
package texttab

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Table accumulates rows of cells. Methods return the Table so calls
// can be chained.
type Table struct {
	rows    [][]cell
	widths  []int
	Sep     string // column separator; "" means two spaces
	started bool
}

type cell struct {
	text  string
	align align
	style *lipgloss.Style
}

// A CellOption changes how one cell is drawn.
type CellOption func(c *cell)

type align int

const (
	alignLeft align = iota
	alignRight
	alignCenter
)

var (
	Left   CellOption = func(c *cell) { c.align = alignLeft }
	Right  CellOption = func(c *cell) { c.align = alignRight }
	Center CellOption = func(c *cell) { c.align = alignCenter }
)

// Style renders the padded cell through st.
func Style(st lipgloss.Style) CellOption {
	return func(c *cell) { c.style = &st }
}

func (a align) pad(s string, w int) string {
	n := w - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	switch a {
	case alignRight:
		return strings.Repeat(" ", n) + s
	case alignCenter:
		return strings.Repeat(" ", n/2) + s + strings.Repeat(" ", n-n/2)
	}
	return s + strings.Repeat(" ", n)
}

// Row starts a new row.
func (t *Table) Row() *Table {
	t.rows = append(t.rows, nil)
	t.started = true
	return t
}

// Cell appends a cell to the current row, starting a row if there is
// none yet.
func (t *Table) Cell(text string, opts ...CellOption) *Table {
	if !t.started {
		t.Row()
	}
	c := cell{text: text}
	for _, o := range opts {
		o(&c)
	}
	r := len(t.rows) - 1
	col := len(t.rows[r])
	t.rows[r] = append(t.rows[r], c)
	for len(t.widths) <= col {
		t.widths = append(t.widths, 0)
	}
	if w := utf8.RuneCountInString(text); w > t.widths[col] {
		t.widths[col] = w
	}
	return t
}

// Cells appends one left-aligned cell per value.
func (t *Table) Cells(values ...string) *Table {
	for _, v := range values {
		t.Cell(v)
	}
	return t
}

// Format writes the table to w. Trailing blanks are trimmed from
// every line.
func (t *Table) Format(w io.Writer) error {
	sep := t.Sep
	if sep == "" {
		sep = "  "
	}
	var line strings.Builder
	for _, row := range t.rows {
		line.Reset()
		// Index of the last non-empty cell; nothing after it is
		// printed.
		last := -1
		for i, c := range row {
			if strings.TrimSpace(c.text) != "" {
				last = i
			}
		}
		for i := 0; i <= last; i++ {
			c := row[i]
			if i > 0 {
				line.WriteString(sep)
			}
			s := c.text
			if i < last || c.align != alignLeft {
				s = c.align.pad(s, t.widths[i])
			}
			if c.style != nil {
				s = c.style.Render(s)
			}
			line.WriteString(s)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
