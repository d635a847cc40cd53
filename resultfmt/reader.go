// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resultfmt reads CSV files of per-target test results.
//
// A results file starts with a header row naming the test column and
// then one column per target:
//
//	testname,QEMU RISCV64,BPIF3,RASPI4
//	vadd_s8_rvv_test,Passed,Passed,Failed
//
// Correctness files hold a status per target; performance files hold
// a duration in microseconds. Some generators append summary rows to
// correctness files, which the Reader drops by position (see
// Options.FooterRows).
package resultfmt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Options configures a Reader.
type Options struct {
	Kind Kind

	// HeaderRows is the number of leading records to skip. The
	// first of them names the targets. If HeaderRows is 0, Targets
	// must be set.
	HeaderRows int

	// FooterRows is the number of trailing records to drop without
	// looking at them.
	FooterRows int

	// NameSuffix is removed from the end of each test name to form
	// Row.Name.
	NameSuffix string

	// Targets, if non-empty, overrides the target names from the
	// header. Its length must match the number of target columns.
	Targets []string

	// Logger receives debug messages about skipped rows. If nil,
	// nothing is logged.
	Logger *zerolog.Logger
}

// DefaultOptions returns the options that match the files produced
// by the test runners for kind k.
func DefaultOptions(k Kind) Options {
	switch k {
	case Performance:
		return Options{Kind: Performance, HeaderRows: 1, NameSuffix: "_test"}
	}
	return Options{Kind: Correctness, HeaderRows: 1, FooterRows: 2}
}

// A SyntaxError represents a malformed row in a results file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

// A Reader reads rows from a results file.
//
// Its API is modeled on bufio.Scanner. Rows are returned in file
// order once the header has been consumed. Because footer rows are
// only known to be footer rows at end of input, the Reader holds back
// the last Options.FooterRows records it has read.
type Reader struct {
	cr       *csv.Reader
	fileName string
	opts     Options
	log      zerolog.Logger

	targets []string
	started bool

	pending []record
	row     *Row
	err     error
	done    bool
}

type record struct {
	fields []string
	line   int
}

// NewReader constructs a Reader for r. fileName is used in error
// messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string, opts Options) *Reader {
	if fileName == "" {
		fileName = "<unknown>"
	}
	cr := csv.NewReader(r)
	// Column counts are checked per row so that footer rows of any
	// shape can be dropped.
	cr.FieldsPerRecord = -1
	lg := zerolog.Nop()
	if opts.Logger != nil {
		lg = opts.Logger.With().Str("file", fileName).Logger()
	}
	return &Reader{cr: cr, fileName: fileName, opts: opts, log: lg}
}

func (r *Reader) newSyntaxError(line int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{r.fileName, line, fmt.Sprintf(format, args...)}
}

// read returns the next CSV record, or io.EOF.
func (r *Reader) read() (record, error) {
	fields, err := r.cr.Read()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return record{}, r.newSyntaxError(pe.Line, "%v", pe.Err)
		}
		if err == io.EOF {
			return record{}, err
		}
		return record{}, fmt.Errorf("%s: %w", r.fileName, err)
	}
	line, _ := r.cr.FieldPos(0)
	return record{fields, line}, nil
}

// start consumes the header rows.
func (r *Reader) start() error {
	r.started = true
	for i := 0; i < r.opts.HeaderRows; i++ {
		rec, err := r.read()
		if err == io.EOF {
			return r.newSyntaxError(i+1, "missing header row")
		} else if err != nil {
			return err
		}
		if i == 0 {
			if len(rec.fields) < 2 {
				return r.newSyntaxError(rec.line, "header has no target columns")
			}
			r.targets = append([]string(nil), rec.fields[1:]...)
		}
	}
	if len(r.opts.Targets) > 0 {
		if r.targets != nil && len(r.targets) != len(r.opts.Targets) {
			return r.newSyntaxError(1, "header has %d target columns, but %d target names are configured", len(r.targets), len(r.opts.Targets))
		}
		r.targets = append([]string(nil), r.opts.Targets...)
	}
	if len(r.targets) == 0 {
		return fmt.Errorf("%s: no header row and no target names configured", r.fileName)
	}
	return nil
}

// Targets returns the target names of the file. It is valid after the
// first call to Scan.
func (r *Reader) Targets() []string {
	return r.targets
}

// Scan advances the reader to the next row and reports whether a row
// was read. The caller should use the Row method to get it. If Scan
// reaches end of input or an error occurs, it returns false, in which
// case the caller should use the Err method to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil || r.done {
		return false
	}
	if !r.started {
		if err := r.start(); err != nil {
			r.err = err
			return false
		}
	}

	// Keep FooterRows records in reserve.
	for len(r.pending) <= r.opts.FooterRows {
		rec, err := r.read()
		if err == io.EOF {
			for _, f := range r.pending {
				r.log.Debug().Int("line", f.line).Strs("fields", f.fields).Msg("dropping footer row")
			}
			r.pending = nil
			r.done = true
			return false
		} else if err != nil {
			r.err = err
			return false
		}
		r.pending = append(r.pending, rec)
	}

	rec := r.pending[0]
	r.pending = r.pending[1:]
	row, err := r.parseRow(rec)
	if err != nil {
		r.err = err
		return false
	}
	r.row = row
	return true
}

func (r *Reader) parseRow(rec record) (*Row, error) {
	if want := len(r.targets) + 1; len(rec.fields) != want {
		return nil, r.newSyntaxError(rec.line, "row has %d fields, want %d", len(rec.fields), want)
	}
	raw := rec.fields[0]
	row := &Row{
		Name:    strings.TrimSuffix(raw, r.opts.NameSuffix),
		RawName: raw,
		Line:    rec.line,
	}
	cells := rec.fields[1:]
	switch r.opts.Kind {
	case Correctness:
		row.Statuses = append([]string(nil), cells...)
	case Performance:
		row.Durations = make([]float64, len(cells))
		for i, cell := range cells {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, r.newSyntaxError(rec.line, "%s: target %q: invalid duration %q", raw, r.targets[i], cell)
			}
			row.Durations[i] = v
		}
	default:
		return nil, fmt.Errorf("%s: unsupported kind %v", r.fileName, r.opts.Kind)
	}
	return row, nil
}

// Row returns the row most recently read by Scan. The Reader does not
// reuse rows, so the caller may retain it.
func (r *Reader) Row() *Row {
	return r.row
}

// Err returns the first error encountered by the Reader.
func (r *Reader) Err() error {
	return r.err
}

// ReadTable reads a complete results file from rd.
func ReadTable(rd io.Reader, fileName string, opts Options) (*Table, error) {
	r := NewReader(rd, fileName, opts)
	t := &Table{Label: fileName, FileName: fileName, Kind: opts.Kind}
	for r.Scan() {
		t.Rows = append(t.Rows, r.Row())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	t.Targets = r.Targets()
	return t, nil
}
