// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package history stores result tables in a SQL database so charts
// can be redrawn and compared across runs.
package history

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/10xengineers/rvvcharts/resultfmt"
)

// DB is a store of runs. It's safe for concurrent use by multiple
// goroutines.
type DB struct {
	sql *sql.DB

	insertRun    *sql.Stmt
	insertTarget *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a
// connection to driverName. It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is evaluated with . as a map containing one entry whose
// key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Kind VARCHAR(32) NOT NULL,
	Label VARCHAR(255) NOT NULL,
	Source VARCHAR(1024) NOT NULL,
	Created BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS RunTargets (
	RunID BIGINT UNSIGNED,
	Position INT,
	Target VARCHAR(255) NOT NULL,
	PRIMARY KEY (RunID, Position),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS Results (
	RunID BIGINT UNSIGNED,
	RowID INT,
	Position INT,
	TestName VARCHAR(255) NOT NULL,
	RawName VARCHAR(255) NOT NULL,
	Target VARCHAR(255) NOT NULL,
	Status VARCHAR(64) NOT NULL,
	Duration DOUBLE NOT NULL,
	PRIMARY KEY (RunID, RowID, Position),
{{if not .sqlite3}}
	Index (TestName(100), Target(100)),
{{end}}
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS ResultsTestTarget ON Results(TestName, Target);
{{end}}
`))

func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Kind, Label, Source, Created) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertTarget, err = db.sql.Prepare("INSERT INTO RunTargets(RunID, Position, Target) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// A Run is one stored result table.
type Run struct {
	ID int64
	db *DB
}

// now is replaced in tests.
var now = time.Now

// InsertRun stores t as a new run. label and source come from t's
// label and file name. Either all of t is stored or none of it.
func (db *DB) InsertRun(ctx context.Context, t *resultfmt.Table) (run *Run, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			run = nil
		} else {
			err = tx.Commit()
		}
	}()

	res, err := tx.StmtContext(ctx, db.insertRun).ExecContext(ctx, t.Kind.String(), t.Label, t.FileName, now().Unix())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	run = &Run{ID: id, db: db}
	return run, run.insertTable(ctx, tx, t)
}

func (r *Run) insertTable(ctx context.Context, tx *sql.Tx, t *resultfmt.Table) error {
	stmt := tx.StmtContext(ctx, r.db.insertTarget)
	for i, target := range t.Targets {
		if _, err := stmt.ExecContext(ctx, r.ID, i, target); err != nil {
			return err
		}
	}
	if len(t.Targets) == 0 {
		return nil
	}

	query := "INSERT INTO Results(RunID, RowID, Position, TestName, RawName, Target, Status, Duration) VALUES " +
		strings.TrimSuffix(strings.Repeat("(?, ?, ?, ?, ?, ?, ?, ?), ", len(t.Targets)), ", ")
	args := make([]interface{}, 0, 8*len(t.Targets))
	for k, row := range t.Rows {
		args = args[:0]
		for i, target := range t.Targets {
			var status string
			var dur float64
			if t.Kind == resultfmt.Correctness {
				status = row.Statuses[i]
			} else {
				dur = row.Durations[i]
			}
			args = append(args, r.ID, k, i, row.Name, row.RawName, target, status, dur)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("run %d: row %q: %w", r.ID, row.Name, err)
		}
	}
	return nil
}

// RunInfo describes a stored run.
type RunInfo struct {
	ID      int64
	Kind    resultfmt.Kind
	Label   string
	Source  string
	Created time.Time
	Tests   int
}

// ListRuns returns up to limit runs, newest first. A limit of 0
// means no limit.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	q := `SELECT RunID, Kind, Label, Source, Created,
	(SELECT COUNT(DISTINCT RowID) FROM Results WHERE Results.RunID = Runs.RunID)
	FROM Runs ORDER BY RunID DESC`
	var args []interface{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunInfo
	for rows.Next() {
		var ri RunInfo
		var kind string
		var created int64
		if err := rows.Scan(&ri.ID, &kind, &ri.Label, &ri.Source, &created, &ri.Tests); err != nil {
			return nil, err
		}
		if ri.Kind, err = resultfmt.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("run %d: %w", ri.ID, err)
		}
		ri.Created = time.Unix(created, 0)
		out = append(out, ri)
	}
	return out, rows.Err()
}

// CountRuns returns the number of stored runs.
func (db *DB) CountRuns() (int64, error) {
	var n int64
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Runs").Scan(&n)
	return n, err
}

// LoadTable reconstructs the table stored as run id.
func (db *DB) LoadTable(ctx context.Context, id int64) (*resultfmt.Table, error) {
	var kind, label, source string
	err := db.sql.QueryRowContext(ctx, "SELECT Kind, Label, Source FROM Runs WHERE RunID = ?", id).Scan(&kind, &label, &source)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	} else if err != nil {
		return nil, err
	}
	t := &resultfmt.Table{Label: label, FileName: source}
	if t.Kind, err = resultfmt.ParseKind(kind); err != nil {
		return nil, fmt.Errorf("run %d: %w", id, err)
	}

	trows, err := db.sql.QueryContext(ctx, "SELECT Target FROM RunTargets WHERE RunID = ? ORDER BY Position", id)
	if err != nil {
		return nil, err
	}
	for trows.Next() {
		var target string
		if err := trows.Scan(&target); err != nil {
			trows.Close()
			return nil, err
		}
		t.Targets = append(t.Targets, target)
	}
	trows.Close()
	if err := trows.Err(); err != nil {
		return nil, err
	}

	rows, err := db.sql.QueryContext(ctx, "SELECT RowID, Position, TestName, RawName, Status, Duration FROM Results WHERE RunID = ? ORDER BY RowID, Position", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cur *resultfmt.Row
	curID := -1
	for rows.Next() {
		var rowID, pos int
		var name, raw, status string
		var dur float64
		if err := rows.Scan(&rowID, &pos, &name, &raw, &status, &dur); err != nil {
			return nil, err
		}
		if pos < 0 || pos >= len(t.Targets) {
			return nil, fmt.Errorf("run %d: row %d: bad target position %d", id, rowID, pos)
		}
		if cur == nil || rowID != curID {
			cur = &resultfmt.Row{Name: name, RawName: raw}
			if t.Kind == resultfmt.Correctness {
				cur.Statuses = make([]string, len(t.Targets))
			} else {
				cur.Durations = make([]float64, len(t.Targets))
			}
			t.Rows = append(t.Rows, cur)
			curID = rowID
		}
		if t.Kind == resultfmt.Correctness {
			cur.Statuses[pos] = status
		} else {
			cur.Durations[pos] = dur
		}
	}
	return t, rows.Err()
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertRun.Close(); err != nil {
		return err
	}
	if err := db.insertTarget.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
