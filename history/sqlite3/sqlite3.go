// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqlite3 registers the sqlite3 driver for use with
// history.OpenSQL. Import it for its side effects.
package sqlite3

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"

	"github.com/10xengineers/rvvcharts/history"
)

func init() {
	history.RegisterOpenHook("sqlite3", func(db *sql.DB) error {
		db.Driver().(*sqlite3.SQLiteDriver).ConnectHook = func(c *sqlite3.SQLiteConn) error {
			_, err := c.Exec("PRAGMA foreign_keys = ON;", nil)
			return err
		}
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
		return nil
	})
}
