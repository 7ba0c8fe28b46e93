// Package store exports analysis runs to a SQLite database so that discharge
// tooling can pick obligations up without re-running the checker.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/pog"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	source   TEXT NOT NULL,
	dialect  TEXT NOT NULL,
	created  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS obligations (
	run        INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	number     INTEGER NOT NULL,
	id         TEXT NOT NULL,
	kind       TEXT NOT NULL,
	definition TEXT NOT NULL,
	file       TEXT NOT NULL,
	line       INTEGER NOT NULL,
	col        INTEGER NOT NULL,
	text       TEXT NOT NULL,
	unchecked  INTEGER NOT NULL,
	PRIMARY KEY (run, number)
);
CREATE INDEX IF NOT EXISTS obligations_id ON obligations(id);
CREATE TABLE IF NOT EXISTS diagnostics (
	run      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq      INTEGER NOT NULL,
	severity TEXT NOT NULL,
	code     TEXT NOT NULL,
	file     TEXT NOT NULL,
	line     INTEGER NOT NULL,
	col      INTEGER NOT NULL,
	message  TEXT NOT NULL,
	PRIMARY KEY (run, seq)
);
`

// Store is an open export database
type Store struct {
	db *sql.DB
}

// Run describes one analysis run being exported
type Run struct {
	Source  string
	Dialect string
	Created time.Time
}

// RunInfo is a stored run with its obligation count
type RunInfo struct {
	ID          int64
	Run         Run
	Obligations int
}

// Row is a stored obligation
type Row struct {
	Number     int
	ID         uuid.UUID
	Kind       pog.Kind
	Definition string
	File       string
	Line       int
	Column     int
	Text       string
	Unchecked  bool
}

// Open opens (creating if needed) the database at path
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records a run with its obligations and diagnostics in one transaction
// and returns the new run's ID
func (s *Store) Save(ctx context.Context, run Run, list *pog.List, diags *diagnostic.Diagnostics) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if run.Created.IsZero() {
		run.Created = time.Now()
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO runs (source, dialect, created) VALUES (?, ?, ?)",
		run.Source, run.Dialect, run.Created.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("store: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: run id: %w", err)
	}

	if list != nil {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO obligations
			(run, number, id, kind, definition, file, line, col, text, unchecked)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("store: prepare: %w", err)
		}
		defer stmt.Close()
		for _, o := range list.Obligations {
			if _, err := stmt.ExecContext(ctx, id, o.Number, o.ID.String(), o.Kind.String(),
				o.Definition, o.Location.File, o.Location.Line, o.Location.Column,
				o.Text, o.Unchecked); err != nil {
				return 0, fmt.Errorf("store: insert obligation %d: %w", o.Number, err)
			}
		}
	}

	if diags != nil {
		for i, d := range diags.Sorted() {
			if _, err := tx.ExecContext(ctx, `INSERT INTO diagnostics
				(run, seq, severity, code, file, line, col, message)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				id, i+1, d.Severity.String(), string(d.Code), d.File, d.Line, d.Column, d.Message); err != nil {
				return 0, fmt.Errorf("store: insert diagnostic: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return id, nil
}

// Runs lists the stored runs, oldest first
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT r.id, r.source, r.dialect, r.created,
		(SELECT COUNT(*) FROM obligations o WHERE o.run = r.id)
		FROM runs r ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var info RunInfo
		var created string
		if err := rows.Scan(&info.ID, &info.Run.Source, &info.Run.Dialect, &created, &info.Obligations); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		if info.Run.Created, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("store: run %d: %w", info.ID, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Obligations returns the obligations of a run in number order. An empty
// kind returns every kind.
func (s *Store) Obligations(ctx context.Context, run int64, kind string) ([]Row, error) {
	query := `SELECT number, id, kind, definition, file, line, col, text, unchecked
		FROM obligations WHERE run = ?`
	args := []interface{}{run}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY number"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query obligations: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var id, k string
		if err := rows.Scan(&r.Number, &id, &k, &r.Definition, &r.File, &r.Line, &r.Column, &r.Text, &r.Unchecked); err != nil {
			return nil, fmt.Errorf("store: scan obligation: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("store: obligation %d: %w", r.Number, err)
		}
		if r.Kind, err = pog.ParseKind(k); err != nil {
			return nil, fmt.Errorf("store: obligation %d: %w", r.Number, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DiagnosticCount returns how many diagnostics of the given severity a run
// recorded
func (s *Store) DiagnosticCount(ctx context.Context, run int64, severity diagnostic.Severity) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM diagnostics WHERE run = ? AND severity = ?",
		run, severity.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count diagnostics: %w", err)
	}
	return n, nil
}

// Delete removes a run and everything recorded with it
func (s *Store) Delete(ctx context.Context, run int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", run)
	if err != nil {
		return fmt.Errorf("store: delete run %d: %w", run, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: no run %d", run)
	}
	return nil
}
