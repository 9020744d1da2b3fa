// Package history keeps a local ledger of past pipeline runs.
//
// The ledger lives in a SQLite database under .llvmshield/ next to where the
// tool is invoked. Recording is best-effort: a broken ledger must never fail
// a build.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const dbName = "history.db"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	elapsed_s   REAL NOT NULL,
	input_count INTEGER NOT NULL,
	output_path TEXT NOT NULL,
	target      TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT ''
);
`

// Entry is one recorded run.
type Entry struct {
	RunID      string
	StartedAt  time.Time
	ElapsedSec float64
	InputCount int
	OutputPath string
	Target     string
	Status     string // "success" or "failed"
	Error      string
}

// Store wraps the ledger database.
type Store struct {
	db *sql.DB
}

func dbPath(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, ".llvmshield", dbName)
}

// EnsureWorkspace creates the .llvmshield directory if missing.
func EnsureWorkspace(workspace string) (string, error) {
	path := filepath.Join(workspace, ".llvmshield")
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// Open opens (creating if needed) the ledger under workspace.
func Open(workspace string) (*Store, error) {
	if _, err := EnsureWorkspace(workspace); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)", dbPath(workspace))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Append records one finished run.
func (s *Store) Append(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, elapsed_s, input_count, output_path, target, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.StartedAt.Format(time.RFC3339), e.ElapsedSec, e.InputCount,
		e.OutputPath, e.Target, e.Status, e.Error)
	return err
}

// List returns all recorded runs, most recent first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, elapsed_s, input_count, output_path, target, status, error
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started string
		if err := rows.Scan(&e.RunID, &started, &e.ElapsedSec, &e.InputCount,
			&e.OutputPath, &e.Target, &e.Status, &e.Error); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			e.StartedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
