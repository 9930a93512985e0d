// Package journal records the outcome of each reconciliation run in a local
// SQLite database. The journal is an audit trail only: the mapping between
// units and pages is never persisted, Confluence itself is the source of
// truth for the next run.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/docpublish/internal/reconcile"
)

// Journal is a SQLite-backed record of sync runs.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// Entry is one recorded run.
type Entry struct {
	RunID      string
	Started    time.Time
	DurationMS int64
	Created    int
	Updated    int
	Warnings   int
	Status     string
	Error      string
}

// Open opens (and initializes) a journal database. Use ":memory:" for an
// in-memory journal.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize journal schema: %w", err)
	}
	return j, nil
}

func (j *Journal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		started INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created INTEGER NOT NULL,
		updated INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		status TEXT NOT NULL,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_run_id ON runs(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record appends a run outcome. runErr may be nil.
func (j *Journal) Record(ctx context.Context, report *reconcile.Report, runErr error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	status := "success"
	errText := ""
	if runErr != nil {
		status = "failed"
		errText = runErr.Error()
	}

	_, err := j.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, started, duration_ms, created, updated, warnings, status, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		report.RunID, report.Started.Unix(), report.Duration.Milliseconds(),
		report.Created, report.Updated, report.Warnings(), status, errText,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx,
		"SELECT run_id, started, duration_ms, created, updated, warnings, status, error FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedUnix int64
		if err := rows.Scan(&e.RunID, &startedUnix, &e.DurationMS, &e.Created, &e.Updated, &e.Warnings, &e.Status, &e.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.Started = time.Unix(startedUnix, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
