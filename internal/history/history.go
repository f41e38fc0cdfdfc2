// Package history persists build reports to a local SQLite database so
// `bookbuilder history` can show recent runs without any external service.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

// Entry is the summary row kept per build.
type Entry struct {
	BuildID  string
	Start    time.Time
	End      time.Time
	Outcome  report.Outcome
	Errors   int
	Warnings int
	Renders  int
}

// Store records build reports in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (or creates) the history database. Use ":memory:" in tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		errors INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		renders INTEGER NOT NULL,
		report BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores a finished build report. Recording the same build twice
// replaces the earlier row.
func (s *Store) Record(ctx context.Context, r *report.BuildReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO builds (build_id, started, finished, outcome, errors, warnings, renders, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BuildID, r.Start.Unix(), r.End.Unix(), string(r.Outcome),
		r.ErrorCount(), r.WarningCount(), len(r.Renders), payload,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Recent returns up to limit builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, started, finished, outcome, errors, warnings, renders
		 FROM builds ORDER BY started DESC, build_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, finished int64
		var outcome string
		if err := rows.Scan(&e.BuildID, &started, &finished, &outcome, &e.Errors, &e.Warnings, &e.Renders); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		e.Start = time.Unix(started, 0)
		e.End = time.Unix(finished, 0)
		e.Outcome = report.Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the full stored report for one build.
func (s *Store) Get(ctx context.Context, buildID string) (*report.BuildReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT report FROM builds WHERE build_id = ?", buildID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("build %s not found", buildID)
	}
	if err != nil {
		return nil, fmt.Errorf("query build: %w", err)
	}

	var r report.BuildReport
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
