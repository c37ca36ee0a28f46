// Package history keeps a local log of computed schedules in SQLite so past
// runs can be compared after input files change.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	computed_at   TEXT NOT NULL,
	source        TEXT NOT NULL,
	activities    INTEGER NOT NULL,
	duration      INTEGER NOT NULL,
	critical_path TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_computed_at ON runs(computed_at);
`

// Entry is one recorded analysis run.
type Entry struct {
	ID           int64
	ComputedAt   time.Time
	Source       string // input file the schedule was read from
	Activities   int
	Duration     int // project duration in days
	CriticalPath []string
}

// Store is a SQLite-backed run log.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the history database at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA busy_timeout = 5000")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("history store opened")
	return &Store{db: db, log: log}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends one run to the log.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ComputedAt.IsZero() {
		e.ComputedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(computed_at, source, activities, duration, critical_path)
		 VALUES(?,?,?,?,?)`,
		e.ComputedAt.Format(time.RFC3339Nano), e.Source, e.Activities, e.Duration,
		strings.Join(e.CriticalPath, ","),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	s.log.Debug().Str("source", e.Source).Int("duration", e.Duration).Msg("run recorded")
	return nil
}

// List returns the most recent runs, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	q := `SELECT id, computed_at, source, activities, duration, critical_path
	      FROM runs ORDER BY computed_at DESC, id DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at, path string
		if err := rows.Scan(&e.ID, &at, &e.Source, &e.Activities, &e.Duration, &path); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
			e.ComputedAt = t
		}
		if path != "" {
			e.CriticalPath = strings.Split(path, ",")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
