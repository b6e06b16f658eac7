// Package history persists per-run removal totals in SQLite so lifetime
// statistics survive across invocations.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/qepting91/reddit-scrubber/internal/domain"
)

// Store wraps the SQLite connection.
type Store struct {
	conn *sql.DB
}

// Run is one recorded engine pass.
type Run struct {
	ID         int64
	Username   string
	StartedAt  time.Time
	FinishedAt time.Time
	Deleted    int
	Edited     int
}

// Open opens or creates the history database at the given path. Tests pass
// ":memory:".
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS run_counts (
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		category TEXT NOT NULL,
		deleted INTEGER NOT NULL DEFAULT 0,
		edited INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, category)
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// RecordRun stores one finished pass with its per-category counts. Runs that
// touched nothing are recorded too; they mark the point where the account
// came up clean.
func (s *Store) RecordRun(username string, started, finished time.Time, run domain.Counters) (int64, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO runs (username, started_at, finished_at) VALUES (?, ?, ?)",
		username, started.UTC(), finished.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, cat := range domain.Categories {
		deleted, edited := run.Deleted[cat], run.Edited[cat]
		if deleted == 0 && edited == 0 {
			continue
		}
		if _, err := tx.Exec(
			"INSERT INTO run_counts (run_id, category, deleted, edited) VALUES (?, ?, ?, ?)",
			id, cat.String(), deleted, edited,
		); err != nil {
			return 0, fmt.Errorf("insert counts for %s: %w", cat.String(), err)
		}
	}
	return id, tx.Commit()
}

// Totals returns the lifetime per-category counters and the number of
// recorded runs for one user.
func (s *Store) Totals(username string) (domain.Counters, int, error) {
	totals := domain.NewCounters()

	var runs int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM runs WHERE username = ?", username).Scan(&runs)
	if err != nil {
		return totals, 0, err
	}

	rows, err := s.conn.Query(`
		SELECT c.category, SUM(c.deleted), SUM(c.edited)
		FROM run_counts c
		JOIN runs r ON r.id = c.run_id
		WHERE r.username = ?
		GROUP BY c.category`, username)
	if err != nil {
		return totals, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var deleted, edited int
		if err := rows.Scan(&name, &deleted, &edited); err != nil {
			return totals, 0, err
		}
		cat, ok := categoryByName(name)
		if !ok {
			continue
		}
		totals.Deleted[cat] += deleted
		totals.Edited[cat] += edited
	}
	return totals, runs, rows.Err()
}

// RecentRuns returns the latest runs for a user, newest first, with their
// aggregate counts.
func (s *Store) RecentRuns(username string, limit int) ([]Run, error) {
	rows, err := s.conn.Query(`
		SELECT r.id, r.username, r.started_at, r.finished_at,
		       COALESCE(SUM(c.deleted), 0), COALESCE(SUM(c.edited), 0)
		FROM runs r
		LEFT JOIN run_counts c ON c.run_id = r.id
		WHERE r.username = ?
		GROUP BY r.id
		ORDER BY r.id DESC
		LIMIT ?`, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Username, &r.StartedAt, &r.FinishedAt, &r.Deleted, &r.Edited); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func categoryByName(name string) (domain.Category, bool) {
	for _, cat := range domain.Categories {
		if cat.String() == name {
			return cat, true
		}
	}
	return 0, false
}
