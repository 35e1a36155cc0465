// Package runs keeps a log of finished runs in SQLite.
//
// The log is write-mostly history for the /runs endpoints. Live scores,
// including the best streak, are never read back from it.
package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/tidal-recall/internal/game"
)

const defaultLimit = 20

// timeLayout is fixed-width so lexical order in SQLite matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var ErrNotTerminal = errors.New("runs: outcome must be gameover or victory")

// Run is one finished play-through.
type Run struct {
	SessionID   string     `json:"sessionId"`
	Outcome     game.State `json:"outcome"`
	Score       int        `json:"score"`
	CatalogSize int        `json:"catalogSize"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  time.Time  `json:"finishedAt"`
}

type Store struct{ db *sql.DB }

// Open opens the database at path and brings its schema up to date.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record appends a finished run.
func (s *Store) Record(ctx context.Context, r Run) error {
	if !r.Outcome.Terminal() {
		return ErrNotTerminal
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO runs (session_id, outcome, score, catalog_size, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		r.SessionID, string(r.Outcome), r.Score, r.CatalogSize,
		r.StartedAt.UTC().Format(timeLayout), r.FinishedAt.UTC().Format(timeLayout),
	)
	return err
}

// Recent returns the latest finished runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	return s.query(ctx, `
        SELECT session_id, outcome, score, catalog_size, started_at, finished_at
        FROM runs
        ORDER BY finished_at DESC, id DESC
        LIMIT ?`, limit)
}

// Top returns the highest-scoring runs; ties go to whoever finished first.
func (s *Store) Top(ctx context.Context, limit int) ([]Run, error) {
	return s.query(ctx, `
        SELECT session_id, outcome, score, catalog_size, started_at, finished_at
        FROM runs
        ORDER BY score DESC, finished_at ASC, id ASC
        LIMIT ?`, limit)
}

func (s *Store) query(ctx context.Context, q string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Run, 0, limit)
	for rows.Next() {
		var r Run
		var outcome, started, finished string
		if err := rows.Scan(&r.SessionID, &outcome, &r.Score, &r.CatalogSize, &started, &finished); err != nil {
			return nil, err
		}
		r.Outcome = game.State(outcome)
		var err error
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s started_at: %w", r.SessionID, err)
		}
		if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("run %s finished_at: %w", r.SessionID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
