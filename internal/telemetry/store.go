// Package telemetry persists per-call routing outcomes for observability.
// The core never writes it implicitly; callers wire the recorder in.
package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mwestra/examtutor/internal/prompt"
	"github.com/mwestra/examtutor/internal/router"
)

// #region schema
const routingOutcomesSchema = `
CREATE TABLE IF NOT EXISTS routing_outcomes (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id      TEXT NOT NULL,
	task_type       TEXT NOT NULL,
	model_used      TEXT NOT NULL,
	fallback        INTEGER NOT NULL DEFAULT 0,
	fallback_reason TEXT,
	latency_ms      INTEGER NOT NULL,
	confidence      TEXT,
	created_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_routing_outcomes_task
ON routing_outcomes(task_type, created_at);
`

// #endregion schema

// #region types
// Outcome is one recorded routing decision.
type Outcome struct {
	RequestID  string
	Meta       router.RoutingMeta
	Confidence string
	CreatedAt  time.Time
}

// #endregion types

// #region store
// Store persists routing outcomes in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the routing_outcomes table over an existing handle.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(routingOutcomesSchema); err != nil {
		return nil, fmt.Errorf("migrate telemetry: %w", err)
	}
	return &Store{db: db}, nil
}

// Open opens (or creates) a standalone telemetry database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	return NewStore(db)
}

// Close shuts down the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region record
// Record writes one routing outcome row.
func (s *Store) Record(ctx context.Context, o Outcome) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	fallback := 0
	if o.Meta.FallbackTriggered {
		fallback = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO routing_outcomes (request_id, task_type, model_used, fallback, fallback_reason, latency_ms, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.RequestID, string(o.Meta.TaskType), o.Meta.ModelUsed,
		fallback, nullIfEmpty(o.Meta.FallbackReason), o.Meta.LatencyMs,
		nullIfEmpty(o.Confidence), o.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// #endregion record

// #region queries
// Recent returns the n most recent outcomes, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, task_type, model_used, fallback, COALESCE(fallback_reason, ''), latency_ms, COALESCE(confidence, ''), created_at
		 FROM routing_outcomes ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("recent outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var task string
		var fallback int
		var created string
		if err := rows.Scan(&o.RequestID, &task, &o.Meta.ModelUsed, &fallback,
			&o.Meta.FallbackReason, &o.Meta.LatencyMs, &o.Confidence, &created); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Meta.TaskType = prompt.TaskType(task)
		o.Meta.FallbackTriggered = fallback == 1
		o.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, o)
	}
	return out, rows.Err()
}

// FallbackRate returns the share of calls that escalated, per task type.
func (s *Store) FallbackRate(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT task_type, AVG(fallback) FROM routing_outcomes GROUP BY task_type`)
	if err != nil {
		return nil, fmt.Errorf("fallback rate: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]float64)
	for rows.Next() {
		var task string
		var rate float64
		if err := rows.Scan(&task, &rate); err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		rates[task] = rate
	}
	return rates, rows.Err()
}

// #endregion queries

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
