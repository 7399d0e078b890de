// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package history records finished pipeline runs in PostgreSQL so that
// operators can see what each run extracted, dropped and inserted.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/robynetl/pipeline/internal/pipeline"
)

// DefaultRecentLimit is how many runs Recent returns when limit <= 0.
const DefaultRecentLimit = 20

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store persists run records. It implements pipeline.Observer.
type Store struct {
	db DB
}

// NewStore creates a run-history store and ensures its table exists.
func NewStore(ctx context.Context, db DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure run history schema: %w", err)
	}
	slog.Info("run history store initialised")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS pipeline_runs (
			run_id          TEXT PRIMARY KEY,
			status          TEXT NOT NULL,
			inserted_count  INTEGER NOT NULL DEFAULT 0,
			extracted       INTEGER NOT NULL DEFAULT 0,
			dropped         INTEGER NOT NULL DEFAULT 0,
			message         TEXT DEFAULT '',
			started_at      TIMESTAMPTZ NOT NULL,
			finished_at     TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON pipeline_runs(started_at DESC);
	`)
	return err
}

// RunFinished inserts one row per run.
func (s *Store) RunFinished(ctx context.Context, rec pipeline.RunRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO pipeline_runs
			(run_id, status, inserted_count, extracted, dropped, message, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.RunID, rec.Status, rec.Inserted, rec.Extracted, rec.Dropped, rec.Message, rec.StartedAt, rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]pipeline.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := s.db.Query(ctx, `
		SELECT run_id, status, inserted_count, extracted, dropped,
		       message, started_at, finished_at
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

// collectRuns scans multiple rows into run records.
func collectRuns(rows pgx.Rows) ([]pipeline.RunRecord, error) {
	records := []pipeline.RunRecord{}
	for rows.Next() {
		var r pipeline.RunRecord
		if err := rows.Scan(
			&r.RunID, &r.Status, &r.Inserted, &r.Extracted, &r.Dropped,
			&r.Message, &r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
