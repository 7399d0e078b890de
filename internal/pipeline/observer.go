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

package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// RunRecord summarises a finished run, successful or not.
type RunRecord struct {
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	Inserted   int       `json:"inserted_count"`
	Extracted  int       `json:"extracted"`
	Dropped    int       `json:"dropped"`
	Message    string    `json:"message"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Observer is told about every finished run. Its errors are logged and
// never affect the run's outcome.
type Observer interface {
	RunFinished(ctx context.Context, rec RunRecord) error
}

func (p *Pipeline) notify(ctx context.Context, rec RunRecord) {
	// Observers still run when the caller's context is already done.
	ctx = context.WithoutCancel(ctx)
	for _, o := range p.observers {
		if err := o.RunFinished(ctx, rec); err != nil {
			slog.WarnContext(ctx, "run observer failed", "error", err)
		}
	}
}
