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

// Package pipeline sequences extraction, transformation and loading into a
// single run.
//
// A run moves Idle -> Extracting -> Transforming -> Loading -> Completed,
// or to Failed from any of the three working states. Fatal errors are
// returned to the caller unchanged in kind; Run never turns them into an
// error-status PipelineResult. Runs hold no shared lock, so concurrent
// calls proceed independently and each appends its own documents.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/robynetl/pipeline/internal/logging"
	"github.com/robynetl/pipeline/internal/models"
	"github.com/robynetl/pipeline/internal/source"
	"github.com/robynetl/pipeline/internal/store"
)

// State is a step of the run state machine.
type State string

const (
	StateIdle         State = "idle"
	StateExtracting   State = "extracting"
	StateTransforming State = "transforming"
	StateLoading      State = "loading"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// Extractor fetches validated raw users.
type Extractor interface {
	Extract(ctx context.Context) (*source.Extraction, error)
}

// Transformer maps raw users onto the target schema.
type Transformer interface {
	Transform(ctx context.Context, users []models.RawUser) []models.TransformedUser
}

// Loader persists transformed users.
type Loader interface {
	Load(ctx context.Context, users []models.TransformedUser) (store.LoadResult, error)
}

// StageError reports which step of a run failed.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Config holds the collaborators of a Pipeline.
type Config struct {
	Extractor   Extractor
	Transformer Transformer
	Loader      Loader
	Observers   []Observer
}

// Pipeline runs the ETL steps in strict order.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	observers   []Observer

	now   func() time.Time
	newID func() string
}

// New creates a pipeline from its collaborators.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		extractor:   cfg.Extractor,
		transformer: cfg.Transformer,
		loader:      cfg.Loader,
		observers:   cfg.Observers,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
}

// run tracks the state of a single invocation.
type run struct {
	id     string
	state  State
	record RunRecord
}

func (r *run) enter(ctx context.Context, next State) {
	slog.DebugContext(ctx, "pipeline state change", "from", r.state, "to", next)
	r.state = next
}

// Run performs one full extract, transform and load. On success it returns
// a PipelineResult with status "success". On failure it returns a
// *StageError wrapping models.ErrSourceUnavailable or models.ErrStoreWrite.
func (p *Pipeline) Run(ctx context.Context) (*models.PipelineResult, error) {
	r := &run{id: p.newID(), state: StateIdle}
	ctx = logging.WithRunID(ctx, r.id)
	r.record = RunRecord{RunID: r.id, StartedAt: p.now().UTC()}

	slog.InfoContext(ctx, "pipeline run started")

	result, err := p.execute(ctx, r)

	r.record.FinishedAt = p.now().UTC()
	if err != nil {
		r.record.Status = models.StatusError
		r.record.Message = err.Error()
		slog.ErrorContext(ctx, "pipeline run failed",
			"state", r.state,
			"error", err,
			"elapsed", r.record.FinishedAt.Sub(r.record.StartedAt),
		)
	} else {
		r.record.Status = models.StatusSuccess
		r.record.Message = result.Message
		slog.InfoContext(ctx, "pipeline run completed",
			"inserted", result.InsertedCount,
			"elapsed", r.record.FinishedAt.Sub(r.record.StartedAt),
		)
	}

	p.notify(ctx, r.record)

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, r *run) (*models.PipelineResult, error) {
	r.enter(ctx, StateExtracting)
	extraction, err := p.extractor.Extract(ctx)
	if err != nil {
		return nil, p.fail(ctx, r, err)
	}
	r.record.Extracted = extraction.Received
	r.record.Dropped = extraction.Dropped()

	r.enter(ctx, StateTransforming)
	transformed := p.transformer.Transform(ctx, extraction.Users)
	r.record.Dropped += len(extraction.Users) - len(transformed)

	r.enter(ctx, StateLoading)
	loaded, err := p.loader.Load(ctx, transformed)
	if err != nil {
		return nil, p.fail(ctx, r, err)
	}
	r.record.Inserted = loaded.Inserted

	r.enter(ctx, StateCompleted)
	return &models.PipelineResult{
		Status:        models.StatusSuccess,
		InsertedCount: loaded.Inserted,
		Message:       "pipeline success: " + loaded.Note(),
		RunID:         r.id,
		Extracted:     r.record.Extracted,
		Dropped:       r.record.Dropped,
	}, nil
}

func (p *Pipeline) fail(ctx context.Context, r *run, err error) error {
	stage := r.state
	r.enter(ctx, StateFailed)
	return &StageError{Stage: stage, Err: err}
}
