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

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robynetl/pipeline/internal/models"
)

// NothingToLoad is the note attached to a load that had no input.
const NothingToLoad = "no records to load"

// closeTimeout bounds how long releasing a session may take.
const closeTimeout = 5 * time.Second

// LoadResult reports the outcome of a bulk insert.
type LoadResult struct {
	Inserted int
	// NoOp is set when the input was empty and the store was never contacted.
	NoOp bool
}

// Note returns a short human-readable description of the result.
func (r LoadResult) Note() string {
	if r.NoOp {
		return NothingToLoad
	}
	return fmt.Sprintf("%d documents inserted", r.Inserted)
}

// Loader writes transformed users with a single bulk insert.
type Loader struct {
	dial Dialer
}

// NewLoader creates a loader that acquires a session from dial on every call.
func NewLoader(dial Dialer) *Loader {
	return &Loader{dial: dial}
}

// Load inserts all users in one InsertMany call. It returns either the full
// count or an error wrapping models.ErrStoreWrite, never a partial count.
// An empty input is a no-op, not an error.
func (l *Loader) Load(ctx context.Context, users []models.TransformedUser) (LoadResult, error) {
	if len(users) == 0 {
		slog.InfoContext(ctx, "nothing to load")
		return LoadResult{NoOp: true}, nil
	}

	docs := make([]interface{}, len(users))
	for i, u := range users {
		docs[i] = u
	}

	sess, err := l.dial(ctx)
	if err != nil {
		return LoadResult{}, fmt.Errorf("%w: %w", models.ErrStoreWrite, err)
	}
	defer release(ctx, sess)

	res, err := sess.Collection().InsertMany(ctx, docs)
	if err != nil {
		return LoadResult{}, fmt.Errorf("%w: insert many: %w", models.ErrStoreWrite, err)
	}

	if res == nil || len(res.InsertedIDs) != len(docs) {
		got := 0
		if res != nil {
			got = len(res.InsertedIDs)
		}
		return LoadResult{}, fmt.Errorf("%w: store acknowledged %d of %d documents", models.ErrStoreWrite, got, len(docs))
	}

	slog.InfoContext(ctx, "load complete", "inserted", len(res.InsertedIDs))
	return LoadResult{Inserted: len(res.InsertedIDs)}, nil
}

// release closes a session even when ctx has already been cancelled.
func release(ctx context.Context, sess Session) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := sess.Close(ctx); err != nil {
		slog.WarnContext(ctx, "failed to close store session", "error", err)
	}
}
