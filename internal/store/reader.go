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

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultListLimit is how many documents List returns when limit <= 0.
const DefaultListLimit = 10

// Reader serves read-only queries against the collection.
type Reader struct {
	dial Dialer
}

// NewReader creates a reader that acquires a session from dial on every call.
func NewReader(dial Dialer) *Reader {
	return &Reader{dial: dial}
}

// List returns up to limit stored documents without the store's _id field.
func (r *Reader) List(ctx context.Context, limit int) ([]bson.M, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	sess, err := r.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer release(ctx, sess)

	opts := options.Find().
		SetProjection(bson.M{"_id": 0}).
		SetLimit(int64(limit))

	cur, err := sess.Collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	docs := make([]bson.M, 0, limit)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	return docs, nil
}

// Ping checks that the store is reachable.
func (r *Reader) Ping(ctx context.Context) error {
	sess, err := r.dial(ctx)
	if err != nil {
		return err
	}
	defer release(ctx, sess)
	return sess.Ping(ctx)
}
