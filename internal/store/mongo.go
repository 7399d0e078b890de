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

// Package store persists transformed users to MongoDB and reads them back.
//
// Every operation acquires its own client through a Dialer and releases it
// before returning, on both success and failure paths. Nothing is pooled
// across calls, so concurrent pipeline runs never share a connection.
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection is the subset of *mongo.Collection the store needs.
type Collection interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Session is one acquired connection to the target collection.
type Session interface {
	Collection() Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Dialer opens a new Session.
type Dialer func(ctx context.Context) (Session, error)

// Target identifies the collection documents are written to.
type Target struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoDialer returns a Dialer that connects a fresh client per call.
func MongoDialer(t Target) Dialer {
	return func(ctx context.Context) (Session, error) {
		opts := options.Client().ApplyURI(t.URI)
		if t.Timeout > 0 {
			opts.SetServerSelectionTimeout(t.Timeout).SetConnectTimeout(t.Timeout)
		}

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}

		return &mongoSession{
			client: client,
			coll:   client.Database(t.Database).Collection(t.Collection),
		}, nil
	}
}

type mongoSession struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func (s *mongoSession) Collection() Collection { return s.coll }

func (s *mongoSession) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *mongoSession) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
