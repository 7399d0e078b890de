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

// Package queue publishes finished-run events to a Redis list so that
// downstream consumers can react to new documents without polling the store.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/robynetl/pipeline/internal/pipeline"
)

// DefaultQueue is the Redis list run events are pushed to.
const DefaultQueue = "etl:runs"

// EventRunFinished is the type of every event this package publishes.
const EventRunFinished = "pipeline.run.finished"

// Client is the subset of *redis.Client the publisher uses.
type Client interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Publisher pushes run events to Redis. It implements pipeline.Observer.
type Publisher struct {
	rdb       Client
	queueName string
}

// NewPublisher creates a new Redis publisher targeting the specified queue.
func NewPublisher(rdb Client, queueName string) *Publisher {
	if queueName == "" {
		queueName = DefaultQueue
	}
	return &Publisher{
		rdb:       rdb,
		queueName: queueName,
	}
}

// RunEvent is the JSON message pushed for each finished run.
type RunEvent struct {
	ID        string             `json:"id"`
	Type      string             `json:"type"`
	EmittedAt string             `json:"emitted_at"`
	Run       pipeline.RunRecord `json:"run"`
}

// RunFinished serialises the run record and LPUSHes it onto the queue.
func (p *Publisher) RunFinished(ctx context.Context, rec pipeline.RunRecord) error {
	event := RunEvent{
		ID:        uuid.New().String(),
		Type:      EventRunFinished,
		EmittedAt: time.Now().UTC().Format(time.RFC3339),
		Run:       rec,
	}

	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}

	if err := p.rdb.LPush(ctx, p.queueName, string(msg)).Err(); err != nil {
		return fmt.Errorf("redis LPUSH: %w", err)
	}

	slog.InfoContext(ctx, "published run event",
		"event_id", event.ID,
		"status", rec.Status,
		"queue", p.queueName,
	)
	return nil
}

// Ping checks the Redis connection.
func (p *Publisher) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.rdb.Ping(ctx).Err()
}
