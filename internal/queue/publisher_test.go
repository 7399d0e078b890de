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

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robynetl/pipeline/internal/pipeline"
)

type mockRedis struct {
	pushes  map[string][]string
	pushErr error
	pingErr error
}

func (m *mockRedis) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if m.pushErr != nil {
		cmd.SetErr(m.pushErr)
		return cmd
	}
	if m.pushes == nil {
		m.pushes = map[string][]string{}
	}
	for _, v := range values {
		m.pushes[key] = append(m.pushes[key], v.(string))
	}
	cmd.SetVal(int64(len(m.pushes[key])))
	return cmd
}

func (m *mockRedis) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.pingErr != nil {
		cmd.SetErr(m.pingErr)
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func TestRunFinished_PushesEvent(t *testing.T) {
	rdb := &mockRedis{}
	p := NewPublisher(rdb, "")

	rec := pipeline.RunRecord{
		RunID:     "run-1",
		Status:    "success",
		Inserted:  9,
		StartedAt: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.RunFinished(context.Background(), rec))

	msgs := rdb.pushes[DefaultQueue]
	require.Len(t, msgs, 1)

	var event RunEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0]), &event))
	assert.Equal(t, EventRunFinished, event.Type)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "run-1", event.Run.RunID)
	assert.Equal(t, 9, event.Run.Inserted)
	assert.True(t, rec.StartedAt.Equal(event.Run.StartedAt))
}

func TestRunFinished_CustomQueue(t *testing.T) {
	rdb := &mockRedis{}
	require.NoError(t, NewPublisher(rdb, "custom").RunFinished(context.Background(), pipeline.RunRecord{RunID: "x"}))
	assert.Len(t, rdb.pushes["custom"], 1)
	assert.Empty(t, rdb.pushes[DefaultQueue])
}

func TestRunFinished_PushError(t *testing.T) {
	p := NewPublisher(&mockRedis{pushErr: errors.New("READONLY")}, "")
	err := p.RunFinished(context.Background(), pipeline.RunRecord{RunID: "x"})
	assert.ErrorContains(t, err, "redis LPUSH")
}

func TestPing(t *testing.T) {
	assert.NoError(t, NewPublisher(&mockRedis{}, "").Ping(context.Background()))
	assert.Error(t, NewPublisher(&mockRedis{pingErr: errors.New("dial tcp")}, "").Ping(context.Background()))
}
