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

// Package app wires configuration into a ready-to-run pipeline and its
// optional side stores. Both the HTTP server and the run-once command use
// it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/robynetl/pipeline/internal/api"
	"github.com/robynetl/pipeline/internal/config"
	"github.com/robynetl/pipeline/internal/history"
	"github.com/robynetl/pipeline/internal/pipeline"
	"github.com/robynetl/pipeline/internal/queue"
	"github.com/robynetl/pipeline/internal/source"
	"github.com/robynetl/pipeline/internal/store"
	"github.com/robynetl/pipeline/internal/transform"
)

// App holds the wired components.
type App struct {
	Pipeline *pipeline.Pipeline
	Reader   *store.Reader
	History  *history.Store // nil when DATABASE_URL is unset
	Checks   []api.HealthCheck

	closers []func()
}

// New connects the optional Postgres and Redis dependencies and builds the
// pipeline. The document store is not contacted here; every load and list
// dials its own session.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	dial := store.MongoDialer(store.Target{
		URI:        cfg.Store.URI,
		Database:   cfg.Store.Database,
		Collection: cfg.Store.Collection,
		Timeout:    cfg.Store.Timeout,
	})
	a.Reader = store.NewReader(dial)
	a.Checks = append(a.Checks, api.HealthCheck{Name: "mongo", Ping: a.Reader.Ping})

	var observers []pipeline.Observer

	if cfg.DatabaseURL != "" {
		pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create Postgres pool: %w", err)
		}
		a.closers = append(a.closers, pgPool.Close)

		if err := pgPool.Ping(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		slog.Info("connected to PostgreSQL")

		a.History, err = history.NewStore(ctx, pgPool)
		if err != nil {
			a.Close()
			return nil, err
		}
		observers = append(observers, a.History)
		a.Checks = append(a.Checks, api.HealthCheck{Name: "postgres", Ping: pgPool.Ping})
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opt)
		a.closers = append(a.closers, func() { rdb.Close() })

		publisher := queue.NewPublisher(rdb, cfg.EventsQueue)
		if err := publisher.Ping(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to Redis: %w", err)
		}
		slog.Info("connected to Redis", "queue", cfg.EventsQueue)

		observers = append(observers, publisher)
		a.Checks = append(a.Checks, api.HealthCheck{Name: "redis", Ping: publisher.Ping})
	}

	a.Pipeline = pipeline.New(pipeline.Config{
		Extractor:   source.NewExtractor(sourceClient(ctx, cfg.Source), cfg.Source.URL, cfg.Source.Timeout),
		Transformer: transform.New(cfg.PipelineSource),
		Loader:      store.NewLoader(dial),
		Observers:   observers,
	})

	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// sourceClient returns an HTTP client for the source, authenticated with
// OAuth2 client credentials when configured.
func sourceClient(ctx context.Context, src config.SourceConfig) *http.Client {
	if !src.AuthEnabled() {
		return &http.Client{}
	}

	creds := &clientcredentials.Config{
		ClientID:     src.ClientID,
		ClientSecret: src.ClientSecret,
		TokenURL:     src.TokenURL,
		Scopes:       src.Scopes,
	}
	slog.Info("source requests use OAuth2 client credentials", "token_url", src.TokenURL)

	// The token exchange runs on its own context, so it gets its own bound.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: src.Timeout})
	c := creds.Client(ctx)
	c.Timeout = src.Timeout
	return c
}
