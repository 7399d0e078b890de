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

// Robyn ETL: HTTP Service
//
// Entry point for the user ETL service. It:
//  1. Loads configuration from .env, config.yaml and the environment
//  2. Connects to the optional run-history (Postgres) and event (Redis) stores
//  3. Wires extractor, transformer and MongoDB loader into a pipeline
//  4. Serves the welcome, run, users, runs and health routes
//  5. Handles graceful shutdown on SIGTERM/SIGINT
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/robynetl/pipeline/internal/api"
	"github.com/robynetl/pipeline/internal/app"
	"github.com/robynetl/pipeline/internal/config"
	"github.com/robynetl/pipeline/internal/logging"
)

func main() {
	slog.SetDefault(logging.New(os.Stdout, "info"))
	slog.Info("starting ETL service")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.LogLevel))

	slog.Info("configuration loaded",
		"source_url", cfg.Source.URL,
		"database", cfg.Store.Database,
		"collection", cfg.Store.Collection,
		"run_history", cfg.DatabaseURL != "",
		"run_events", cfg.RedisURL != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// --- Wire Pipeline ---
	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise pipeline", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	handlerCfg := api.HandlerConfig{
		Runner:     a.Pipeline,
		Users:      a.Reader,
		UsersLimit: cfg.UsersLimit,
		Checks:     a.Checks,
	}
	if a.History != nil {
		handlerCfg.History = a.History
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewHandler(handlerCfg), cfg.CORSOrigins)

	// --- Serve until signalled ---
	if err := api.Serve(ctx, cfg.Port, router); err != nil {
		slog.Error("server error", "error", err)
		a.Close()
		os.Exit(1)
	}

	slog.Info("ETL service stopped")
}
