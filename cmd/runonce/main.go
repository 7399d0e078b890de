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

// Robyn ETL: Run-once Command
//
// Performs a single pipeline run with the same configuration as the HTTP
// service and prints the result as JSON. Exits non-zero when the run fails.
//
// Usage:
//
//	go run ./cmd/runonce/
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robynetl/pipeline/internal/app"
	"github.com/robynetl/pipeline/internal/config"
	"github.com/robynetl/pipeline/internal/logging"
)

func main() {
	// Logs go to stderr so stdout carries only the result.
	slog.SetDefault(logging.New(os.Stderr, "info"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise pipeline", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	result, err := a.Pipeline.Run(ctx)
	if err != nil {
		slog.Error("pipeline run failed", "error", err)
		a.Close()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		slog.Error("failed to write result", "error", err)
		a.Close()
		os.Exit(1)
	}
}
