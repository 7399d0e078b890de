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

// Package api exposes the pipeline over HTTP: a welcome route, a route that
// triggers a run, a read-back of stored users, run history and a health
// check.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/robynetl/pipeline/internal/models"
	"github.com/robynetl/pipeline/internal/pipeline"
)

// WelcomeMessage is served on GET /.
const WelcomeMessage = "Welcome to the ETL API! POST /run-pipeline to start a run."

// Runner triggers a single pipeline run.
type Runner interface {
	Run(ctx context.Context) (*models.PipelineResult, error)
}

// UserLister reads back stored documents.
type UserLister interface {
	List(ctx context.Context, limit int) ([]bson.M, error)
}

// RunHistory lists recent runs.
type RunHistory interface {
	Recent(ctx context.Context, limit int) ([]pipeline.RunRecord, error)
}

// HealthCheck is one dependency probed by GET /health.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// HandlerConfig holds the dependencies of a Handler. History may be nil.
type HandlerConfig struct {
	Runner     Runner
	Users      UserLister
	UsersLimit int
	History    RunHistory
	Checks     []HealthCheck
}

// Handler serves the HTTP routes.
type Handler struct {
	runner     Runner
	users      UserLister
	usersLimit int
	history    RunHistory
	checks     []HealthCheck
}

// NewHandler creates the route handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		runner:     cfg.Runner,
		users:      cfg.Users,
		usersLimit: cfg.UsersLimit,
		history:    cfg.History,
		checks:     cfg.Checks,
	}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.Welcome)
	r.POST("/run-pipeline", h.RunPipeline)
	r.GET("/users", h.ListUsers)
	r.GET("/runs", h.ListRuns)
	r.GET("/health", h.Health)
}

// Welcome tells callers how to start a run.
func (h *Handler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, WelcomeMessage)
}

// RunPipeline runs the pipeline once and reports the result. Failures are
// converted into an error-shaped JSON body.
func (h *Handler) RunPipeline(c *gin.Context) {
	// A run that has started is allowed to finish even if the client
	// goes away.
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.runner.Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "pipeline run request failed", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:  models.StatusError,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListUsers returns a small page of stored documents.
func (h *Handler) ListUsers(c *gin.Context) {
	docs, err := h.users.List(c.Request.Context(), h.usersLimit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "list users failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, docs)
}

// ListRuns returns recent run history when it is enabled.
func (h *Handler) ListRuns(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run history is not enabled"})
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	runs, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "list runs failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// Health pings every configured dependency.
func (h *Handler) Health(c *gin.Context) {
	for _, check := range h.checks {
		if err := check.Ping(c.Request.Context()); err != nil {
			slog.WarnContext(c.Request.Context(), "health check failed", "dependency", check.Name, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"failed": check.Name,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
