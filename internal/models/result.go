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

package models

import "errors"

// Fatal error kinds. Anything wrapping one of these aborts a pipeline run.
var (
	// ErrSourceUnavailable covers transport failures, non-200 responses and
	// bodies that are not a JSON array.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrStoreWrite covers connection, authentication and insert failures
	// reported by the document store.
	ErrStoreWrite = errors.New("store write failed")
)

// Run status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// PipelineResult summarises one successful pipeline run.
type PipelineResult struct {
	Status        string `json:"status"`
	InsertedCount int    `json:"inserted_count"`
	Message       string `json:"message,omitempty"`
	RunID         string `json:"run_id,omitempty"`
	Extracted     int    `json:"extracted,omitempty"`
	Dropped       int    `json:"dropped,omitempty"`
}

// ErrorResponse is the body returned to HTTP callers when a run fails.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
