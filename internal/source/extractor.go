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

// Package source extracts the raw user list from the remote HTTP source.
// Elements that fail validation are logged and dropped; only transport,
// status and framing problems abort the extraction.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/robynetl/pipeline/internal/models"
)

// DefaultURL is the public user list the pipeline was built against.
const DefaultURL = "https://jsonplaceholder.typicode.com/users"

// maxBodyBytes caps how much of the response body is read.
const maxBodyBytes = 32 << 20

// Extraction is the validated output of one fetch.
type Extraction struct {
	Users    []models.RawUser
	Received int // elements in the source array, valid or not
}

// Dropped returns how many source elements failed validation.
func (e Extraction) Dropped() int {
	return e.Received - len(e.Users)
}

// Extractor fetches and validates the remote user list.
type Extractor struct {
	httpClient *http.Client
	url        string
	timeout    time.Duration
}

// NewExtractor creates an extractor for the given endpoint. A zero timeout
// leaves the deadline to the caller's context and the HTTP client.
func NewExtractor(httpClient *http.Client, url string, timeout time.Duration) *Extractor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if url == "" {
		url = DefaultURL
	}
	return &Extractor{
		httpClient: httpClient,
		url:        url,
		timeout:    timeout,
	}
}

// Extract performs a single GET against the source and returns the elements
// that pass validation, in response order. Any error wraps
// models.ErrSourceUnavailable.
func (e *Extractor) Extract(ctx context.Context) (*Extraction, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	slog.InfoContext(ctx, "extracting users", "url", e.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", models.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch users: %w", models.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: source returned HTTP %d", models.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", models.ErrSourceUnavailable, err)
	}

	elements, err := decodeArray(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrSourceUnavailable, err)
	}

	out := &Extraction{
		Users:    make([]models.RawUser, 0, len(elements)),
		Received: len(elements),
	}
	for i, raw := range elements {
		checked := models.DecodeRawUser(raw)
		if !checked.OK() {
			slog.WarnContext(ctx, "dropping invalid source record",
				"index", i,
				"reason", checked.Reason,
			)
			continue
		}
		out.Users = append(out.Users, checked.Record)
	}

	slog.InfoContext(ctx, "extraction complete",
		"received", out.Received,
		"valid", len(out.Users),
		"dropped", out.Dropped(),
	)

	return out, nil
}

// decodeArray splits a JSON array body into its undecoded elements.
// A JSON null is rejected along with any other non-array value.
func decodeArray(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("response body is not a JSON array")
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, fmt.Errorf("decode users response: %w", err)
	}
	return elements, nil
}
