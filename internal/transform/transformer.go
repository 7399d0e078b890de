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

// Package transform reshapes validated source users into the flat documents
// stored by the loader. It performs no network or storage I/O.
package transform

import (
	"context"
	"log/slog"
	"strings"

	"github.com/robynetl/pipeline/internal/models"
)

// Transformer maps raw users onto the target schema.
type Transformer struct {
	source string
}

// New returns a transformer that tags every document with source.
// An empty source falls back to models.DefaultPipelineSource.
func New(source string) *Transformer {
	if source == "" {
		source = models.DefaultPipelineSource
	}
	return &Transformer{source: source}
}

// Map applies the field transforms to a single user without validating the
// result.
func (t *Transformer) Map(u models.RawUser) models.TransformedUser {
	return models.TransformedUser{
		ExternalID: u.ID,
		FullName:   strings.ToUpper(u.Name),
		Email:      strings.ToLower(u.Email),
		Location: models.Location{
			City: u.Address.City,
			Geo:  u.Address.Geo.Fields(),
		},
		CompanyName:    u.Company.Name,
		PipelineSource: t.source,
	}
}

// Transform maps every user and keeps those whose result satisfies the
// target invariants. Input order is preserved; rejected records are logged
// and skipped.
func (t *Transformer) Transform(ctx context.Context, users []models.RawUser) []models.TransformedUser {
	out := make([]models.TransformedUser, 0, len(users))
	for _, u := range users {
		checked := t.Map(u).Check()
		if !checked.OK() {
			slog.WarnContext(ctx, "dropping record that failed transformation",
				"external_id", u.ID,
				"reason", checked.Reason,
			)
			continue
		}
		out = append(out, checked.Record)
	}

	slog.InfoContext(ctx, "transformation complete",
		"input", len(users),
		"output", len(out),
	)
	return out
}
