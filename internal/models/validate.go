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

// Package models defines the record shapes that flow through the ETL
// pipeline, together with the validators that decide whether a record may
// continue to the next stage.
//
// Validation never returns an error value. A validator hands back a
// Checked result that either carries the record or the reason it was
// rejected; only the extractor and transformer consume those results.
package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultPipelineSource tags every document written by this service.
const DefaultPipelineSource = "Robyn-ETL"

// Checked is the outcome of validating one record: either the record itself
// or a non-empty Reason describing why it was rejected.
type Checked[T any] struct {
	Record T
	Reason string
}

// OK reports whether the record passed validation.
func (c Checked[T]) OK() bool {
	return c.Reason == ""
}

// Valid wraps a record that passed validation.
func Valid[T any](record T) Checked[T] {
	return Checked[T]{Record: record}
}

// Invalid builds a rejected result. An empty reason is replaced so that a
// rejection can never be mistaken for success.
func Invalid[T any](reason string) Checked[T] {
	if strings.TrimSpace(reason) == "" {
		reason = "invalid record"
	}
	return Checked[T]{Reason: reason}
}

var emailValidator = validator.New()

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	return emailValidator.Var(s, "required,email") == nil
}
