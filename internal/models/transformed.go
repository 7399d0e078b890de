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

import (
	"fmt"
	"strings"
)

// Location is the flattened address stored with each document.
type Location struct {
	City string            `json:"city" bson:"city"`
	Geo  map[string]string `json:"geo" bson:"geo"`
}

// TransformedUser is the document persisted to the store.
type TransformedUser struct {
	ExternalID     int64    `json:"external_id" bson:"external_id"`
	FullName       string   `json:"full_name" bson:"full_name"`
	Email          string   `json:"email" bson:"email"`
	Location       Location `json:"location" bson:"location"`
	CompanyName    string   `json:"company_name" bson:"company_name"`
	PipelineSource string   `json:"pipeline_source" bson:"pipeline_source"`
}

// Check validates the invariants of a transformed user:
// full_name is non-empty and upper-case, email is lower-case and still a
// valid address.
func (u TransformedUser) Check() Checked[TransformedUser] {
	switch {
	case u.ExternalID <= 0:
		return Invalid[TransformedUser](fmt.Sprintf("external_id must be positive, got %d", u.ExternalID))
	case u.FullName == "":
		return Invalid[TransformedUser]("full_name must not be empty")
	case strings.ToUpper(u.FullName) != u.FullName:
		return Invalid[TransformedUser](fmt.Sprintf("full_name %q is not upper-case", u.FullName))
	case strings.ToLower(u.Email) != u.Email:
		return Invalid[TransformedUser](fmt.Sprintf("email %q is not lower-case", u.Email))
	case !ValidEmail(u.Email):
		return Invalid[TransformedUser](fmt.Sprintf("malformed email %q", u.Email))
	case u.PipelineSource == "":
		return Invalid[TransformedUser]("pipeline_source must not be empty")
	}
	return Valid(u)
}
