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
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leanneJSON = `{
	"id": 1,
	"name": "Leanne Graham",
	"username": "Bret",
	"email": "Sincere@april.biz",
	"address": {
		"street": "Kulas Light",
		"suite": "Apt. 556",
		"city": "Gwenborough",
		"zipcode": "92998-3874",
		"geo": {"lat": "-37.3159", "lng": "81.1496"}
	},
	"phone": "1-770-736-8031 x56442",
	"website": "hildegard.org",
	"company": {
		"name": "Romaguera-Crona",
		"catchPhrase": "Multi-layered client-server neural-net",
		"bs": "harness real-time e-markets"
	}
}`

// mutate decodes leanneJSON into a generic map, applies fn and re-encodes it.
func mutate(t *testing.T, fn func(m map[string]any)) json.RawMessage {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(leanneJSON), &m))
	fn(m)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return data
}

func TestDecodeRawUser_Valid(t *testing.T) {
	c := DecodeRawUser(json.RawMessage(leanneJSON))
	require.True(t, c.OK(), c.Reason)

	u := c.Record
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "Leanne Graham", u.Name)
	assert.Equal(t, "Sincere@april.biz", u.Email)
	assert.Equal(t, "Gwenborough", u.Address.City)
	assert.Equal(t, Geo{Lat: "-37.3159", Lng: "81.1496"}, u.Address.Geo)
	assert.Equal(t, "Romaguera-Crona", u.Company.Name)
}

func TestDecodeRawUser_IgnoresExtraFields(t *testing.T) {
	data := mutate(t, func(m map[string]any) {
		m["favourite_colour"] = "teal"
		m["address"].(map[string]any)["country"] = "NZ"
	})
	c := DecodeRawUser(data)
	assert.True(t, c.OK(), c.Reason)
}

func TestDecodeRawUser_IntegralFloatID(t *testing.T) {
	data := []byte(strings.Replace(leanneJSON, `"id": 1,`, `"id": 1.0,`, 1))
	c := DecodeRawUser(data)
	require.True(t, c.OK(), c.Reason)
	assert.Equal(t, int64(1), c.Record.ID)
}

func TestDecodeRawUser_GeoExtraKeys(t *testing.T) {
	data := mutate(t, func(m map[string]any) {
		m["address"].(map[string]any)["geo"].(map[string]any)["alt"] = "120"
	})
	c := DecodeRawUser(data)
	require.True(t, c.OK(), c.Reason)
	assert.Equal(t, map[string]string{"alt": "120"}, c.Record.Address.Geo.Extra)
	assert.Equal(t, map[string]string{"lat": "-37.3159", "lng": "81.1496", "alt": "120"}, c.Record.Address.Geo.Fields())
}

func TestDecodeRawUser_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		data   json.RawMessage
		reason string
	}{
		{
			name:   "missing email",
			data:   mutate(t, func(m map[string]any) { delete(m, "email") }),
			reason: "email",
		},
		{
			name:   "missing nested geo",
			data:   mutate(t, func(m map[string]any) { delete(m["address"].(map[string]any), "geo") }),
			reason: "address.geo",
		},
		{
			name:   "missing company name",
			data:   mutate(t, func(m map[string]any) { delete(m["company"].(map[string]any), "name") }),
			reason: "company.name",
		},
		{
			name:   "malformed email",
			data:   mutate(t, func(m map[string]any) { m["email"] = "not-an-email" }),
			reason: "malformed email",
		},
		{
			name:   "id wrong type",
			data:   mutate(t, func(m map[string]any) { m["id"] = "one" }),
			reason: "decode",
		},
		{
			name:   "fractional id",
			data:   mutate(t, func(m map[string]any) { m["id"] = 1.5 }),
			reason: "not an integer",
		},
		{
			name:   "null id",
			data:   mutate(t, func(m map[string]any) { m["id"] = nil }),
			reason: "missing required field(s): id",
		},
		{
			name:   "non-string geo value",
			data:   mutate(t, func(m map[string]any) { m["address"].(map[string]any)["geo"].(map[string]any)["alt"] = 12 }),
			reason: "alt must be a string",
		},
		{
			name:   "non-positive id",
			data:   mutate(t, func(m map[string]any) { m["id"] = 0 }),
			reason: "id must be positive",
		},
		{
			name:   "empty name",
			data:   mutate(t, func(m map[string]any) { m["name"] = "  " }),
			reason: "name must not be empty",
		},
		{
			name:   "not an object",
			data:   json.RawMessage(`"just a string"`),
			reason: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DecodeRawUser(tt.data)
			assert.False(t, c.OK())
			assert.Contains(t, c.Reason, tt.reason)
		})
	}
}

func TestTransformedUser_Check(t *testing.T) {
	good := TransformedUser{
		ExternalID:     7,
		FullName:       "KURTIS WEISSNAT",
		Email:          "telly.hoeger@billy.biz",
		Location:       Location{City: "Howemouth", Geo: map[string]string{"lat": "24.8918", "lng": "21.8984"}},
		CompanyName:    "Johns Group",
		PipelineSource: DefaultPipelineSource,
	}
	require.True(t, good.Check().OK())

	lowerName := good
	lowerName.FullName = "Kurtis Weissnat"
	assert.Contains(t, lowerName.Check().Reason, "upper-case")

	upperEmail := good
	upperEmail.Email = "Telly.Hoeger@billy.biz"
	assert.Contains(t, upperEmail.Check().Reason, "lower-case")

	badEmail := good
	badEmail.Email = "telly.hoeger"
	assert.Contains(t, badEmail.Check().Reason, "malformed email")

	noSource := good
	noSource.PipelineSource = ""
	assert.False(t, noSource.Check().OK())
}

func TestInvalid_NeverEmptyReason(t *testing.T) {
	c := Invalid[RawUser]("")
	assert.False(t, c.OK())
	assert.NotEmpty(t, c.Reason)
}
