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
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Geo holds string-encoded coordinates as published by the source. Extra
// carries any further string-valued keys of the geo object.
type Geo struct {
	Lat   string            `json:"lat"`
	Lng   string            `json:"lng"`
	Extra map[string]string `json:"-"`
}

// Fields returns the geo object as a flat string-keyed mapping.
func (g Geo) Fields() map[string]string {
	m := make(map[string]string, len(g.Extra)+2)
	for k, v := range g.Extra {
		m[k] = v
	}
	m["lat"] = g.Lat
	m["lng"] = g.Lng
	return m
}

// Address is the postal address of a source user.
type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     Geo    `json:"geo"`
}

// Company describes the employer of a source user.
type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

// RawUser is one element of the remote user list, after validation.
// Unknown fields in the source payload are ignored.
type RawUser struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Address  Address `json:"address"`
	Phone    string  `json:"phone"`
	Website  string  `json:"website"`
	Company  Company `json:"company"`
}

// The wire types use pointers so that a missing field can be told apart
// from a zero value.
type wireAddress struct {
	Street  *string                    `json:"street"`
	Suite   *string                    `json:"suite"`
	City    *string                    `json:"city"`
	Zipcode *string                    `json:"zipcode"`
	Geo     map[string]json.RawMessage `json:"geo"`
}

type wireCompany struct {
	Name        *string `json:"name"`
	CatchPhrase *string `json:"catchPhrase"`
	BS          *string `json:"bs"`
}

type wireUser struct {
	ID       json.RawMessage `json:"id"`
	Name     *string         `json:"name"`
	Username *string         `json:"username"`
	Email    *string         `json:"email"`
	Address  *wireAddress    `json:"address"`
	Phone    *string         `json:"phone"`
	Website  *string         `json:"website"`
	Company  *wireCompany    `json:"company"`
}

// DecodeRawUser parses and validates a single source element.
func DecodeRawUser(data json.RawMessage) Checked[RawUser] {
	var w wireUser
	if err := json.Unmarshal(data, &w); err != nil {
		return Invalid[RawUser](fmt.Sprintf("decode: %v", err))
	}

	var missing []string
	need := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}

	need("id", w.ID != nil && !bytes.Equal(w.ID, []byte("null")))
	need("name", w.Name != nil)
	need("username", w.Username != nil)
	need("email", w.Email != nil)
	need("phone", w.Phone != nil)
	need("website", w.Website != nil)
	need("address", w.Address != nil)
	if w.Address != nil {
		need("address.street", w.Address.Street != nil)
		need("address.suite", w.Address.Suite != nil)
		need("address.city", w.Address.City != nil)
		need("address.zipcode", w.Address.Zipcode != nil)
		need("address.geo", w.Address.Geo != nil)
		if w.Address.Geo != nil {
			_, hasLat := w.Address.Geo["lat"]
			_, hasLng := w.Address.Geo["lng"]
			need("address.geo.lat", hasLat)
			need("address.geo.lng", hasLng)
		}
	}
	need("company", w.Company != nil)
	if w.Company != nil {
		need("company.name", w.Company.Name != nil)
		need("company.catchPhrase", w.Company.CatchPhrase != nil)
		need("company.bs", w.Company.BS != nil)
	}
	if len(missing) > 0 {
		return Invalid[RawUser]("missing required field(s): " + strings.Join(missing, ", "))
	}

	id, err := decodeID(w.ID)
	if err != nil {
		return Invalid[RawUser](fmt.Sprintf("decode id: %v", err))
	}
	geo, err := decodeGeo(w.Address.Geo)
	if err != nil {
		return Invalid[RawUser](fmt.Sprintf("decode address.geo: %v", err))
	}

	u := RawUser{
		ID:       id,
		Name:     *w.Name,
		Username: *w.Username,
		Email:    *w.Email,
		Phone:    *w.Phone,
		Website:  *w.Website,
		Address: Address{
			Street:  *w.Address.Street,
			Suite:   *w.Address.Suite,
			City:    *w.Address.City,
			Zipcode: *w.Address.Zipcode,
			Geo:     geo,
		},
		Company: Company{
			Name:        *w.Company.Name,
			CatchPhrase: *w.Company.CatchPhrase,
			BS:          *w.Company.BS,
		},
	}
	return u.Check()
}

// decodeID accepts a JSON number with an integral value, so 1 and 1.0 are
// both id 1. Strings are not coerced.
func decodeID(raw json.RawMessage) (int64, error) {
	lit := string(bytes.TrimSpace(raw))
	if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return n, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("not a number: %s", lit)
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("not an integer: %s", lit)
	}
	return int64(f), nil
}

func decodeGeo(fields map[string]json.RawMessage) (Geo, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var g Geo
	for _, k := range keys {
		var v string
		raw := bytes.TrimSpace(fields[k])
		if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &v) != nil {
			return Geo{}, fmt.Errorf("%s must be a string", k)
		}
		switch k {
		case "lat":
			g.Lat = v
		case "lng":
			g.Lng = v
		default:
			if g.Extra == nil {
				g.Extra = make(map[string]string)
			}
			g.Extra[k] = v
		}
	}
	return g, nil
}

// Check validates the field-level constraints of a raw user.
func (u RawUser) Check() Checked[RawUser] {
	switch {
	case u.ID <= 0:
		return Invalid[RawUser](fmt.Sprintf("id must be positive, got %d", u.ID))
	case strings.TrimSpace(u.Name) == "":
		return Invalid[RawUser]("name must not be empty")
	case !ValidEmail(u.Email):
		return Invalid[RawUser](fmt.Sprintf("malformed email %q", u.Email))
	}
	return Valid(u)
}
