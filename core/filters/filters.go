/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The eCollection Grid Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package filters

import (
	"sort"
	"strings"
)

// Set maps header ids to filter values. A Set is never modified in place:
// With and Without return new sets.
type Set struct {
	values map[string]string
}

// Parse rebuilds a Set from "id:value" tokens. Each token is split on its
// first colon only, so values may themselves contain colons. A token
// without a colon is an id with an empty value. Later tokens win.
func Parse(tokens []string) Set {
	values := make(map[string]string, len(tokens))
	for _, token := range tokens {
		id, value, _ := strings.Cut(token, ":")
		values[id] = value
	}
	return Set{values: values}
}

// FromMap creates a Set holding a copy of m.
func FromMap(m map[string]string) Set {
	values := make(map[string]string, len(m))
	for id, v := range m {
		values[id] = v
	}
	return Set{values: values}
}

// Tokens serializes the set as "id:value" tokens, sorted by id so that the
// same filters always produce the same URL.
func (s Set) Tokens() []string {
	tokens := make([]string, 0, len(s.values))
	for _, id := range s.IDs() {
		tokens = append(tokens, id+":"+s.values[id])
	}
	return tokens
}

// IDs returns the filtered header ids in ascending order.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s.values))
	for id := range s.values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns the filter value of a header id.
func (s Set) Get(id string) (string, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Len returns the number of filters.
func (s Set) Len() int {
	return len(s.values)
}

// With returns a copy of the set where id is filtered on value. An empty
// value removes the filter.
func (s Set) With(id, value string) Set {
	if value == "" {
		return s.Without(id)
	}
	next := s.Map()
	next[id] = value
	return Set{values: next}
}

// Without returns a copy of the set without a filter on id.
func (s Set) Without(id string) Set {
	next := s.Map()
	delete(next, id)
	return Set{values: next}
}

// Map returns a copy of the filters as a map.
func (s Set) Map() map[string]string {
	m := make(map[string]string, len(s.values))
	for id, v := range s.values {
		m[id] = v
	}
	return m
}

// Equal reports whether both sets hold the same filters.
func (s Set) Equal(other Set) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for id, v := range s.values {
		if ov, ok := other.values[id]; !ok || ov != v {
			return false
		}
	}
	return true
}
