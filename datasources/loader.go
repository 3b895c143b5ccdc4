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

// Package datasources loads collection records from external sources (CSV
// files, SQLite databases) and serves them to grids.
package datasources

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ecollection/grid/core/collection"
	"github.com/ecollection/grid/core/filters"
	"github.com/ecollection/grid/core/schema"
)

// ListSeparator separates the items of a List field within one cell.
const ListSeparator = "|"

// Loader is the interface that record loaders implement.
type Loader interface {
	// SourceType returns the type identifier used in config (e.g. "csv").
	SourceType() string

	// Load reads the records described by config. Values are converted
	// according to fields.
	Load(config map[string]string, fields schema.Schema) ([]*collection.Document, error)
}

// DocumentData converts one flat row into a nested document. Columns are
// dotted attribute paths; each value is converted to the kind of its field.
// Columns of List fields hold one value per item, separated by ListSeparator.
// Columns that match no field are kept as text.
func DocumentData(columns, values []string, fields schema.Schema) (map[string]any, error) {
	data := make(map[string]any)
	raw := make(map[string]string, len(columns))
	for i, col := range columns {
		if i < len(values) {
			raw[col] = values[i]
		}
	}
	resolved := multiSchemaSelectors(fields, "", raw)

	for i, col := range columns {
		if i >= len(values) || values[i] == "" {
			continue
		}
		if list, rest, ok := listPrefix(fields, col, resolved); ok {
			items := strings.Split(values[i], ListSeparator)
			sub, _ := list.Model.Lookup(rest, nil)
			if err := setListValues(data, col, rest, items, sub.Kind); err != nil {
				return nil, err
			}
			continue
		}
		kind := schema.Text
		if f, ok := fields.Lookup(col, resolved); ok {
			kind = f.Kind
		}
		v, err := convertValue(kind, values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		setPath(data, strings.Split(col, "."), v)
	}
	return data, nil
}

// multiSchemaSelectors maps each MultiSchema field path to the value of its
// selector attribute.
func multiSchemaSelectors(fields schema.Schema, prefix string, values map[string]string) map[string]string {
	resolved := make(map[string]string)
	for _, f := range fields {
		switch f.Kind {
		case schema.NestedModel:
			for k, v := range multiSchemaSelectors(f.Model, prefix+f.ID+".", values) {
				resolved[k] = v
			}
		case schema.MultiSchema:
			resolved[prefix+f.ID] = values[prefix+f.Selector]
		}
	}
	return resolved
}

// listPrefix finds the List field a column belongs to, if any.
func listPrefix(fields schema.Schema, col string, selectors map[string]string) (schema.Field, string, bool) {
	parts := strings.Split(col, ".")
	for i := 1; i < len(parts); i++ {
		f, ok := fields.Lookup(strings.Join(parts[:i], "."), selectors)
		if ok && f.Kind == schema.List {
			return f, strings.Join(parts[i:], "."), true
		}
	}
	return schema.Field{}, "", false
}

func setListValues(data map[string]any, col, rest string, items []string, kind schema.Kind) error {
	listPath := strings.Split(strings.TrimSuffix(col, "."+rest), ".")
	var list []any
	if existing, ok := getPath(data, listPath).([]any); ok {
		list = existing
	}
	for len(list) < len(items) {
		list = append(list, map[string]any{})
	}
	for j, item := range items {
		if item == "" {
			continue
		}
		v, err := convertValue(kind, strings.TrimSpace(item))
		if err != nil {
			return fmt.Errorf("column %s item %d: %w", col, j+1, err)
		}
		setPath(list[j].(map[string]any), strings.Split(rest, "."), v)
	}
	setPath(data, listPath, list)
	return nil
}

func convertValue(kind schema.Kind, raw string) (any, error) {
	switch kind {
	case schema.Number:
		v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", filters.ErrInvalidNumber, raw)
		}
		return v, nil
	case schema.Boolean:
		return strconv.ParseBool(raw)
	case schema.Date:
		if _, err := filters.ParseDate(raw); err == nil {
			return raw, nil
		}
		return filters.Submit(kind, raw)
	default:
		return raw, nil
	}
}

func setPath(data map[string]any, path []string, v any) {
	for _, key := range path[:len(path)-1] {
		next, ok := data[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			data[key] = next
		}
		data = next
	}
	data[path[len(path)-1]] = v
}

func getPath(data map[string]any, path []string) any {
	var cur any = data
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}
