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

package collection

import (
	"maps"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Document is a Record backed by a decoded JSON-like document. Data must
// not be modified once attributes have been read.
type Document struct {
	Key   string
	Data  map[string]any
	Links map[string]string

	flatOnce sync.Once
	flat     map[string]string
}

// NewDocument creates a document with a "view" action pointing at base/key.
func NewDocument(key string, data map[string]any, base string) *Document {
	return &Document{
		Key:   key,
		Data:  data,
		Links: map[string]string{"view": strings.TrimSuffix(base, "/") + "/" + key},
	}
}

func (d *Document) ID() string { return d.Key }

// Attr returns the flattened value at path.
func (d *Document) Attr(path string) string {
	return d.attrs()[path]
}

// Actions returns a copy of the document links.
func (d *Document) Actions() map[string]string {
	actions := make(map[string]string, len(d.Links))
	for name, link := range d.Links {
		actions[name] = link
	}
	return actions
}

// FlatAttrs flattens nested objects into dotted keys. The values of a list
// of objects are joined per key, so that "tags.label" holds every label.
func (d *Document) FlatAttrs() map[string]string {
	return maps.Clone(d.attrs())
}

// attrs flattens the document on first use.
func (d *Document) attrs() map[string]string {
	d.flatOnce.Do(func() {
		d.flat = make(map[string]string)
		flatten(d.flat, "", d.Data)
	})
	return d.flat
}

func flatten(flat map[string]string, prefix string, data map[string]any) {
	for key, value := range data {
		path := prefix + key
		switch v := value.(type) {
		case map[string]any:
			flatten(flat, path+".", v)
		case []any:
			flattenList(flat, path, v)
		default:
			flat[path] = formatValue(v)
		}
	}
}

func flattenList(flat map[string]string, path string, items []any) {
	joined := make(map[string][]string)
	var keys []string
	var scalars []string
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			scalars = append(scalars, formatValue(item))
			continue
		}
		sub := make(map[string]string)
		flatten(sub, path+".", obj)
		for k, v := range sub {
			if _, seen := joined[k]; !seen {
				keys = append(keys, k)
			}
			joined[k] = append(joined[k], v)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		flat[k] = strings.Join(joined[k], ", ")
	}
	if len(scalars) > 0 {
		flat[path] = strings.Join(scalars, ", ")
	}
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}
