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

package views

import (
	"github.com/google/safehtml"

	"github.com/ecollection/grid/core/collection"
	"github.com/ecollection/grid/core/headers"
	"github.com/ecollection/grid/core/schema"
)

// RecordViewModel is the detail page of one record
type RecordViewModel struct {
	Title   string
	ID      string
	GridURL safehtml.URL
	Fields  []RecordField
}

// RecordField is one attribute of the record page
type RecordField struct {
	Path  string
	Title string // titles of the enclosing fields joined with " / "
	Value string
}

// BuildRecordViewModel lists every attribute of r, hidden columns included.
// Multi-schema fields show the sub-schema picked by the record's selector.
func BuildRecordViewModel(verboseName string, fields schema.Schema, r collection.Record, gridURL string) RecordViewModel {
	return RecordViewModel{
		Title:   verboseName + " " + r.ID(),
		ID:      r.ID(),
		GridURL: safehtml.URLSanitized(gridURL),
		Fields:  recordFields(nil, fields, "", "", r),
	}
}

func recordFields(out []RecordField, fields schema.Schema, prefix, titlePrefix string, r collection.Record) []RecordField {
	for _, f := range fields {
		title := f.Title
		if title == "" {
			title = f.ID
		}
		title = titlePrefix + title
		path := prefix + f.ID

		if !f.Kind.Composite() {
			value := r.Attr(path)
			if f.Kind == schema.Date {
				if shown := headers.DisplayDate(value); shown != "" {
					value = shown
				}
			}
			out = append(out, RecordField{Path: path, Title: title, Value: value})
			continue
		}

		sub := f.Model
		if f.Kind == schema.MultiSchema {
			sub, _ = f.SubSchema(r.Attr(prefix + f.Selector))
		}
		out = recordFields(out, sub, path+".", title+" / ", r)
	}
	return out
}
