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

package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a schema names a field type that the grid
// does not know how to display.
var ErrUnknownKind = errors.New("unknown field type")

// Kind is the type of a schema field.
type Kind int

const (
	Text Kind = iota
	Number
	Boolean
	Date
	NestedModel
	List
	MultiSchema
)

var kindNames = map[Kind]string{
	Text:        "Text",
	Number:      "Number",
	Boolean:     "Boolean",
	Date:        "Date",
	NestedModel: "NestedModel",
	List:        "List",
	MultiSchema: "MultiSchema",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a type name as written in schema files to a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Filterable reports whether headers of this kind carry a filter form.
func (k Kind) Filterable() bool {
	switch k {
	case Text, Number, Boolean, Date:
		return true
	}
	return false
}

// Composite reports whether fields of this kind have sub-fields.
func (k Kind) Composite() bool {
	return k == NestedModel || k == List || k == MultiSchema
}

// Field describes one field of a record.
// Model is only set for NestedModel and List fields; Schemas and Selector
// only for MultiSchema fields.
type Field struct {
	ID       string // must not contain ':' nor '.'
	Title    string
	Kind     Kind
	Sortable bool
	Main     *bool // nil means true

	Model Schema

	Schemas  map[string]Schema
	Selector string // sibling attribute naming the active sub-schema
}

// IsMain reports whether the field is shown as a grid column.
func (f Field) IsMain() bool {
	return f.Main == nil || *f.Main
}

// SubSchema returns the sub-schema of a MultiSchema field for the given
// discriminant.
func (f Field) SubSchema(selector string) (Schema, bool) {
	if f.Kind != MultiSchema || selector == "" {
		return nil, false
	}
	s, ok := f.Schemas[selector]
	return s, ok
}

// Schema is the ordered list of fields of a record.
type Schema []Field

// Field returns the field with the given id.
func (s Schema) Field(id string) (Field, bool) {
	for _, f := range s {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Lookup resolves a dotted path such as "location.city" to the field it
// designates. selectors maps the dotted path of MultiSchema fields to the
// discriminant used to pick their sub-schema.
func (s Schema) Lookup(path string, selectors map[string]string) (Field, bool) {
	current := s
	prefix := ""
	for {
		id, rest, nested := strings.Cut(path, ".")
		f, ok := current.Field(id)
		if !ok {
			return Field{}, false
		}
		if !nested {
			return f, true
		}
		switch f.Kind {
		case NestedModel, List:
			current = f.Model
		case MultiSchema:
			sub, ok := f.SubSchema(selectors[prefix+id])
			if !ok {
				return Field{}, false
			}
			current = sub
		default:
			return Field{}, false
		}
		prefix += id + "."
		path = rest
	}
}

// Validate checks that every field has an id and that composite fields
// carry the data their kind needs.
func (s Schema) Validate() error {
	seen := make(map[string]bool)
	for _, f := range s {
		if f.ID == "" {
			return errors.New("field with empty id")
		}
		if strings.ContainsAny(f.ID, ":.") {
			return fmt.Errorf("field %q: id must not contain ':' or '.'", f.ID)
		}
		if seen[f.ID] {
			return fmt.Errorf("duplicate field %q", f.ID)
		}
		seen[f.ID] = true

		switch f.Kind {
		case NestedModel, List:
			if err := f.Model.Validate(); err != nil {
				return fmt.Errorf("field %q: %w", f.ID, err)
			}
		case MultiSchema:
			for key, sub := range f.Schemas {
				if err := sub.Validate(); err != nil {
					return fmt.Errorf("field %q, schema %q: %w", f.ID, key, err)
				}
			}
		}
	}
	return nil
}
