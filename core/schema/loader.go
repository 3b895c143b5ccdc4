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
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fieldDoc is the YAML form of a Field. The field id is the mapping key.
type fieldDoc struct {
	Title    string            `yaml:"title"`
	Type     string            `yaml:"type"`
	Sortable bool              `yaml:"sortable"`
	Main     *bool             `yaml:"main"`
	Model    Schema            `yaml:"model"`
	Schemas  map[string]Schema `yaml:"schemas"`
	Selector string            `yaml:"selector"`
}

// UnmarshalYAML decodes a mapping of field id to field description,
// keeping the order in which the fields are written.
func (s *Schema) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.DocumentNode && len(value.Content) == 1 {
		value = value.Content[0]
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: schema must be a mapping of field ids", value.Line)
	}
	fields := make(Schema, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, body := value.Content[i], value.Content[i+1]

		var doc fieldDoc
		if err := body.Decode(&doc); err != nil {
			return fmt.Errorf("field %q: %w", key.Value, err)
		}
		kind, err := ParseKind(doc.Type)
		if err != nil {
			return fmt.Errorf("line %d: field %q: %w", key.Line, key.Value, err)
		}

		fields = append(fields, Field{
			ID:       key.Value,
			Title:    doc.Title,
			Kind:     kind,
			Sortable: doc.Sortable,
			Main:     doc.Main,
			Model:    doc.Model,
			Schemas:  doc.Schemas,
			Selector: doc.Selector,
		})
	}
	*s = fields
	return nil
}

// Parse decodes a YAML schema and validates it.
func Parse(r io.Reader) (Schema, error) {
	var s Schema
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return s, nil
}

// Load reads a YAML schema file.
func Load(path string) (Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
