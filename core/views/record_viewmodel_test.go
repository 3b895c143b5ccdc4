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
	"testing"

	"github.com/ecollection/grid/core/collection"
	"github.com/ecollection/grid/core/schema"
)

func TestBuildRecordViewModel(t *testing.T) {
	hidden := false
	fields := schema.Schema{
		{ID: "name", Title: "Name", Kind: schema.Text},
		{ID: "kind", Kind: schema.Text},
		{ID: "found", Title: "Found", Kind: schema.Date},
		{ID: "location", Title: "Location", Kind: schema.NestedModel, Model: schema.Schema{
			{ID: "city", Title: "City", Kind: schema.Text},
		}},
		{ID: "details", Title: "Details", Kind: schema.MultiSchema, Selector: "kind", Schemas: map[string]schema.Schema{
			"animal": {{ID: "legs", Title: "Legs", Kind: schema.Number}},
			"plant":  {{ID: "height", Title: "Height", Kind: schema.Number}},
		}},
		{ID: "notes", Title: "Notes", Kind: schema.Text, Main: &hidden},
	}
	doc := collection.NewDocument("fox-01", map[string]any{
		"name":     "Red fox",
		"kind":     "animal",
		"found":    "2021-11-21T00:00:00.000Z",
		"location": map[string]any{"city": "Thetford"},
		"details":  map[string]any{"legs": 4.0},
		"notes":    "Tagged",
	}, "/grid/specimens/records")

	vm := BuildRecordViewModel("Specimen", fields, doc, "/grid/specimens")
	if vm.Title != "Specimen fox-01" || vm.GridURL.String() != "/grid/specimens" {
		t.Errorf("Unexpected page identity %q %q", vm.Title, vm.GridURL.String())
	}

	expected := []RecordField{
		{Path: "name", Title: "Name", Value: "Red fox"},
		{Path: "kind", Title: "kind", Value: "animal"},
		{Path: "found", Title: "Found", Value: "21/11/2021"},
		{Path: "location.city", Title: "Location / City", Value: "Thetford"},
		{Path: "details.legs", Title: "Details / Legs", Value: "4"},
		{Path: "notes", Title: "Notes", Value: "Tagged"},
	}
	if len(vm.Fields) != len(expected) {
		t.Fatalf("Expected %d fields, got %+v", len(expected), vm.Fields)
	}
	for i, want := range expected {
		if vm.Fields[i] != want {
			t.Errorf("Field %d: expected %+v, got %+v", i, want, vm.Fields[i])
		}
	}
}
