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
)

func TestBuildIndexViewModel(t *testing.T) {
	cols := []collection.Collection{
		&collection.Page{Name: "specimens", Verbose: "Specimen", Total: 1234, HasTotal: true},
		&collection.Page{Name: "archive"},
	}
	vm := BuildIndexViewModel("Collections", "/grid/", cols)

	if vm.Title != "Collections" {
		t.Errorf("Expected title 'Collections', got '%s'", vm.Title)
	}
	if len(vm.Collections) != 2 {
		t.Fatalf("Expected 2 links, got %d", len(vm.Collections))
	}

	first := vm.Collections[0]
	if first.URL.String() != "/grid/specimens" {
		t.Errorf("Expected URL '/grid/specimens', got '%s'", first.URL.String())
	}
	if first.Title != "Specimen" {
		t.Errorf("Expected title 'Specimen', got '%s'", first.Title)
	}
	if first.Count != "1,234 records" {
		t.Errorf("Expected count '1,234 records', got '%s'", first.Count)
	}

	second := vm.Collections[1]
	if second.Title != "archive" {
		t.Errorf("Expected fallback title 'archive', got '%s'", second.Title)
	}
	if second.Count != "" {
		t.Errorf("Expected empty count for unknown total, got '%s'", second.Count)
	}
}
