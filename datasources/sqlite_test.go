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

package datasources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ecollection/grid/core/collection"
	"github.com/ecollection/grid/core/filters"
	"github.com/ecollection/grid/core/schema"
)

var plantFields = schema.Schema{
	{ID: "name", Title: "Name", Kind: schema.Text, Sortable: true},
	{ID: "height", Title: "Height", Kind: schema.Number, Sortable: true},
	{ID: "kind", Kind: schema.Text},
	{ID: "tags", Kind: schema.List, Model: schema.Schema{
		{ID: "label", Kind: schema.Text},
	}},
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(":memory:")
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	var docs []*collection.Document
	for i := 1; i <= 12; i++ {
		kind := "plant"
		if i%3 == 0 {
			kind = "animal"
		}
		docs = append(docs, collection.NewDocument(fmt.Sprintf("r%02d", i), map[string]any{
			"name":   fmt.Sprintf("specimen %02d", i),
			"height": float64(i * 10),
			"kind":   kind,
			"tags":   []any{map[string]any{"label": fmt.Sprintf("t%d", i%2)}},
		}, "/specimens"))
	}
	if err := s.Put(context.Background(), "specimens", docs...); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	return s
}

func ids(records []collection.Record) string {
	var out []string
	for _, r := range records {
		out = append(out, r.ID())
	}
	return strings.Join(out, ",")
}

func TestStoreMigrationIsIdempotent(t *testing.T) {
	s := newStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("Second migration failed: %v", err)
	}
	n, err := s.Count(context.Background(), "specimens")
	if err != nil || n != 12 {
		t.Errorf("Expected 12 records, got %d (%v)", n, err)
	}
}

func TestStorePutReplaces(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	doc := collection.NewDocument("r01", map[string]any{"name": "renamed"}, "/specimens")
	if err := s.Put(ctx, "specimens", doc); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if n, _ := s.Count(ctx, "specimens"); n != 12 {
		t.Errorf("Expected 12 records after replace, got %d", n)
	}

	page, err := s.Source("specimens", plantFields, "kind", "/specimens").Fetch(ctx, collection.Request{Limit: 1})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got := page.Items[0].Attr("name"); got != "renamed" {
		t.Errorf("Expected 'renamed', got %q", got)
	}

	if err := s.Clear(ctx, "specimens"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n, _ := s.Count(ctx, "specimens"); n != 0 {
		t.Errorf("Expected no records after clear, got %d", n)
	}
}

func TestSQLiteSourceFetch(t *testing.T) {
	s := newStore(t)
	src := s.Source("specimens", plantFields, "kind", "/specimens")

	tests := []struct {
		name      string
		req       collection.Request
		wantIDs   string
		wantTotal int
	}{
		{
			name:      "first page",
			req:       collection.Request{Limit: 5},
			wantIDs:   "r01,r02,r03,r04,r05",
			wantTotal: 12,
		},
		{
			name:      "numeric sort descending",
			req:       collection.Request{Skip: 2, Limit: 3, SortColumn: "height", SortOrder: "desc"},
			wantIDs:   "r10,r09,r08",
			wantTotal: 12,
		},
		{
			name:      "selector",
			req:       collection.Request{Limit: 10, Filter: "animal"},
			wantIDs:   "r03,r06,r09,r12",
			wantTotal: 4,
		},
		{
			name:      "text filter in memory",
			req:       collection.Request{Limit: 2, Filters: filters.FromMap(map[string]string{"name": "specimen 1"}), SortColumn: "height", SortOrder: "desc"},
			wantIDs:   "r12,r11",
			wantTotal: 3,
		},
		{
			name:      "number filter with selector",
			req:       collection.Request{Filter: "animal", Filters: filters.FromMap(map[string]string{"height": "90"})},
			wantIDs:   "r09",
			wantTotal: 1,
		},
		{
			name:      "sort through a list",
			req:       collection.Request{Limit: 3, SortColumn: "tags.label"},
			wantIDs:   "r02,r04,r06",
			wantTotal: 12,
		},
		{
			name:      "skip past the end",
			req:       collection.Request{Skip: 20, Limit: 5},
			wantIDs:   "",
			wantTotal: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := src.Fetch(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Fetch failed: %v", err)
			}
			if got := ids(page.Items); got != tt.wantIDs {
				t.Errorf("Expected ids %q, got %q", tt.wantIDs, got)
			}
			total, ok := page.TotalCount()
			if !ok || total != tt.wantTotal {
				t.Errorf("Expected total %d, got %d (known=%v)", tt.wantTotal, total, ok)
			}
			if page.Skip() != tt.req.Skip || page.Limit() != tt.req.Limit {
				t.Errorf("Expected window %d/%d, got %d/%d", tt.req.Skip, tt.req.Limit, page.Skip(), page.Limit())
			}
		})
	}
}

func TestSQLiteSourceDecodesDocuments(t *testing.T) {
	s := newStore(t)
	page, err := s.Source("specimens", plantFields, "kind", "/specimens").Fetch(context.Background(), collection.Request{Limit: 1})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	r := page.Items[0]
	if r.Attr("height") != "10" || r.Attr("tags.label") != "t1" {
		t.Errorf("Unexpected attributes %v", r.FlatAttrs())
	}
	if r.Actions()["view"] != "/specimens/r01" {
		t.Errorf("Expected view link /specimens/r01, got %q", r.Actions()["view"])
	}
}

func TestSQLiteSourceGet(t *testing.T) {
	s := newStore(t)
	src := s.Source("specimens", plantFields, "kind", "/grid/specimens/records")
	ctx := context.Background()

	r, err := src.Get(ctx, "r07")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if r.Attr("name") != "specimen 07" || r.Actions()["view"] != "/grid/specimens/records/r07" {
		t.Errorf("Unexpected record %v %v", r.FlatAttrs(), r.Actions())
	}
	if _, err := src.Get(ctx, "r99"); !errors.Is(err, collection.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
	if _, err := s.Source("fossils", plantFields, "", "/").Get(ctx, "r07"); !errors.Is(err, collection.ErrRecordNotFound) {
		t.Errorf("Expected records to be scoped to their collection, got %v", err)
	}
}

func TestSQLiteSourceCancelled(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Source("specimens", plantFields, "", "/").Fetch(ctx, collection.Request{}); err == nil {
		t.Errorf("Expected an error for a cancelled context")
	}
}

func TestJSONPath(t *testing.T) {
	tests := []struct {
		attr string
		want string
	}{
		{"name", `$."name"`},
		{"location.country", `$."location"."country"`},
	}
	for _, tt := range tests {
		if got := JSONPath(tt.attr); got != tt.want {
			t.Errorf("JSONPath(%q): expected %s, got %s", tt.attr, tt.want, got)
		}
	}
}
