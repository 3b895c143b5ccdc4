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
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ecollection/grid/core/filters"
	"github.com/ecollection/grid/core/schema"
)

// Fetch loads a page from the definition's source and fills in the
// collection metadata.
func (d *Definition) Fetch(ctx context.Context, req Request) (*Page, error) {
	page, err := d.Source.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	page.Name = d.ID
	page.Verbose = d.VerboseName
	page.Fields = d.Schema
	return page, nil
}

// Record loads one record by id. Sources that do not implement
// RecordGetter report every record as not found.
func (d *Definition) Record(ctx context.Context, id string) (Record, error) {
	getter, ok := d.Source.(RecordGetter)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not serve single records", ErrRecordNotFound, d.ID)
	}
	return getter.Get(ctx, id)
}

// MemorySource serves records held in memory. It is safe for concurrent use.
type MemorySource struct {
	mu           sync.RWMutex
	fields       schema.Schema
	selectorAttr string
	records      []Record
	withoutTotal bool
}

// NewMemorySource creates an empty source for records of the given schema.
func NewMemorySource(fields schema.Schema, selectorAttr string) *MemorySource {
	return &MemorySource{fields: fields, selectorAttr: selectorAttr}
}

// HideTotal makes the source behave like a backend that does not report
// the total number of records.
func (m *MemorySource) HideTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.withoutTotal = true
}

// Add appends records to the source.
func (m *MemorySource) Add(records ...Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
}

// Fetch filters, sorts and slices the records.
func (m *MemorySource) Fetch(ctx context.Context, req Request) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	page := Select(m.fields, m.records, req, m.selectorAttr)
	page.HasTotal = !m.withoutTotal
	return page, nil
}

// Get returns the record with the given id.
func (m *MemorySource) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrRecordNotFound, id)
}

// Select applies the filters, sort and window of req to records.
// The returned page reports the number of matching records as its total.
func Select(fields schema.Schema, records []Record, req Request, selectorAttr string) *Page {
	var matched []Record
	for _, r := range records {
		if Matches(fields, r, req, selectorAttr) {
			matched = append(matched, r)
		}
	}

	if req.SortColumn != "" {
		desc := req.SortOrder == "desc"
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i].Attr(req.SortColumn), matched[j].Attr(req.SortColumn)
			if desc {
				return compareValues(b, a) < 0
			}
			return compareValues(a, b) < 0
		})
	}

	start := min(max(req.Skip, 0), len(matched))
	end := len(matched)
	if req.Limit > 0 {
		end = min(start+req.Limit, len(matched))
	}

	return &Page{
		Items:    matched[start:end],
		Offset:   req.Skip,
		Size:     req.Limit,
		Total:    len(matched),
		HasTotal: true,
	}
}

// Matches reports whether a record passes the filters of a request.
func Matches(fields schema.Schema, r Record, req Request, selectorAttr string) bool {
	if req.Filter != "" && selectorAttr != "" && r.Attr(selectorAttr) != req.Filter {
		return false
	}
	selectors := make(map[string]string)
	collectSelectors(selectors, fields, "", r, req.Filter)

	for _, id := range req.Filters.IDs() {
		want, _ := req.Filters.Get(id)
		kind := schema.Text
		if f, ok := fields.Lookup(id, selectors); ok {
			kind = f.Kind
		}
		if !matchValue(kind, r.Attr(id), want) {
			return false
		}
	}
	return true
}

func collectSelectors(selectors map[string]string, fields schema.Schema, prefix string, r Record, selected string) {
	for _, f := range fields {
		switch f.Kind {
		case schema.NestedModel, schema.List:
			collectSelectors(selectors, f.Model, prefix+f.ID+".", r, selected)
		case schema.MultiSchema:
			key := selected
			if key == "" && f.Selector != "" {
				key = r.Attr(prefix + f.Selector)
			}
			selectors[prefix+f.ID] = key
			if sub, ok := f.SubSchema(key); ok {
				collectSelectors(selectors, sub, prefix+f.ID+".", r, selected)
			}
		}
	}
}

func matchValue(kind schema.Kind, got, want string) bool {
	switch kind {
	case schema.Number:
		g, err1 := strconv.ParseFloat(got, 64)
		w, err2 := strconv.ParseFloat(want, 64)
		return err1 == nil && err2 == nil && g == w
	case schema.Boolean:
		return got == want
	case schema.Date:
		g, err1 := filters.ParseDate(got)
		w, err2 := filters.ParseDate(want)
		if err1 != nil || err2 != nil {
			return false
		}
		gy, gm, gd := g.UTC().Date()
		wy, wm, wd := w.UTC().Date()
		return gy == wy && gm == wm && gd == wd
	default:
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	}
}

// compareValues orders numbers numerically and anything else as strings.
// Empty values sort first.
func compareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
