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

package query

import (
	"net/url"
	"strconv"

	"github.com/google/safehtml"

	"github.com/ecollection/grid/core/filters"
)

// Sort orders accepted in URLs.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Query represents the navigation state of a grid URL
type Query struct {
	// Base path (e.g., "/grid/specimens")
	Path string

	Page       int    // 1-based page, 0 when unknown
	PageSize   int    // 0 when not given
	SortColumn string // dotted field path, empty when unsorted
	SortOrder  string // OrderAsc or OrderDesc, empty when unsorted
	Filter     string // selected sub-schema of multi-schema fields
	Filters    filters.Set
}

// NewQuery creates a Query from a URL
func NewQuery(u *url.URL) *Query {
	q := u.Query()
	state := &Query{
		Path:       u.Path,
		SortColumn: q.Get("sortColumn"),
		Filter:     q.Get("filter"),
		Filters:    filters.Parse(q["filters"]),
	}

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		state.Page = page
	}

	// The page size is validated against the allowed sizes by the caller
	if pageSize, err := strconv.Atoi(q.Get("pageSize")); err == nil {
		state.PageSize = pageSize
	}

	if state.SortColumn != "" {
		state.SortOrder = OrderAsc
		if q.Get("sortOrder") == OrderDesc {
			state.SortOrder = OrderDesc
		}
	}

	return state
}

// Clone creates a copy of the Query. Filter sets are immutable and shared.
func (s *Query) Clone() *Query {
	clone := *s
	return &clone
}

// Skip returns the offset of the first record of the current page
func (s *Query) Skip() int {
	if s.Page <= 1 || s.PageSize <= 0 {
		return 0
	}
	return (s.Page - 1) * s.PageSize
}

// Overrides lists the navigation parameters to change. Zero values keep
// the current state.
type Overrides struct {
	Page       int
	PageSize   int
	SortColumn string
	SortOrder  string
	ClearSort  bool         // drop the sort column and order
	Filter     *string      // nil keeps the current selection
	Filters    *filters.Set // nil keeps the current filters
}

// Merge returns a new Query with the overrides applied over the current state.
func (s *Query) Merge(o Overrides) *Query {
	next := s.Clone()
	if o.Page > 0 {
		next.Page = o.Page
	}
	if o.PageSize > 0 {
		next.PageSize = o.PageSize
	}
	if o.ClearSort {
		next.SortColumn = ""
		next.SortOrder = ""
	}
	if o.SortColumn != "" {
		next.SortColumn = o.SortColumn
	}
	if o.SortOrder != "" {
		next.SortOrder = o.SortOrder
	}
	if next.SortColumn != "" && next.SortOrder == "" {
		next.SortOrder = OrderAsc
	}
	if o.Filter != nil {
		next.Filter = *o.Filter
	}
	if o.Filters != nil {
		next.Filters = *o.Filters
	}
	return next
}

// With returns the URL of the state with the overrides applied
func (s *Query) With(o Overrides) safehtml.URL {
	return s.Merge(o).ToSafeURL()
}

// WithPage returns a URL showing another page
func (s *Query) WithPage(page int) safehtml.URL {
	return s.With(Overrides{Page: page})
}

// WithPageSize returns a URL with a different page size
func (s *Query) WithPageSize(pageSize int) safehtml.URL {
	return s.With(Overrides{PageSize: pageSize})
}

// WithFilterSelector returns a URL selecting another sub-schema for
// multi-schema fields. An empty selector removes the selection.
func (s *Query) WithFilterSelector(selector string) safehtml.URL {
	return s.With(Overrides{Filter: &selector})
}

// WithFilterValue returns a URL where the column is filtered on value.
// An empty value removes the filter.
func (s *Query) WithFilterValue(column, value string) safehtml.URL {
	next := s.Filters.With(column, value)
	return s.With(Overrides{Filters: &next})
}

// WithoutFilterValue returns a URL where the column is not filtered
func (s *Query) WithoutFilterValue(column string) safehtml.URL {
	next := s.Filters.Without(column)
	return s.With(Overrides{Filters: &next})
}

// SortCycled returns the state after a click on the sort control of a
// column: unsorted, then ascending, then descending, then unsorted again.
func (s *Query) SortCycled(column string) *Query {
	current := ""
	if s.SortColumn == column {
		current = s.SortOrder
	}
	switch current {
	case OrderAsc:
		return s.Merge(Overrides{SortColumn: column, SortOrder: OrderDesc})
	case OrderDesc:
		return s.Merge(Overrides{ClearSort: true})
	default:
		return s.Merge(Overrides{SortColumn: column, SortOrder: OrderAsc})
	}
}

// WithSortCycled returns the URL reached by clicking the sort control of a column
func (s *Query) WithSortCycled(column string) safehtml.URL {
	return s.SortCycled(column).ToSafeURL()
}

// ToURL converts the Query back to a URL string
func (s *Query) ToURL() string {
	u := &url.URL{
		Path: s.Path,
	}

	q := u.Query()

	if s.Page > 0 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(s.PageSize))
	}

	// Sort parameters only when a column is active
	if s.SortColumn != "" {
		order := s.SortOrder
		if order == "" {
			order = OrderAsc
		}
		q.Set("sortColumn", s.SortColumn)
		q.Set("sortOrder", order)
	}

	if s.Filter != "" {
		q.Set("filter", s.Filter)
	}

	// Add filter parameters (format: filters=id:value, repeated)
	for _, token := range s.Filters.Tokens() {
		q.Add("filters", token)
	}

	u.RawQuery = q.Encode()
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL
func (s *Query) ToSafeURL() safehtml.URL {
	urlStr := s.ToURL()
	// URLSanitized sanitizes the input string and returns a URL
	return safehtml.URLSanitized(urlStr)
}
