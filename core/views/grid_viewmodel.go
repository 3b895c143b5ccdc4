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
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/google/safehtml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ecollection/grid/core/collection"
	"github.com/ecollection/grid/core/filters"
	"github.com/ecollection/grid/core/headers"
	"github.com/ecollection/grid/core/pager"
	"github.com/ecollection/grid/core/query"
	"github.com/ecollection/grid/core/schema"
)

// GridViewModel contains the state of a grid formatted for template consumption
type GridViewModel struct {
	ID          safehtml.Identifier // "grid-" followed by the collection id
	Title       string
	VerboseName string // "List of ..."
	CurrentURL  safehtml.URL

	PageSize  int
	PageSizes []PageSizeOption

	CurrentFilter   string
	FilterOptions   []FilterOptionLink
	FilterAction    safehtml.URL // POST target of the filter forms
	FilterResetURL  safehtml.URL // POST target of the filter reset buttons
	InvalidFilterID string       // header flagged after a rejected submission

	HeaderRows  []HeaderRow
	HeaderDepth int
	Columns     []string // leaf header ids, in column order
	ColumnCount int      // leaf columns plus the actions column
	Rows        []RowView

	Pager   PagerView
	Summary string
}

// PageSizeOption is an entry of the page size selector
type PageSizeOption struct {
	Size     int
	Selected bool
	URL      safehtml.URL
}

// FilterOptionLink is an entry of the sub-schema selector
type FilterOptionLink struct {
	ID       string
	Title    string
	Selected bool
	URL      safehtml.URL
}

// HeaderRow is one level of the header tree
type HeaderRow struct {
	Depth int
	Cells []HeaderCell
}

// HeaderCell is a header of the grid
type HeaderCell struct {
	ID       string
	Title    string
	Colspan  int
	Rowspan  int
	Sortable bool
	Order    string       // "asc", "desc" or empty
	SortURL  safehtml.URL // next step of the sort cycle
	Filter   *FilterView
}

// FilterView is the filter form of a header
type FilterView struct {
	Type       string // schema kind name, posted back with the form
	InputType  string // "text", "number", "date" or "radio"
	Value      string // displayed value, D/M/YYYY for dates
	InputValue string // value of the form input, accepted as submitted
	Active     bool
	Invalid    bool
	ClearURL   safehtml.URL
}

// RowView is a record of the grid
type RowView struct {
	ID      string
	Cells   []string
	ViewURL safehtml.URL
	Actions []ActionLink
}

// ActionLink is a per-record action
type ActionLink struct {
	Name string
	URL  safehtml.URL
}

// PagerView is the pager state with its navigation links
type PagerView struct {
	pager.PageState

	Known       bool // current page is known
	Current     int
	Last        int
	FirstURL    safehtml.URL
	PreviousURL safehtml.URL
	NextURL     safehtml.URL
	LastURL     safehtml.URL
	Pages       []PageLink
}

// PageLink is an index button of the pager
type PageLink struct {
	Number  int
	Current bool
	URL     safehtml.URL
}

// Options are the grid settings that do not come from the collection
type Options struct {
	Title           string
	FilterOptions   []collection.FilterOption
	InvalidFilterID string
}

var lower = cases.Lower(language.English)

// BuildGridViewModel creates the view model of a grid displaying a loaded
// collection. It fails when the collection page size is not allowed by
// the pager configuration.
func BuildGridViewModel(c collection.Collection, q *query.Query, cfg pager.Config, opts Options) (GridViewModel, error) {
	pageSize := c.Limit()
	if err := cfg.Validate(pageSize); err != nil {
		return GridViewModel{}, err
	}

	var totalCount *int
	if total, ok := c.TotalCount(); ok {
		totalCount = &total
	}
	ps := pager.Compute(totalCount, pageSize, c.Skip(), c.LocalCount(), cfg.MaxButtons)

	// Links are built from the state actually displayed
	current := q.Clone()
	current.PageSize = pageSize
	current.Page = 0
	if ps.CurrentPage != nil {
		current.Page = *ps.CurrentPage
	}

	vm := GridViewModel{
		ID:              safehtml.IdentifierFromConstantPrefix("grid", c.ID()),
		Title:           opts.Title,
		VerboseName:     "List of " + lower.String(c.VerboseName()),
		CurrentURL:      current.ToSafeURL(),
		PageSize:        pageSize,
		CurrentFilter:   current.Filter,
		InvalidFilterID: opts.InvalidFilterID,
		Rows:            []RowView{},
	}
	if vm.Title == "" {
		vm.Title = c.VerboseName()
	}

	action := current.Clone()
	action.Path = current.Path + "/filter"
	vm.FilterAction = action.ToSafeURL()
	action.Path = current.Path + "/filter/reset"
	vm.FilterResetURL = action.ToSafeURL()

	for _, size := range cfg.PageSizes {
		vm.PageSizes = append(vm.PageSizes, PageSizeOption{
			Size:     size,
			Selected: size == pageSize,
			URL:      current.WithPageSize(size),
		})
	}

	optionIDs := make([]string, 0, len(opts.FilterOptions))
	for _, o := range opts.FilterOptions {
		optionIDs = append(optionIDs, o.ID)
		title := o.Title
		if title == "" {
			title = o.ID
		}
		vm.FilterOptions = append(vm.FilterOptions, FilterOptionLink{
			ID:       o.ID,
			Title:    title,
			Selected: o.ID == current.Filter,
			URL:      current.WithFilterSelector(o.ID),
		})
	}

	tree := headers.Build(c.Schema(), "", headers.Context{
		SortColumn:    current.SortColumn,
		SortOrder:     current.SortOrder,
		CurrentFilter: current.Filter,
		FilterOptions: optionIDs,
		Filters:       current.Filters,
	})
	vm.HeaderRows = buildHeaderRows(tree, current, opts.InvalidFilterID)
	vm.HeaderDepth = tree.Depth
	for _, leaf := range tree.Leaves() {
		vm.Columns = append(vm.Columns, leaf.ID)
	}
	vm.ColumnCount = len(vm.Columns) + 1

	for _, r := range c.Records() {
		vm.Rows = append(vm.Rows, buildRow(r, vm.Columns))
	}

	vm.Pager = buildPager(ps, current)
	vm.Summary = summary(c, totalCount)

	return vm, nil
}

// buildHeaderRows lays the header tree out as table rows. Leaves span the
// remaining rows so that every column ends on the last header row.
func buildHeaderRows(tree headers.Tree, q *query.Query, invalid string) []HeaderRow {
	var rows []HeaderRow
	tree.Iterate(
		func(depth int) {
			rows = append(rows, HeaderRow{Depth: depth})
		},
		func(n *headers.Node, depth int) {
			cell := HeaderCell{
				ID:       n.ID,
				Title:    n.Title,
				Colspan:  n.Span(),
				Rowspan:  1,
				Sortable: n.Sortable,
				Order:    n.Order,
			}
			if n.IsLeaf() {
				cell.Rowspan = depth
			}
			if n.Sortable {
				cell.SortURL = q.WithSortCycled(n.ID)
			}
			if n.Filter != nil {
				stored, active := q.Filters.Get(n.ID)
				cell.Filter = &FilterView{
					Type:       n.Filter.Kind.String(),
					InputType:  inputType(n.Filter.Kind),
					Value:      n.Filter.Value,
					InputValue: n.Filter.Value,
					Active:     active,
					Invalid:    n.ID == invalid,
					ClearURL:   q.WithoutFilterValue(n.ID),
				}
				if n.Filter.Kind == schema.Date {
					cell.Filter.InputValue = filters.InputDate(stored)
				}
			}
			row := &rows[len(rows)-1]
			row.Cells = append(row.Cells, cell)
		},
		nil,
	)
	return rows
}

func inputType(kind schema.Kind) string {
	switch kind {
	case schema.Number:
		return "number"
	case schema.Date:
		return "date"
	case schema.Boolean:
		return "radio"
	default:
		return "text"
	}
}

func buildRow(r collection.Record, columns []string) RowView {
	attrs := r.FlatAttrs()
	row := RowView{
		ID:    r.ID(),
		Cells: make([]string, 0, len(columns)),
	}
	for _, col := range columns {
		row.Cells = append(row.Cells, attrs[col])
	}

	actions := r.Actions()
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		link := safehtml.URLSanitized(actions[name])
		row.Actions = append(row.Actions, ActionLink{Name: name, URL: link})
		if name == "view" {
			row.ViewURL = link
		}
	}
	return row
}

func buildPager(ps pager.PageState, q *query.Query) PagerView {
	pv := PagerView{PageState: ps}
	if ps.CurrentPage != nil {
		pv.Known = true
		pv.Current = *ps.CurrentPage
		pv.PreviousURL = q.WithPage(max(pv.Current-1, ps.FirstPage))
		pv.NextURL = q.WithPage(pv.Current + 1)
	}
	pv.FirstURL = q.WithPage(ps.FirstPage)
	if ps.LastPage != nil {
		pv.Last = *ps.LastPage
		pv.LastURL = q.WithPage(pv.Last)
	}
	for _, p := range ps.Pages() {
		pv.Pages = append(pv.Pages, PageLink{
			Number:  p,
			Current: ps.IsCurrent(p),
			URL:     q.WithPage(p),
		})
	}
	return pv
}

func summary(c collection.Collection, total *int) string {
	if c.LocalCount() == 0 {
		return "No records"
	}
	first := c.Skip() + 1
	last := c.Skip() + c.LocalCount()
	if total == nil {
		return fmt.Sprintf("Records %s to %s", humanize.Comma(int64(first)), humanize.Comma(int64(last)))
	}
	return fmt.Sprintf("Records %s to %s of %s", humanize.Comma(int64(first)), humanize.Comma(int64(last)), humanize.Comma(int64(*total)))
}

// FilterSubmission is a filter form posted by the browser
type FilterSubmission struct {
	ID    string
	Type  string
	Value string
}

// ApplyFilterSubmission returns the state after a filter form submission.
// A rejected value removes the filter and is reported through the error,
// so that the caller can flag the header.
func ApplyFilterSubmission(q *query.Query, sub FilterSubmission) (*query.Query, error) {
	kind, err := schema.ParseKind(sub.Type)
	if err != nil {
		return q.Clone(), err
	}
	value, err := filters.Submit(kind, sub.Value)
	next := q.Filters.With(sub.ID, value)
	return q.Merge(query.Overrides{Filters: &next}), err
}

// ApplyFilterReset returns the state after the reset button of a filter form
func ApplyFilterReset(q *query.Query, id string) *query.Query {
	next := q.Filters.Without(id)
	return q.Merge(query.Overrides{Filters: &next})
}
