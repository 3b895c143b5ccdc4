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

// Package pager computes the bounded window of page-index buttons shown
// under a grid, from the pagination metadata of the displayed collection.
package pager

import (
	"errors"
	"fmt"
)

// FirstPage is the index of the first page. Pages are 1-based.
const FirstPage = 1

// ErrInvalidPageSize is returned when a collection is displayed with a page
// size that is not in the allowed list.
var ErrInvalidPageSize = errors.New("grid page size is invalid or unknown")

// Config holds the pager settings of a grid.
type Config struct {
	MaxButtons int   // number of index buttons to show
	PageSizes  []int // allowed page sizes, in display order
}

// DefaultConfig returns the settings used when a grid does not override them.
func DefaultConfig() Config {
	return Config{
		MaxButtons: 7,
		PageSizes:  []int{10, 15, 25, 50},
	}
}

// Validate returns ErrInvalidPageSize unless pageSize is one of the allowed sizes.
func (c Config) Validate(pageSize int) error {
	for _, size := range c.PageSizes {
		if size == pageSize && size > 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
}

// PageState is the pager data handed to the templates.
type PageState struct {
	FirstPage   int
	LastPage    *int // nil when the total count is unknown
	CurrentPage *int // nil when the loaded items span more than one page
	TotalCount  *int

	WindowStart int
	WindowEnd   int

	ActiveFirst    bool
	ActivePrevious bool
	ActiveNext     bool
	ActiveLast     bool

	ShowLeftDots  bool
	ShowRightDots bool
}

// Compute derives the pager state from the collection metadata.
//
// totalCount may be nil when the server did not report a total. pageSize
// must already have been checked with Config.Validate.
func Compute(totalCount *int, pageSize, skip, localCount, maxButtons int) PageState {
	ps := PageState{
		FirstPage:     FirstPage,
		TotalCount:    totalCount,
		WindowStart:   FirstPage,
		WindowEnd:     maxButtons,
		ShowRightDots: true,
	}

	// A zero total is treated like an unknown one.
	if totalCount != nil && *totalCount > 0 {
		last := (*totalCount + pageSize - 1) / pageSize
		ps.LastPage = &last
	}

	startIndexPage := floorDiv(skip, pageSize)
	endIndexPage := floorDiv(skip+localCount-1, pageSize)
	if startIndexPage == endIndexPage {
		current := startIndexPage + 1
		ps.CurrentPage = &current
	}

	switch {
	case ps.CurrentPage != nil:
		current := *ps.CurrentPage
		if current > ps.FirstPage {
			ps.ActiveFirst = true
			ps.ActivePrevious = true
		}
		if ps.LastPage != nil && current < *ps.LastPage {
			ps.ActiveLast = true
			ps.ActiveNext = true
		}

		ps.WindowStart = current - maxButtons/2
		ps.WindowEnd = current + maxButtons/2 + maxButtons%2 - 1
		if ps.WindowStart < ps.FirstPage {
			ps.WindowEnd += ps.FirstPage - ps.WindowStart
			ps.WindowStart = ps.FirstPage
		}
		if ps.LastPage != nil && ps.WindowEnd > *ps.LastPage {
			// Slide left, but never past the first page.
			offset := ps.WindowEnd - *ps.LastPage
			ps.WindowStart = max(ps.FirstPage, ps.WindowStart-offset)
			ps.WindowEnd = *ps.LastPage
		}

		ps.ShowLeftDots = ps.WindowStart > ps.FirstPage
		ps.ShowRightDots = ps.LastPage == nil || ps.WindowEnd < *ps.LastPage
	case ps.LastPage != nil:
		ps.WindowEnd = min(maxButtons, *ps.LastPage)
		ps.ShowRightDots = ps.WindowEnd < *ps.LastPage
	}

	return ps
}

// floorDiv rounds toward negative infinity, so that an empty collection
// (skip+localCount-1 == -1) lands on page index -1.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// IsCurrent reports whether page is the page currently displayed.
func (ps PageState) IsCurrent(page int) bool {
	return ps.CurrentPage != nil && *ps.CurrentPage == page
}

// Width returns the number of index buttons in the window.
func (ps PageState) Width() int {
	if ps.WindowEnd < ps.WindowStart {
		return 0
	}
	return ps.WindowEnd - ps.WindowStart + 1
}

// Pages lists the page numbers of the window in ascending order.
func (ps PageState) Pages() []int {
	pages := make([]int, 0, ps.Width())
	for p := ps.WindowStart; p <= ps.WindowEnd; p++ {
		pages = append(pages, p)
	}
	return pages
}
