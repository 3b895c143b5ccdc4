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

	"github.com/dustin/go-humanize"
	"github.com/google/safehtml"

	"github.com/ecollection/grid/core/collection"
)

// IndexViewModel lists the registered collections
type IndexViewModel struct {
	Title       string
	Collections []CollectionLink
}

// CollectionLink points at the grid of one collection
type CollectionLink struct {
	ID    string
	Title string
	URL   safehtml.URL
	Count string // empty when the total is unknown
}

// BuildIndexViewModel builds the index page from one page of each collection.
// Grids are expected to be served below basePath followed by the collection id.
func BuildIndexViewModel(title, basePath string, cols []collection.Collection) IndexViewModel {
	vm := IndexViewModel{Title: title}
	for _, c := range cols {
		link := CollectionLink{
			ID:    c.ID(),
			Title: c.VerboseName(),
			URL:   safehtml.URLSanitized(basePath + c.ID()),
		}
		if link.Title == "" {
			link.Title = c.ID()
		}
		if total, ok := c.TotalCount(); ok {
			link.Count = fmt.Sprintf("%s records", humanize.Comma(int64(total)))
		}
		vm.Collections = append(vm.Collections, link)
	}
	return vm
}
