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

// Package collection defines the record collections displayed by grids:
// one loaded page of records together with its pagination metadata and
// schema, and the sources that load such pages.
package collection

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/ecollection/grid/core/filters"
	"github.com/ecollection/grid/core/schema"
)

// ErrUnknownCollection is returned when no collection is registered under
// the requested id.
var ErrUnknownCollection = errors.New("unknown collection")

// ErrRecordNotFound is returned when a collection has no record with the
// requested id.
var ErrRecordNotFound = errors.New("record not found")

// Collection ids appear in paths and element ids.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Record is one item of a collection.
type Record interface {
	ID() string
	// Attr returns the value at a dotted path, or "" when absent.
	Attr(path string) string
	// FlatAttrs returns every value keyed by dotted path.
	FlatAttrs() map[string]string
	// Actions returns the local URLs of the record keyed by action name,
	// e.g. "view".
	Actions() map[string]string
}

// Collection is a loaded page of records.
type Collection interface {
	ID() string
	VerboseName() string
	Schema() schema.Schema
	Limit() int
	Skip() int
	LocalCount() int
	// TotalCount returns the number of records on the server, if known.
	TotalCount() (int, bool)
	Records() []Record
}

// Request describes the page of records to load.
type Request struct {
	Skip       int
	Limit      int
	SortColumn string
	SortOrder  string // "asc" or "desc"
	Filter     string // selected sub-schema, restricts the records to that kind
	Filters    filters.Set
}

// Source loads pages of records.
type Source interface {
	Fetch(ctx context.Context, req Request) (*Page, error)
}

// RecordGetter is implemented by sources that load single records.
type RecordGetter interface {
	Get(ctx context.Context, id string) (Record, error)
}

// Page is the Collection returned by sources.
type Page struct {
	Name     string
	Verbose  string
	Fields   schema.Schema
	Items    []Record
	Offset   int
	Size     int
	Total    int
	HasTotal bool
}

func (p *Page) ID() string { return p.Name }
func (p *Page) VerboseName() string { return p.Verbose }
func (p *Page) Schema() schema.Schema { return p.Fields }
func (p *Page) Limit() int { return p.Size }
func (p *Page) Skip() int { return p.Offset }
func (p *Page) LocalCount() int { return len(p.Items) }
func (p *Page) Records() []Record { return p.Items }

func (p *Page) TotalCount() (int, bool) {
	return p.Total, p.HasTotal
}

// FilterOption is one choice of the sub-schema selector of a grid.
type FilterOption struct {
	ID    string
	Title string
}

// Definition describes a collection exposed through a grid.
type Definition struct {
	ID            string
	VerboseName   string
	Schema        schema.Schema
	FilterOptions []FilterOption
	// SelectorAttr names the record attribute compared with the selected
	// filter option.
	SelectorAttr string
	Source       Source
}

// OptionIDs returns the ids of the filter options, in order.
func (d *Definition) OptionIDs() []string {
	ids := make([]string, 0, len(d.FilterOptions))
	for _, o := range d.FilterOptions {
		ids = append(ids, o.ID)
	}
	return ids
}

// Registry holds the collection definitions by id.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[string]*Definition)}
}

// Register adds a definition, replacing any previous one with the same id.
func (r *Registry) Register(d *Definition) error {
	if !idPattern.MatchString(d.ID) {
		return fmt.Errorf("invalid collection id %q", d.ID)
	}
	if d.Source == nil {
		return fmt.Errorf("collection %q has no source", d.ID)
	}
	if err := d.Schema.Validate(); err != nil {
		return fmt.Errorf("collection %q: %w", d.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[d.ID] = d
	return nil
}

// Get returns the definition registered under id.
func (r *Registry) Get(id string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.definitions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, id)
	}
	return d, nil
}

// List returns the definitions sorted by id.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*Definition, 0, len(r.definitions))
	for _, d := range r.definitions {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
