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

// Package headers builds the tree of column headers of a grid from a record
// schema. Nested models, lists and multi-schema fields become header nodes
// with sub-headers, which are laid out as one table row per tree level.
package headers

import (
	"time"

	"github.com/ecollection/grid/core/filters"
	"github.com/ecollection/grid/core/schema"
)

// Sort orders.
const (
	Ascending  = "asc"
	Descending = "desc"
)

// Attributer gives access to the flattened attributes of a record.
type Attributer interface {
	Attr(path string) string
}

// Context is the grid state the header tree depends on.
type Context struct {
	SortColumn    string
	SortOrder     string
	CurrentFilter string   // selected sub-schema of multi-schema fields
	FilterOptions []string // ids of the declared sub-schema choices
	Filters       filters.Set
	Record        Attributer // optional, resolves per-record selectors
}

// Filter describes the filter form attached to a header.
type Filter struct {
	Kind  schema.Kind
	Value string
}

// Node is a header cell.
type Node struct {
	ID       string // dotted path of the field, the sort and filter key
	Title    string
	Kind     schema.Kind
	Sortable bool
	Order    string // Ascending, Descending or empty
	Filter   *Filter
	Children Tree
}

// IsLeaf reports whether the node has no sub-headers.
func (n *Node) IsLeaf() bool {
	return len(n.Children.Headers) == 0
}

// Span returns the number of leaf columns below the node.
func (n *Node) Span() int {
	if n.IsLeaf() {
		return 1
	}
	span := 0
	for _, c := range n.Children.Headers {
		span += c.Span()
	}
	return span
}

// Tree is an ordered list of sibling headers. Depth is the number of levels
// of the tree, zero for an empty tree.
type Tree struct {
	Depth   int
	Headers []*Node
}

// Build creates the header tree of a schema. prefix is prepended to every
// field id; it is empty for the top level.
func Build(s schema.Schema, prefix string, ctx Context) Tree {
	tree := Tree{Headers: []*Node{}}
	subDepth := 0

	for _, field := range s {
		if !field.IsMain() {
			continue
		}
		id := prefix + field.ID
		node := &Node{
			ID:       id,
			Title:    field.Title,
			Kind:     field.Kind,
			Sortable: field.Sortable,
		}
		if node.Title == "" {
			node.Title = field.ID
		}
		if id == ctx.SortColumn {
			node.Order = ctx.SortOrder
			if node.Order == "" {
				node.Order = Ascending
			}
		}

		switch field.Kind {
		case schema.NestedModel, schema.List:
			node.Children = Build(field.Model, id+".", ctx)
		case schema.MultiSchema:
			if sub, ok := field.SubSchema(ctx.selector(field, prefix)); ok {
				node.Children = Build(sub, id+".", ctx)
			}
		}
		if field.Kind.Filterable() {
			value, _ := ctx.Filters.Get(id)
			if field.Kind == schema.Date {
				value = DisplayDate(value)
			}
			node.Filter = &Filter{Kind: field.Kind, Value: value}
		}

		subDepth = max(subDepth, node.Children.Depth)
		tree.Headers = append(tree.Headers, node)
	}

	if len(tree.Headers) > 0 {
		tree.Depth = subDepth + 1
	}
	return tree
}

// selector returns the discriminant of a multi-schema field: the selected
// grid filter, else the first filter option, else the record's selector
// attribute.
func (ctx Context) selector(field schema.Field, prefix string) string {
	if ctx.CurrentFilter != "" {
		return ctx.CurrentFilter
	}
	if len(ctx.FilterOptions) > 0 {
		return ctx.FilterOptions[0]
	}
	if ctx.Record != nil && field.Selector != "" {
		return ctx.Record.Attr(prefix + field.Selector)
	}
	return ""
}

// DisplayDate formats a stored date filter value as D/M/YYYY. It returns
// an empty string when the value cannot be parsed.
func DisplayDate(value string) string {
	if value == "" {
		return ""
	}
	t, err := filters.ParseDate(value)
	if err != nil {
		return ""
	}
	t = t.In(time.UTC)
	return t.Format("2/1/2006")
}

// Iterate walks the tree breadth first. beforeRow and afterRow are called
// around each level and cell for every node of the level, left to right.
// The depth passed to the callbacks starts at the tree depth for the top
// level and decreases by one for each following level.
func (t Tree) Iterate(beforeRow func(depth int), cell func(n *Node, depth int), afterRow func(depth int)) {
	queue := make([]*Node, len(t.Headers))
	copy(queue, t.Headers)

	depth := t.Depth
	for len(queue) > 0 {
		row := queue
		queue = nil
		if beforeRow != nil {
			beforeRow(depth)
		}
		for _, n := range row {
			queue = append(queue, n.Children.Headers...)
			if cell != nil {
				cell(n, depth)
			}
		}
		if afterRow != nil {
			afterRow(depth)
		}
		depth--
	}
}

// Rows returns the nodes of each level, top level first.
func (t Tree) Rows() [][]*Node {
	var rows [][]*Node
	t.Iterate(
		func(int) { rows = append(rows, []*Node{}) },
		func(n *Node, _ int) { rows[len(rows)-1] = append(rows[len(rows)-1], n) },
		nil,
	)
	return rows
}

// Leaves returns the leaf nodes in column order.
func (t Tree) Leaves() []*Node {
	var leaves []*Node
	for _, n := range t.Headers {
		if n.IsLeaf() {
			leaves = append(leaves, n)
		} else {
			leaves = append(leaves, n.Children.Leaves()...)
		}
	}
	return leaves
}
