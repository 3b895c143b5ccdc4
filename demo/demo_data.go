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

// Package demo provides the sample "specimens" collection served by the
// grid server.
package demo

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/ecollection/grid/core/collection"
	"github.com/ecollection/grid/core/schema"
	"github.com/ecollection/grid/datasources"
)

// CollectionID is the id of the demo collection.
const CollectionID = "specimens"

// SelectorAttr names the attribute that picks the sub-schema of "details".
const SelectorAttr = "kind"

//go:embed data/specimens.yaml
var specimensSchema []byte

//go:embed data/specimens.csv
var specimensCSV string

// FilterOptions are the choices of the kind selector.
var FilterOptions = []collection.FilterOption{
	{ID: "plant", Title: "Plants"},
	{ID: "animal", Title: "Animals"},
}

// Schema returns the schema of the demo collection.
func Schema() (schema.Schema, error) {
	return schema.Parse(bytes.NewReader(specimensSchema))
}

// Specimens returns the embedded sample records. View links point below base.
func Specimens(fields schema.Schema, base string) ([]*collection.Document, error) {
	docs, err := datasources.ReadCSV(strings.NewReader(specimensCSV), map[string]string{"base_url": base}, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to import specimens CSV: %w", err)
	}
	return docs, nil
}

// Definition describes the demo collection served from src.
func Definition(fields schema.Schema, src collection.Source) *collection.Definition {
	return &collection.Definition{
		ID:            CollectionID,
		VerboseName:   "Specimen",
		Schema:        fields,
		FilterOptions: FilterOptions,
		SelectorAttr:  SelectorAttr,
		Source:        src,
	}
}

// Register adds the demo collection, backed by store, to reg.
func Register(reg *collection.Registry, store *datasources.Store, base string) error {
	fields, err := Schema()
	if err != nil {
		return err
	}
	def := Definition(fields, nil)
	def.Source = store.Source(def.ID, def.Schema, def.SelectorAttr, base)
	return reg.Register(def)
}

// Seed stores the sample records plus extra generated ones. With reset the
// collection is emptied first. It returns the number of records stored.
func Seed(ctx context.Context, store *datasources.Store, base string, extra int, reset bool) (int, error) {
	fields, err := Schema()
	if err != nil {
		return 0, err
	}
	docs, err := Specimens(fields, base)
	if err != nil {
		return 0, err
	}
	docs = append(docs, GenerateSpecimens(extra, 1, base)...)

	if reset {
		if err := store.Clear(ctx, CollectionID); err != nil {
			return 0, err
		}
	}
	if err := store.Put(ctx, CollectionID, docs...); err != nil {
		return 0, err
	}
	return len(docs), nil
}
