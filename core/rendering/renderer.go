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

package rendering

import (
	"embed"
	"io"

	"github.com/google/safehtml/template"

	"github.com/ecollection/grid/core/views"
)

//go:embed templates/*
var templateFS embed.FS

// GridRenderer handles rendering of grid view models to HTML
type GridRenderer struct {
	gridTemplate   *template.Template
	indexTemplate  *template.Template
	recordTemplate *template.Template
}

// NewGridRenderer creates a new grid renderer
func NewGridRenderer() (*GridRenderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	// Parse the grid template
	gridTemplate, err := template.New("grid.html").ParseFS(trustedFS, "templates/grid.html")
	if err != nil {
		return nil, err
	}

	// Parse the index page template
	indexTemplate, err := template.New("index.html").ParseFS(trustedFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	// Parse the record page template
	recordTemplate, err := template.New("record.html").ParseFS(trustedFS, "templates/record.html")
	if err != nil {
		return nil, err
	}

	return &GridRenderer{
		gridTemplate:   gridTemplate,
		indexTemplate:  indexTemplate,
		recordTemplate: recordTemplate,
	}, nil
}

// Render renders a GridViewModel to the provided writer
func (r *GridRenderer) Render(w io.Writer, vm views.GridViewModel) error {
	return r.gridTemplate.Execute(w, vm)
}

// RenderIndex renders an IndexViewModel to the provided writer
func (r *GridRenderer) RenderIndex(w io.Writer, vm views.IndexViewModel) error {
	return r.indexTemplate.Execute(w, vm)
}

// RenderRecord renders a RecordViewModel to the provided writer
func (r *GridRenderer) RenderRecord(w io.Writer, vm views.RecordViewModel) error {
	return r.recordTemplate.Execute(w, vm)
}
