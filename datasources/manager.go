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
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ecollection/grid/core/collection"
	"github.com/ecollection/grid/core/schema"
)

// ErrUnknownSourceType is returned when no loader handles a source type.
var ErrUnknownSourceType = errors.New("unknown source type")

// Manager dispatches load requests to the registered loaders.
type Manager struct {
	mu sync.RWMutex

	// Registered loaders indexed by source type
	loaders map[string]Loader
}

// NewManager creates a manager with the built-in loaders registered.
func NewManager() *Manager {
	m := &Manager{loaders: make(map[string]Loader)}
	m.RegisterLoader(NewCsvLoader())
	return m
}

// RegisterLoader registers a loader for its source type.
// If a loader is already registered for this type, it will be replaced.
func (m *Manager) RegisterLoader(loader Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders[loader.SourceType()] = loader
}

// SourceTypes returns the registered source types, sorted.
func (m *Manager) SourceTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, 0, len(m.loaders))
	for t := range m.loaders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Load reads records with the loader registered for sourceType.
func (m *Manager) Load(sourceType string, config map[string]string, fields schema.Schema) ([]*collection.Document, error) {
	m.mu.RLock()
	loader, ok := m.loaders[sourceType]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSourceType, sourceType)
	}
	return loader.Load(config, fields)
}
