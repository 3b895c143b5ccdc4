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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ecollection/grid/core/pager"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAddr, EnvDBPath, EnvLogLevel, EnvLogFormat, EnvLogFile, EnvMaxButtons, EnvPageSizes, EnvDefaultPageSize} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
	if cfg.Pager().MaxButtons != 7 {
		t.Errorf("Expected 7 buttons, got %d", cfg.Pager().MaxButtons)
	}
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAddr, ":9090")
	t.Setenv(EnvPageSizes, "5, 20")
	t.Setenv(EnvDefaultPageSize, "20")
	t.Setenv(EnvLogFormat, "json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Expected addr :9090, got %s", cfg.Addr)
	}
	if !reflect.DeepEqual(cfg.PageSizes, []int{5, 20}) || cfg.DefaultPageSize != 20 {
		t.Errorf("Unexpected page sizes %v / %d", cfg.PageSizes, cfg.DefaultPageSize)
	}
	if cfg.Logging().Format != "json" {
		t.Errorf("Expected json log format, got %s", cfg.Logging().Format)
	}
}

func TestLoadBlankPageSizes(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPageSizes, "  ")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg.PageSizes, Default().PageSizes) {
		t.Errorf("Expected default page sizes, got %v", cfg.PageSizes)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// Variables set to empty strings are left alone by godotenv.
	os.Unsetenv(EnvDBPath)
	os.Unsetenv(EnvMaxButtons)
	t.Cleanup(func() {
		os.Unsetenv(EnvDBPath)
		os.Unsetenv(EnvMaxButtons)
	})

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GRID_DB=/tmp/specimens.db\nGRID_MAX_BUTTONS=5\n"), 0o600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.DBPath != "/tmp/specimens.db" || cfg.MaxButtons != 5 {
		t.Errorf("Expected values from the env file, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad buttons", EnvMaxButtons, "many"},
		{"zero buttons", EnvMaxButtons, "0"},
		{"bad sizes", EnvPageSizes, "10,x"},
		{"default not allowed", EnvDefaultPageSize, "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(""); err == nil {
				t.Errorf("Expected an error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestValidatePageSize(t *testing.T) {
	cfg := Default()
	cfg.DefaultPageSize = 11
	if err := cfg.Validate(); !errors.Is(err, pager.ErrInvalidPageSize) {
		t.Errorf("Expected ErrInvalidPageSize, got %v", err)
	}
}
