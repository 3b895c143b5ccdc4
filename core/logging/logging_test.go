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

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithOutput(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantLevel logrus.Level
		wantErr   bool
	}{
		{name: "defaults", cfg: Config{}, wantLevel: logrus.InfoLevel},
		{name: "debug", cfg: Config{Level: "debug"}, wantLevel: logrus.DebugLevel},
		{name: "warning", cfg: Config{Level: "warning", Format: "json"}, wantLevel: logrus.WarnLevel},
		{name: "bad level", cfg: Config{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := NewWithOutput(tt.cfg, &bytes.Buffer{})
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if log.GetLevel() != tt.wantLevel {
				t.Errorf("Expected level %v, got %v", tt.wantLevel, log.GetLevel())
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(Config{Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	log.WithField("grid", "specimens").Info("rendered")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected a JSON line, got %q: %v", buf.String(), err)
	}
	if entry["grid"] != "specimens" || entry["msg"] != "rendered" {
		t.Errorf("Unexpected entry %v", entry)
	}
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.log")
	var buf bytes.Buffer
	log, err := NewWithOutput(Config{File: path}, &buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	log.Info("to both")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "to both") || !strings.Contains(buf.String(), "to both") {
		t.Errorf("Expected the entry in the file and on the console")
	}
}
