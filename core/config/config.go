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

// Package config loads the server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ecollection/grid/core/logging"
	"github.com/ecollection/grid/core/pager"
)

// Environment variables read by Load.
const (
	EnvAddr            = "GRID_ADDR"
	EnvDBPath          = "GRID_DB"
	EnvLogLevel        = "GRID_LOG_LEVEL"
	EnvLogFormat       = "GRID_LOG_FORMAT"
	EnvLogFile         = "GRID_LOG_FILE"
	EnvMaxButtons      = "GRID_MAX_BUTTONS"
	EnvPageSizes       = "GRID_PAGE_SIZES"
	EnvDefaultPageSize = "GRID_DEFAULT_PAGE_SIZE"
)

// Config holds the server settings.
type Config struct {
	Addr            string
	DBPath          string
	LogLevel        string
	LogFormat       string
	LogFile         string
	MaxButtons      int
	PageSizes       []int
	DefaultPageSize int
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	p := pager.DefaultConfig()
	return Config{
		Addr:            ":8080",
		DBPath:          "grid.db",
		LogLevel:        "info",
		LogFormat:       "text",
		MaxButtons:      p.MaxButtons,
		PageSizes:       p.PageSizes,
		DefaultPageSize: p.PageSizes[0],
	}
}

// Load reads envFile, if it exists, and then the GRID_* environment
// variables on top of the defaults. Variables already set in the
// environment take precedence over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := Default()
	setString(&cfg.Addr, EnvAddr)
	setString(&cfg.DBPath, EnvDBPath)
	setString(&cfg.LogLevel, EnvLogLevel)
	setString(&cfg.LogFormat, EnvLogFormat)
	setString(&cfg.LogFile, EnvLogFile)

	if err := setInt(&cfg.MaxButtons, EnvMaxButtons); err != nil {
		return Config{}, err
	}
	if err := setInt(&cfg.DefaultPageSize, EnvDefaultPageSize); err != nil {
		return Config{}, err
	}
	if v, ok := os.LookupEnv(EnvPageSizes); ok && strings.TrimSpace(v) != "" {
		sizes, err := ParsePageSizes(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvPageSizes, err)
		}
		cfg.PageSizes = sizes
	}

	return cfg, cfg.Validate()
}

// ParsePageSizes parses a comma separated list of page sizes.
func ParsePageSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid page size %q", part)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, errors.New("no page sizes")
	}
	return sizes, nil
}

// Validate checks that the settings are consistent.
func (c Config) Validate() error {
	if c.MaxButtons < 1 {
		return fmt.Errorf("max buttons must be positive, got %d", c.MaxButtons)
	}
	if len(c.PageSizes) == 0 {
		return errors.New("no page sizes configured")
	}
	if !slices.Contains(c.PageSizes, c.DefaultPageSize) {
		return fmt.Errorf("%w: default %d not in %v", pager.ErrInvalidPageSize, c.DefaultPageSize, c.PageSizes)
	}
	return nil
}

// Pager returns the pager settings.
func (c Config) Pager() pager.Config {
	return pager.Config{MaxButtons: c.MaxButtons, PageSizes: c.PageSizes}
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat, File: c.LogFile}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
