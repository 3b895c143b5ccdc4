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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ecollection/grid/core/collection"
	"github.com/ecollection/grid/core/config"
	"github.com/ecollection/grid/core/logging"
	"github.com/ecollection/grid/core/server"
	"github.com/ecollection/grid/datasources"
	"github.com/ecollection/grid/demo"
)

var (
	envFile  string
	addr     string
	dbPath   string
	logLevel string

	seedExtra int
	seedReset bool
	seedCSV   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "grid",
		Short: "Paginated, sortable and filterable grids over record collections",
		Long: `grid serves HTML grids of record collections stored in SQLite.

Quick Start:
  grid seed         # Load the demo specimens
  grid serve        # Start the server on :8080

Environment Variables:
  GRID_ADDR, GRID_DB, GRID_LOG_LEVEL, GRID_LOG_FORMAT, GRID_LOG_FILE,
  GRID_MAX_BUTTONS, GRID_PAGE_SIZES, GRID_DEFAULT_PAGE_SIZE`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (overrides GRID_DB)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides GRID_LOG_LEVEL)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides GRID_ADDR)")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo specimens into the database",
		RunE:  runSeed,
	}
	seedCmd.Flags().IntVar(&seedExtra, "extra", 0, "Number of generated specimens to add")
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Remove existing specimens first")
	seedCmd.Flags().StringVar(&seedCSV, "csv", "", "Also import specimens from this CSV file")

	rootCmd.AddCommand(serveCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration, applies the command line overrides and
// creates the logger.
func setup() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log, err := logging.New(cfg.Logging())
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	store, err := datasources.OpenStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	reg := collection.NewRegistry()
	if err := demo.Register(reg, store, server.RecordsPath(demo.CollectionID)); err != nil {
		return fmt.Errorf("failed to register demo collection: %w", err)
	}

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := server.NewServer(reg, server.Options{
		Pager:           cfg.Pager(),
		DefaultPageSize: cfg.DefaultPageSize,
		Logger:          log,
		Registry:        metrics,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "db": cfg.DBPath}).Info("server listening")
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	store, err := datasources.OpenStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	n, err := demo.Seed(ctx, store, server.RecordsPath(demo.CollectionID), seedExtra, seedReset)
	if err != nil {
		return fmt.Errorf("failed to seed specimens: %w", err)
	}

	if seedCSV != "" {
		fields, err := demo.Schema()
		if err != nil {
			return err
		}
		docs, err := datasources.NewManager().Load("csv", map[string]string{
			"file_path": seedCSV,
			"base_url":  server.RecordsPath(demo.CollectionID),
		}, fields)
		if err != nil {
			return err
		}
		if err := store.Put(ctx, demo.CollectionID, docs...); err != nil {
			return err
		}
		n += len(docs)
	}

	total, err := store.Count(ctx, demo.CollectionID)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"stored": n, "total": total, "db": cfg.DBPath}).Info("specimens seeded")
	return nil
}
