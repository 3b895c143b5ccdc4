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

// Package server serves collection grids over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/ecollection/grid/core/collection"
	"github.com/ecollection/grid/core/filters"
	"github.com/ecollection/grid/core/pager"
	"github.com/ecollection/grid/core/query"
	"github.com/ecollection/grid/core/rendering"
	"github.com/ecollection/grid/core/views"
)

// GridPathPrefix is the path below which grids are served, followed by the
// collection id.
const GridPathPrefix = "/grid/"

// RecordsPath returns the path below which the records of a collection are
// served. It is the base of the record view links.
func RecordsPath(id string) string {
	return GridPathPrefix + id + "/records"
}

// Options configure a Server.
type Options struct {
	Title           string
	Pager           pager.Config
	DefaultPageSize int // used when a request has no pageSize
	Logger          *logrus.Logger
	Registry        *prometheus.Registry // collectors are registered here and served on /metrics
}

// Server represents the application server with all its dependencies
type Server struct {
	collections     *collection.Registry
	renderer        *rendering.GridRenderer
	title           string
	pager           pager.Config
	defaultPageSize int
	log             *logrus.Logger
	registry        *prometheus.Registry
	metrics         *Metrics
}

// NewServer creates a new server for the collections of reg
func NewServer(reg *collection.Registry, opts Options) (*Server, error) {
	renderer, err := rendering.NewGridRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if opts.Pager.MaxButtons == 0 {
		opts.Pager = pager.DefaultConfig()
	}
	if opts.DefaultPageSize == 0 {
		opts.DefaultPageSize = opts.Pager.PageSizes[0]
	}
	if err := opts.Pager.Validate(opts.DefaultPageSize); err != nil {
		return nil, fmt.Errorf("default page size: %w", err)
	}
	if opts.Title == "" {
		opts.Title = "Collections"
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	return &Server{
		collections:     reg,
		renderer:        renderer,
		title:           opts.Title,
		pager:           opts.Pager,
		defaultPageSize: opts.DefaultPageSize,
		log:             opts.Logger,
		registry:        opts.Registry,
		metrics:         NewMetrics(opts.Registry),
	}, nil
}

// GridHandlerResult represents the result of handling a grid request that
// did not render a page
type GridHandlerResult struct {
	Error       error
	StatusCode  int
	Message     string
	RedirectURL string
}

// TimingCollector collects timing measurements for the steps of a request
type TimingCollector struct {
	fields logrus.Fields
	start  time.Time
}

// NewTimingCollector creates a new timing collector
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{fields: logrus.Fields{}, start: time.Now()}
}

// Record records the duration of a step
func (tc *TimingCollector) Record(operation string, duration time.Duration) {
	tc.fields[operation] = fmt.Sprintf("%.2fms", float64(duration.Microseconds())/1000.0)
}

// Fields returns the recorded timings as log fields
func (tc *TimingCollector) Fields() logrus.Fields {
	return tc.fields
}

// Elapsed returns the time since the collector was created
func (tc *TimingCollector) Elapsed() time.Duration {
	return time.Since(tc.start)
}

// HandleGridRequest loads and renders the grid of collection id for the
// state encoded in requestURL. It returns nil once the page is written.
func (s *Server) HandleGridRequest(ctx context.Context, w io.Writer, requestURL *url.URL, id string, setHeader func(key, value string)) *GridHandlerResult {
	timing := NewTimingCollector()

	def, err := s.collections.Get(id)
	if err != nil {
		return &GridHandlerResult{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("Collection '%s' not found", id)}
	}

	q := query.NewQuery(requestURL)
	q.Path = GridPathPrefix + id
	if q.PageSize == 0 {
		q.PageSize = s.defaultPageSize
	}
	if err := s.pager.Validate(q.PageSize); err != nil {
		return &GridHandlerResult{StatusCode: http.StatusBadRequest, Message: err.Error(), Error: err}
	}
	if q.Page == 0 {
		q.Page = pager.FirstPage
	}
	if options := def.OptionIDs(); q.Filter != "" && len(options) > 0 && !slices.Contains(options, q.Filter) {
		return &GridHandlerResult{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf("Unknown filter option '%s'", q.Filter)}
	}

	fetchStart := time.Now()
	page, err := def.Fetch(ctx, collection.Request{
		Skip:       q.Skip(),
		Limit:      q.PageSize,
		SortColumn: q.SortColumn,
		SortOrder:  q.SortOrder,
		Filter:     q.Filter,
		Filters:    q.Filters,
	})
	if err != nil {
		return &GridHandlerResult{StatusCode: http.StatusInternalServerError, Message: "Failed to load records", Error: err}
	}
	timing.Record("fetch", time.Since(fetchStart))

	// A page past the end, e.g. after a filter narrowed the records
	if total, ok := page.TotalCount(); ok && total > 0 && page.LocalCount() == 0 {
		last := (total + q.PageSize - 1) / q.PageSize
		if q.Page > last {
			return &GridHandlerResult{StatusCode: http.StatusSeeOther, RedirectURL: q.WithPage(last).String()}
		}
	}

	vmStart := time.Now()
	vm, err := views.BuildGridViewModel(page, q, s.pager, views.Options{
		FilterOptions:   def.FilterOptions,
		InvalidFilterID: requestURL.Query().Get("invalid"),
	})
	if err != nil {
		return &GridHandlerResult{StatusCode: http.StatusBadRequest, Message: err.Error(), Error: err}
	}
	timing.Record("viewmodel", time.Since(vmStart))

	setHeader("Content-Type", "text/html; charset=utf-8")
	renderStart := time.Now()
	if err := s.renderer.Render(w, vm); err != nil {
		return &GridHandlerResult{StatusCode: http.StatusInternalServerError, Message: "Failed to render grid", Error: err}
	}
	timing.Record("render", time.Since(renderStart))

	s.metrics.RenderDuration.WithLabelValues(id).Observe(timing.Elapsed().Seconds())
	s.log.WithField("collection", id).WithFields(timing.Fields()).Debug("grid rendered")
	return nil
}

// HandleFilterSubmit applies a posted filter form to the state encoded in
// requestURL and returns the URL to redirect to. Invalid values drop the
// filter and flag the column with the "invalid" parameter.
func (s *Server) HandleFilterSubmit(requestURL *url.URL, id string, form url.Values) *GridHandlerResult {
	if _, err := s.collections.Get(id); err != nil {
		return &GridHandlerResult{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("Collection '%s' not found", id)}
	}
	sub := views.FilterSubmission{ID: form.Get("id"), Type: form.Get("type"), Value: form.Get("val")}
	if sub.ID == "" {
		return &GridHandlerResult{StatusCode: http.StatusBadRequest, Message: "Filter id is required"}
	}

	q := query.NewQuery(requestURL)
	q.Path = GridPathPrefix + id
	next, err := views.ApplyFilterSubmission(q, sub)
	switch {
	case err == nil:
		return &GridHandlerResult{StatusCode: http.StatusSeeOther, RedirectURL: next.ToURL()}
	case errors.Is(err, filters.ErrInvalidNumber), errors.Is(err, filters.ErrInvalidDate):
		s.metrics.FilterRejections.WithLabelValues(id).Inc()
		s.log.WithFields(logrus.Fields{"collection": id, "filter": sub.ID}).WithError(err).Info("filter rejected")
		return &GridHandlerResult{StatusCode: http.StatusSeeOther, RedirectURL: withParam(next.ToURL(), "invalid", sub.ID)}
	default:
		return &GridHandlerResult{StatusCode: http.StatusBadRequest, Message: err.Error(), Error: err}
	}
}

// HandleFilterReset removes the posted filter from the state encoded in
// requestURL and returns the URL to redirect to.
func (s *Server) HandleFilterReset(requestURL *url.URL, id string, form url.Values) *GridHandlerResult {
	if _, err := s.collections.Get(id); err != nil {
		return &GridHandlerResult{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("Collection '%s' not found", id)}
	}
	q := query.NewQuery(requestURL)
	q.Path = GridPathPrefix + id
	next := views.ApplyFilterReset(q, form.Get("id"))
	return &GridHandlerResult{StatusCode: http.StatusSeeOther, RedirectURL: next.ToURL()}
}

// HandleRecordRequest renders the detail page of one record of collection id.
// It returns nil once the page is written.
func (s *Server) HandleRecordRequest(ctx context.Context, w io.Writer, id, recordID string, setHeader func(key, value string)) *GridHandlerResult {
	def, err := s.collections.Get(id)
	if err != nil {
		return &GridHandlerResult{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("Collection '%s' not found", id)}
	}
	record, err := def.Record(ctx, recordID)
	if errors.Is(err, collection.ErrRecordNotFound) {
		return &GridHandlerResult{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("Record '%s' not found", recordID)}
	}
	if err != nil {
		return &GridHandlerResult{StatusCode: http.StatusInternalServerError, Message: "Failed to load record", Error: err}
	}

	vm := views.BuildRecordViewModel(def.VerboseName, def.Schema, record, GridPathPrefix+id)
	setHeader("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.RenderRecord(w, vm); err != nil {
		return &GridHandlerResult{StatusCode: http.StatusInternalServerError, Message: "Failed to render record", Error: err}
	}
	return nil
}

// HandleIndexRequest renders the list of collections
func (s *Server) HandleIndexRequest(ctx context.Context, w io.Writer, setHeader func(key, value string)) error {
	var cols []collection.Collection
	for _, def := range s.collections.List() {
		page, err := def.Fetch(ctx, collection.Request{Limit: 1})
		if err != nil {
			s.log.WithField("collection", def.ID).WithError(err).Warn("failed to count records")
			page = &collection.Page{Name: def.ID, Verbose: def.VerboseName}
		}
		cols = append(cols, page)
	}

	setHeader("Content-Type", "text/html; charset=utf-8")
	return s.renderer.RenderIndex(w, views.BuildIndexViewModel(s.title, GridPathPrefix, cols))
}

func withParam(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

func statusLabel(code int) string {
	return strconv.Itoa(code)
}
