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

package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/", s.serveIndex)
	r.Route(GridPathPrefix+"{id}", func(r chi.Router) {
		r.Get("/", s.serveGrid)
		r.Post("/filter", s.serveFilterSubmit)
		r.Post("/filter/reset", s.serveFilterReset)
		r.Get("/records/{recordID}", s.serveRecord)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.HandleIndexRequest(r.Context(), w, w.Header().Set); err != nil {
		s.log.WithError(err).Error("template rendering error")
		http.Error(w, "Failed to render index", http.StatusInternalServerError)
	}
}

func (s *Server) serveGrid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result := s.HandleGridRequest(r.Context(), w, r.URL, id, w.Header().Set)
	if result == nil {
		s.metrics.Requests.WithLabelValues(id, statusLabel(http.StatusOK)).Inc()
		return
	}
	s.writeResult(w, r, id, result)
}

func (s *Server) serveRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result := s.HandleRecordRequest(r.Context(), w, id, chi.URLParam(r, "recordID"), w.Header().Set)
	if result != nil {
		s.writeResult(w, r, id, result)
	}
}

func (s *Server) serveFilterSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	s.writeResult(w, r, id, s.HandleFilterSubmit(r.URL, id, r.PostForm))
}

func (s *Server) serveFilterReset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	s.writeResult(w, r, id, s.HandleFilterReset(r.URL, id, r.PostForm))
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, id string, result *GridHandlerResult) {
	if result.Error != nil && result.StatusCode >= http.StatusInternalServerError {
		s.log.WithField("collection", id).WithError(result.Error).Error(result.Message)
	}
	if r.Method == http.MethodGet && chi.URLParam(r, "recordID") == "" {
		s.metrics.Requests.WithLabelValues(id, statusLabel(result.StatusCode)).Inc()
	}
	if result.RedirectURL != "" {
		http.Redirect(w, r, result.RedirectURL, result.StatusCode)
		return
	}
	http.Error(w, result.Message, result.StatusCode)
}

// RequestLogger logs every request with logrus once it is served
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.WithFields(logrus.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start).String(),
					"request_id": middleware.GetReqID(r.Context()),
				}).Info("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
