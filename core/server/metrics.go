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
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors updated by the server.
type Metrics struct {
	Requests         *prometheus.CounterVec
	RenderDuration   *prometheus.HistogramVec
	FilterRejections *prometheus.CounterVec
}

// NewMetrics creates the server collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grid_requests_total",
				Help: "Number of grid page requests by collection and status code.",
			},
			[]string{"collection", "code"},
		),
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grid_render_duration_seconds",
				Help:    "Time spent loading and rendering a grid page.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"collection"},
		),
		FilterRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grid_filter_rejections_total",
				Help: "Number of filter submissions rejected as invalid.",
			},
			[]string{"collection"},
		),
	}
	reg.MustRegister(m.Requests, m.RenderDuration, m.FilterRejections)
	return m
}
