/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP API metrics.
var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealclock_api_requests_total",
		Help: "Total HTTP requests by method, route and status.",
	}, []string{"method", "endpoint", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mealclock_api_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mealclock_api_active_connections",
		Help: "HTTP requests currently being served.",
	})
)

// Planner metrics.
var (
	PrependOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealclock_prepend_outcomes_total",
		Help: "Prepend attempts by outcome (replace, split, failure).",
	}, []string{"outcome"})

	PrependErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealclock_prepend_errors_total",
		Help: "Prepend requests rejected before the split ran, by reason.",
	}, []string{"reason"})
)

// Catalog metrics.
var (
	CatalogCacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealclock_catalog_cache_requests_total",
		Help: "Catalog cache lookups by result (hit, miss, disabled).",
	}, []string{"result"})

	CatalogImportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealclock_catalog_imported_total",
		Help: "Foods created through catalog imports.",
	})
)

// Database metrics.
var (
	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mealclock_database_query_duration_seconds",
		Help:    "Database operation latency by operation and table.",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
	}, []string{"operation", "table"})

	DatabaseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealclock_database_errors_total",
		Help: "Database operation errors by operation and type.",
	}, []string{"operation", "type"})

	DatabaseConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mealclock_database_connections_active",
		Help: "Open database connections.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
