/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry holds the Prometheus metrics surface.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestsTotal counts HTTP requests by method, endpoint and status.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nzuritv_api_requests_total",
		Help: "Total number of API requests",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration tracks request latency.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nzuritv_api_request_duration_seconds",
		Help:    "API request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections gauges in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nzuritv_api_active_connections",
		Help: "Number of in-flight API requests",
	})

	// LifecycleTicksTotal counts lifecycle engine sweeps.
	LifecycleTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nzuritv_lifecycle_ticks_total",
		Help: "Total lifecycle engine sweeps",
	})

	// LifecycleTransitionsTotal counts status transitions by target status.
	LifecycleTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nzuritv_lifecycle_transitions_total",
		Help: "Schedule item status transitions applied by the lifecycle engine",
	}, []string{"to_status"})

	// LifecycleErrorsTotal counts failed sweeps by phase.
	LifecycleErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nzuritv_lifecycle_errors_total",
		Help: "Lifecycle engine sweep errors",
	}, []string{"phase"})

	// NotifierEventsTotal counts events delivered to subscribers by type.
	NotifierEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nzuritv_notifier_events_total",
		Help: "Update notifier events published",
	}, []string{"type"})

	// NotifierSubscribers gauges live event subscriptions.
	NotifierSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nzuritv_notifier_subscribers",
		Help: "Currently connected notifier subscribers",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
