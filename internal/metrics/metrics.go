// Package metrics defines the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts dashboard API requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardsnipe_http_requests_total",
		Help: "Total dashboard API requests.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks dashboard API latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cardsnipe_http_request_duration_seconds",
		Help:    "Dashboard API request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// UpstreamRequestDuration tracks catalog-service call latency by endpoint.
	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cardsnipe_upstream_request_duration_seconds",
		Help:    "Catalog service request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	// RefreshCyclesTotal counts full refresh cycles by outcome (live, fallback).
	RefreshCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardsnipe_refresh_cycles_total",
		Help: "Full refresh cycles by outcome.",
	}, []string{"outcome"})

	// FallbackMode is 1 while the engine serves synthesized data.
	FallbackMode = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cardsnipe_fallback_mode",
		Help: "1 when operating on synthesized offline data, 0 when live.",
	})

	// FallbackGenerationsTotal counts offline dataset generations.
	FallbackGenerationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardsnipe_fallback_generations_total",
		Help: "Times the offline sample dataset was generated.",
	})

	// ScanCount is the scanner's evaluated-listings counter as last polled.
	ScanCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cardsnipe_scan_count",
		Help: "Scanner listings-evaluated counter from the last poll.",
	})

	// WSClientsConnected is the number of dashboard WebSocket subscribers.
	WSClientsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cardsnipe_ws_clients_connected",
		Help: "Connected dashboard WebSocket clients.",
	})
)
