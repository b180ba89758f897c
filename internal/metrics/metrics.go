// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the recommendation service:
// - Store query performance (DuckDB, Badger, YAML catalog)
// - API endpoint latency and throughput
// - Recommendation outcomes and result sizes
// - Listing cache efficiency
// - Circuit breaker state

var (
	// Store Metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lodestar_store_query_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lodestar_store_query_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"store", "operation", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lodestar_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lodestar_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lodestar_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lodestar_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lodestar_recommendation_requests_total",
			Help: "Total number of recommendation operations by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "ok", "empty", "invalid", "not_found", "unavailable", "error"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lodestar_recommendation_duration_seconds",
			Help:    "Duration of recommendation operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	RecommendationResultSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lodestar_recommendation_result_size",
			Help:    "Number of results returned per recommendation operation",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"operation"},
	)

	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lodestar_interactions_total",
			Help: "Total number of interaction writes",
		},
		[]string{"kind", "action", "changed"},
	)

	InterestDerivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lodestar_interest_derivations_total",
			Help: "Total number of background interest derivations",
		},
		[]string{"result"}, // "success", "failure"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lodestar_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lodestar_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lodestar_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lodestar_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordStoreQuery records a store operation metric.
func RecordStoreQuery(store, operation string, duration time.Duration, err error) {
	StoreQueryDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
	if err != nil {
		StoreQueryErrors.WithLabelValues(store, operation, errorType(err)).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records one recommendation operation.
func RecordRecommendation(operation, outcome string, results int, duration time.Duration) {
	RecommendationRequests.WithLabelValues(operation, outcome).Inc()
	RecommendationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if outcome == "ok" || outcome == "empty" {
		RecommendationResultSize.WithLabelValues(operation).Observe(float64(results))
	}
}

// RecordInteraction records an interaction write.
func RecordInteraction(kind, action string, changed bool) {
	c := "false"
	if changed {
		c = "true"
	}
	InteractionsTotal.WithLabelValues(kind, action, c).Inc()
}

// RecordInterestDerivation records a background interest derivation.
func RecordInterestDerivation(err error) {
	if err != nil {
		InterestDerivations.WithLabelValues("failure").Inc()
		return
	}
	InterestDerivations.WithLabelValues("success").Inc()
}

// errorType maps an error onto a small, bounded label set.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"):
		return "not_found"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "closed"):
		return "connection"
	case strings.Contains(msg, "circuit breaker"):
		return "circuit_open"
	default:
		return "other"
	}
}
