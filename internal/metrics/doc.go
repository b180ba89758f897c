// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

/*
Package metrics provides Prometheus metrics for the recommendation service.

# Metrics Endpoint

Metrics are exposed at /metrics in Prometheus text format:

	curl http://localhost:8480/metrics

# Available Metrics

Store Metrics:
  - lodestar_store_query_duration_seconds (histogram; store, operation)
  - lodestar_store_query_errors_total (counter; store, operation, error_type)

API Metrics:
  - lodestar_api_requests_total (counter; method, endpoint, status_code)
  - lodestar_api_request_duration_seconds (histogram; method, endpoint)
  - lodestar_api_active_requests (gauge)
  - lodestar_api_rate_limit_hits_total (counter; endpoint)

Recommendation Metrics:
  - lodestar_recommendation_requests_total (counter; operation, outcome)
  - lodestar_recommendation_duration_seconds (histogram; operation)
  - lodestar_recommendation_result_size (histogram; operation)
  - lodestar_interactions_total (counter; kind, action, changed)
  - lodestar_interest_derivations_total (counter; result)

Circuit Breaker Metrics:
  - lodestar_circuit_breaker_state (gauge; 0=closed, 1=half-open, 2=open)
  - lodestar_circuit_breaker_requests_total (counter; name, result)
  - lodestar_circuit_breaker_state_transitions_total (counter; name, from_state, to_state)

Scrape-time collectors (registered by the server):
  - EngineCollector exports the engine's own counters (lodestar_engine_*)
  - CacheCollector exports listing cache statistics (lodestar_cache_*)

# Usage

	start := time.Now()
	items, err := store.Query(ctx, q)
	metrics.RecordStoreQuery("duckdb", "query", time.Since(start), err)
*/
package metrics
