// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

/*
Package middleware provides HTTP middleware shared by the API router.

  - RequestID: honours or generates X-Request-ID and stores it in the logging context
  - PrometheusMetrics: records lodestar_api_requests_total and latency per route pattern

Both have the func(http.Handler) http.Handler shape expected by chi's r.Use.
Metrics are labelled with the chi route pattern (for example
/api/v1/recommendations/users/{userID}) rather than the raw path, so user and
item identifiers never become label values.
*/
package middleware
