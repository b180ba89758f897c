// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

// Package breaker wraps the recommendation stores with circuit breakers.
//
// Every adapter call runs through a sony/gobreaker circuit. Adapter failures
// and open-circuit rejections surface as recommend.ErrUpstreamUnavailable so
// the engine can degrade uniformly regardless of which backend failed.
// recommend.ErrNotFound and caller cancellation are treated as successful
// outcomes and never trip a circuit.
package breaker
