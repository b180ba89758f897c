// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

/*
Package main is the entry point for the Lodestar server.

Lodestar ranks articles and posts for a user. It serves personalized,
collaborative, related-item, category and tag recommendations over a JSON
HTTP API and keeps per-user profiles of explicit preferences and
interaction history.

# Application Architecture

	RootSupervisor ("lodestar")
	├── StorageSupervisor ("storage-layer")
	│   └── Badger value log GC
	├── WorkerSupervisor ("worker-layer")
	│   └── Interest refresh (INTERESTS_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON/console output modes
 3. Content sources: DuckDB (DUCKDB_ENABLED) and the legacy YAML catalog
    (CATALOG_PATH), each behind a circuit breaker and merged when both are
    configured
 4. Profile store: Badger (default) or in-memory, behind a circuit breaker
 5. Engine: listing cache and store wiring
 6. Metrics: engine and cache collectors registered with Prometheus
 7. Supervisor tree and HTTP server

# Signals

SIGINT and SIGTERM cancel the root context; the tree stops every service and
the stores are closed afterwards. SIGHUP reloads the legacy catalog file and
clears the listing cache.

# Example

	export DUCKDB_PATH=/data/lodestar.duckdb
	export CATALOG_PATH=/data/legacy-posts.yaml
	export PROFILES_PATH=/data/profiles
	./lodestar

	curl localhost:8700/api/v1/recommendations/users/alice?limit=5
*/
package main
