// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

/*
Package config provides centralized configuration management for Lodestar.

Configuration is loaded with koanf in three layers, later layers winning:

 1. Struct defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, then config.yaml, config.yml,
    /etc/lodestar/config.yaml, /etc/lodestar/config.yml
 3. Environment variables, mapped explicitly by envTransformFunc

Unmapped environment variables are ignored.

# Sections

  - ServerConfig: HTTP listener, timeouts, CORS and rate limiting
  - DatabaseConfig: DuckDB rich content store
  - CatalogConfig: legacy flat YAML catalog
  - ProfilesConfig: BadgerDB or in-memory profile store
  - RecommendConfig: engine windows, thresholds, limits and listing cache
  - breaker.Settings: circuit breaker around every store
  - InterestsConfig: periodic interest re-derivation
  - LoggingConfig: zerolog level, format and caller

At least one content source (database or catalog) must be configured.

# Example

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal().Err(err).Msg("failed to load configuration")
	}
	engine, err := recommend.NewEngine(cfg.EngineConfig(), logger)

# Environment Variables

	HTTP_HOST, HTTP_PORT, HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
	CORS_ORIGINS (comma separated), RATE_LIMIT_REQS, RATE_LIMIT_WINDOW, RATE_LIMIT_DISABLED
	DUCKDB_ENABLED, DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS
	CATALOG_PATH, CATALOG_DEFAULT_TRUST, CATALOG_DEFAULT_SOURCE
	PROFILES_BACKEND, PROFILES_PATH, PROFILES_SYNC_WRITES, PROFILES_GC_INTERVAL
	RECOMMEND_* (see envTransformFunc), BREAKER_*, INTERESTS_*
	LOG_LEVEL, LOG_FORMAT, LOG_CALLER
*/
package config
