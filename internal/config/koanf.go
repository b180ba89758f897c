// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/lodestar/internal/breaker"
	"github.com/tomtom215/lodestar/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lodestar/config.yaml",
	"/etc/lodestar/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8700,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     200,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Database: DatabaseConfig{
			Enabled:   true,
			Path:      "/data/lodestar.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Catalog: CatalogConfig{
			Path:              "",
			DefaultTrustScore: 50,
			DefaultSourceType: string(recommend.SourceManual),
		},
		Profiles: ProfilesConfig{
			Backend:        ProfilesBackendBadger,
			Path:           "/data/profiles",
			SyncWrites:     false,
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Recommend: RecommendConfig{
			ShortWindow:         engine.Recency.ShortWindow,
			LongWindow:          engine.Recency.LongWindow,
			RecentViewExclusion: engine.Personalized.RecentViewExclusion,
			MaxCandidates:       engine.Personalized.MaxCandidates,
			SimilarityThreshold: engine.Collaborative.SimilarityThreshold,
			MaxNeighbors:        engine.Collaborative.MaxNeighbors,
			Concurrency:         engine.Collaborative.Concurrency,
			OverfetchFactor:     engine.Integrated.OverfetchFactor,
			PopularLikes:        engine.Integrated.PopularLikes,
			PopularViews:        engine.Integrated.PopularViews,
			RecentAge:           engine.Integrated.RecentAge,
			MaxViews:            engine.Interactions.MaxViews,
			TopCategories:       engine.Interactions.TopCategories,
			TopTags:             engine.Interactions.TopTags,
			DefaultLimit:        10,
			MaxLimit:            engine.Limits.MaxLimit,
			FetchTimeout:        engine.Limits.FetchTimeout,
			CacheEnabled:        engine.Cache.Enabled,
			CacheTTL:            engine.Cache.TTL,
			CacheMaxEntries:     10000,
		},
		Breaker: breaker.DefaultSettings(),
		Interests: InterestsConfig{
			Enabled:       true,
			Interval:      6 * time.Hour,
			RatePerSecond: 20,
			Burst:         5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources.
//
// Loading order (later sources override earlier ones):
//  1. Default values (defaultConfig)
//  2. Config file (CONFIG_PATH or the first of DefaultConfigPaths found)
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// HTTP_PORT -> server.port, RECOMMEND_CACHE_TTL -> recommend.cache_ttl
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated environment values into slices.
// Values that came from YAML are already slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_reqs":       "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"rate_limit_disabled":   "server.rate_limit_disabled",

	// DuckDB
	"duckdb_enabled":        "database.enabled",
	"duckdb_path":           "database.path",
	"duckdb_max_memory":     "database.max_memory",
	"duckdb_threads":        "database.threads",
	"duckdb_skip_indexes":   "database.skip_indexes",
	"duckdb_import_catalog": "database.import_catalog",

	// Legacy catalog
	"catalog_path":           "catalog.path",
	"catalog_default_trust":  "catalog.default_trust_score",
	"catalog_default_source": "catalog.default_source_type",

	// Profiles
	"profiles_backend":          "profiles.backend",
	"profiles_path":             "profiles.path",
	"profiles_sync_writes":      "profiles.sync_writes",
	"profiles_gc_interval":      "profiles.gc_interval",
	"profiles_gc_discard_ratio": "profiles.gc_discard_ratio",

	// Engine
	"recommend_short_window":          "recommend.short_window",
	"recommend_long_window":           "recommend.long_window",
	"recommend_recent_view_exclusion": "recommend.recent_view_exclusion",
	"recommend_max_candidates":        "recommend.max_candidates",
	"recommend_similarity_threshold":  "recommend.similarity_threshold",
	"recommend_max_neighbors":         "recommend.max_neighbors",
	"recommend_concurrency":           "recommend.concurrency",
	"recommend_overfetch_factor":      "recommend.overfetch_factor",
	"recommend_popular_likes":         "recommend.popular_likes",
	"recommend_popular_views":         "recommend.popular_views",
	"recommend_recent_age":            "recommend.recent_age",
	"recommend_max_views":             "recommend.max_views",
	"recommend_top_categories":        "recommend.top_categories",
	"recommend_top_tags":              "recommend.top_tags",
	"recommend_default_limit":         "recommend.default_limit",
	"recommend_max_limit":             "recommend.max_limit",
	"recommend_fetch_timeout":         "recommend.fetch_timeout",
	"recommend_cache_enabled":         "recommend.cache_enabled",
	"recommend_cache_ttl":             "recommend.cache_ttl",
	"recommend_cache_max_entries":     "recommend.cache_max_entries",

	// Circuit breaker
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",

	// Interest refresh
	"interests_enabled":         "interests.enabled",
	"interests_interval":        "interests.interval",
	"interests_rate_per_second": "interests.rate_per_second",
	"interests_burst":           "interests.burst",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// For unmapped keys it returns an empty string so they are skipped.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
