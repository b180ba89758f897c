// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package config

import (
	"time"

	"github.com/tomtom215/lodestar/internal/breaker"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Database  DatabaseConfig   `koanf:"database"`
	Catalog   CatalogConfig    `koanf:"catalog"`
	Profiles  ProfilesConfig   `koanf:"profiles"`
	Recommend RecommendConfig  `koanf:"recommend"`
	Breaker   breaker.Settings `koanf:"breaker"`
	Interests InterestsConfig  `koanf:"interests"`
	Logging   LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// DatabaseConfig holds DuckDB settings for the rich content store.
type DatabaseConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Path        string `koanf:"path"`
	MaxMemory   string `koanf:"max_memory"`
	Threads     int    `koanf:"threads" validate:"gte=0"` // Number of DuckDB threads (0 = use NumCPU)
	SkipIndexes bool   `koanf:"skip_indexes"`             // Skip secondary index creation (fast test setup)

	// ImportCatalog copies the legacy catalog into DuckDB at startup.
	ImportCatalog bool `koanf:"import_catalog"`
}

// CatalogConfig holds settings for the legacy flat YAML catalog.
// An empty Path disables the catalog.
type CatalogConfig struct {
	Path              string `koanf:"path"`
	DefaultTrustScore int    `koanf:"default_trust_score" validate:"gte=0,lte=100"`
	DefaultSourceType string `koanf:"default_source_type" validate:"sourcetype"`
}

// Profile store backends.
const (
	ProfilesBackendBadger = "badger"
	ProfilesBackendMemory = "memory"
)

// ProfilesConfig holds profile store settings.
type ProfilesConfig struct {
	Backend    string `koanf:"backend" validate:"oneof=badger memory"`
	Path       string `koanf:"path"`
	SyncWrites bool   `koanf:"sync_writes"`

	// GCInterval is how often the Badger value log is garbage collected.
	// Zero disables the GC service.
	GCInterval     time.Duration `koanf:"gc_interval" validate:"gte=0"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio" validate:"gt=0,lt=1"`
}

// RecommendConfig holds the tunable engine parameters.
// Scoring weights are fixed and not configurable.
type RecommendConfig struct {
	ShortWindow time.Duration `koanf:"short_window" validate:"gt=0"`
	LongWindow  time.Duration `koanf:"long_window" validate:"gt=0"`

	RecentViewExclusion int `koanf:"recent_view_exclusion" validate:"gte=0"`
	MaxCandidates       int `koanf:"max_candidates" validate:"min=0"`

	SimilarityThreshold float64 `koanf:"similarity_threshold" validate:"gte=0,lte=1"`
	MaxNeighbors        int     `koanf:"max_neighbors" validate:"min=1"`
	Concurrency         int     `koanf:"concurrency" validate:"min=1"`

	OverfetchFactor float64       `koanf:"overfetch_factor" validate:"gte=1"`
	PopularLikes    int           `koanf:"popular_likes" validate:"gte=0"`
	PopularViews    int           `koanf:"popular_views" validate:"gte=0"`
	RecentAge       time.Duration `koanf:"recent_age" validate:"gt=0"`

	MaxViews      int `koanf:"max_views" validate:"min=1"`
	TopCategories int `koanf:"top_categories" validate:"gte=0"`
	TopTags       int `koanf:"top_tags" validate:"gte=0"`

	DefaultLimit int           `koanf:"default_limit" validate:"min=1"`
	MaxLimit     int           `koanf:"max_limit" validate:"min=1"`
	FetchTimeout time.Duration `koanf:"fetch_timeout" validate:"gt=0"`

	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl" validate:"gt=0"`
	CacheMaxEntries int           `koanf:"cache_max_entries" validate:"gte=0"`
}

// InterestsConfig controls periodic interest re-derivation for known users.
type InterestsConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval" validate:"gt=0"`

	// RatePerSecond paces DeriveInterests calls within one sweep.
	RatePerSecond float64 `koanf:"rate_per_second" validate:"gt=0"`
	Burst         int     `koanf:"burst" validate:"min=1"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}
