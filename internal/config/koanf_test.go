// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/lodestar/internal/recommend"
)

// isolate runs the test from an empty directory so no stray config.yaml is found.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8700 {
		t.Errorf("Server.Port = %d, want 8700", cfg.Server.Port)
	}
	if !cfg.Database.Enabled {
		t.Error("Database.Enabled should be true by default")
	}
	if cfg.Profiles.Backend != ProfilesBackendBadger {
		t.Errorf("Profiles.Backend = %q, want badger", cfg.Profiles.Backend)
	}
	if cfg.Recommend.ShortWindow != 30*recommend.Day {
		t.Errorf("Recommend.ShortWindow = %v, want 30 days", cfg.Recommend.ShortWindow)
	}
	if cfg.Recommend.SimilarityThreshold != 0.3 {
		t.Errorf("Recommend.SimilarityThreshold = %v, want 0.3", cfg.Recommend.SimilarityThreshold)
	}
	if cfg.Recommend.MaxNeighbors != 10 {
		t.Errorf("Recommend.MaxNeighbors = %d, want 10", cfg.Recommend.MaxNeighbors)
	}
	if cfg.Recommend.CacheTTL != 5*time.Minute {
		t.Errorf("Recommend.CacheTTL = %v, want 5m", cfg.Recommend.CacheTTL)
	}
	if cfg.Breaker.FailureRatio != 0.6 {
		t.Errorf("Breaker.FailureRatio = %v, want 0.6", cfg.Breaker.FailureRatio)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEngineConfigMatchesEngineDefaults(t *testing.T) {
	got := defaultConfig().EngineConfig()
	want := recommend.DefaultConfig()

	if *got != *want {
		t.Errorf("EngineConfig() = %+v, want %+v", got, want)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"CATALOG_PATH", "catalog.path"},
		{"PROFILES_BACKEND", "profiles.backend"},
		{"RECOMMEND_SIMILARITY_THRESHOLD", "recommend.similarity_threshold"},
		{"BREAKER_TIMEOUT", "breaker.timeout"},
		{"INTERESTS_INTERVAL", "interests.interval"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		isolate(t)
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty", got)
		}
	})

	t.Run("default path in working directory", func(t *testing.T) {
		isolate(t)
		if err := os.WriteFile("config.yml", []byte("server:\n  port: 9000\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := findConfigFile(); got != "config.yml" {
			t.Errorf("findConfigFile() = %q, want config.yml", got)
		}
	})

	t.Run("CONFIG_PATH takes precedence", func(t *testing.T) {
		isolate(t)
		if err := os.WriteFile("config.yaml", []byte(""), 0o600); err != nil {
			t.Fatal(err)
		}
		custom := writeConfig(t, "")
		t.Setenv(ConfigPathEnvVar, custom)
		if got := findConfigFile(); got != custom {
			t.Errorf("findConfigFile() = %q, want %q", got, custom)
		}
	})

	t.Run("CONFIG_PATH pointing nowhere falls back", func(t *testing.T) {
		isolate(t)
		t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty", got)
		}
	})
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RECOMMEND_CACHE_TTL", "90s")
	t.Setenv("RECOMMEND_MAX_NEIGHBORS", "25")
	t.Setenv("PROFILES_BACKEND", "memory")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Recommend.CacheTTL != 90*time.Second {
		t.Errorf("Recommend.CacheTTL = %v, want 90s", cfg.Recommend.CacheTTL)
	}
	if cfg.Recommend.MaxNeighbors != 25 {
		t.Errorf("Recommend.MaxNeighbors = %d, want 25", cfg.Recommend.MaxNeighbors)
	}
	if cfg.Profiles.Backend != ProfilesBackendMemory {
		t.Errorf("Profiles.Backend = %q, want memory", cfg.Profiles.Backend)
	}
	// Untouched values keep their defaults.
	if cfg.Recommend.SimilarityThreshold != 0.3 {
		t.Errorf("Recommend.SimilarityThreshold = %v, want 0.3", cfg.Recommend.SimilarityThreshold)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
server:
  port: 9200
  cors_origins:
    - https://app.example
database:
  enabled: false
catalog:
  path: /srv/posts.yaml
  default_trust_score: 40
recommend:
  similarity_threshold: 0.5
  short_window: 240h
breaker:
  timeout: 45s
`)
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error: %v", err)
	}

	if cfg.Server.Port != 9200 {
		t.Errorf("Server.Port = %d, want 9200", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://app.example" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Database.Enabled {
		t.Error("Database.Enabled = true, want false")
	}
	if cfg.Catalog.Path != "/srv/posts.yaml" || cfg.Catalog.DefaultTrustScore != 40 {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.Recommend.SimilarityThreshold != 0.5 {
		t.Errorf("Recommend.SimilarityThreshold = %v, want 0.5", cfg.Recommend.SimilarityThreshold)
	}
	if cfg.Recommend.ShortWindow != 10*recommend.Day {
		t.Errorf("Recommend.ShortWindow = %v, want 240h", cfg.Recommend.ShortWindow)
	}
	if cfg.Breaker.Timeout != 45*time.Second {
		t.Errorf("Breaker.Timeout = %v, want 45s", cfg.Breaker.Timeout)
	}

	opts := cfg.CatalogOptions()
	if opts.DefaultTrustScore != 40 || opts.DefaultSourceType != recommend.SourceManual {
		t.Errorf("CatalogOptions() = %+v", opts)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "server:\n  port: 9300\nlogging:\n  level: warn\n")
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("DUCKDB_PATH", "/custom/db.duckdb")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 (env override)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (from file)", cfg.Logging.Level)
	}
	if cfg.Database.Path != "/custom/db.duckdb" {
		t.Errorf("Database.Path = %q, want /custom/db.duckdb", cfg.Database.Path)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "port out of range",
			env:     map[string]string{"HTTP_PORT": "70000"},
			wantErr: "server.port",
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"LOG_LEVEL": "verbose"},
			wantErr: "logging.level",
		},
		{
			name:    "unknown profile backend",
			env:     map[string]string{"PROFILES_BACKEND": "redis"},
			wantErr: "profiles.backend",
		},
		{
			name:    "no content source",
			env:     map[string]string{"DUCKDB_ENABLED": "false"},
			wantErr: "no content source",
		},
		{
			name:    "catalog import without catalog",
			env:     map[string]string{"DUCKDB_IMPORT_CATALOG": "true"},
			wantErr: "DUCKDB_IMPORT_CATALOG",
		},
		{
			name:    "badger without path",
			env:     map[string]string{"PROFILES_PATH": ""},
			wantErr: "PROFILES_PATH",
		},
		{
			name:    "similarity threshold above one",
			env:     map[string]string{"RECOMMEND_SIMILARITY_THRESHOLD": "1.5"},
			wantErr: "recommend.similarity_threshold",
		},
		{
			name:    "default limit above max",
			env:     map[string]string{"RECOMMEND_DEFAULT_LIMIT": "500"},
			wantErr: "default_limit",
		},
		{
			name:    "unknown catalog source type",
			env:     map[string]string{"CATALOG_DEFAULT_SOURCE": "blog"},
			wantErr: "catalog.default_source_type",
		},
		{
			name:    "breaker ratio out of range",
			env:     map[string]string{"BREAKER_FAILURE_RATIO": "2"},
			wantErr: "breaker.failure_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatal("LoadWithKoanf() should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
