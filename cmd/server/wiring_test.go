// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lodestar/internal/api"
	"github.com/tomtom215/lodestar/internal/config"
)

const testCatalog = `posts:
  - {id: a1, title: Sleep basics, category: sleep, tags: [melatonin], date: 2025-03-01, views: 10}
  - {id: a2, title: Night shifts, category: sleep, tags: [circadian], date: 2025-02-01, views: 30}
  - {id: a3, title: Hydration, category: fitness, tags: [water], date: 2025-01-01}
`

// loadTestConfig configures a catalog-only deployment with in-memory profiles.
func loadTestConfig(t *testing.T, catalogYAML string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "posts.yaml")
	if err := os.WriteFile(path, []byte(catalogYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DUCKDB_ENABLED", "false")
	t.Setenv("CATALOG_PATH", path)
	t.Setenv("PROFILES_BACKEND", "memory")
	t.Setenv("INTERESTS_ENABLED", "false")

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	return cfg
}

func TestBuildCatalogOnly(t *testing.T) {
	cfg := loadTestConfig(t, testCatalog)

	app, err := build(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	if app.db != nil || app.badger != nil {
		t.Error("unexpected DuckDB or Badger store")
	}
	if app.catalog == nil || app.memory == nil {
		t.Fatal("catalog or memory profile store missing")
	}

	items, err := app.engine.RecommendByCategory(context.Background(), "sleep", "", 5)
	if err != nil {
		t.Fatalf("RecommendByCategory: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	status := app.health.Check(context.Background())
	if status.Status != api.HealthOK {
		t.Errorf("health = %+v, want ok", status)
	}
	if _, ok := status.Breakers["profile-store"]; !ok {
		t.Errorf("profile breaker not registered: %v", status.Breakers)
	}
}

func TestApplicationReload(t *testing.T) {
	cfg := loadTestConfig(t, testCatalog)

	app, err := build(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	ctx := context.Background()
	if _, err := app.engine.RecommendByCategory(ctx, "fitness", "", 5); err != nil {
		t.Fatal(err)
	}

	updated := testCatalog + "  - {id: a4, title: Stretching, category: fitness, date: 2025-04-01}\n"
	if err := os.WriteFile(cfg.Catalog.Path, []byte(updated), 0o600); err != nil {
		t.Fatal(err)
	}
	app.Reload()

	items, err := app.engine.RecommendByCategory(ctx, "fitness", "", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("after reload got %d fitness items, want 2 (cache should be cleared)", len(items))
	}
}

func TestServeInteractionRoundTrip(t *testing.T) {
	cfg := loadTestConfig(t, testCatalog)

	app, err := build(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	mw := api.DefaultChiMiddlewareConfig()
	mw.RateLimitDisabled = true
	handler := api.NewHandler(app.engine, api.HandlerConfig{DefaultLimit: cfg.Recommend.DefaultLimit}, app.health, zerolog.Nop())
	srv := httptest.NewServer(api.NewRouter(handler, api.NewChiMiddleware(mw)))
	defer srv.Close()

	body := `{"item_id":"a1","kind":"like"}`
	resp, err := http.Post(srv.URL+"/api/v1/users/alice/interactions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("record status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/v1/users/alice/profile")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var env struct {
		Data struct {
			Interactions struct {
				Likes []string `json:"likes"`
			} `json:"interactions"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	if len(env.Data.Interactions.Likes) != 1 || env.Data.Interactions.Likes[0] != "a1" {
		t.Errorf("likes = %v, want [a1]", env.Data.Interactions.Likes)
	}
}

func TestBuildImportsCatalogIntoDuckDB(t *testing.T) {
	cfg := loadTestConfig(t, testCatalog)
	cfg.Database.Enabled = true
	cfg.Database.Path = ":memory:"
	cfg.Database.MaxMemory = "512MB"
	cfg.Database.Threads = 1
	cfg.Database.ImportCatalog = true

	app, err := build(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	ctx := context.Background()
	items, _, err := app.db.GetRecordCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if items != 3 {
		t.Errorf("imported %d items, want 3", items)
	}

	tags, err := app.db.Resolve(ctx, []string{"Melatonin"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0].GlobalPostCount != 1 {
		t.Errorf("Resolve(Melatonin) = %+v, want one tag with one post", tags)
	}
}
