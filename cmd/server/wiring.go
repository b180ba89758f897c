// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/lodestar/internal/api"
	"github.com/tomtom215/lodestar/internal/breaker"
	"github.com/tomtom215/lodestar/internal/cache"
	"github.com/tomtom215/lodestar/internal/catalog"
	"github.com/tomtom215/lodestar/internal/config"
	"github.com/tomtom215/lodestar/internal/database"
	"github.com/tomtom215/lodestar/internal/profiles"
	"github.com/tomtom215/lodestar/internal/recommend"
)

// application holds the wired engine and everything that must be closed
// when the process stops.
type application struct {
	cfg    *config.Config
	logger zerolog.Logger

	engine   *recommend.Engine
	cache    *cache.Cache
	profiles recommend.ProfileStore
	health   *api.HealthChecker

	db      *database.DB
	catalog *catalog.Catalog
	badger  *profiles.BadgerStore
	memory  *profiles.MemoryStore
}

// build opens the stores concurrently and wires the engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*application, error) {
	app := &application{
		cfg:    cfg,
		logger: logger,
		health: api.NewHealthChecker(version),
	}

	g, _ := errgroup.WithContext(ctx)
	if cfg.Database.Enabled {
		g.Go(func() error {
			db, err := database.New(&cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("open content database: %w", err)
			}
			app.db = db
			return nil
		})
	}
	if cfg.Catalog.Path != "" {
		g.Go(func() error {
			c, err := catalog.Load(cfg.Catalog.Path, cfg.CatalogOptions(), logger)
			if err != nil {
				return fmt.Errorf("load legacy catalog: %w", err)
			}
			app.catalog = c
			return nil
		})
	}
	g.Go(func() error {
		return app.openProfiles()
	})
	if err := g.Wait(); err != nil {
		app.Close()
		return nil, err
	}

	if cfg.Database.ImportCatalog && app.db != nil && app.catalog != nil {
		if err := app.importCatalog(ctx); err != nil {
			app.Close()
			return nil, err
		}
	}

	content, tags := app.contentSources()
	profileStore := breaker.NewProfileStore(app.profilesBackend(), cfg.Breaker, logger)
	app.health.AddBreaker(profileStore.Breaker().Name(), profileStore.Breaker().State)
	app.profiles = profileStore

	engine, err := recommend.NewEngine(cfg.EngineConfig(), logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("create engine: %w", err)
	}
	engine.SetStores(content, profileStore, tags)

	if cfg.Recommend.CacheEnabled {
		app.cache = cache.NewWithConfig(cfg.CacheConfig())
		engine.SetCache(app.cache)
	}
	app.engine = engine

	logger.Info().
		Bool("duckdb", app.db != nil).
		Bool("legacy_catalog", app.catalog != nil).
		Str("profiles", cfg.Profiles.Backend).
		Bool("cache", app.cache != nil).
		Msg("Engine wired")
	return app, nil
}

func (a *application) openProfiles() error {
	switch a.cfg.Profiles.Backend {
	case config.ProfilesBackendMemory:
		a.memory = profiles.NewMemoryStore(a.cfg.Recommend.MaxViews)
		a.logger.Warn().Msg("In-memory profile store selected; profiles are lost on restart")
		return nil
	default:
		store, err := profiles.OpenBadger(profiles.BadgerConfig{
			Path:       a.cfg.Profiles.Path,
			SyncWrites: a.cfg.Profiles.SyncWrites,
			MaxViews:   a.cfg.Recommend.MaxViews,
		}, a.logger)
		if err != nil {
			return fmt.Errorf("open profile store: %w", err)
		}
		a.badger = store
		return nil
	}
}

// importCatalog upserts every legacy post into DuckDB. Counters in the
// catalog overwrite those already stored.
func (a *application) importCatalog(ctx context.Context) error {
	n, err := a.db.ImportItems(ctx, a.catalog.Items())
	if err != nil {
		return fmt.Errorf("import legacy catalog after %d posts: %w", n, err)
	}
	a.logger.Info().Int("posts", n).Msg("Legacy catalog imported into DuckDB")
	return nil
}

func (a *application) profilesBackend() recommend.ProfileStore {
	if a.badger != nil {
		return a.badger
	}
	return a.memory
}

// contentSources returns the engine's content store and tag registry. The
// DuckDB store sits behind circuit breakers; when the legacy catalog is also
// configured the two are merged with DuckDB as primary.
func (a *application) contentSources() (recommend.ContentStore, recommend.TagRegistry) {
	var (
		content recommend.ContentStore
		tags    recommend.TagRegistry
	)

	if a.db != nil {
		cs := breaker.NewContentStore(a.db, a.cfg.Breaker, a.logger)
		tr := breaker.NewTagRegistry(a.db, a.cfg.Breaker, a.logger)
		a.health.AddBreaker(cs.Breaker().Name(), cs.Breaker().State)
		a.health.AddBreaker(tr.Breaker().Name(), tr.Breaker().State)
		a.health.AddCheck("duckdb", a.db.Ping)
		content, tags = cs, tr
	}

	if a.catalog != nil {
		a.health.AddCheck("legacy_catalog", func(context.Context) error {
			if a.catalog.Len() == 0 {
				return fmt.Errorf("catalog is empty")
			}
			return nil
		})
		if content == nil {
			return a.catalog, a.catalog
		}
		content = catalog.NewMerged(content, a.catalog, a.logger)
		tags = catalog.NewMergedTags(tags, a.catalog, a.logger)
	}
	return content, tags
}

// Reload re-reads the legacy catalog and drops cached listings.
func (a *application) Reload() {
	if a.catalog == nil {
		a.logger.Info().Msg("SIGHUP ignored: no legacy catalog configured")
		return
	}
	if err := a.catalog.Reload(a.cfg.Catalog.Path, a.cfg.CatalogOptions()); err != nil {
		a.logger.Error().Err(err).Msg("Legacy catalog reload failed, keeping current contents")
		return
	}
	if a.cache != nil {
		a.cache.Clear()
	}
}

// Close releases every opened resource.
func (a *application) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.badger != nil {
		closeLogged(a.logger, "profile store", a.badger)
	}
	if a.db != nil {
		closeLogged(a.logger, "content database", a.db)
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func closeLogged(logger zerolog.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error().Err(err).Str("resource", name).Msg("Error closing resource")
	}
}
