// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package config

import (
	"github.com/tomtom215/lodestar/internal/cache"
	"github.com/tomtom215/lodestar/internal/catalog"
	"github.com/tomtom215/lodestar/internal/recommend"
)

// EngineConfig maps the recommend section onto the engine's configuration.
func (c *Config) EngineConfig() *recommend.Config {
	r := c.Recommend
	return &recommend.Config{
		Recency: recommend.RecencyConfig{
			ShortWindow: r.ShortWindow,
			LongWindow:  r.LongWindow,
		},
		Personalized: recommend.PersonalizedConfig{
			RecentViewExclusion: r.RecentViewExclusion,
			MaxCandidates:       r.MaxCandidates,
		},
		Collaborative: recommend.CollaborativeConfig{
			SimilarityThreshold: r.SimilarityThreshold,
			MaxNeighbors:        r.MaxNeighbors,
			Concurrency:         r.Concurrency,
		},
		Integrated: recommend.IntegratedConfig{
			OverfetchFactor: r.OverfetchFactor,
			PopularLikes:    r.PopularLikes,
			PopularViews:    r.PopularViews,
			RecentAge:       r.RecentAge,
		},
		Interactions: recommend.InteractionsConfig{
			MaxViews:      r.MaxViews,
			TopCategories: r.TopCategories,
			TopTags:       r.TopTags,
		},
		Limits: recommend.LimitsConfig{
			MaxLimit:     r.MaxLimit,
			FetchTimeout: r.FetchTimeout,
		},
		Cache: recommend.CacheConfig{
			Enabled: r.CacheEnabled,
			TTL:     r.CacheTTL,
		},
	}
}

// CacheConfig returns the listing cache options.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		TTL:        c.Recommend.CacheTTL,
		MaxEntries: c.Recommend.CacheMaxEntries,
	}
}

// CatalogOptions returns the legacy catalog conversion options.
func (c *Config) CatalogOptions() catalog.Options {
	return catalog.Options{
		DefaultTrustScore: c.Catalog.DefaultTrustScore,
		DefaultSourceType: recommend.SourceType(c.Catalog.DefaultSourceType),
	}
}
