// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import (
	"fmt"
	"time"
)

// Day is the unit used by every recency window.
const Day = 24 * time.Hour

// Config contains all tunable parameters of the engine.
//
// The weight constants of the three scoring formulas are not configurable;
// see PersonalizedWeights, TagRelevanceWeights and IntegratedWeights.
type Config struct {
	// Recency contains the freshness windows used by the scoring formulas.
	Recency RecencyConfig `json:"recency"`

	// Personalized contains parameters for personalized recommendations.
	Personalized PersonalizedConfig `json:"personalized"`

	// Collaborative contains parameters for user-based collaborative filtering.
	Collaborative CollaborativeConfig `json:"collaborative"`

	// Integrated contains parameters for the integrated recommender.
	Integrated IntegratedConfig `json:"integrated"`

	// Interactions contains parameters for interaction recording.
	Interactions InteractionsConfig `json:"interactions"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains listing cache parameters.
	Cache CacheConfig `json:"cache"`
}

// RecencyConfig contains the recency windows.
type RecencyConfig struct {
	// ShortWindow is the window of the personalized recency factor and the
	// "fresh" window of category retrieval.
	// Default: 30 days.
	ShortWindow time.Duration `json:"short_window"`

	// LongWindow is the window of the tag relevance recency factor.
	// Default: 365 days.
	LongWindow time.Duration `json:"long_window"`
}

// PersonalizedConfig contains parameters for personalized recommendations.
type PersonalizedConfig struct {
	// RecentViewExclusion is how many of the most recent views are excluded
	// from candidates to avoid repetition.
	// Default: 50.
	RecentViewExclusion int `json:"recent_view_exclusion"`

	// MaxCandidates bounds the candidates fetched for scoring, keeping the
	// highest trust scores. 0 scores every eligible item.
	// Default: 0.
	MaxCandidates int `json:"max_candidates"`
}

// CollaborativeConfig contains parameters for collaborative filtering.
type CollaborativeConfig struct {
	// SimilarityThreshold is the category similarity a profile must exceed
	// to count as a neighbour.
	// Default: 0.3.
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// MaxNeighbors is the number of most similar profiles whose likes are used.
	// Default: 10.
	MaxNeighbors int `json:"max_neighbors"`

	// Concurrency bounds parallel profile and item lookups.
	// Default: 8.
	Concurrency int `json:"concurrency"`
}

// IntegratedConfig contains parameters for the integrated recommender.
type IntegratedConfig struct {
	// OverfetchFactor multiplies the limit for each retriever.
	// Default: 1.5.
	OverfetchFactor float64 `json:"overfetch_factor"`

	// PopularLikes is the like count above which an item is called popular.
	// Default: 10.
	PopularLikes int `json:"popular_likes"`

	// PopularViews is the view count above which an item is called popular.
	// Default: 100.
	PopularViews int `json:"popular_views"`

	// RecentAge is the maximum age for an item to be called recent.
	// Default: 7 days.
	RecentAge time.Duration `json:"recent_age"`
}

// InteractionsConfig contains parameters for interaction recording.
type InteractionsConfig struct {
	// MaxViews caps the view history; the oldest entries are dropped first.
	// Default: 100.
	MaxViews int `json:"max_views"`

	// TopCategories is how many derived categories are merged into preferences.
	// Default: 5.
	TopCategories int `json:"top_categories"`

	// TopTags is how many derived tags are merged into preference keywords.
	// Default: 10.
	TopTags int `json:"top_tags"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxLimit is the largest accepted result limit. Larger limits are capped.
	// Default: 100.
	MaxLimit int `json:"max_limit"`

	// FetchTimeout bounds each retriever branch of the integrated recommender.
	// Default: 5s.
	FetchTimeout time.Duration `json:"fetch_timeout"`
}

// CacheConfig contains listing cache parameters.
type CacheConfig struct {
	// Enabled controls whether the listing cache is consulted.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the entry time-to-live. The cache itself enforces it; the value
	// is carried here so callers can construct the cache from one config.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Recency: RecencyConfig{
			ShortWindow: 30 * Day,
			LongWindow:  365 * Day,
		},
		Personalized: PersonalizedConfig{
			RecentViewExclusion: 50,
			MaxCandidates:       0,
		},
		Collaborative: CollaborativeConfig{
			SimilarityThreshold: 0.3,
			MaxNeighbors:        10,
			Concurrency:         8,
		},
		Integrated: IntegratedConfig{
			OverfetchFactor: 1.5,
			PopularLikes:    10,
			PopularViews:    100,
			RecentAge:       7 * Day,
		},
		Interactions: InteractionsConfig{
			MaxViews:      100,
			TopCategories: 5,
			TopTags:       10,
		},
		Limits: LimitsConfig{
			MaxLimit:     100,
			FetchTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Recency.ShortWindow <= 0 {
		return fmt.Errorf("recency.short_window must be positive, got %v", c.Recency.ShortWindow)
	}
	if c.Recency.LongWindow <= 0 {
		return fmt.Errorf("recency.long_window must be positive, got %v", c.Recency.LongWindow)
	}

	if c.Personalized.RecentViewExclusion < 0 {
		return fmt.Errorf("personalized.recent_view_exclusion must be non-negative, got %d", c.Personalized.RecentViewExclusion)
	}
	if c.Personalized.MaxCandidates < 0 {
		return fmt.Errorf("personalized.max_candidates must be non-negative, got %d", c.Personalized.MaxCandidates)
	}

	if c.Collaborative.SimilarityThreshold < 0 || c.Collaborative.SimilarityThreshold > 1 {
		return fmt.Errorf("collaborative.similarity_threshold must be in [0, 1], got %f", c.Collaborative.SimilarityThreshold)
	}
	if c.Collaborative.MaxNeighbors < 1 {
		return fmt.Errorf("collaborative.max_neighbors must be positive, got %d", c.Collaborative.MaxNeighbors)
	}
	if c.Collaborative.Concurrency < 1 {
		return fmt.Errorf("collaborative.concurrency must be positive, got %d", c.Collaborative.Concurrency)
	}

	if c.Integrated.OverfetchFactor < 1 {
		return fmt.Errorf("integrated.overfetch_factor must be >= 1, got %f", c.Integrated.OverfetchFactor)
	}

	if c.Interactions.MaxViews < 1 {
		return fmt.Errorf("interactions.max_views must be positive, got %d", c.Interactions.MaxViews)
	}
	if c.Interactions.TopCategories < 0 || c.Interactions.TopTags < 0 {
		return fmt.Errorf("interactions.top_categories and top_tags must be non-negative")
	}

	if c.Limits.MaxLimit < 1 {
		return fmt.Errorf("limits.max_limit must be positive, got %d", c.Limits.MaxLimit)
	}
	if c.Limits.FetchTimeout <= 0 {
		return fmt.Errorf("limits.fetch_timeout must be positive, got %v", c.Limits.FetchTimeout)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when cache is enabled, got %v", c.Cache.TTL)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}
