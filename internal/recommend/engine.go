// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages.
// Stores and the listing cache are injected through the interfaces in types.go.

// Engine scores and ranks content items supplied by external stores.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	// Stores
	content  ContentStore
	profiles ProfileStore
	tags     TagRegistry
	storesMu sync.RWMutex

	// Listing cache, nil when disabled
	cache ListingCache

	// Per-user write serialization
	userLocks sync.Map // map[string]*sync.Mutex

	// Clock, replaceable in tests
	now func() time.Time

	// Metrics
	requestCount      atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	cacheClears       atomic.Int64
	errorCount        atomic.Int64
	upstreamErrors    atomic.Int64
	degradedCount     atomic.Int64
	interactionWrites atomic.Int64
	skippedLookups    atomic.Int64
}

// Metrics is a point-in-time snapshot of engine counters.
type Metrics struct {
	// RequestCount is the total number of top-level engine calls.
	RequestCount int64 `json:"request_count"`

	// CacheHits is the number of listing cache hits.
	CacheHits int64 `json:"cache_hits"`

	// CacheMisses is the number of listing cache misses.
	CacheMisses int64 `json:"cache_misses"`

	// CacheClears is the number of times the listing cache was cleared after a write.
	CacheClears int64 `json:"cache_clears"`

	// ErrorCount is the number of calls that returned an error.
	ErrorCount int64 `json:"error_count"`

	// UpstreamErrors is the number of failed store calls.
	UpstreamErrors int64 `json:"upstream_errors"`

	// Degraded is the number of recommendation calls answered with a
	// fallback or empty list because a store failed.
	Degraded int64 `json:"degraded"`

	// InteractionWrites is the number of persisted interaction changes.
	InteractionWrites int64 `json:"interaction_writes"`

	// SkippedLookups is the number of per-item lookups skipped after a failure.
	SkippedLookups int64 `json:"skipped_lookups"`
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		now:    time.Now,
	}, nil
}

// SetStores sets the content store, profile store and tag registry.
func (e *Engine) SetStores(content ContentStore, profiles ProfileStore, tags TagRegistry) {
	e.storesMu.Lock()
	defer e.storesMu.Unlock()

	e.content = content
	e.profiles = profiles
	e.tags = tags
}

// SetCache sets the listing cache. A nil cache disables caching.
func (e *Engine) SetCache(c ListingCache) {
	e.storesMu.Lock()
	defer e.storesMu.Unlock()

	e.cache = c
}

// SetClock replaces the time source used for recency scoring.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// GetConfig returns a copy of the engine configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// GetMetrics returns the current engine metrics.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount:      e.requestCount.Load(),
		CacheHits:         e.cacheHits.Load(),
		CacheMisses:       e.cacheMisses.Load(),
		CacheClears:       e.cacheClears.Load(),
		ErrorCount:        e.errorCount.Load(),
		UpstreamErrors:    e.upstreamErrors.Load(),
		Degraded:          e.degradedCount.Load(),
		InteractionWrites: e.interactionWrites.Load(),
		SkippedLookups:    e.skippedLookups.Load(),
	}
}

// stores returns the configured stores or an error if any is missing.
func (e *Engine) stores() (ContentStore, ProfileStore, TagRegistry, error) {
	e.storesMu.RLock()
	defer e.storesMu.RUnlock()

	if e.content == nil || e.profiles == nil || e.tags == nil {
		return nil, nil, nil, errStoresNotSet
	}
	return e.content, e.profiles, e.tags, nil
}

func (e *Engine) listingCache() ListingCache {
	e.storesMu.RLock()
	defer e.storesMu.RUnlock()

	if !e.config.Cache.Enabled {
		return nil
	}
	return e.cache
}

// fail counts an error and returns it unchanged.
func (e *Engine) fail(err error) error {
	e.errorCount.Add(1)
	return err
}

// upstream counts a store failure and wraps it.
func (e *Engine) upstream(op string, err error) error {
	e.upstreamErrors.Add(1)
	return upstreamError(op, err)
}

// lockUser acquires the write lock of a user and returns its release func.
func (e *Engine) lockUser(userID string) func() {
	v, _ := e.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex) //nolint:errcheck,forcetypeassert // only *sync.Mutex is stored
	mu.Lock()
	return mu.Unlock
}

// cacheLookup returns a copy of a cached snapshot.
func cacheLookup[T any](e *Engine, key string) ([]T, bool) {
	c := e.listingCache()
	if c == nil {
		return nil, false
	}

	v, ok := c.Get(key)
	if !ok {
		e.cacheMisses.Add(1)
		return nil, false
	}

	snapshot, ok := v.([]T)
	if !ok {
		e.cacheMisses.Add(1)
		return nil, false
	}

	e.cacheHits.Add(1)
	return append([]T(nil), snapshot...), true
}

// cacheStore stores a copy of result as an immutable snapshot.
func cacheStore[T any](e *Engine, key string, result []T) {
	c := e.listingCache()
	if c == nil {
		return
	}
	c.Set(key, append([]T(nil), result...))
}

// clearCache drops every cached listing. Called after each write.
func (e *Engine) clearCache() {
	c := e.listingCache()
	if c == nil {
		return
	}
	c.Clear()
	e.cacheClears.Add(1)
	e.logger.Debug().Msg("listing cache cleared")
}

// timeoutContext bounds a single retriever branch.
func (e *Engine) timeoutContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.config.Limits.FetchTimeout)
}
