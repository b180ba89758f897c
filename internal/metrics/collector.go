// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomtom215/lodestar/internal/cache"
	"github.com/tomtom215/lodestar/internal/recommend"
)

// EngineStatsSource is implemented by *recommend.Engine.
type EngineStatsSource interface {
	GetMetrics() recommend.Metrics
}

// CacheStatsSource is implemented by *cache.Cache.
type CacheStatsSource interface {
	GetStats() cache.Stats
}

// EngineCollector exports the engine's internal counters at scrape time.
type EngineCollector struct {
	source EngineStatsSource

	requests       *prometheus.Desc
	errors         *prometheus.Desc
	upstreamErrors *prometheus.Desc
	degraded       *prometheus.Desc
	writes         *prometheus.Desc
	skipped        *prometheus.Desc
	engineCache    *prometheus.Desc
}

// NewEngineCollector creates a collector reading from source.
func NewEngineCollector(source EngineStatsSource) *EngineCollector {
	return &EngineCollector{
		source: source,
		requests: prometheus.NewDesc("lodestar_engine_requests_total",
			"Total number of top-level engine calls", nil, nil),
		errors: prometheus.NewDesc("lodestar_engine_errors_total",
			"Total number of engine calls that returned an error", nil, nil),
		upstreamErrors: prometheus.NewDesc("lodestar_engine_upstream_errors_total",
			"Total number of failed store calls seen by the engine", nil, nil),
		degraded: prometheus.NewDesc("lodestar_engine_degraded_total",
			"Total number of recommendation calls answered with a fallback or empty list", nil, nil),
		writes: prometheus.NewDesc("lodestar_engine_interaction_writes_total",
			"Total number of persisted interaction changes", nil, nil),
		skipped: prometheus.NewDesc("lodestar_engine_skipped_lookups_total",
			"Total number of per-item lookups skipped after a failure", nil, nil),
		engineCache: prometheus.NewDesc("lodestar_engine_cache_lookups_total",
			"Total number of listing cache lookups by the engine", []string{"result"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *EngineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.errors
	ch <- c.upstreamErrors
	ch <- c.degraded
	ch <- c.writes
	ch <- c.skipped
	ch <- c.engineCache
}

// Collect implements prometheus.Collector.
func (c *EngineCollector) Collect(ch chan<- prometheus.Metric) {
	m := c.source.GetMetrics()

	ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(m.RequestCount))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(m.ErrorCount))
	ch <- prometheus.MustNewConstMetric(c.upstreamErrors, prometheus.CounterValue, float64(m.UpstreamErrors))
	ch <- prometheus.MustNewConstMetric(c.degraded, prometheus.CounterValue, float64(m.Degraded))
	ch <- prometheus.MustNewConstMetric(c.writes, prometheus.CounterValue, float64(m.InteractionWrites))
	ch <- prometheus.MustNewConstMetric(c.skipped, prometheus.CounterValue, float64(m.SkippedLookups))
	ch <- prometheus.MustNewConstMetric(c.engineCache, prometheus.CounterValue, float64(m.CacheHits), "hit")
	ch <- prometheus.MustNewConstMetric(c.engineCache, prometheus.CounterValue, float64(m.CacheMisses), "miss")
}

// CacheCollector exports listing cache statistics at scrape time.
type CacheCollector struct {
	source CacheStatsSource

	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	clears    *prometheus.Desc
	entries   *prometheus.Desc
}

// NewCacheCollector creates a collector reading from source.
func NewCacheCollector(source CacheStatsSource) *CacheCollector {
	return &CacheCollector{
		source:    source,
		hits:      prometheus.NewDesc("lodestar_cache_hits_total", "Total number of listing cache hits", nil, nil),
		misses:    prometheus.NewDesc("lodestar_cache_misses_total", "Total number of listing cache misses", nil, nil),
		evictions: prometheus.NewDesc("lodestar_cache_evictions_total", "Total number of listing cache evictions", nil, nil),
		clears:    prometheus.NewDesc("lodestar_cache_clears_total", "Total number of full listing cache clears", nil, nil),
		entries:   prometheus.NewDesc("lodestar_cache_entries", "Current number of listing cache entries", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.clears
	ch <- c.entries
}

// Collect implements prometheus.Collector.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.GetStats()

	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.clears, prometheus.CounterValue, float64(s.Clears))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.TotalKeys))
}
