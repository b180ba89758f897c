// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/lodestar/internal/cache"
	"github.com/tomtom215/lodestar/internal/recommend"
)

func TestRecordStoreQuery(t *testing.T) {
	tests := []struct {
		name      string
		store     string
		operation string
		err       error
		wantType  string
	}{
		{name: "success", store: "duckdb", operation: "query"},
		{name: "timeout", store: "duckdb", operation: "get", err: fmt.Errorf("query: %w", context.DeadlineExceeded), wantType: "timeout"},
		{name: "canceled", store: "badger", operation: "get_profile", err: context.Canceled, wantType: "canceled"},
		{name: "not found", store: "catalog", operation: "get", err: errors.New("item x: not found"), wantType: "not_found"},
		{name: "connection", store: "duckdb", operation: "query", err: errors.New("sql: database is closed"), wantType: "connection"},
		{name: "other", store: "badger", operation: "save_profile", err: errors.New("boom"), wantType: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before float64
			if tt.err != nil {
				before = testutil.ToFloat64(StoreQueryErrors.WithLabelValues(tt.store, tt.operation, tt.wantType))
			}

			RecordStoreQuery(tt.store, tt.operation, 5*time.Millisecond, tt.err)

			if tt.err != nil {
				after := testutil.ToFloat64(StoreQueryErrors.WithLabelValues(tt.store, tt.operation, tt.wantType))
				if after != before+1 {
					t.Errorf("error counter = %f, want %f", after, before+1)
				}
			}
		})
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/tags/related", "200"))
	RecordAPIRequest("GET", "/api/v1/tags/related", "200", 12*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/tags/related", "200"))

	if after != before+1 {
		t.Errorf("APIRequestsTotal = %f, want %f", after, before+1)
	}
}

func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %f, want %f", got, before+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %f, want %f", got, before)
	}
}

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationRequests.WithLabelValues("personalized", "ok"))
	RecordRecommendation("personalized", "ok", 10, 3*time.Millisecond)
	RecordRecommendation("personalized", "invalid", 0, time.Millisecond)

	if got := testutil.ToFloat64(RecommendationRequests.WithLabelValues("personalized", "ok")); got != before+1 {
		t.Errorf("ok counter = %f, want %f", got, before+1)
	}
}

func TestRecordInteractionAndDerivation(t *testing.T) {
	before := testutil.ToFloat64(InteractionsTotal.WithLabelValues("like", "record", "true"))
	RecordInteraction("like", "record", true)
	if got := testutil.ToFloat64(InteractionsTotal.WithLabelValues("like", "record", "true")); got != before+1 {
		t.Errorf("interaction counter = %f, want %f", got, before+1)
	}

	failures := testutil.ToFloat64(InterestDerivations.WithLabelValues("failure"))
	RecordInterestDerivation(errors.New("down"))
	RecordInterestDerivation(nil)
	if got := testutil.ToFloat64(InterestDerivations.WithLabelValues("failure")); got != failures+1 {
		t.Errorf("failure counter = %f, want %f", got, failures+1)
	}
}

type staticEngineStats recommend.Metrics

func (s staticEngineStats) GetMetrics() recommend.Metrics { return recommend.Metrics(s) }

func TestEngineCollector(t *testing.T) {
	c := NewEngineCollector(staticEngineStats{
		RequestCount:   12,
		ErrorCount:     2,
		UpstreamErrors: 3,
		Degraded:       1,
		CacheHits:      7,
		CacheMisses:    5,
	})

	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	expected := `
# HELP lodestar_engine_requests_total Total number of top-level engine calls
# TYPE lodestar_engine_requests_total counter
lodestar_engine_requests_total 12
# HELP lodestar_engine_cache_lookups_total Total number of listing cache lookups by the engine
# TYPE lodestar_engine_cache_lookups_total counter
lodestar_engine_cache_lookups_total{result="hit"} 7
lodestar_engine_cache_lookups_total{result="miss"} 5
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"lodestar_engine_requests_total", "lodestar_engine_cache_lookups_total"); err != nil {
		t.Errorf("GatherAndCompare() error = %v", err)
	}

	if n := testutil.CollectAndCount(c); n != 8 {
		t.Errorf("CollectAndCount() = %d, want 8", n)
	}
}

func TestCacheCollector(t *testing.T) {
	c := cache.New(time.Minute)
	defer c.Close()
	c.Set("a", 1)
	c.Get("a")
	c.Get("b")
	c.Clear()

	collector := NewCacheCollector(c)
	if n := testutil.CollectAndCount(collector); n != 5 {
		t.Errorf("CollectAndCount() = %d, want 5", n)
	}

	expected := `
# HELP lodestar_cache_clears_total Total number of full listing cache clears
# TYPE lodestar_cache_clears_total counter
lodestar_cache_clears_total 1
`
	if err := testutil.CollectAndCompare(collector, strings.NewReader(expected), "lodestar_cache_clears_total"); err != nil {
		t.Errorf("CollectAndCompare() error = %v", err)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			RecordStoreQuery("duckdb", "query", time.Duration(n)*time.Millisecond, nil)
			RecordRecommendation("integrated", "ok", n, time.Millisecond)
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}(i)
	}
	wg.Wait()
}
