// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

func TestMergeCandidates(t *testing.T) {
	t.Parallel()

	byCategory := []ContentItem{
		{ID: "cat-only"},
		{ID: "both"},
		{ID: "self"},
	}
	byTag := []Candidate{
		{Item: ContentItem{ID: "both"}, RelevanceScore: 0.7, MatchingTags: []string{"x"}, TagMatch: true, Sources: []Source{SourceTag}},
		{Item: ContentItem{ID: "tag-only"}, RelevanceScore: 0.4, MatchingTags: []string{"x", "y"}, TagMatch: true, Sources: []Source{SourceTag}},
		{Item: ContentItem{ID: "self"}, RelevanceScore: 1, TagMatch: true},
	}

	merged := MergeCandidates(byCategory, byTag, "self")

	if ids := candidateIDs(merged); !equalStrings(ids, []string{"cat-only", "both", "tag-only"}) {
		t.Fatalf("ids = %v", ids)
	}

	tests := []struct {
		idx           int
		categoryMatch bool
		tagMatch      bool
		relevance     float64
		sources       int
	}{
		{idx: 0, categoryMatch: true, tagMatch: false, relevance: 0, sources: 1},
		{idx: 1, categoryMatch: true, tagMatch: true, relevance: 0.7, sources: 2},
		{idx: 2, categoryMatch: false, tagMatch: true, relevance: 0.4, sources: 1},
	}
	for _, tt := range tests {
		c := merged[tt.idx]
		if c.CategoryMatch != tt.categoryMatch || c.TagMatch != tt.tagMatch {
			t.Errorf("%s match flags = %v/%v, want %v/%v", c.Item.ID, c.CategoryMatch, c.TagMatch, tt.categoryMatch, tt.tagMatch)
		}
		if c.RelevanceScore != tt.relevance {
			t.Errorf("%s relevance = %f, want %f", c.Item.ID, c.RelevanceScore, tt.relevance)
		}
		if len(c.Sources) != tt.sources {
			t.Errorf("%s sources = %v, want %d", c.Item.ID, c.Sources, tt.sources)
		}
	}
}

func TestEngine_FinalScore(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(nil, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	old := daysAgo(400)

	tests := []struct {
		name string
		c    Candidate
		want float64
	}{
		{
			name: "category only",
			c:    Candidate{Item: ContentItem{PublishedAt: old}, CategoryMatch: true},
			want: 0.30,
		},
		{
			name: "tag only",
			c:    Candidate{Item: ContentItem{PublishedAt: old}, TagMatch: true, RelevanceScore: 0.5},
			want: 0.40 * 0.5,
		},
		{
			name: "both",
			c:    Candidate{Item: ContentItem{PublishedAt: old}, CategoryMatch: true, TagMatch: true, RelevanceScore: 0.5},
			want: 0.30 + 0.20 + 0.10,
		},
		{
			name: "relevance ignored without tag match",
			c:    Candidate{Item: ContentItem{PublishedAt: old}, CategoryMatch: true, RelevanceScore: 0.9},
			want: 0.30,
		},
		{
			name: "popularity and recency",
			c:    Candidate{Item: ContentItem{PublishedAt: testNow, ViewCount: 100, LikeCount: 20}, CategoryMatch: true},
			want: 0.30 + 0.15*0.2 + 0.05,
		},
		{
			name: "clamped",
			c: Candidate{
				Item:          ContentItem{PublishedAt: testNow, ViewCount: 10000},
				CategoryMatch: true, TagMatch: true, RelevanceScore: 1,
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.finalScore(&tt.c, testNow); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("finalScore() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestEngine_IntegratedReason(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(nil, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	old := daysAgo(30)

	tests := []struct {
		name string
		c    Candidate
		want string
	}{
		{
			name: "both with tags",
			c:    Candidate{Item: ContentItem{PublishedAt: old}, CategoryMatch: true, TagMatch: true, MatchingTags: []string{"a", "b"}},
			want: "same category with 2 shared tags",
		},
		{
			name: "category only",
			c:    Candidate{Item: ContentItem{PublishedAt: old}, CategoryMatch: true},
			want: "same category",
		},
		{
			name: "single tag",
			c:    Candidate{Item: ContentItem{PublishedAt: old}, TagMatch: true, MatchingTags: []string{"a"}},
			want: "1 shared tag",
		},
		{
			name: "popular by likes and recent",
			c:    Candidate{Item: ContentItem{PublishedAt: daysAgo(7), LikeCount: 11}, CategoryMatch: true},
			want: "same category, popular, recent",
		},
		{
			name: "popular by views",
			c:    Candidate{Item: ContentItem{PublishedAt: old, ViewCount: 101}, TagMatch: true, MatchingTags: []string{"a", "b", "c"}},
			want: "3 shared tags, popular",
		},
		{
			name: "thresholds are exclusive",
			c:    Candidate{Item: ContentItem{PublishedAt: old, ViewCount: 100, LikeCount: 10}, CategoryMatch: true},
			want: "same category",
		},
		{
			name: "nothing fired",
			c:    Candidate{Item: ContentItem{PublishedAt: old}},
			want: reasonDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.integratedReason(&tt.c, testNow); got != tt.want {
				t.Errorf("integratedReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func integratedFixture() (ContentItem, []ContentItem) {
	src := newItem("src", "herbs", "ginger", "digestion")
	src.PublishedAt = daysAgo(1)

	both := newItem("both", "herbs", "ginger")
	both.PublishedAt = daysAgo(2)

	catOnly := newItem("cat-only", "herbs", "unrelated")
	catOnly.PublishedAt = daysAgo(3)

	tagOnly := newItem("tag-only", "nutrition", "ginger", "digestion")
	tagOnly.PublishedAt = daysAgo(4)

	noise := newItem("noise", "fitness", "running")

	return src, []ContentItem{src, both, catOnly, tagOnly, noise}
}

func TestEngine_RecommendIntegrated(t *testing.T) {
	t.Parallel()

	src, items := integratedFixture()
	te := newTestEngine(items)

	got, err := te.RecommendIntegrated(context.Background(), &src, 10)
	if err != nil {
		t.Fatalf("RecommendIntegrated() error = %v", err)
	}

	if ids := candidateIDs(got); !equalStrings(ids, []string{"both", "tag-only", "cat-only"}) {
		t.Fatalf("ids = %v", ids)
	}

	for i, c := range got {
		if c.Item.ID == src.ID {
			t.Errorf("source item returned at %d", i)
		}
		if c.FinalScore < 0 || c.FinalScore > 1 {
			t.Errorf("%s final score %f out of [0,1]", c.Item.ID, c.FinalScore)
		}
		if c.Reason == "" {
			t.Errorf("%s has no reason", c.Item.ID)
		}
	}

	if !got[0].CategoryMatch || !got[0].TagMatch || len(got[0].Sources) != 2 {
		t.Errorf("both: %+v", got[0])
	}
	if got[0].Reason != "same category with 1 shared tag, recent" {
		t.Errorf("both reason = %q", got[0].Reason)
	}
}

func TestEngine_RecommendIntegrated_NeverReturnsSource(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 12; n++ {
		var items []ContentItem
		src := newItem("src", "c", "t1", "t2")
		items = append(items, src)
		for i := 0; i < n; i++ {
			items = append(items, newItem(fmt.Sprintf("i%d", i), "c", "t1"))
		}

		te := newTestEngine(items)
		for _, limit := range []int{1, 3, n, 20} {
			got, err := te.RecommendIntegrated(context.Background(), &src, limit)
			if err != nil {
				t.Fatalf("RecommendIntegrated() error = %v", err)
			}
			if len(got) > limit {
				t.Errorf("n=%d limit=%d: len = %d", n, limit, len(got))
			}
			for _, c := range got {
				if c.Item.ID == "src" {
					t.Fatalf("n=%d limit=%d: source item returned", n, limit)
				}
			}
		}
	}
}

func TestEngine_RecommendIntegrated_Degrades(t *testing.T) {
	t.Parallel()

	t.Run("tag branch fails", func(t *testing.T) {
		t.Parallel()

		src, items := integratedFixture()
		te := newTestEngine(items)
		te.tags.resolveErr = errStoreDown

		got, err := te.RecommendIntegrated(context.Background(), &src, 10)
		if err != nil {
			t.Fatalf("RecommendIntegrated() error = %v", err)
		}
		if ids := candidateIDs(got); !equalStrings(ids, []string{"both", "cat-only"}) {
			t.Errorf("ids = %v, want category-only ranking", ids)
		}
		for _, c := range got {
			if c.TagMatch {
				t.Errorf("%s marked as tag match", c.Item.ID)
			}
		}
	})

	t.Run("every store fails", func(t *testing.T) {
		t.Parallel()

		src, items := integratedFixture()
		te := newTestEngine(items)
		te.tags.resolveErr = errStoreDown
		te.content.queryErr = errStoreDown

		got, err := te.RecommendIntegrated(context.Background(), &src, 10)
		if err != nil {
			t.Fatalf("RecommendIntegrated() error = %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want empty non-nil list", got)
		}
		if te.GetMetrics().Degraded != 1 {
			t.Errorf("Degraded = %d, want 1", te.GetMetrics().Degraded)
		}
	})

	t.Run("branch timeout", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Limits.FetchTimeout = time.Nanosecond
		engine, err := NewEngine(cfg, testLogger())
		if err != nil {
			t.Fatalf("NewEngine() error = %v", err)
		}
		src, items := integratedFixture()
		content := newMockContentStore(items...)
		engine.SetStores(content, newMockProfileStore(), newMockTagRegistry(content))

		got, err := engine.RecommendIntegrated(context.Background(), &src, 10)
		if err != nil {
			t.Fatalf("RecommendIntegrated() error = %v", err)
		}
		for _, c := range got {
			if c.Item.ID == src.ID {
				t.Error("source item returned")
			}
		}
	})
}

func TestEngine_RecommendIntegratedByID(t *testing.T) {
	t.Parallel()

	_, items := integratedFixture()
	hidden := newItem("hidden", "herbs")
	hidden.IsActive = false
	items = append(items, hidden)
	te := newTestEngine(items)

	got, err := te.RecommendIntegratedByID(context.Background(), "src", 2)
	if err != nil {
		t.Fatalf("RecommendIntegratedByID() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}

	if _, err := te.RecommendIntegratedByID(context.Background(), "missing", 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing item error = %v, want ErrNotFound", err)
	}
	if _, err := te.RecommendIntegratedByID(context.Background(), "hidden", 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("inactive item error = %v, want ErrNotFound", err)
	}

	te.content.getErrs["src"] = errStoreDown
	if _, err := te.RecommendIntegratedByID(context.Background(), "src", 2); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("store failure error = %v, want ErrUpstreamUnavailable", err)
	}
}
