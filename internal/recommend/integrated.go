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
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const reasonDefault = "related content"

// RecommendIntegrated returns up to limit items related to item, blending
// same-category and shared-tag candidates. The item itself is never returned.
//
// Both retrievers run concurrently, each bounded by the fetch timeout. A
// retriever that fails or times out contributes nothing, so the result
// degrades to whatever the other branch found.
func (e *Engine) RecommendIntegrated(ctx context.Context, item *ContentItem, limit int) ([]Candidate, error) {
	e.requestCount.Add(1)

	if item == nil {
		return nil, e.fail(newValidationError("item", "must not be nil"))
	}
	if err := validateID("item_id", item.ID); err != nil {
		return nil, e.fail(err)
	}
	limit, err := e.validateLimit(limit)
	if err != nil {
		return nil, e.fail(err)
	}

	content, _, tags, err := e.stores()
	if err != nil {
		return nil, e.fail(err)
	}

	return e.integrated(ctx, content, tags, item, limit), nil
}

// RecommendIntegratedByID loads the item and returns RecommendIntegrated for it.
// Unlike the listing operations, a missing item is reported as ErrNotFound.
func (e *Engine) RecommendIntegratedByID(ctx context.Context, itemID string, limit int) ([]Candidate, error) {
	if err := validateID("item_id", itemID); err != nil {
		e.requestCount.Add(1)
		return nil, e.fail(err)
	}

	content, _, _, err := e.stores()
	if err != nil {
		e.requestCount.Add(1)
		return nil, e.fail(err)
	}

	item, err := content.GetByID(ctx, itemID)
	if err != nil {
		e.requestCount.Add(1)
		if errors.Is(err, ErrNotFound) {
			return nil, e.fail(fmt.Errorf("item %s: %w", itemID, ErrNotFound))
		}
		return nil, e.fail(e.upstream("get item", err))
	}
	if item == nil || !item.Visible() {
		e.requestCount.Add(1)
		return nil, e.fail(fmt.Errorf("item %s: %w", itemID, ErrNotFound))
	}

	return e.RecommendIntegrated(ctx, item, limit)
}

func (e *Engine) integrated(ctx context.Context, content ContentStore, tags TagRegistry, item *ContentItem, limit int) []Candidate {
	names := normalizeTagNames(item.Tags)

	key := fmt.Sprintf("integrated:%s:%s:%s:%d", item.ID, item.Category, tagKey(names), limit)
	if cached, ok := cacheLookup[Candidate](e, key); ok {
		return cached
	}

	fetch := int(math.Ceil(float64(limit) * e.config.Integrated.OverfetchFactor))
	logger := e.logger.With().Str("op", "integrated").Str("item_id", item.ID).Logger()

	var (
		wg         sync.WaitGroup
		byCategory []ContentItem
		byTag      []Candidate
		partial    atomic.Bool
	)

	if item.Category != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			branchCtx, cancel := e.timeoutContext(ctx)
			defer cancel()

			items, incomplete, err := e.byCategory(branchCtx, content, item.Category, item.ID, fetch)
			if err != nil {
				partial.Store(true)
				logger.Warn().Err(err).Msg("category retrieval failed, continuing without it")
				return
			}
			if incomplete {
				partial.Store(true)
			}
			byCategory = items
		}()
	}

	if len(names) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			branchCtx, cancel := e.timeoutContext(ctx)
			defer cancel()

			candidates, err := e.byTags(branchCtx, content, tags, names, item.ID, fetch)
			if err != nil {
				partial.Store(true)
				logger.Warn().Err(err).Msg("tag retrieval failed, continuing without it")
				return
			}
			byTag = candidates
		}()
	}

	wg.Wait()

	if byCategory == nil && byTag == nil && (item.Category != "" || len(names) > 0) {
		e.degradedCount.Add(1)
	}

	merged := MergeCandidates(byCategory, byTag, item.ID)

	now := e.now()
	for i := range merged {
		c := &merged[i]
		c.FinalScore = e.finalScore(c, now)
		c.Reason = e.integratedReason(c, now)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := &merged[i], &merged[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		return a.Item.ID < b.Item.ID
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}

	logger.Debug().
		Int("category_candidates", len(byCategory)).
		Int("tag_candidates", len(byTag)).
		Int("returned", len(merged)).
		Bool("partial", partial.Load()).
		Msg("integrated recommendation complete")

	if !partial.Load() {
		cacheStore(e, key, merged)
	}
	return merged
}

// MergeCandidates combines category and tag retrieval results into one
// candidate per item id. Category results come first, in retrieval order,
// followed by tag-only results. excludeID is dropped.
func MergeCandidates(byCategory []ContentItem, byTag []Candidate, excludeID string) []Candidate {
	index := make(map[string]int, len(byCategory)+len(byTag))
	merged := make([]Candidate, 0, len(byCategory)+len(byTag))

	for i := range byCategory {
		item := byCategory[i]
		if item.ID == excludeID {
			continue
		}
		if _, dup := index[item.ID]; dup {
			continue
		}
		index[item.ID] = len(merged)
		merged = append(merged, Candidate{
			Item:          item,
			CategoryMatch: true,
			Sources:       []Source{SourceCategory},
		})
	}

	for i := range byTag {
		tc := byTag[i]
		if tc.Item.ID == excludeID {
			continue
		}
		if pos, ok := index[tc.Item.ID]; ok {
			c := &merged[pos]
			if !c.HasSource(SourceTag) {
				c.Sources = append(c.Sources, SourceTag)
			}
			c.TagMatch = true
			c.RelevanceScore = tc.RelevanceScore
			c.MatchingTags = cloneStrings(tc.MatchingTags)
			continue
		}
		index[tc.Item.ID] = len(merged)
		merged = append(merged, Candidate{
			Item:           tc.Item,
			MatchingTags:   cloneStrings(tc.MatchingTags),
			TagMatch:       true,
			RelevanceScore: tc.RelevanceScore,
			Sources:        []Source{SourceTag},
		})
	}

	return merged
}

// finalScore blends the match flags, tag relevance and the candidate's own
// engagement and freshness.
func (e *Engine) finalScore(c *Candidate, now time.Time) float64 {
	relevance := 0.0
	if c.TagMatch {
		relevance = c.RelevanceScore
	}
	return integratedScorer.Score(Signals{
		FactorCategory:     boolSignal(c.CategoryMatch),
		FactorTagRelevance: relevance,
		FactorBothMatch:    boolSignal(c.CategoryMatch && c.TagMatch),
		FactorPopularity:   EngagementPopularity(&c.Item),
		FactorRecency:      RecencyScore(c.Item.PublishedAt, now, e.config.Recency.LongWindow),
	})
}

func (e *Engine) integratedReason(c *Candidate, now time.Time) string {
	var parts []string

	shared := len(c.MatchingTags)
	switch {
	case c.CategoryMatch && c.TagMatch:
		parts = append(parts, fmt.Sprintf("same category with %s", sharedTags(shared)))
	case c.CategoryMatch:
		parts = append(parts, "same category")
	case c.TagMatch:
		parts = append(parts, sharedTags(shared))
	}

	cfg := e.config.Integrated
	if c.Item.LikeCount > cfg.PopularLikes || c.Item.ViewCount > cfg.PopularViews {
		parts = append(parts, "popular")
	}
	if !c.Item.PublishedAt.IsZero() && now.Sub(c.Item.PublishedAt) <= cfg.RecentAge {
		parts = append(parts, "recent")
	}

	if len(parts) == 0 {
		return reasonDefault
	}
	return strings.Join(parts, ", ")
}

func sharedTags(n int) string {
	if n == 1 {
		return "1 shared tag"
	}
	return fmt.Sprintf("%d shared tags", n)
}
