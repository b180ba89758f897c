// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import (
	"context"
	"fmt"
	"sort"
)

// RecommendByCategory returns up to limit visible items of a category,
// excluding excludeID. Items published within the short recency window come
// first in engagement order; older items backfill the remainder.
func (e *Engine) RecommendByCategory(ctx context.Context, category, excludeID string, limit int) ([]ContentItem, error) {
	e.requestCount.Add(1)

	if err := validateID("category", category); err != nil {
		return nil, e.fail(err)
	}
	limit, err := e.validateLimit(limit)
	if err != nil {
		return nil, e.fail(err)
	}

	content, _, _, err := e.stores()
	if err != nil {
		return nil, e.fail(err)
	}

	items, _, err := e.byCategory(ctx, content, category, excludeID, limit)
	if err != nil {
		return nil, e.fail(err)
	}
	return items, nil
}

// byCategory is the cached category retriever shared with the integrated
// recommender. partial reports a failed backfill; such results are not cached.
func (e *Engine) byCategory(ctx context.Context, content ContentStore, category, excludeID string, limit int) (result []ContentItem, partial bool, err error) {
	key := fmt.Sprintf("category:%s:%s:%d", category, excludeID, limit)
	if cached, ok := cacheLookup[ContentItem](e, key); ok {
		return cached, false, nil
	}

	cutoff := e.now().Add(-e.config.Recency.ShortWindow)
	exclude := []string{}
	if excludeID != "" {
		exclude = append(exclude, excludeID)
	}

	fresh, err := content.Query(ctx, Query{
		Category:       category,
		ExcludeIDs:     exclude,
		ActiveOnly:     true,
		ExcludeDrafts:  true,
		PublishedAfter: cutoff,
		Order:          OrderEngagement,
		Limit:          limit,
	})
	if err != nil {
		return nil, false, e.upstream("query recent category items", err)
	}

	selected := make(map[string]struct{}, limit)
	result = appendCategoryItems(make([]ContentItem, 0, limit), fresh, category, excludeID, selected, limit)
	sortByEngagement(result)

	if len(result) < limit {
		for id := range selected {
			exclude = append(exclude, id)
		}
		sort.Strings(exclude)

		older, err := content.Query(ctx, Query{
			Category:        category,
			ExcludeIDs:      exclude,
			ActiveOnly:      true,
			ExcludeDrafts:   true,
			PublishedBefore: cutoff,
			Order:           OrderEngagement,
			Limit:           limit - len(result),
		})
		if err != nil {
			e.upstreamErrors.Add(1)
			partial = true
			e.logger.Warn().Err(err).Str("category", category).Msg("category backfill failed, returning recent items only")
		} else {
			backfill := appendCategoryItems(nil, older, category, excludeID, selected, limit-len(result))
			sortByEngagement(backfill)
			result = append(result, backfill...)
		}
	}

	if !partial {
		cacheStore(e, key, result)
	}
	return result, partial, nil
}

// appendCategoryItems appends visible items of category that are not excludeID
// and not yet selected, stopping once n items were appended.
func appendCategoryItems(dst, items []ContentItem, category, excludeID string, selected map[string]struct{}, n int) []ContentItem {
	added := 0
	for i := range items {
		if added == n {
			break
		}
		item := &items[i]
		if item.ID == excludeID || item.Category != category || !item.Visible() {
			continue
		}
		if _, dup := selected[item.ID]; dup {
			continue
		}
		selected[item.ID] = struct{}{}
		dst = append(dst, *item)
		added++
	}
	return dst
}

// sortByEngagement orders by views desc, likes desc, then newest first.
func sortByEngagement(items []ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if a.ViewCount != b.ViewCount {
			return a.ViewCount > b.ViewCount
		}
		if a.LikeCount != b.LikeCount {
			return a.LikeCount > b.LikeCount
		}
		return a.PublishedAt.After(b.PublishedAt)
	})
}
