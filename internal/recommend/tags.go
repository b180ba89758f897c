// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// normalizeTagNames lowercases, trims and dedupes tag names, keeping the
// first occurrence order.
func normalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		t := normalizeTag(n)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// tagKey builds an order-independent cache key fragment.
func tagKey(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// RecommendByTags returns up to limit visible items sharing at least one of
// tagNames, excluding excludeID, ranked by tag relevance.
func (e *Engine) RecommendByTags(ctx context.Context, tagNames []string, excludeID string, limit int) ([]Candidate, error) {
	e.requestCount.Add(1)

	names := normalizeTagNames(tagNames)
	if len(names) == 0 {
		return nil, e.fail(newValidationError("tags", "at least one tag is required"))
	}
	limit, err := e.validateLimit(limit)
	if err != nil {
		return nil, e.fail(err)
	}

	content, _, tags, err := e.stores()
	if err != nil {
		return nil, e.fail(err)
	}

	candidates, err := e.byTags(ctx, content, tags, names, excludeID, limit)
	if err != nil {
		return nil, e.fail(err)
	}
	return candidates, nil
}

// byTags is the cached tag retriever shared with the integrated recommender.
// names must already be normalized.
func (e *Engine) byTags(ctx context.Context, content ContentStore, tags TagRegistry, names []string, excludeID string, limit int) ([]Candidate, error) {
	key := fmt.Sprintf("tags:%s:%s:%d", tagKey(names), excludeID, limit)
	if cached, ok := cacheLookup[Candidate](e, key); ok {
		return cached, nil
	}

	resolved, err := tags.Resolve(ctx, names)
	if err != nil {
		return nil, e.upstream("resolve tags", err)
	}
	if len(resolved) == 0 {
		cacheStore(e, key, []Candidate{})
		return []Candidate{}, nil
	}

	tagNames := make(map[string]string, len(resolved))
	tagIDs := make([]string, 0, len(resolved))
	for _, t := range resolved {
		tagNames[t.ID] = t.Name
		tagIDs = append(tagIDs, t.ID)
	}

	rows, err := tags.ItemsForTags(ctx, tagIDs)
	if err != nil {
		return nil, e.upstream("load tag memberships", err)
	}

	// item id -> matching tag names, in registry row order
	matches := make(map[string][]string)
	var itemIDs []string
	for _, row := range rows {
		if row.ItemID == excludeID {
			continue
		}
		name, ok := tagNames[row.TagID]
		if !ok {
			continue
		}
		if _, seen := matches[row.ItemID]; !seen {
			itemIDs = append(itemIDs, row.ItemID)
		}
		if !containsString(matches[row.ItemID], name) {
			matches[row.ItemID] = append(matches[row.ItemID], name)
		}
	}
	if len(itemIDs) == 0 {
		cacheStore(e, key, []Candidate{})
		return []Candidate{}, nil
	}

	q := Query{IDs: itemIDs, ActiveOnly: true, ExcludeDrafts: true}
	if excludeID != "" {
		q.ExcludeIDs = []string{excludeID}
	}
	items, err := content.Query(ctx, q)
	if err != nil {
		return nil, e.upstream("query tagged items", err)
	}

	now := e.now()
	window := e.config.Recency.LongWindow
	candidates := make([]Candidate, 0, len(items))
	for i := range items {
		item := &items[i]
		matching := matches[item.ID]
		if item.ID == excludeID || !item.Visible() || len(matching) == 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			Item:           *item,
			MatchingTags:   matching,
			TagMatch:       true,
			RelevanceScore: ScoreTagRelevance(item, len(matching), len(names), now, window),
			Sources:        []Source{SourceTag},
		})
	}

	sortByRelevance(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	cacheStore(e, key, candidates)
	return candidates, nil
}

// sortByRelevance orders by relevance desc, matching tag count desc,
// engagement desc, then id.
func sortByRelevance(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		a, b := &c[i], &c[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if len(a.MatchingTags) != len(b.MatchingTags) {
			return len(a.MatchingTags) > len(b.MatchingTags)
		}
		if ea, eb := engagement(&a.Item), engagement(&b.Item); ea != eb {
			return ea > eb
		}
		return a.Item.ID < b.Item.ID
	})
}
