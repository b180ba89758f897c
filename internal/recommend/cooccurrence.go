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

// SuggestRelatedTags returns up to limit tags that co-occur with tagNames on
// visible items, ranked by association score. Input tags are never suggested.
// When no input tag is known the result is empty.
func (e *Engine) SuggestRelatedTags(ctx context.Context, tagNames []string, limit int) ([]TagSuggestion, error) {
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

	key := fmt.Sprintf("related:%s:%d", tagKey(names), limit)
	if cached, ok := cacheLookup[TagSuggestion](e, key); ok {
		return cached, nil
	}

	resolved, err := tags.Resolve(ctx, names)
	if err != nil {
		return nil, e.fail(e.upstream("resolve tags", err))
	}
	if len(resolved) == 0 {
		cacheStore(e, key, []TagSuggestion{})
		return []TagSuggestion{}, nil
	}

	input := make(map[string]struct{}, len(names)+len(resolved))
	for _, n := range names {
		input[n] = struct{}{}
	}
	tagIDs := make([]string, 0, len(resolved))
	for _, t := range resolved {
		input[normalizeTag(t.Name)] = struct{}{}
		tagIDs = append(tagIDs, t.ID)
	}

	rows, err := tags.ItemsForTags(ctx, tagIDs)
	if err != nil {
		return nil, e.fail(e.upstream("load tag memberships", err))
	}

	itemIDs := uniqueItemIDs(rows)
	items, partial := e.resolveItems(ctx, content, itemIDs)

	counts := make(map[string]int)
	var order []string
	n := 0
	for _, id := range itemIDs {
		item, ok := items[id]
		if !ok || !item.Visible() {
			continue
		}
		n++
		seen := make(map[string]struct{}, len(item.Tags))
		for _, tag := range item.Tags {
			t := normalizeTag(tag)
			if t == "" {
				continue
			}
			if _, isInput := input[t]; isInput {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	if n == 0 || len(order) == 0 {
		if !partial {
			cacheStore(e, key, []TagSuggestion{})
		}
		return []TagSuggestion{}, nil
	}

	globals, ok := e.globalPostCounts(ctx, tags, order)
	partial = partial || !ok

	suggestions := make([]TagSuggestion, 0, len(order))
	for _, name := range order {
		rate := float64(counts[name]) / float64(n)
		global := globals[name]
		suggestions = append(suggestions, TagSuggestion{
			Name:              name,
			AssociationScore:  AssociationScore(rate, global),
			CoOccurrenceCount: counts[name],
			CoOccurrenceRate:  rate,
			GlobalPostCount:   global,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := &suggestions[i], &suggestions[j]
		if a.AssociationScore != b.AssociationScore {
			return a.AssociationScore > b.AssociationScore
		}
		if a.CoOccurrenceCount != b.CoOccurrenceCount {
			return a.CoOccurrenceCount > b.CoOccurrenceCount
		}
		return a.Name < b.Name
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	e.logger.Debug().
		Strs("tags", names).
		Int("candidate_items", n).
		Int("returned", len(suggestions)).
		Bool("partial", partial).
		Msg("related tag suggestion complete")

	if !partial {
		cacheStore(e, key, suggestions)
	}
	return suggestions, nil
}

// globalPostCounts looks up the global counters of names. Unknown tags, or
// all tags when the registry fails, count as 0; ok is false on failure.
func (e *Engine) globalPostCounts(ctx context.Context, tags TagRegistry, names []string) (counts map[string]int, ok bool) {
	out := make(map[string]int, len(names))

	resolved, err := tags.Resolve(ctx, names)
	if err != nil {
		e.upstreamErrors.Add(1)
		e.logger.Warn().Err(err).Msg("global tag counts unavailable, assuming zero")
		return out, false
	}
	for _, t := range resolved {
		out[normalizeTag(t.Name)] += t.GlobalPostCount
	}
	return out, true
}

// uniqueItemIDs returns the distinct item ids of rows in first-seen order.
func uniqueItemIDs(rows []TagItem) []string {
	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if _, dup := seen[r.ItemID]; dup {
			continue
		}
		seen[r.ItemID] = struct{}{}
		ids = append(ids, r.ItemID)
	}
	return ids
}
