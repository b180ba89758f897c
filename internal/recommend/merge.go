// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import "sort"

// MergeItems returns the union by id of primary and fallback, preferring the
// primary copy of any item present in both, sorted by order. Items appearing
// in only one source are kept. Neither input is modified.
func MergeItems(primary, fallback []ContentItem, order Ordering) []ContentItem {
	seen := make(map[string]struct{}, len(primary)+len(fallback))
	out := make([]ContentItem, 0, len(primary)+len(fallback))

	for _, src := range [][]ContentItem{primary, fallback} {
		for i := range src {
			if _, dup := seen[src[i].ID]; dup {
				continue
			}
			seen[src[i].ID] = struct{}{}
			out = append(out, src[i])
		}
	}

	SortItems(out, order)
	return out
}

// SortItems sorts items in place by order. Ties fall back to id so results
// are deterministic. OrderNone keeps the input order.
func SortItems(items []ContentItem, order Ordering) {
	var less func(a, b *ContentItem) bool

	switch order {
	case OrderEngagement:
		less = func(a, b *ContentItem) bool {
			if a.ViewCount != b.ViewCount {
				return a.ViewCount > b.ViewCount
			}
			if a.LikeCount != b.LikeCount {
				return a.LikeCount > b.LikeCount
			}
			if !a.PublishedAt.Equal(b.PublishedAt) {
				return a.PublishedAt.After(b.PublishedAt)
			}
			return a.ID < b.ID
		}
	case OrderTrust:
		less = func(a, b *ContentItem) bool {
			if a.TrustScore != b.TrustScore {
				return a.TrustScore > b.TrustScore
			}
			if !a.PublishedAt.Equal(b.PublishedAt) {
				return a.PublishedAt.After(b.PublishedAt)
			}
			return a.ID < b.ID
		}
	case OrderRecent:
		less = func(a, b *ContentItem) bool {
			if !a.PublishedAt.Equal(b.PublishedAt) {
				return a.PublishedAt.After(b.PublishedAt)
			}
			return a.ID < b.ID
		}
	default:
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		return less(&items[i], &items[j])
	})
}

// MatchesQuery reports whether item satisfies every filter of q except
// Order and Limit. Store implementations without native filtering use it.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func MatchesQuery(item *ContentItem, q Query) bool {
	if q.Category != "" && item.Category != q.Category {
		return false
	}
	if q.ActiveOnly && !item.IsActive {
		return false
	}
	if q.ExcludeDrafts && item.IsDraft {
		return false
	}
	if item.TrustScore < q.MinTrustScore {
		return false
	}
	if !q.PublishedAfter.IsZero() && item.PublishedAt.Before(q.PublishedAfter) {
		return false
	}
	if !q.PublishedBefore.IsZero() && !item.PublishedAt.Before(q.PublishedBefore) {
		return false
	}
	if len(q.IDs) > 0 && !containsString(q.IDs, item.ID) {
		return false
	}
	if containsString(q.ExcludeIDs, item.ID) {
		return false
	}
	return true
}

// ApplyQuery filters, sorts and limits items by q. The input is not modified.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func ApplyQuery(items []ContentItem, q Query) []ContentItem {
	out := make([]ContentItem, 0, len(items))
	for i := range items {
		if MatchesQuery(&items[i], q) {
			out = append(out, items[i])
		}
	}
	SortItems(out, q.Order)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
