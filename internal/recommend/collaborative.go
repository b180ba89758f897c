// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const reasonCollaborative = "liked by users with similar interests"

// neighbor is a profile similar to the target user.
type neighbor struct {
	userID     string
	similarity float64
	likes      []string
}

// CategorySimilarity returns |a ∩ b| / max(|a|, |b|) over two category sets.
// Two empty sets have similarity 0.
func CategorySimilarity(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)

	denom := len(setA)
	if len(setB) > denom {
		denom = len(setB)
	}
	if denom == 0 {
		return 0
	}

	shared := 0
	for c := range setA {
		if _, ok := setB[c]; ok {
			shared++
		}
	}
	return float64(shared) / float64(denom)
}

// RecommendCollaborative returns items liked by the users whose preferred
// categories most resemble the target user's. An empty result is valid.
func (e *Engine) RecommendCollaborative(ctx context.Context, userID string, limit int) ([]RankedItem, error) {
	e.requestCount.Add(1)

	if err := validateID("user_id", userID); err != nil {
		return nil, e.fail(err)
	}
	limit, err := e.validateLimit(limit)
	if err != nil {
		return nil, e.fail(err)
	}

	content, profiles, _, err := e.stores()
	if err != nil {
		return nil, e.fail(err)
	}

	key := fmt.Sprintf("collaborative:%s:%d", userID, limit)
	if cached, ok := cacheLookup[RankedItem](e, key); ok {
		return cached, nil
	}

	logger := e.logger.With().Str("op", "collaborative").Str("user_id", userID).Logger()

	target, partial := e.loadProfile(ctx, profiles, userID)

	userIDs, err := profiles.ListUserIDs(ctx)
	if err != nil {
		e.upstreamErrors.Add(1)
		e.degradedCount.Add(1)
		logger.Warn().Err(err).Msg("profile listing unavailable, returning empty recommendations")
		return []RankedItem{}, nil
	}

	neighbors, skipped := e.findNeighbors(ctx, profiles, target, userIDs)
	partial = partial || skipped
	if len(neighbors) == 0 {
		if !partial {
			cacheStore(e, key, []RankedItem{})
		}
		return []RankedItem{}, nil
	}

	candidateIDs, bestSimilarity := unionLikes(neighbors, target.Interactions.Likes)
	items, skipped := e.resolveItems(ctx, content, candidateIDs)
	partial = partial || skipped

	result := make([]RankedItem, 0, limit)
	for _, id := range candidateIDs {
		if len(result) == limit {
			break
		}
		item, ok := items[id]
		if !ok || !item.Visible() {
			continue
		}
		result = append(result, RankedItem{
			Item:   *item,
			Score:  bestSimilarity[id],
			Reason: reasonCollaborative,
		})
	}

	logger.Debug().
		Int("neighbors", len(neighbors)).
		Int("candidates", len(candidateIDs)).
		Int("returned", len(result)).
		Bool("partial", partial).
		Msg("collaborative recommendation complete")

	if !partial {
		cacheStore(e, key, result)
	}
	return result, nil
}

// findNeighbors loads every other profile concurrently and returns the most
// similar ones, most similar first. Profiles that fail to load are skipped.
func (e *Engine) findNeighbors(ctx context.Context, profiles ProfileStore, target *UserProfile, userIDs []string) ([]neighbor, bool) {
	loaded := make([]*UserProfile, len(userIDs))
	var failed atomic.Bool

	var g errgroup.Group
	g.SetLimit(e.config.Collaborative.Concurrency)
	for i, id := range userIDs {
		if id == target.UserID {
			continue
		}
		g.Go(func() error {
			p, err := profiles.GetProfile(ctx, id)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					failed.Store(true)
				}
				e.skippedLookups.Add(1)
				e.logger.Debug().Err(err).Str("user_id", id).Msg("skipping profile")
				return nil
			}
			loaded[i] = p
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	threshold := e.config.Collaborative.SimilarityThreshold
	neighbors := make([]neighbor, 0)
	for _, p := range loaded {
		if p == nil {
			continue
		}
		sim := CategorySimilarity(target.Preferences.Categories, p.Preferences.Categories)
		if sim > threshold {
			neighbors = append(neighbors, neighbor{
				userID:     p.UserID,
				similarity: sim,
				likes:      p.Interactions.Likes,
			})
		}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].userID < neighbors[j].userID
	})

	if len(neighbors) > e.config.Collaborative.MaxNeighbors {
		neighbors = neighbors[:e.config.Collaborative.MaxNeighbors]
	}
	return neighbors, failed.Load()
}

// unionLikes returns the neighbors' likes in first-seen order, without the
// target's own likes, along with the best similarity behind each id.
func unionLikes(neighbors []neighbor, ownLikes []string) ([]string, map[string]float64) {
	own := toSet(ownLikes)
	best := make(map[string]float64)
	var ids []string

	for _, n := range neighbors {
		for _, id := range n.likes {
			if _, liked := own[id]; liked {
				continue
			}
			if prev, seen := best[id]; seen {
				if n.similarity > prev {
					best[id] = n.similarity
				}
				continue
			}
			best[id] = n.similarity
			ids = append(ids, id)
		}
	}
	return ids, best
}

// resolveItems fetches items by id concurrently. Ids that fail to resolve
// are logged and left out of the result; partial is true when any lookup
// failed for a reason other than ErrNotFound.
func (e *Engine) resolveItems(ctx context.Context, content ContentStore, ids []string) (map[string]*ContentItem, bool) {
	resolved := make([]*ContentItem, len(ids))
	var failed atomic.Bool

	var g errgroup.Group
	g.SetLimit(e.config.Collaborative.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			item, err := content.GetByID(ctx, id)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					failed.Store(true)
				}
				e.skippedLookups.Add(1)
				e.logger.Debug().Err(err).Str("item_id", id).Msg("skipping unresolvable item")
				return nil
			}
			resolved[i] = item
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	out := make(map[string]*ContentItem, len(ids))
	for i, item := range resolved {
		if item != nil {
			out[ids[i]] = item
		}
	}
	return out, failed.Load()
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
