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
	"strings"
)

const reasonFallback = "fallback"

// RecommendPersonalized returns up to limit items ranked for the user's profile.
//
// Store failures never surface as errors here: when candidates cannot be
// fetched the engine falls back to a trust-sorted general list, and when that
// fails too it returns an empty list.
func (e *Engine) RecommendPersonalized(ctx context.Context, userID string, limit int) ([]RankedItem, error) {
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

	key := fmt.Sprintf("personalized:%s:%d", userID, limit)
	if cached, ok := cacheLookup[RankedItem](e, key); ok {
		return cached, nil
	}

	logger := e.logger.With().Str("op", "personalized").Str("user_id", userID).Logger()

	profile, partial := e.loadProfile(ctx, profiles, userID)
	prefs := profile.Preferences

	candidates, err := content.Query(ctx, Query{
		ExcludeIDs:    recentViews(profile.Interactions.Views, e.config.Personalized.RecentViewExclusion),
		ActiveOnly:    true,
		ExcludeDrafts: true,
		MinTrustScore: prefs.MinTrustScore,
		Order:         OrderTrust,
		Limit:         e.config.Personalized.MaxCandidates,
	})
	if err != nil {
		e.upstreamErrors.Add(1)
		logger.Warn().Err(err).Msg("candidate fetch failed, using fallback list")
	}
	if err != nil || len(candidates) == 0 {
		result := e.personalizedFallback(ctx, content, &prefs, limit)
		if err == nil && !partial && result != nil {
			cacheStore(e, key, result)
		}
		if result == nil {
			result = []RankedItem{}
		}
		return result, nil
	}

	now := e.now()
	window := e.config.Recency.ShortWindow
	ranked := make([]RankedItem, 0, len(candidates))
	for i := range candidates {
		item := &candidates[i]
		signals := PersonalizedSignals(item, &prefs, now, window)
		ranked = append(ranked, RankedItem{
			Item:   *item,
			Score:  personalizedScorer.Score(signals),
			Scores: personalizedScorer.Breakdown(signals),
			Reason: personalizedReason(signals),
		})
	}

	sortRanked(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(ranked)).
		Msg("personalized recommendation complete")

	if !partial {
		cacheStore(e, key, ranked)
	}
	return ranked, nil
}

// personalizedFallback returns the trust-sorted general list, scored against
// prefs but kept in trust order. It returns nil when the list is unavailable.
func (e *Engine) personalizedFallback(ctx context.Context, content ContentStore, prefs *Preferences, limit int) []RankedItem {
	items, err := content.Query(ctx, Query{
		ActiveOnly:    true,
		ExcludeDrafts: true,
		Order:         OrderTrust,
		Limit:         limit,
	})
	if err != nil {
		e.upstreamErrors.Add(1)
		e.degradedCount.Add(1)
		e.logger.Warn().Err(err).Msg("fallback list unavailable, returning empty recommendations")
		return nil
	}

	now := e.now()
	window := e.config.Recency.ShortWindow
	result := make([]RankedItem, 0, len(items))
	for i := range items {
		if len(result) == limit {
			break
		}
		result = append(result, RankedItem{
			Item:   items[i],
			Score:  ScorePersonalized(&items[i], prefs, now, window),
			Reason: reasonFallback,
		})
	}
	return result
}

// loadProfile returns the user's profile, or a default one when the profile
// store cannot supply it. partial is true when the store failed.
func (e *Engine) loadProfile(ctx context.Context, profiles ProfileStore, userID string) (profile *UserProfile, partial bool) {
	profile, err := profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewProfile(userID), false
		}
		e.upstreamErrors.Add(1)
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("profile unavailable, using defaults")
		return NewProfile(userID), true
	}
	if profile == nil {
		return NewProfile(userID), false
	}
	return profile, false
}

// recentViews returns the n most recent entries of views.
func recentViews(views []string, n int) []string {
	if n <= 0 || len(views) == 0 {
		return nil
	}
	if len(views) <= n {
		return cloneStrings(views)
	}
	return cloneStrings(views[len(views)-n:])
}

func personalizedReason(s Signals) string {
	var parts []string
	if s[FactorCategory] > 0 {
		parts = append(parts, "preferred category")
	}
	if s[FactorTag] > 0 {
		parts = append(parts, "matches your keywords")
	}
	if s[FactorSourceType] > 0 {
		parts = append(parts, "preferred source")
	}
	if len(parts) == 0 {
		return "trusted content"
	}
	return strings.Join(parts, ", ")
}

// sortRanked sorts by score descending, then by id for determinism.
func sortRanked(items []RankedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Item.ID < items[j].Item.ID
	})
}
