// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

// Package recommend implements the content relevance and recommendation engine.
//
// # Architecture
//
// The engine scores and ranks content items supplied by external stores. It owns
// no content itself; it reads through three narrow adapters:
//
//   - ContentStore: content items by id, category, or id set
//   - ProfileStore: per-user preferences and interaction history
//   - TagRegistry: tag identities, global usage counters, tag membership
//
// On top of these it provides:
//
//   - Weighted relevance scoring (one Scorer, three fixed weight sets)
//   - Personalized recommendations with a trust-sorted fallback
//   - User-based collaborative filtering over preferred categories
//   - Category and tag candidate retrieval
//   - Tag co-occurrence suggestions
//   - Integrated "related content" that merges category and tag candidates
//   - Interaction recording and implicit interest derivation
//
// # Design Principles
//
//   - Pure scoring: every factor is computed from data already in memory and
//     defaults to zero when its input is absent.
//   - Degrade, don't fail: recommendation endpoints return a (possibly empty)
//     list when an upstream store is unavailable. Only invalid input fails.
//   - Bounded staleness: listing queries are served from an injected TTL cache
//     that is cleared after every write made through the engine.
//   - Serialized writes: profile read-modify-write cycles are serialized per user.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetStores(contentStore, profileStore, tagRegistry)
//	engine.SetCache(cache.New(5 * time.Minute))
//
//	items, err := engine.RecommendPersonalized(ctx, "user-42", 10)
//
// # Thread Safety
//
// Engine is safe for concurrent use once its stores have been set.
package recommend
