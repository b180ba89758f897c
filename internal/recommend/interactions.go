// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import (
	"context"
	"errors"
	"sort"
)

// InteractionResult reports the effect of a record or remove call.
type InteractionResult struct {
	// Changed is false when the call was a no-op (already present or absent).
	Changed bool `json:"changed"`

	// Profile is the profile after the call.
	Profile *UserProfile `json:"profile"`
}

// RecordInteraction appends itemID to the user's list for kind if absent.
// Views are capped to the most recent entries. Calls for the same user are
// serialized; the listing cache is cleared after every persisted change.
func (e *Engine) RecordInteraction(ctx context.Context, userID, itemID string, kind InteractionKind) (*InteractionResult, error) {
	return e.mutateInteraction(ctx, userID, itemID, kind, 1)
}

// RemoveInteraction deletes itemID from the user's list for kind if present.
func (e *Engine) RemoveInteraction(ctx context.Context, userID, itemID string, kind InteractionKind) (*InteractionResult, error) {
	return e.mutateInteraction(ctx, userID, itemID, kind, -1)
}

func (e *Engine) mutateInteraction(ctx context.Context, userID, itemID string, kind InteractionKind, delta int) (*InteractionResult, error) {
	e.requestCount.Add(1)

	if err := validateID("user_id", userID); err != nil {
		return nil, e.fail(err)
	}
	if err := validateID("item_id", itemID); err != nil {
		return nil, e.fail(err)
	}
	if !kind.Valid() {
		return nil, e.fail(newValidationError("kind", "must be one of bookmark, like, view"))
	}

	content, profiles, _, err := e.stores()
	if err != nil {
		return nil, e.fail(err)
	}

	unlock := e.lockUser(userID)
	defer unlock()

	profile, err := e.profileForWrite(ctx, profiles, userID)
	if err != nil {
		return nil, e.fail(err)
	}

	var changed bool
	if delta > 0 {
		changed = addInteraction(&profile.Interactions, kind, itemID, e.config.Interactions.MaxViews)
	} else {
		changed = removeInteraction(&profile.Interactions, kind, itemID)
	}

	if !changed {
		return &InteractionResult{Changed: false, Profile: profile}, nil
	}

	profile.UpdatedAt = e.now()
	if err := profiles.SaveProfile(ctx, profile); err != nil {
		return nil, e.fail(e.upstream("save profile", err))
	}
	e.interactionWrites.Add(1)

	if err := content.IncrementCounter(ctx, itemID, kind.CounterField(), delta); err != nil {
		e.upstreamErrors.Add(1)
		e.logger.Warn().Err(err).
			Str("item_id", itemID).
			Str("field", string(kind.CounterField())).
			Msg("counter update failed")
	}

	e.clearCache()

	e.logger.Debug().
		Str("user_id", userID).
		Str("item_id", itemID).
		Str("kind", string(kind)).
		Int("delta", delta).
		Msg("interaction updated")

	return &InteractionResult{Changed: true, Profile: profile.Clone()}, nil
}

// profileForWrite loads a profile for modification. Unlike reads, a profile
// store failure is reported rather than replaced with defaults, so that a
// save never overwrites history that could not be read.
func (e *Engine) profileForWrite(ctx context.Context, profiles ProfileStore, userID string) (*UserProfile, error) {
	profile, err := profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewProfile(userID), nil
		}
		return nil, e.upstream("get profile", err)
	}
	if profile == nil {
		return NewProfile(userID), nil
	}
	return profile.Clone(), nil
}

// addInteraction appends id to the list for kind unless present.
func addInteraction(in *Interactions, kind InteractionKind, id string, maxViews int) bool {
	list := interactionList(in, kind)
	if containsString(*list, id) {
		return false
	}
	*list = append(*list, id)
	if kind == InteractionView && len(*list) > maxViews {
		*list = append([]string(nil), (*list)[len(*list)-maxViews:]...)
	}
	return true
}

// removeInteraction deletes every occurrence of id from the list for kind.
func removeInteraction(in *Interactions, kind InteractionKind, id string) bool {
	list := interactionList(in, kind)
	out := make([]string, 0, len(*list))
	for _, v := range *list {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) == len(*list) {
		return false
	}
	*list = out
	return true
}

func interactionList(in *Interactions, kind InteractionKind) *[]string {
	switch kind {
	case InteractionBookmark:
		return &in.Bookmarks
	case InteractionLike:
		return &in.Likes
	default:
		return &in.Views
	}
}

// DeriveInterests ranks the categories and tags of the user's bookmarked and
// liked items by frequency and merges the top entries into the profile's
// preferred categories and keywords. Existing preferences are kept.
func (e *Engine) DeriveInterests(ctx context.Context, userID string) (*Preferences, error) {
	e.requestCount.Add(1)

	if err := validateID("user_id", userID); err != nil {
		return nil, e.fail(err)
	}

	content, profiles, _, err := e.stores()
	if err != nil {
		return nil, e.fail(err)
	}

	unlock := e.lockUser(userID)
	defer unlock()

	profile, err := e.profileForWrite(ctx, profiles, userID)
	if err != nil {
		return nil, e.fail(err)
	}

	ids := normalizeIDs(append(cloneStrings(profile.Interactions.Bookmarks), profile.Interactions.Likes...))
	items, _ := e.resolveItems(ctx, content, ids)

	categories := make(map[string]int)
	tags := make(map[string]int)
	for _, id := range ids {
		item, ok := items[id]
		if !ok {
			continue
		}
		if item.Category != "" {
			categories[item.Category]++
		}
		for _, t := range normalizeTagNames(item.Tags) {
			tags[t]++
		}
	}

	prefs := &profile.Preferences
	before := len(prefs.Categories) + len(prefs.Keywords)
	prefs.Categories = unionStrings(prefs.Categories, topByFrequency(categories, e.config.Interactions.TopCategories))
	prefs.Keywords = unionStrings(prefs.Keywords, topByFrequency(tags, e.config.Interactions.TopTags))

	if len(prefs.Categories)+len(prefs.Keywords) != before {
		profile.UpdatedAt = e.now()
		if err := profiles.SaveProfile(ctx, profile); err != nil {
			return nil, e.fail(e.upstream("save profile", err))
		}
		e.clearCache()
	}

	e.logger.Debug().
		Str("user_id", userID).
		Int("source_items", len(items)).
		Int("categories", len(prefs.Categories)).
		Int("keywords", len(prefs.Keywords)).
		Msg("interests derived")

	out := prefs.Clone()
	return &out, nil
}

// UpdatePreferences replaces the user's explicit preferences.
func (e *Engine) UpdatePreferences(ctx context.Context, userID string, prefs *Preferences) (*UserProfile, error) {
	e.requestCount.Add(1)

	if err := validateID("user_id", userID); err != nil {
		return nil, e.fail(err)
	}
	if prefs == nil {
		return nil, e.fail(newValidationError("preferences", "must not be nil"))
	}
	if prefs.MinTrustScore < 0 || prefs.MinTrustScore > 100 {
		return nil, e.fail(newValidationError("min_trust_score", "must be between 0 and 100"))
	}
	for _, st := range prefs.SourceTypes {
		if !st.Valid() {
			return nil, e.fail(newValidationError("source_types", "unknown source type "+string(st)))
		}
	}

	_, profiles, _, err := e.stores()
	if err != nil {
		return nil, e.fail(err)
	}

	unlock := e.lockUser(userID)
	defer unlock()

	profile, err := e.profileForWrite(ctx, profiles, userID)
	if err != nil {
		return nil, e.fail(err)
	}

	next := prefs.Clone()
	next.Categories = unionStrings(nil, next.Categories)
	next.Keywords = unionStrings(nil, next.Keywords)
	if next.SourceTypes == nil {
		next.SourceTypes = []SourceType{}
	}
	profile.Preferences = next
	profile.UpdatedAt = e.now()

	if err := profiles.SaveProfile(ctx, profile); err != nil {
		return nil, e.fail(e.upstream("save profile", err))
	}
	e.clearCache()

	return profile.Clone(), nil
}

// GetProfile returns the user's profile. A missing profile yields the default one.
func (e *Engine) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	e.requestCount.Add(1)

	if err := validateID("user_id", userID); err != nil {
		return nil, e.fail(err)
	}

	_, profiles, _, err := e.stores()
	if err != nil {
		return nil, e.fail(err)
	}

	profile, err := profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewProfile(userID), nil
		}
		return nil, e.fail(e.upstream("get profile", err))
	}
	if profile == nil {
		return NewProfile(userID), nil
	}
	return profile.Clone(), nil
}

// topByFrequency returns up to n keys with the highest counts, ties broken by name.
func topByFrequency(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// unionStrings appends the values of add missing from base, dropping empties
// and duplicates.
func unionStrings(base, add []string) []string {
	seen := make(map[string]struct{}, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, v := range list {
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// normalizeIDs drops empty and duplicate ids, keeping first occurrences.
func normalizeIDs(ids []string) []string {
	return unionStrings(nil, ids)
}
