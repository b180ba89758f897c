// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package profiles

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lodestar/internal/recommend"
)

// SchemaVersion is the version stamped on canonical records.
const SchemaVersion = 1

// record is the stored profile. It decodes both the canonical nested layout
// and the legacy flat layout.
type record struct {
	SchemaVersion int                     `json:"schema_version,omitempty"`
	UserID        string                  `json:"user_id,omitempty"`
	Preferences   *recommend.Preferences  `json:"preferences,omitempty"`
	Interactions  *recommend.Interactions `json:"interactions,omitempty"`
	UpdatedAt     time.Time               `json:"updated_at,omitempty"`

	// Legacy flat fields.
	LegacyUserID         string   `json:"userId,omitempty"`
	PreferredCategories  []string `json:"preferredCategories,omitempty"`
	Keywords             []string `json:"keywords,omitempty"`
	PreferredSourceTypes []string `json:"preferredSourceTypes,omitempty"`
	MinTrustScore        *int     `json:"minTrustScore,omitempty"`
	Language             string   `json:"language,omitempty"`
	BookmarkedPosts      []string `json:"bookmarkedPosts,omitempty"`
	LikedPosts           []string `json:"likedPosts,omitempty"`
	ViewedPosts          []string `json:"viewedPosts,omitempty"`
}

// hasLegacyFields reports whether any flat field is populated.
func (r *record) hasLegacyFields() bool {
	return r.LegacyUserID != "" || r.PreferredCategories != nil || r.Keywords != nil ||
		r.PreferredSourceTypes != nil || r.MinTrustScore != nil || r.Language != "" ||
		r.BookmarkedPosts != nil || r.LikedPosts != nil || r.ViewedPosts != nil
}

// encodeProfile serialises a profile in the canonical layout.
func encodeProfile(p *recommend.UserProfile) ([]byte, error) {
	prefs := p.Preferences
	inter := p.Interactions
	data, err := json.Marshal(&record{
		SchemaVersion: SchemaVersion,
		UserID:        p.UserID,
		Preferences:   &prefs,
		Interactions:  &inter,
		UpdatedAt:     p.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal profile %s: %w", p.UserID, err)
	}
	return data, nil
}

// decodeProfile parses a stored record of either layout into a canonical
// profile. migrated is true when the stored bytes differ from the canonical
// encoding and should be rewritten.
func decodeProfile(userID string, data []byte, maxViews int) (profile *recommend.UserProfile, migrated bool, err error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false, fmt.Errorf("unmarshal profile %s: %w", userID, err)
	}

	migrated = r.SchemaVersion != SchemaVersion || r.hasLegacyFields()

	p := recommend.NewProfile(userID)
	p.UpdatedAt = r.UpdatedAt

	if r.Preferences != nil {
		p.Preferences = *r.Preferences
	} else {
		p.Preferences.Categories = r.PreferredCategories
		p.Preferences.Keywords = r.Keywords
		p.Preferences.Language = r.Language
		if r.MinTrustScore != nil {
			p.Preferences.MinTrustScore = *r.MinTrustScore
		}
		for _, s := range r.PreferredSourceTypes {
			p.Preferences.SourceTypes = append(p.Preferences.SourceTypes, recommend.SourceType(strings.ToLower(s)))
		}
	}

	if r.Interactions != nil {
		p.Interactions = *r.Interactions
	} else {
		p.Interactions.Bookmarks = r.BookmarkedPosts
		p.Interactions.Likes = r.LikedPosts
		p.Interactions.Views = r.ViewedPosts
	}

	if canonicalize(p, maxViews) {
		migrated = true
	}
	return p, migrated, nil
}

// canonicalize enforces the profile invariants in place and reports whether
// anything changed.
func canonicalize(p *recommend.UserProfile, maxViews int) bool {
	changed := false
	fix := func(in []string) []string {
		out := uniqueNonEmpty(in)
		if len(out) != len(in) {
			changed = true
		}
		return out
	}

	p.Preferences.Categories = fix(p.Preferences.Categories)
	p.Preferences.Keywords = fix(p.Preferences.Keywords)
	p.Interactions.Bookmarks = fix(p.Interactions.Bookmarks)
	p.Interactions.Likes = fix(p.Interactions.Likes)
	p.Interactions.Views = fix(p.Interactions.Views)

	if maxViews > 0 && len(p.Interactions.Views) > maxViews {
		p.Interactions.Views = p.Interactions.Views[len(p.Interactions.Views)-maxViews:]
		changed = true
	}

	sources := make([]recommend.SourceType, 0, len(p.Preferences.SourceTypes))
	seen := make(map[recommend.SourceType]struct{}, len(p.Preferences.SourceTypes))
	for _, s := range p.Preferences.SourceTypes {
		if _, dup := seen[s]; dup || !s.Valid() {
			continue
		}
		seen[s] = struct{}{}
		sources = append(sources, s)
	}
	if len(sources) != len(p.Preferences.SourceTypes) {
		changed = true
	}
	p.Preferences.SourceTypes = sources

	switch {
	case p.Preferences.MinTrustScore < 0:
		p.Preferences.MinTrustScore = 0
		changed = true
	case p.Preferences.MinTrustScore > 100:
		p.Preferences.MinTrustScore = 100
		changed = true
	}

	return changed
}

// uniqueNonEmpty drops empty and repeated values, keeping the last
// occurrence of each so the most recent position wins. Never returns nil.
func uniqueNonEmpty(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	rev := make([]string, 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		v := in[i]
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		rev = append(rev, v)
	}
	out := make([]string, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out
}
