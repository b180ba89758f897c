// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import (
	"context"
	"time"
)

// SourceType classifies where a content item originated.
type SourceType string

const (
	// SourcePaper is a research paper or study summary.
	SourcePaper SourceType = "paper"
	// SourceVideo is a video post.
	SourceVideo SourceType = "video"
	// SourceNews is a news article.
	SourceNews SourceType = "news"
	// SourceManual is content written by hand in the admin tooling.
	SourceManual SourceType = "manual"
)

// Valid reports whether the source type is one of the known values.
func (s SourceType) Valid() bool {
	switch s {
	case SourcePaper, SourceVideo, SourceNews, SourceManual:
		return true
	default:
		return false
	}
}

// ContentItem is a single recommendable unit (article or post).
type ContentItem struct {
	// ID is the opaque, unique item identifier.
	ID string `json:"id"`

	// Title is the display title. Not used for scoring.
	Title string `json:"title,omitempty"`

	// Category is the single category label of the item.
	Category string `json:"category"`

	// Tags is the unordered set of tag names. May be empty.
	Tags []string `json:"tags"`

	// TrustScore is the externally assigned credibility rating (0-100).
	TrustScore int `json:"trust_score"`

	// SourceType is where the item originated.
	SourceType SourceType `json:"source_type"`

	// PublishedAt is the publication timestamp.
	PublishedAt time.Time `json:"published_at"`

	// ViewCount is the number of recorded views.
	ViewCount int `json:"view_count"`

	// LikeCount is the number of recorded likes.
	LikeCount int `json:"like_count"`

	// BookmarkCount is the number of recorded bookmarks.
	BookmarkCount int `json:"bookmark_count"`

	// IsActive is false once the item has been soft-deleted by admin tooling.
	IsActive bool `json:"is_active"`

	// IsDraft marks unpublished items.
	IsDraft bool `json:"is_draft"`
}

// Visible reports whether the item may be shown to users.
func (c *ContentItem) Visible() bool {
	return c.IsActive && !c.IsDraft
}

// Preferences holds the explicit and derived interests of a user.
type Preferences struct {
	// Categories is the set of preferred categories.
	Categories []string `json:"categories"`

	// Keywords is the set of preferred keywords, matched against item tags.
	Keywords []string `json:"keywords"`

	// SourceTypes is the set of preferred source types.
	SourceTypes []SourceType `json:"source_types"`

	// MinTrustScore filters out items below this trust score (0-100).
	MinTrustScore int `json:"min_trust_score"`

	// Language is the preferred content language.
	Language string `json:"language,omitempty"`
}

// Clone returns a deep copy of the preferences.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (p Preferences) Clone() Preferences {
	return Preferences{
		Categories:    cloneStrings(p.Categories),
		Keywords:      cloneStrings(p.Keywords),
		SourceTypes:   append([]SourceType(nil), p.SourceTypes...),
		MinTrustScore: p.MinTrustScore,
		Language:      p.Language,
	}
}

// Interactions holds a user's interaction history as ordered, duplicate-free id lists.
type Interactions struct {
	// Bookmarks is the list of bookmarked item ids, oldest first.
	Bookmarks []string `json:"bookmarks"`

	// Likes is the list of liked item ids, oldest first.
	Likes []string `json:"likes"`

	// Views is the list of viewed item ids, oldest first.
	// Capped to the most recent MaxViews entries.
	Views []string `json:"views"`
}

// Clone returns a deep copy of the interactions.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (i Interactions) Clone() Interactions {
	return Interactions{
		Bookmarks: cloneStrings(i.Bookmarks),
		Likes:     cloneStrings(i.Likes),
		Views:     cloneStrings(i.Views),
	}
}

// UserProfile is the canonical per-user record seen by the engine.
type UserProfile struct {
	// UserID is the opaque user identifier.
	UserID string `json:"user_id"`

	// Preferences holds explicit and derived interests.
	Preferences Preferences `json:"preferences"`

	// Interactions holds bookmark, like and view history.
	Interactions Interactions `json:"interactions"`

	// UpdatedAt is when the profile was last saved.
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the profile.
func (p *UserProfile) Clone() *UserProfile {
	return &UserProfile{
		UserID:       p.UserID,
		Preferences:  p.Preferences.Clone(),
		Interactions: p.Interactions.Clone(),
		UpdatedAt:    p.UpdatedAt,
	}
}

// NewProfile returns the default profile created on first read.
func NewProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID: userID,
		Preferences: Preferences{
			Categories:  []string{},
			Keywords:    []string{},
			SourceTypes: []SourceType{},
		},
		Interactions: Interactions{
			Bookmarks: []string{},
			Likes:     []string{},
			Views:     []string{},
		},
	}
}

// Tag is a tag identity with its global usage counter.
type Tag struct {
	// ID is the registry identifier of the tag.
	ID string `json:"id"`

	// Name is the unique tag name.
	Name string `json:"name"`

	// GlobalPostCount is the number of items carrying the tag.
	// Owned by the tag registry; read-only to the engine.
	GlobalPostCount int `json:"global_post_count"`
}

// TagItem is one (item, tag) membership row.
type TagItem struct {
	ItemID string `json:"item_id"`
	TagID  string `json:"tag_id"`
}

// InteractionKind identifies which interaction list an event belongs to.
type InteractionKind string

const (
	// InteractionBookmark is a bookmark event.
	InteractionBookmark InteractionKind = "bookmark"
	// InteractionLike is a like event.
	InteractionLike InteractionKind = "like"
	// InteractionView is a view event.
	InteractionView InteractionKind = "view"
)

// Valid reports whether the kind is one of the known values.
func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionBookmark, InteractionLike, InteractionView:
		return true
	default:
		return false
	}
}

// CounterField returns the item counter affected by this interaction kind.
func (k InteractionKind) CounterField() CounterField {
	switch k {
	case InteractionBookmark:
		return CounterBookmarks
	case InteractionLike:
		return CounterLikes
	default:
		return CounterViews
	}
}

// CounterField names an engagement counter on a content item.
type CounterField string

const (
	CounterViews     CounterField = "view_count"
	CounterLikes     CounterField = "like_count"
	CounterBookmarks CounterField = "bookmark_count"
)

// Source identifies which retriever produced a candidate.
type Source string

const (
	// SourceCategory marks candidates from category retrieval.
	SourceCategory Source = "category"
	// SourceTag marks candidates from tag retrieval.
	SourceTag Source = "tag"
)

// Candidate is a transient, never-persisted wrapper around a content item
// produced by tag retrieval and the integrated recommender.
type Candidate struct {
	// Item is the wrapped content item.
	Item ContentItem `json:"item"`

	// MatchingTags is the subset of the item's tags shared with the query.
	MatchingTags []string `json:"matching_tags,omitempty"`

	// CategoryMatch is true when the candidate shares the query category.
	CategoryMatch bool `json:"category_match"`

	// TagMatch is true when the candidate shares at least one query tag.
	TagMatch bool `json:"tag_match"`

	// RelevanceScore is the tag relevance score (0-1).
	RelevanceScore float64 `json:"relevance_score"`

	// FinalScore is the integrated score (0-1).
	FinalScore float64 `json:"final_score"`

	// Sources lists which retrievers produced the candidate.
	Sources []Source `json:"recommendation_sources"`

	// Reason is a human-readable justification.
	Reason string `json:"reason,omitempty"`
}

// HasSource reports whether the candidate was produced by the given retriever.
//
//nolint:gocritic // hugeParam: value receiver keeps Candidate usable in sort callbacks
func (c Candidate) HasSource(s Source) bool {
	for _, src := range c.Sources {
		if src == s {
			return true
		}
	}
	return false
}

// RankedItem is a content item with a recommendation score.
type RankedItem struct {
	// Item is the content item.
	Item ContentItem `json:"item"`

	// Score is the recommendation score (0-1, higher is better).
	Score float64 `json:"score"`

	// Scores is a breakdown of the score by factor.
	Scores map[string]float64 `json:"scores,omitempty"`

	// Reason provides an interpretable explanation for the recommendation.
	Reason string `json:"reason,omitempty"`
}

// TagSuggestion is a related tag with its association statistics.
type TagSuggestion struct {
	// Name is the suggested tag name.
	Name string `json:"name"`

	// AssociationScore is the co-occurrence driven score (0-1).
	AssociationScore float64 `json:"association_score"`

	// CoOccurrenceCount is the number of candidate items carrying the tag.
	CoOccurrenceCount int `json:"co_occurrence_count"`

	// CoOccurrenceRate is CoOccurrenceCount divided by the candidate set size.
	CoOccurrenceRate float64 `json:"co_occurrence_rate"`

	// GlobalPostCount is the tag's global usage counter.
	GlobalPostCount int `json:"global_post_count"`
}

// Ordering selects how a ContentStore sorts query results.
type Ordering int

const (
	// OrderNone leaves ordering to the store.
	OrderNone Ordering = iota
	// OrderEngagement sorts by view count desc, like count desc, published desc.
	OrderEngagement
	// OrderTrust sorts by trust score desc, published desc.
	OrderTrust
	// OrderRecent sorts by published desc.
	OrderRecent
)

// String returns a human-readable ordering name.
func (o Ordering) String() string {
	switch o {
	case OrderEngagement:
		return "engagement"
	case OrderTrust:
		return "trust"
	case OrderRecent:
		return "recent"
	default:
		return "none"
	}
}

// Query is the filter set accepted by ContentStore.Query.
// Zero values disable the corresponding filter.
type Query struct {
	// Category restricts results to one category.
	Category string `json:"category,omitempty"`

	// IDs restricts results to the given item ids.
	IDs []string `json:"ids,omitempty"`

	// ExcludeIDs removes the given item ids from results.
	ExcludeIDs []string `json:"exclude_ids,omitempty"`

	// ActiveOnly drops soft-deleted items.
	ActiveOnly bool `json:"active_only,omitempty"`

	// ExcludeDrafts drops draft items.
	ExcludeDrafts bool `json:"exclude_drafts,omitempty"`

	// MinTrustScore drops items below this trust score.
	MinTrustScore int `json:"min_trust_score,omitempty"`

	// PublishedAfter keeps items published at or after this instant.
	PublishedAfter time.Time `json:"published_after,omitempty"`

	// PublishedBefore keeps items published strictly before this instant.
	PublishedBefore time.Time `json:"published_before,omitempty"`

	// Order selects the result ordering.
	Order Ordering `json:"order,omitempty"`

	// Limit caps the number of results. Zero means no cap.
	Limit int `json:"limit,omitempty"`
}

// ContentStore supplies content items. Implemented outside this package.
type ContentStore interface {
	// Query returns items matching the filters.
	Query(ctx context.Context, q Query) ([]ContentItem, error)

	// GetByID returns a single item or ErrNotFound.
	GetByID(ctx context.Context, id string) (*ContentItem, error)

	// IncrementCounter adds delta to an item's engagement counter.
	IncrementCounter(ctx context.Context, id string, field CounterField, delta int) error
}

// ProfileStore supplies and persists user profiles. Implemented outside this package.
type ProfileStore interface {
	// GetProfile returns the profile, creating a default one on miss.
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)

	// SaveProfile persists the profile.
	SaveProfile(ctx context.Context, profile *UserProfile) error

	// ListUserIDs returns the ids of all known profiles.
	ListUserIDs(ctx context.Context) ([]string, error)
}

// TagRegistry supplies tag identities and tag membership. Implemented outside this package.
type TagRegistry interface {
	// Resolve returns the tags whose names are in names. Unknown names are omitted.
	Resolve(ctx context.Context, names []string) ([]Tag, error)

	// ItemsForTags returns every (item, tag) membership row for the given tag ids.
	ItemsForTags(ctx context.Context, tagIDs []string) ([]TagItem, error)
}

// ListingCache is the read-through cache placed in front of listing queries.
// Values are immutable snapshots.
type ListingCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Clear()
}

// cloneStrings returns a copy of s that never aliases the input.
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
