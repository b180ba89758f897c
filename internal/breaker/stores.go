// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package breaker

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lodestar/internal/recommend"
)

// ContentStore guards a recommend.ContentStore with a circuit breaker.
type ContentStore struct {
	inner recommend.ContentStore
	b     *Breaker
}

// NewContentStore wraps inner with a breaker named "content-store".
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewContentStore(inner recommend.ContentStore, s Settings, logger zerolog.Logger) *ContentStore {
	return &ContentStore{inner: inner, b: New("content-store", s, logger)}
}

// Breaker exposes the underlying circuit.
func (c *ContentStore) Breaker() *Breaker { return c.b }

// Query implements recommend.ContentStore.
//
//nolint:gocritic // hugeParam: Query is passed by value to match the interface
func (c *ContentStore) Query(ctx context.Context, q recommend.Query) ([]recommend.ContentItem, error) {
	return castResult[[]recommend.ContentItem](c.b.execute("query", func() (interface{}, error) {
		return c.inner.Query(ctx, q)
	}))
}

// GetByID implements recommend.ContentStore.
func (c *ContentStore) GetByID(ctx context.Context, id string) (*recommend.ContentItem, error) {
	return castResult[*recommend.ContentItem](c.b.execute("get", func() (interface{}, error) {
		return c.inner.GetByID(ctx, id)
	}))
}

// IncrementCounter implements recommend.ContentStore.
func (c *ContentStore) IncrementCounter(ctx context.Context, id string, field recommend.CounterField, delta int) error {
	_, err := c.b.execute("increment_counter", func() (interface{}, error) {
		return nil, c.inner.IncrementCounter(ctx, id, field, delta)
	})
	return err
}

// ProfileStore guards a recommend.ProfileStore with a circuit breaker.
type ProfileStore struct {
	inner recommend.ProfileStore
	b     *Breaker
}

// NewProfileStore wraps inner with a breaker named "profile-store".
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProfileStore(inner recommend.ProfileStore, s Settings, logger zerolog.Logger) *ProfileStore {
	return &ProfileStore{inner: inner, b: New("profile-store", s, logger)}
}

// Breaker exposes the underlying circuit.
func (p *ProfileStore) Breaker() *Breaker { return p.b }

// GetProfile implements recommend.ProfileStore.
func (p *ProfileStore) GetProfile(ctx context.Context, userID string) (*recommend.UserProfile, error) {
	return castResult[*recommend.UserProfile](p.b.execute("get_profile", func() (interface{}, error) {
		return p.inner.GetProfile(ctx, userID)
	}))
}

// SaveProfile implements recommend.ProfileStore.
func (p *ProfileStore) SaveProfile(ctx context.Context, profile *recommend.UserProfile) error {
	_, err := p.b.execute("save_profile", func() (interface{}, error) {
		return nil, p.inner.SaveProfile(ctx, profile)
	})
	return err
}

// ListUserIDs implements recommend.ProfileStore.
func (p *ProfileStore) ListUserIDs(ctx context.Context) ([]string, error) {
	return castResult[[]string](p.b.execute("list_users", func() (interface{}, error) {
		return p.inner.ListUserIDs(ctx)
	}))
}

// TagRegistry guards a recommend.TagRegistry with a circuit breaker.
type TagRegistry struct {
	inner recommend.TagRegistry
	b     *Breaker
}

// NewTagRegistry wraps inner with a breaker named "tag-registry".
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTagRegistry(inner recommend.TagRegistry, s Settings, logger zerolog.Logger) *TagRegistry {
	return &TagRegistry{inner: inner, b: New("tag-registry", s, logger)}
}

// Breaker exposes the underlying circuit.
func (r *TagRegistry) Breaker() *Breaker { return r.b }

// Resolve implements recommend.TagRegistry.
func (r *TagRegistry) Resolve(ctx context.Context, names []string) ([]recommend.Tag, error) {
	return castResult[[]recommend.Tag](r.b.execute("resolve", func() (interface{}, error) {
		return r.inner.Resolve(ctx, names)
	}))
}

// ItemsForTags implements recommend.TagRegistry.
func (r *TagRegistry) ItemsForTags(ctx context.Context, tagIDs []string) ([]recommend.TagItem, error) {
	return castResult[[]recommend.TagItem](r.b.execute("items_for_tags", func() (interface{}, error) {
		return r.inner.ItemsForTags(ctx, tagIDs)
	}))
}

var (
	_ recommend.ContentStore = (*ContentStore)(nil)
	_ recommend.ProfileStore = (*ProfileStore)(nil)
	_ recommend.TagRegistry  = (*TagRegistry)(nil)
)
