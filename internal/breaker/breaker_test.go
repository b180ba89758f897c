// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lodestar/internal/recommend"
)

var errBackend = errors.New("backend down")

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// testSettings opens after 3 requests at 60% failures and never probes during a test.
func testSettings() Settings {
	return Settings{
		MaxRequests:  1,
		Interval:     0,
		Timeout:      time.Hour,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

type fakeContentStore struct {
	calls atomic.Int64
	err   error
	items []recommend.ContentItem
}

func (f *fakeContentStore) Query(_ context.Context, _ recommend.Query) ([]recommend.ContentItem, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeContentStore) GetByID(_ context.Context, id string) (*recommend.ContentItem, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, fmt.Errorf("item %s: %w", id, recommend.ErrNotFound)
}

func (f *fakeContentStore) IncrementCounter(_ context.Context, _ string, _ recommend.CounterField, _ int) error {
	f.calls.Add(1)
	return f.err
}

type fakeProfileStore struct {
	err error
}

func (f *fakeProfileStore) GetProfile(_ context.Context, userID string) (*recommend.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return recommend.NewProfile(userID), nil
}

func (f *fakeProfileStore) SaveProfile(_ context.Context, _ *recommend.UserProfile) error {
	return f.err
}

func (f *fakeProfileStore) ListUserIDs(_ context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{"u1", "u2"}, nil
}

type fakeTagRegistry struct {
	err error
}

func (f *fakeTagRegistry) Resolve(_ context.Context, names []string) ([]recommend.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	tags := make([]recommend.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, recommend.Tag{ID: "tag-" + n, Name: n})
	}
	return tags, nil
}

func (f *fakeTagRegistry) ItemsForTags(_ context.Context, tagIDs []string) ([]recommend.TagItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	rows := make([]recommend.TagItem, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, recommend.TagItem{ItemID: "item-1", TagID: id})
	}
	return rows, nil
}

func TestContentStore_PassesThroughResults(t *testing.T) {
	t.Parallel()

	inner := &fakeContentStore{items: []recommend.ContentItem{{ID: "a"}, {ID: "b"}}}
	store := NewContentStore(inner, testSettings(), testLogger())

	items, err := store.Query(context.Background(), recommend.Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(items) != 2 {
		t.Errorf("Query() returned %d items, want 2", len(items))
	}

	item, err := store.GetByID(context.Background(), "b")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if item.ID != "b" {
		t.Errorf("GetByID() id = %q, want b", item.ID)
	}
}

func TestContentStore_FailuresBecomeUpstreamUnavailable(t *testing.T) {
	t.Parallel()

	store := NewContentStore(&fakeContentStore{err: errBackend}, testSettings(), testLogger())

	_, err := store.Query(context.Background(), recommend.Query{})
	if !errors.Is(err, recommend.ErrUpstreamUnavailable) {
		t.Errorf("Query() error = %v, want ErrUpstreamUnavailable", err)
	}
	if !errors.Is(err, errBackend) {
		t.Errorf("Query() error = %v, want wrapped backend error", err)
	}

	err = store.IncrementCounter(context.Background(), "a", recommend.CounterLikes, 1)
	if !errors.Is(err, recommend.ErrUpstreamUnavailable) {
		t.Errorf("IncrementCounter() error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestContentStore_OpensAfterFailures(t *testing.T) {
	t.Parallel()

	inner := &fakeContentStore{err: errBackend}
	store := NewContentStore(inner, testSettings(), testLogger())

	for i := 0; i < 4; i++ {
		_, _ = store.Query(context.Background(), recommend.Query{})
	}

	if got := store.Breaker().State(); got != "open" {
		t.Fatalf("State() = %q, want open", got)
	}

	calls := inner.calls.Load()
	_, err := store.Query(context.Background(), recommend.Query{})
	if !errors.Is(err, recommend.ErrUpstreamUnavailable) {
		t.Errorf("Query() on open circuit error = %v, want ErrUpstreamUnavailable", err)
	}
	if inner.calls.Load() != calls {
		t.Error("open circuit should not call the inner store")
	}
}

func TestContentStore_NotFoundDoesNotTrip(t *testing.T) {
	t.Parallel()

	store := NewContentStore(&fakeContentStore{}, testSettings(), testLogger())

	for i := 0; i < 10; i++ {
		_, err := store.GetByID(context.Background(), "missing")
		if !errors.Is(err, recommend.ErrNotFound) {
			t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
		}
		if errors.Is(err, recommend.ErrUpstreamUnavailable) {
			t.Fatalf("GetByID() not-found should not be reported as upstream failure")
		}
	}

	if got := store.Breaker().State(); got != "closed" {
		t.Errorf("State() = %q, want closed", got)
	}
}

func TestContentStore_CanceledDoesNotTrip(t *testing.T) {
	t.Parallel()

	store := NewContentStore(&fakeContentStore{err: context.Canceled}, testSettings(), testLogger())

	for i := 0; i < 10; i++ {
		_, _ = store.Query(context.Background(), recommend.Query{})
	}

	if got := store.Breaker().State(); got != "closed" {
		t.Errorf("State() = %q, want closed", got)
	}
}

func TestProfileStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "healthy backend"},
		{name: "failing backend", err: errBackend, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := NewProfileStore(&fakeProfileStore{err: tt.err}, testSettings(), testLogger())

			profile, err := store.GetProfile(context.Background(), "u1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetProfile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, recommend.ErrUpstreamUnavailable) {
					t.Errorf("GetProfile() error = %v, want ErrUpstreamUnavailable", err)
				}
				return
			}
			if profile.UserID != "u1" {
				t.Errorf("GetProfile() user = %q, want u1", profile.UserID)
			}

			if err := store.SaveProfile(context.Background(), profile); err != nil {
				t.Errorf("SaveProfile() error = %v", err)
			}
			ids, err := store.ListUserIDs(context.Background())
			if err != nil || len(ids) != 2 {
				t.Errorf("ListUserIDs() = %v, %v", ids, err)
			}
		})
	}
}

func TestTagRegistry(t *testing.T) {
	t.Parallel()

	reg := NewTagRegistry(&fakeTagRegistry{}, testSettings(), testLogger())
	tags, err := reg.Resolve(context.Background(), []string{"go", "rust"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("Resolve() returned %d tags, want 2", len(tags))
	}

	rows, err := reg.ItemsForTags(context.Background(), []string{tags[0].ID})
	if err != nil || len(rows) != 1 {
		t.Errorf("ItemsForTags() = %v, %v", rows, err)
	}

	failing := NewTagRegistry(&fakeTagRegistry{err: errBackend}, testSettings(), testLogger())
	if _, err := failing.Resolve(context.Background(), []string{"go"}); !errors.Is(err, recommend.ErrUpstreamUnavailable) {
		t.Errorf("Resolve() error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	if s.MinRequests != 10 {
		t.Errorf("MinRequests = %d, want 10", s.MinRequests)
	}
	if s.FailureRatio != 0.6 {
		t.Errorf("FailureRatio = %f, want 0.6", s.FailureRatio)
	}
}
