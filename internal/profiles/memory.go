// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package profiles

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/lodestar/internal/recommend"
)

// MemoryStore implements recommend.ProfileStore in memory. Profiles are
// stored encoded so reads go through the same canonicalisation as Badger.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string][]byte
	maxViews int
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory profile store.
func NewMemoryStore(maxViews int) *MemoryStore {
	return &MemoryStore{
		records:  make(map[string][]byte),
		maxViews: maxViews,
		now:      time.Now,
	}
}

// Import stores a raw record as-is, in either layout.
func (s *MemoryStore) Import(userID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = append([]byte(nil), data...)
}

// GetProfile implements recommend.ProfileStore.
func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (*recommend.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.records[userID]
	s.mu.RUnlock()
	if !ok {
		return recommend.NewProfile(userID), nil
	}

	p, _, err := decodeProfile(userID, data, s.maxViews)
	return p, err
}

// SaveProfile implements recommend.ProfileStore.
func (s *MemoryStore) SaveProfile(ctx context.Context, profile *recommend.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if profile == nil || profile.UserID == "" {
		return fmt.Errorf("save profile: user id is required")
	}

	p := profile.Clone()
	canonicalize(p, s.maxViews)
	p.UpdatedAt = s.now().UTC()

	data, err := encodeProfile(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records[p.UserID] = data
	s.mu.Unlock()
	return nil
}

// ListUserIDs implements recommend.ProfileStore. IDs are sorted.
func (s *MemoryStore) ListUserIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids, nil
}

var _ recommend.ProfileStore = (*MemoryStore)(nil)
