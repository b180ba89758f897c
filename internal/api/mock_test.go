// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lodestar/internal/recommend"
)

// stubEngine is a Recommender whose methods are overridable per test.
// Unset methods return empty results.
type stubEngine struct {
	mu        sync.Mutex
	lastUser  string
	lastItem  string
	lastLimit int
	lastTags  []string
	lastExcl  string
	lastKind  recommend.InteractionKind
	lastPrefs *recommend.Preferences

	err error

	personalized []recommend.RankedItem
	candidates   []recommend.Candidate
	items        []recommend.ContentItem
	suggestions  []recommend.TagSuggestion
	profile      *recommend.UserProfile
	changed      bool
}

func (s *stubEngine) record(user, item string, limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUser, s.lastItem, s.lastLimit = user, item, limit
}

func (s *stubEngine) RecommendPersonalized(_ context.Context, userID string, limit int) ([]recommend.RankedItem, error) {
	s.record(userID, "", limit)
	return s.personalized, s.err
}

func (s *stubEngine) RecommendCollaborative(_ context.Context, userID string, limit int) ([]recommend.RankedItem, error) {
	s.record(userID, "", limit)
	return s.personalized, s.err
}

func (s *stubEngine) RecommendIntegratedByID(_ context.Context, itemID string, limit int) ([]recommend.Candidate, error) {
	s.record("", itemID, limit)
	return s.candidates, s.err
}

func (s *stubEngine) RecommendByCategory(_ context.Context, category, excludeID string, limit int) ([]recommend.ContentItem, error) {
	s.record("", category, limit)
	s.lastExcl = excludeID
	return s.items, s.err
}

func (s *stubEngine) RecommendByTags(_ context.Context, tagNames []string, excludeID string, limit int) ([]recommend.Candidate, error) {
	s.record("", "", limit)
	s.lastTags = tagNames
	s.lastExcl = excludeID
	return s.candidates, s.err
}

func (s *stubEngine) SuggestRelatedTags(_ context.Context, tagNames []string, limit int) ([]recommend.TagSuggestion, error) {
	s.record("", "", limit)
	s.lastTags = tagNames
	return s.suggestions, s.err
}

func (s *stubEngine) RecordInteraction(_ context.Context, userID, itemID string, kind recommend.InteractionKind) (*recommend.InteractionResult, error) {
	s.record(userID, itemID, 0)
	s.lastKind = kind
	if s.err != nil {
		return nil, s.err
	}
	return &recommend.InteractionResult{Changed: s.changed, Profile: s.currentProfile(userID)}, nil
}

func (s *stubEngine) RemoveInteraction(ctx context.Context, userID, itemID string, kind recommend.InteractionKind) (*recommend.InteractionResult, error) {
	return s.RecordInteraction(ctx, userID, itemID, kind)
}

func (s *stubEngine) DeriveInterests(_ context.Context, userID string) (*recommend.Preferences, error) {
	s.record(userID, "", 0)
	if s.err != nil {
		return nil, s.err
	}
	p := s.currentProfile(userID).Preferences
	return &p, nil
}

func (s *stubEngine) UpdatePreferences(_ context.Context, userID string, prefs *recommend.Preferences) (*recommend.UserProfile, error) {
	s.record(userID, "", 0)
	s.lastPrefs = prefs
	if s.err != nil {
		return nil, s.err
	}
	p := s.currentProfile(userID)
	p.Preferences = *prefs
	return p, nil
}

func (s *stubEngine) GetProfile(_ context.Context, userID string) (*recommend.UserProfile, error) {
	s.record(userID, "", 0)
	if s.err != nil {
		return nil, s.err
	}
	return s.currentProfile(userID), nil
}

func (s *stubEngine) currentProfile(userID string) *recommend.UserProfile {
	if s.profile != nil {
		return s.profile
	}
	return recommend.NewProfile(userID)
}

// newTestRouter builds the full router around a stub with rate limiting off.
func newTestRouter(t *testing.T, eng *stubEngine) http.Handler {
	t.Helper()
	h := NewHandler(eng, HandlerConfig{DefaultLimit: 10}, nil, zerolog.Nop())
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	return NewRouter(h, NewChiMiddleware(cfg))
}

// do performs a request and decodes the envelope.
func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env testEnvelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

// testEnvelope mirrors APIResponse with raw data.
type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}
