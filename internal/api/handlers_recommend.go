// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/lodestar/internal/logging"
	"github.com/tomtom215/lodestar/internal/metrics"
)

// listing runs one recommendation call and writes its result. fn returns the
// result slice and its length so the metrics see the real size.
func (h *Handler) listing(w http.ResponseWriter, r *http.Request, op string, fn func(r *http.Request, limit int) (interface{}, int, error)) {
	rw := NewResponseWriter(w, r)

	limit, err := parseLimit(r.URL.Query(), h.cfg.DefaultLimit)
	if err != nil {
		metrics.RecordRecommendation(op, outcome(err, 0), 0, 0)
		writeEngineError(rw, r, op, err)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	start := time.Now()
	data, n, err := fn(r.WithContext(ctx), limit)
	metrics.RecordRecommendation(op, outcome(err, n), n, time.Since(start))
	if err != nil {
		writeEngineError(rw, r, op, err)
		return
	}
	rw.List(data, limit)
}

// withUser tags the request context with the path user for logging.
func withUser(r *http.Request) (*http.Request, string) {
	userID := chi.URLParam(r, "userID")
	return r.WithContext(logging.ContextWithUserID(r.Context(), userID)), userID
}

// Personalized handles GET /recommendations/users/{userID}.
func (h *Handler) Personalized(w http.ResponseWriter, r *http.Request) {
	r, userID := withUser(r)
	h.listing(w, r, "personalized", func(r *http.Request, limit int) (interface{}, int, error) {
		items, err := h.engine.RecommendPersonalized(r.Context(), userID, limit)
		return items, len(items), err
	})
}

// Collaborative handles GET /recommendations/users/{userID}/collaborative.
func (h *Handler) Collaborative(w http.ResponseWriter, r *http.Request) {
	r, userID := withUser(r)
	h.listing(w, r, "collaborative", func(r *http.Request, limit int) (interface{}, int, error) {
		items, err := h.engine.RecommendCollaborative(r.Context(), userID, limit)
		return items, len(items), err
	})
}

// Integrated handles GET /recommendations/items/{itemID}.
func (h *Handler) Integrated(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	h.listing(w, r, "integrated", func(r *http.Request, limit int) (interface{}, int, error) {
		items, err := h.engine.RecommendIntegratedByID(r.Context(), itemID, limit)
		return items, len(items), err
	})
}

// ByCategory handles GET /items/category/{category}.
func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	exclude := r.URL.Query().Get("exclude")
	h.listing(w, r, "by_category", func(r *http.Request, limit int) (interface{}, int, error) {
		items, err := h.engine.RecommendByCategory(r.Context(), category, exclude, limit)
		return items, len(items), err
	})
}

// ByTags handles GET /items/tags?tags=a,b.
func (h *Handler) ByTags(w http.ResponseWriter, r *http.Request) {
	tags := parseTags(r.URL.Query())
	exclude := r.URL.Query().Get("exclude")
	h.listing(w, r, "by_tags", func(r *http.Request, limit int) (interface{}, int, error) {
		items, err := h.engine.RecommendByTags(r.Context(), tags, exclude, limit)
		return items, len(items), err
	})
}

// RelatedTags handles GET /tags/related?tags=a,b.
func (h *Handler) RelatedTags(w http.ResponseWriter, r *http.Request) {
	tags := parseTags(r.URL.Query())
	h.listing(w, r, "related_tags", func(r *http.Request, limit int) (interface{}, int, error) {
		suggestions, err := h.engine.SuggestRelatedTags(r.Context(), tags, limit)
		return suggestions, len(suggestions), err
	})
}
