// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/lodestar/internal/logging"
	"github.com/tomtom215/lodestar/internal/metrics"
	"github.com/tomtom215/lodestar/internal/recommend"
)

// RecordInteraction handles POST /users/{userID}/interactions.
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	h.interaction(w, r, "record", h.engine.RecordInteraction)
}

// RemoveInteraction handles DELETE /users/{userID}/interactions.
func (h *Handler) RemoveInteraction(w http.ResponseWriter, r *http.Request) {
	h.interaction(w, r, "remove", h.engine.RemoveInteraction)
}

type interactionFunc func(ctx context.Context, userID, itemID string, kind recommend.InteractionKind) (*recommend.InteractionResult, error)

func (h *Handler) interaction(w http.ResponseWriter, r *http.Request, action string, fn interactionFunc) {
	r, userID := withUser(r)
	rw := NewResponseWriter(w, r)

	var req interactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeEngineError(rw, r, action+"_interaction", err)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	kind := recommend.InteractionKind(req.Kind)
	res, err := fn(ctx, userID, req.ItemID, kind)
	if err != nil {
		writeEngineError(rw, r, action+"_interaction", err)
		return
	}
	metrics.RecordInteraction(string(kind), action, res.Changed)

	h.logger.Debug().
		Str("request_id", logging.RequestIDFromContext(r.Context())).
		Str("user_id", userID).
		Str("item_id", req.ItemID).
		Str("kind", string(kind)).
		Str("action", action).
		Bool("changed", res.Changed).
		Msg("interaction applied")

	rw.Success(res)
}

// DeriveInterests handles POST /users/{userID}/interests.
func (h *Handler) DeriveInterests(w http.ResponseWriter, r *http.Request) {
	r, userID := withUser(r)
	rw := NewResponseWriter(w, r)

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	prefs, err := h.engine.DeriveInterests(ctx, userID)
	metrics.RecordInterestDerivation(err)
	if err != nil {
		writeEngineError(rw, r, "derive_interests", err)
		return
	}
	rw.Success(prefs)
}

// Profile handles GET /users/{userID}/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	r, userID := withUser(r)
	rw := NewResponseWriter(w, r)

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	profile, err := h.engine.GetProfile(ctx, userID)
	if err != nil {
		writeEngineError(rw, r, "get_profile", err)
		return
	}
	rw.Success(profile)
}

// UpdatePreferences handles PUT /users/{userID}/preferences.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	r, userID := withUser(r)
	rw := NewResponseWriter(w, r)

	var req preferencesRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeEngineError(rw, r, "update_preferences", err)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	profile, err := h.engine.UpdatePreferences(ctx, userID, req.toPreferences())
	if err != nil {
		writeEngineError(rw, r, "update_preferences", err)
		return
	}
	rw.Success(profile)
}
