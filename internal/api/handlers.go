// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lodestar/internal/recommend"
)

// Recommender is the engine surface served over HTTP. *recommend.Engine
// implements it.
type Recommender interface {
	RecommendPersonalized(ctx context.Context, userID string, limit int) ([]recommend.RankedItem, error)
	RecommendCollaborative(ctx context.Context, userID string, limit int) ([]recommend.RankedItem, error)
	RecommendIntegratedByID(ctx context.Context, itemID string, limit int) ([]recommend.Candidate, error)
	RecommendByCategory(ctx context.Context, category, excludeID string, limit int) ([]recommend.ContentItem, error)
	RecommendByTags(ctx context.Context, tagNames []string, excludeID string, limit int) ([]recommend.Candidate, error)
	SuggestRelatedTags(ctx context.Context, tagNames []string, limit int) ([]recommend.TagSuggestion, error)

	RecordInteraction(ctx context.Context, userID, itemID string, kind recommend.InteractionKind) (*recommend.InteractionResult, error)
	RemoveInteraction(ctx context.Context, userID, itemID string, kind recommend.InteractionKind) (*recommend.InteractionResult, error)
	DeriveInterests(ctx context.Context, userID string) (*recommend.Preferences, error)
	UpdatePreferences(ctx context.Context, userID string, prefs *recommend.Preferences) (*recommend.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*recommend.UserProfile, error)
}

var _ Recommender = (*recommend.Engine)(nil)

// HandlerConfig holds request defaults.
type HandlerConfig struct {
	// DefaultLimit is used when a listing request has no ?limit=.
	DefaultLimit int

	// RequestTimeout bounds every engine call.
	RequestTimeout time.Duration
}

// Handler serves the recommendation API.
type Handler struct {
	engine Recommender
	cfg    HandlerConfig
	health *HealthChecker
	logger zerolog.Logger
}

// NewHandler creates a handler. health may be nil, in which case /health
// only reports liveness.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(engine Recommender, cfg HandlerConfig, health *HealthChecker, logger zerolog.Logger) *Handler {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if health == nil {
		health = NewHealthChecker("dev")
	}
	return &Handler{
		engine: engine,
		cfg:    cfg,
		health: health,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// requestContext bounds an engine call by the configured timeout.
func (h *Handler) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.cfg.RequestTimeout)
}
