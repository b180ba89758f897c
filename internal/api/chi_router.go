// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/lodestar/internal/middleware"
)

// NewRouter wires every route onto a chi router.
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()

	// Global middleware, in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/users/{userID}", h.Personalized)
			r.Get("/users/{userID}/collaborative", h.Collaborative)
			r.Get("/items/{itemID}", h.Integrated)
		})

		r.Get("/items/category/{category}", h.ByCategory)
		r.Get("/items/tags", h.ByTags)
		r.Get("/tags/related", h.RelatedTags)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/interactions", h.RecordInteraction)
			r.Delete("/interactions", h.RemoveInteraction)
			r.Post("/interests", h.DeriveInterests)
			r.Get("/profile", h.Profile)
			r.Put("/preferences", h.UpdatePreferences)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return r
}
