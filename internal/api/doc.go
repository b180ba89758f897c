// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

/*
Package api exposes the recommendation engine over HTTP using the chi router.

Every response uses the same JSON envelope, encoded with goccy/go-json:

	{"success": true,  "data": [...], "meta": {"request_id": "...", "count": 10, ...}}
	{"success": false, "error": {"code": "VALIDATION_FAILED", "message": "..."}, "meta": {...}}

# Routes

	GET    /api/v1/recommendations/users/{userID}                personalized
	GET    /api/v1/recommendations/users/{userID}/collaborative  collaborative
	GET    /api/v1/recommendations/items/{itemID}                integrated (related items)
	GET    /api/v1/items/category/{category}?exclude=            by category
	GET    /api/v1/items/tags?tags=a,b&exclude=                  by tags
	GET    /api/v1/tags/related?tags=a,b                         related tag suggestions
	POST   /api/v1/users/{userID}/interactions                   record interaction
	DELETE /api/v1/users/{userID}/interactions                   remove interaction
	POST   /api/v1/users/{userID}/interests                      derive interests
	GET    /api/v1/users/{userID}/profile                        profile
	PUT    /api/v1/users/{userID}/preferences                    replace preferences
	GET    /health                                               liveness and store checks
	GET    /metrics                                              Prometheus

All listing routes accept ?limit=; a missing limit uses the configured default.

# Error Mapping

  - recommend.ErrValidation and request validation failures: 400 VALIDATION_FAILED
  - recommend.ErrNotFound: 404 NOT_FOUND
  - recommend.ErrUpstreamUnavailable and timeouts: 503 SERVICE_UNAVAILABLE

Personalized and collaborative recommendations degrade inside the engine and
answer 200 with a possibly empty list when the stores are unavailable.
*/
package api
