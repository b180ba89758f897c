// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/lodestar/internal/logging"
	"github.com/tomtom215/lodestar/internal/recommend"
	"github.com/tomtom215/lodestar/internal/validation"
)

// writeEngineError maps an engine or decoder error onto a response.
func writeEngineError(rw *ResponseWriter, r *http.Request, op string, err error) {
	var reqErr *validation.RequestValidationError
	var fieldErr *recommend.ValidationError

	switch {
	case errors.As(err, &reqErr):
		apiErr := reqErr.ToAPIError()
		var details interface{}
		if len(apiErr.Details) > 0 {
			details = apiErr.Details
		}
		rw.ValidationError(apiErr.Message, details)

	case errors.As(err, &fieldErr):
		rw.ValidationError(fieldErr.Error(), map[string]string{
			"field":  fieldErr.Field,
			"reason": fieldErr.Reason,
		})

	case errors.Is(err, recommend.ErrValidation):
		rw.ValidationError(err.Error(), nil)

	case errors.Is(err, recommend.ErrNotFound):
		rw.NotFound(err.Error())

	case errors.Is(err, recommend.ErrUpstreamUnavailable), errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(r.Context()).Warn().Err(err).Str("operation", op).Msg("upstream unavailable")
		rw.ServiceUnavailable("content or profile store unavailable, retry later")

	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		rw.Error(499, "CLIENT_CLOSED_REQUEST", "request canceled")

	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("operation", op).Msg("unexpected engine error")
		rw.InternalError("internal error")
	}
}

// outcome classifies a result for the recommendation metrics.
func outcome(err error, n int) string {
	switch {
	case err == nil && n == 0:
		return "empty"
	case err == nil:
		return "ok"
	case errors.Is(err, recommend.ErrValidation):
		return "invalid"
	case errors.Is(err, recommend.ErrNotFound):
		return "not_found"
	case errors.Is(err, recommend.ErrUpstreamUnavailable), errors.Is(err, context.DeadlineExceeded):
		return "unavailable"
	default:
		return "error"
	}
}
