// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every input validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrUpstreamUnavailable is returned when a store call fails or times out.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNotFound is returned when an explicitly requested item does not exist.
	ErrNotFound = errors.New("not found")

	// errStoresNotSet is returned when the engine is used before SetStores.
	errStoresNotSet = errors.New("stores not set")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// newValidationError creates a ValidationError.
func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// upstreamError wraps err as ErrUpstreamUnavailable unless it already is one
// of the engine's sentinel errors.
func upstreamError(op string, err error) error {
	if errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
}

// validateLimit rejects non-positive limits and caps large ones.
func (e *Engine) validateLimit(limit int) (int, error) {
	if limit <= 0 {
		return 0, newValidationError("limit", fmt.Sprintf("must be positive, got %d", limit))
	}
	if limit > e.config.Limits.MaxLimit {
		return e.config.Limits.MaxLimit, nil
	}
	return limit, nil
}

// validateID rejects empty identifiers.
func validateID(field, id string) error {
	if id == "" {
		return newValidationError(field, "must not be empty")
	}
	return nil
}
