// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lodestar/internal/metrics"
	"github.com/tomtom215/lodestar/internal/recommend"
)

// Settings controls when a circuit opens and how it recovers.
type Settings struct {
	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests" validate:"min=1"`

	// Interval resets the failure counts while closed. Zero never resets.
	Interval time.Duration `koanf:"interval" validate:"min=0"`

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration `koanf:"timeout" validate:"min=0"`

	// MinRequests is the number of requests observed before the failure ratio is considered.
	MinRequests uint32 `koanf:"min_requests" validate:"min=1"`

	// FailureRatio opens the circuit when failures/requests reaches it.
	FailureRatio float64 `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// DefaultSettings returns the production breaker settings.
// Opens after a 60% failure rate over at least 10 requests and probes again after 30 seconds.
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// Breaker is a named circuit shared by all calls to one store.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
	logger zerolog.Logger
}

// New creates a breaker and initialises its state metric.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(name string, s Settings, logger zerolog.Logger) *Breaker {
	b := &Breaker{
		name:   name,
		logger: logger.With().Str("component", "breaker").Str("breaker", name).Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	b.cb = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= s.FailureRatio {
				b.logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("Opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			b.logger.Info().Str("from", fromStr).Str("to", toStr).Msg("Circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
		IsSuccessful: isSuccessful,
	})

	return b
}

// Name returns the circuit name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current circuit state as a string.
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

// execute runs fn through the circuit and normalises its error.
func (b *Breaker) execute(op string, fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err == nil {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		return result, nil
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		b.logger.Debug().Str("op", op).Err(err).Msg("Request rejected")
		return nil, fmt.Errorf("%s %s: %w: circuit breaker: %w", b.name, op, recommend.ErrUpstreamUnavailable, err)
	case isSuccessful(err):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		return nil, err
	case errors.Is(err, recommend.ErrUpstreamUnavailable):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, fmt.Errorf("%s %s: %w: %w", b.name, op, recommend.ErrUpstreamUnavailable, err)
	}
}

// isSuccessful reports whether err should count as a healthy outcome.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, recommend.ErrNotFound) ||
		errors.Is(err, recommend.ErrValidation) ||
		errors.Is(err, context.Canceled)
}

// castResult type-asserts a circuit result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
