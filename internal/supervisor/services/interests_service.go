// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/lodestar/internal/metrics"
	"github.com/tomtom215/lodestar/internal/recommend"
)

// InterestDeriver derives a user's interests from their interaction history.
// *recommend.Engine implements it.
type InterestDeriver interface {
	DeriveInterests(ctx context.Context, userID string) (*recommend.Preferences, error)
}

// UserLister enumerates stored profiles.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// InterestsServiceConfig holds configuration for the interest refresh loop.
type InterestsServiceConfig struct {
	// Interval between sweeps over all users.
	Interval time.Duration

	// RatePerSecond bounds DeriveInterests calls during a sweep.
	RatePerSecond float64

	// Burst is the limiter burst size.
	Burst int

	// RunOnStartup triggers a sweep as soon as the service starts.
	RunOnStartup bool
}

// SweepResult summarizes one pass over the user list.
type SweepResult struct {
	Users    int
	Derived  int
	Failed   int
	Duration time.Duration
}

// InterestsService periodically re-derives interests for every stored user.
type InterestsService struct {
	engine  InterestDeriver
	users   UserLister
	config  InterestsServiceConfig
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewInterestsService creates the refresh loop.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewInterestsService(engine InterestDeriver, users UserLister, cfg InterestsServiceConfig, logger zerolog.Logger) *InterestsService {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &InterestsService{
		engine:  engine,
		users:   users,
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		logger:  logger.With().Str("service", "interests").Logger(),
	}
}

// Serve implements suture.Service.
func (s *InterestsService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Float64("rate_per_second", s.config.RatePerSecond).
		Bool("run_on_startup", s.config.RunOnStartup).
		Msg("interest refresh starting")

	if s.config.RunOnStartup {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("initial interest sweep failed (will retry on schedule)")
		}
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("interest refresh shutting down")
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("scheduled interest sweep failed")
			}
		}
	}
}

// Sweep derives interests for every stored user once. Per-user failures
// are counted and logged; only a failure to list users is returned.
func (s *InterestsService) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()

	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	res := SweepResult{Users: len(ids)}
	for _, id := range ids {
		if err := s.limiter.Wait(ctx); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}

		_, err := s.engine.DeriveInterests(ctx, id)
		metrics.RecordInterestDerivation(err)
		switch {
		case err == nil:
			res.Derived++
		case errors.Is(err, context.Canceled):
			res.Duration = time.Since(start)
			return res, err
		default:
			res.Failed++
			s.logger.Debug().Err(err).Str("user_id", id).Msg("interest derivation failed")
		}
	}

	res.Duration = time.Since(start)
	s.logger.Info().
		Int("users", res.Users).
		Int("derived", res.Derived).
		Int("failed", res.Failed).
		Dur("duration", res.Duration).
		Msg("interest sweep complete")
	return res, nil
}

// String implements fmt.Stringer for suture's event log.
func (s *InterestsService) String() string {
	return "interests-refresh"
}
