// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ValueLogCollector reclaims space in a log-structured store.
// *profiles.BadgerStore implements it.
type ValueLogCollector interface {
	RunValueLogGC(discardRatio float64) error
}

// ValueLogGCService runs value log GC on a fixed interval.
type ValueLogGCService struct {
	store        ValueLogCollector
	interval     time.Duration
	discardRatio float64
	logger       zerolog.Logger
}

// NewValueLogGCService creates the GC loop. Badger rejects discard ratios
// outside (0, 1); out-of-range values fall back to 0.5.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewValueLogGCService(store ValueLogCollector, interval time.Duration, discardRatio float64, logger zerolog.Logger) *ValueLogGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = 0.5
	}
	return &ValueLogGCService{
		store:        store,
		interval:     interval,
		discardRatio: discardRatio,
		logger:       logger.With().Str("service", "badger-gc").Logger(),
	}
}

// Serve implements suture.Service. GC errors are logged and never returned.
func (s *ValueLogGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.store.RunValueLogGC(s.discardRatio); err != nil {
				s.logger.Warn().Err(err).Msg("value log GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for suture's event log.
func (s *ValueLogGCService) String() string {
	return "badger-gc"
}
