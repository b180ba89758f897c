// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lodestar/internal/recommend"
)

// Merged presents a primary and a fallback content store as one.
//
// A query runs against both sources concurrently. If exactly one source
// fails, the other's results are returned and the failure is logged. If both
// fail, the primary error is returned.
type Merged struct {
	primary  recommend.ContentStore
	fallback recommend.ContentStore
	logger   zerolog.Logger
}

// NewMerged creates a merged content store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMerged(primary, fallback recommend.ContentStore, logger zerolog.Logger) *Merged {
	return &Merged{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "merged_store").Logger(),
	}
}

// Query implements recommend.ContentStore. Each source applies the limit
// itself, so the merged top-k is exact.
//
//nolint:gocritic // hugeParam: Query is passed by value to match the interface
func (m *Merged) Query(ctx context.Context, q recommend.Query) ([]recommend.ContentItem, error) {
	var (
		wg                      sync.WaitGroup
		primary, fallback       []recommend.ContentItem
		primaryErr, fallbackErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		primary, primaryErr = m.primary.Query(ctx, q)
	}()
	go func() {
		defer wg.Done()
		fallback, fallbackErr = m.fallback.Query(ctx, q)
	}()
	wg.Wait()

	switch {
	case primaryErr != nil && fallbackErr != nil:
		return nil, fmt.Errorf("merged query: %w", primaryErr)
	case primaryErr != nil:
		m.logger.Warn().Err(primaryErr).Msg("Primary store query failed, serving fallback only")
	case fallbackErr != nil:
		m.logger.Warn().Err(fallbackErr).Msg("Fallback store query failed, serving primary only")
	}

	out := recommend.MergeItems(primary, fallback, q.Order)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// GetByID implements recommend.ContentStore. The primary copy wins.
func (m *Merged) GetByID(ctx context.Context, id string) (*recommend.ContentItem, error) {
	item, err := m.primary.GetByID(ctx, id)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, recommend.ErrNotFound) {
		m.logger.Warn().Err(err).Str("item_id", id).Msg("Primary lookup failed, trying fallback")
	}

	item, ferr := m.fallback.GetByID(ctx, id)
	if ferr == nil {
		return item, nil
	}
	if errors.Is(ferr, recommend.ErrNotFound) && !errors.Is(err, recommend.ErrNotFound) {
		return nil, err
	}
	return nil, ferr
}

// IncrementCounter implements recommend.ContentStore. The counter is updated
// in the source that owns the item, preferring the primary.
func (m *Merged) IncrementCounter(ctx context.Context, id string, field recommend.CounterField, delta int) error {
	err := m.primary.IncrementCounter(ctx, id, field, delta)
	if err == nil || !errors.Is(err, recommend.ErrNotFound) {
		return err
	}
	return m.fallback.IncrementCounter(ctx, id, field, delta)
}

// Tag ids issued by MergedTags carry the source they were resolved from.
const (
	primaryTagPrefix  = "p:"
	fallbackTagPrefix = "f:"
)

// MergedTags presents two tag registries as one.
//
// A name known to both registries resolves to two tags, one per source, each
// carrying the combined post count. Items tagged in both sources then appear
// once per source in ItemsForTags, which callers already dedupe by item.
type MergedTags struct {
	primary  recommend.TagRegistry
	fallback recommend.TagRegistry
	logger   zerolog.Logger
}

// NewMergedTags creates a merged tag registry.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMergedTags(primary, fallback recommend.TagRegistry, logger zerolog.Logger) *MergedTags {
	return &MergedTags{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "merged_tags").Logger(),
	}
}

// Resolve implements recommend.TagRegistry.
func (m *MergedTags) Resolve(ctx context.Context, names []string) ([]recommend.Tag, error) {
	primary, perr := m.primary.Resolve(ctx, names)
	fallback, ferr := m.fallback.Resolve(ctx, names)
	if perr != nil && ferr != nil {
		return nil, fmt.Errorf("merged resolve: %w", perr)
	}
	if perr != nil {
		m.logger.Warn().Err(perr).Msg("Primary tag registry failed, using fallback only")
	}
	if ferr != nil {
		m.logger.Warn().Err(ferr).Msg("Fallback tag registry failed, using primary only")
	}

	totals := make(map[string]int, len(primary)+len(fallback))
	for _, t := range primary {
		totals[t.Name] += t.GlobalPostCount
	}
	for _, t := range fallback {
		totals[t.Name] += t.GlobalPostCount
	}

	out := make([]recommend.Tag, 0, len(primary)+len(fallback))
	for _, t := range primary {
		out = append(out, recommend.Tag{ID: primaryTagPrefix + t.ID, Name: t.Name, GlobalPostCount: totals[t.Name]})
	}
	for _, t := range fallback {
		out = append(out, recommend.Tag{ID: fallbackTagPrefix + t.ID, Name: t.Name, GlobalPostCount: totals[t.Name]})
	}
	return out, nil
}

// ItemsForTags implements recommend.TagRegistry.
func (m *MergedTags) ItemsForTags(ctx context.Context, tagIDs []string) ([]recommend.TagItem, error) {
	var primaryIDs, fallbackIDs []string
	for _, id := range tagIDs {
		if raw, ok := strings.CutPrefix(id, primaryTagPrefix); ok {
			primaryIDs = append(primaryIDs, raw)
		} else if raw, ok := strings.CutPrefix(id, fallbackTagPrefix); ok {
			fallbackIDs = append(fallbackIDs, raw)
		}
	}

	rows := make([]recommend.TagItem, 0)
	var errs []error
	attempted := 0

	if len(primaryIDs) > 0 {
		attempted++
		p, err := m.primary.ItemsForTags(ctx, primaryIDs)
		if err != nil {
			errs = append(errs, err)
			m.logger.Warn().Err(err).Msg("Primary tag membership lookup failed")
		}
		for _, r := range p {
			rows = append(rows, recommend.TagItem{ItemID: r.ItemID, TagID: primaryTagPrefix + r.TagID})
		}
	}

	if len(fallbackIDs) > 0 {
		attempted++
		f, err := m.fallback.ItemsForTags(ctx, fallbackIDs)
		if err != nil {
			errs = append(errs, err)
			m.logger.Warn().Err(err).Msg("Fallback tag membership lookup failed")
		}
		for _, r := range f {
			rows = append(rows, recommend.TagItem{ItemID: r.ItemID, TagID: fallbackTagPrefix + r.TagID})
		}
	}

	if attempted > 0 && len(errs) == attempted {
		return nil, fmt.Errorf("merged items for tags: %w", errors.Join(errs...))
	}
	return rows, nil
}

var (
	_ recommend.ContentStore = (*Merged)(nil)
	_ recommend.TagRegistry  = (*MergedTags)(nil)
)
