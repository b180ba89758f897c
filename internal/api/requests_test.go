// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/tomtom215/lodestar/internal/recommend"
)

func TestParseLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 10, false},
		{"5", 5, false},
		{" 7 ", 7, false},
		{"0", 0, false},
		{"-3", -3, false},
		{"abc", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		q := url.Values{}
		if tt.raw != "" {
			q.Set("limit", tt.raw)
		}
		got, err := parseLimit(q, 10)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLimit(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, recommend.ErrValidation) {
			t.Errorf("parseLimit(%q) error does not match ErrValidation", tt.raw)
		}
		if got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestPreferencesRequestNilSlices(t *testing.T) {
	t.Parallel()

	p := (&preferencesRequest{MinTrustScore: 10}).toPreferences()
	if p.Categories == nil || p.Keywords == nil || p.SourceTypes == nil {
		t.Errorf("nil slices in %+v", p)
	}
	if p.MinTrustScore != 10 {
		t.Errorf("min trust = %d", p.MinTrustScore)
	}
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		n    int
		want string
	}{
		{nil, 3, "ok"},
		{nil, 0, "empty"},
		{&recommend.ValidationError{Field: "limit", Reason: "x"}, 0, "invalid"},
		{fmt.Errorf("x: %w", recommend.ErrNotFound), 0, "not_found"},
		{fmt.Errorf("x: %w", recommend.ErrUpstreamUnavailable), 0, "unavailable"},
		{context.DeadlineExceeded, 0, "unavailable"},
		{errors.New("boom"), 0, "error"},
	}

	for _, tt := range tests {
		if got := outcome(tt.err, tt.n); got != tt.want {
			t.Errorf("outcome(%v, %d) = %q, want %q", tt.err, tt.n, got, tt.want)
		}
	}
}
