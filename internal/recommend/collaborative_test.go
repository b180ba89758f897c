// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import (
	"context"
	"fmt"
	"math"
	"testing"
)

func profileWith(userID string, categories []string, likes ...string) *UserProfile {
	p := NewProfile(userID)
	p.Preferences.Categories = categories
	p.Interactions.Likes = likes
	return p
}

func TestCategorySimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{name: "both empty", want: 0},
		{name: "one empty", a: []string{"x"}, want: 0},
		{name: "identical", a: []string{"x", "y"}, b: []string{"y", "x"}, want: 1},
		{name: "half", a: []string{"x", "y"}, b: []string{"x", "z"}, want: 0.5},
		{name: "uses larger set", a: []string{"x"}, b: []string{"x", "y", "z"}, want: 1.0 / 3},
		{name: "duplicates ignored", a: []string{"x", "x"}, b: []string{"x"}, want: 1},
		{name: "disjoint", a: []string{"x"}, b: []string{"y"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CategorySimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CategorySimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestEngine_RecommendCollaborative(t *testing.T) {
	t.Parallel()

	items := []ContentItem{
		newItem("i1", "a"), newItem("i2", "a"), newItem("i3", "b"),
		newItem("i4", "b"), newItem("i5", "c"), newItem("mine", "a"),
	}

	target := profileWith("target", []string{"a", "b"}, "mine")
	twin := profileWith("twin", []string{"a", "b"}, "i2", "mine", "i1")
	half := profileWith("half", []string{"a", "z"}, "i3", "i2")
	// similarity 1/3 is above 0.3
	third := profileWith("third", []string{"a", "y", "z"}, "i4")
	// similarity exactly 0.25 is below the threshold
	far := profileWith("far", []string{"b", "w", "x", "y"}, "i5")

	te := newTestEngine(items, target, twin, half, third, far)

	got, err := te.RecommendCollaborative(context.Background(), "target", 10)
	if err != nil {
		t.Fatalf("RecommendCollaborative() error = %v", err)
	}

	// twin's likes first, then half's, then third's; own likes excluded.
	want := []string{"i2", "i1", "i3", "i4"}
	if ids := rankedIDs(got); !equalStrings(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	if got[0].Score != 1 {
		t.Errorf("i2 score = %f, want 1 (best neighbor similarity)", got[0].Score)
	}
	if got[2].Score != 0.5 {
		t.Errorf("i3 score = %f, want 0.5", got[2].Score)
	}
	if got[0].Reason != reasonCollaborative {
		t.Errorf("reason = %q", got[0].Reason)
	}
}

func TestEngine_RecommendCollaborative_LimitAndSkips(t *testing.T) {
	t.Parallel()

	inactive := newItem("gone", "a")
	inactive.IsActive = false
	items := []ContentItem{newItem("i1", "a"), newItem("i2", "a"), newItem("i3", "a"), inactive}

	target := profileWith("target", []string{"a"})
	n1 := profileWith("n1", []string{"a"}, "missing", "gone", "broken", "i1", "i2", "i3")
	n2 := profileWith("n2", []string{"a"}, "i3")

	te := newTestEngine(items, target, n1, n2)
	te.content.getErrs["broken"] = errStoreDown
	te.profiles.getErrs["n2"] = errStoreDown

	got, err := te.RecommendCollaborative(context.Background(), "target", 2)
	if err != nil {
		t.Fatalf("RecommendCollaborative() error = %v", err)
	}
	if ids := rankedIDs(got); !equalStrings(ids, []string{"i1", "i2"}) {
		t.Errorf("ids = %v, want [i1 i2]", ids)
	}
	if te.GetMetrics().SkippedLookups < 3 {
		t.Errorf("SkippedLookups = %d, want >= 3", te.GetMetrics().SkippedLookups)
	}
}

func TestEngine_RecommendCollaborative_TopNeighbors(t *testing.T) {
	t.Parallel()

	var items []ContentItem
	profiles := []*UserProfile{profileWith("target", []string{"a"})}
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("item-%02d", i)
		items = append(items, newItem(id, "a"))
		profiles = append(profiles, profileWith(fmt.Sprintf("user-%02d", i), []string{"a"}, id))
	}

	te := newTestEngine(items, profiles...)

	got, err := te.RecommendCollaborative(context.Background(), "target", 50)
	if err != nil {
		t.Fatalf("RecommendCollaborative() error = %v", err)
	}
	if len(got) != 10 {
		t.Errorf("len = %d, want 10 (likes of the 10 most similar users)", len(got))
	}
}

func TestEngine_RecommendCollaborative_Empty(t *testing.T) {
	t.Parallel()

	t.Run("no similar users", func(t *testing.T) {
		t.Parallel()
		te := newTestEngine([]ContentItem{newItem("i1", "a")},
			profileWith("target", []string{"a"}),
			profileWith("other", []string{"b"}, "i1"))

		got, err := te.RecommendCollaborative(context.Background(), "target", 5)
		if err != nil || len(got) != 0 {
			t.Errorf("got %v, %v; want empty, nil", got, err)
		}
	})

	t.Run("profile listing fails", func(t *testing.T) {
		t.Parallel()
		te := newTestEngine(nil, profileWith("target", []string{"a"}))
		te.profiles.listErr = errStoreDown

		got, err := te.RecommendCollaborative(context.Background(), "target", 5)
		if err != nil {
			t.Fatalf("RecommendCollaborative() error = %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want empty non-nil list", got)
		}
	})
}
