// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import (
	"math"
	"strings"
	"time"
)

// Factor names one normalized input signal of a weighted score.
type Factor string

const (
	FactorCategory      Factor = "category"
	FactorTag           Factor = "tag"
	FactorSourceType    Factor = "source_type"
	FactorTrust         Factor = "trust"
	FactorRecency       Factor = "recency"
	FactorPopularity    Factor = "popularity"
	FactorMatchRatio    Factor = "match_ratio"
	FactorPrecision     Factor = "precision"
	FactorTagRelevance  Factor = "tag_relevance"
	FactorBothMatch     Factor = "both_match"
	FactorCoOccurrence  Factor = "co_occurrence"
	FactorSpecificity   Factor = "specificity"
	FactorTagPopularity Factor = "tag_popularity"
)

// Weight is one (factor, weight) pair.
type Weight struct {
	Factor Factor
	Weight float64
}

// WeightSet is an ordered list of active factors and their weights.
// Factors not listed contribute nothing.
type WeightSet []Weight

// Sum returns the total weight.
func (ws WeightSet) Sum() float64 {
	var sum float64
	for _, w := range ws {
		sum += w.Weight
	}
	return sum
}

// The weight sets used by the engine. Each one sums to 1.0.
var (
	// PersonalizedWeights scores an item against a user profile.
	PersonalizedWeights = WeightSet{
		{FactorCategory, 0.30},
		{FactorTag, 0.25},
		{FactorSourceType, 0.15},
		{FactorTrust, 0.15},
		{FactorRecency, 0.10},
		{FactorPopularity, 0.05},
	}

	// TagRelevanceWeights scores an item against a tag query.
	TagRelevanceWeights = WeightSet{
		{FactorMatchRatio, 0.4},
		{FactorPrecision, 0.3},
		{FactorPopularity, 0.2},
		{FactorRecency, 0.1},
	}

	// IntegratedWeights blends category and tag retrieval results.
	IntegratedWeights = WeightSet{
		{FactorCategory, 0.30},
		{FactorTagRelevance, 0.40},
		{FactorBothMatch, 0.10},
		{FactorPopularity, 0.15},
		{FactorRecency, 0.05},
	}

	// AssociationWeights scores a co-occurring tag.
	AssociationWeights = WeightSet{
		{FactorCoOccurrence, 0.6},
		{FactorTagPopularity, 0.2},
		{FactorSpecificity, 0.2},
	}
)

// Signals holds normalized factor values in [0,1]. Missing factors count as 0.
type Signals map[Factor]float64

// Scorer computes a weighted sum of normalized factors, clamped to [0,1].
// It is stateless and safe for concurrent use.
type Scorer struct {
	weights WeightSet
}

// NewScorer creates a scorer for the given weight set.
func NewScorer(weights WeightSet) Scorer {
	return Scorer{weights: weights}
}

// Score returns the clamped weighted sum of signals.
func (s Scorer) Score(signals Signals) float64 {
	var total float64
	for _, w := range s.weights {
		total += w.Weight * clamp01(signals[w.Factor])
	}
	return clamp01(total)
}

// Breakdown returns the weighted contribution of each active factor.
func (s Scorer) Breakdown(signals Signals) map[string]float64 {
	out := make(map[string]float64, len(s.weights))
	for _, w := range s.weights {
		out[string(w.Factor)] = w.Weight * clamp01(signals[w.Factor])
	}
	return out
}

var (
	personalizedScorer = NewScorer(PersonalizedWeights)
	tagScorer          = NewScorer(TagRelevanceWeights)
	integratedScorer   = NewScorer(IntegratedWeights)
	associationScorer  = NewScorer(AssociationWeights)
)

// clamp01 limits v to [0,1]. NaN maps to 0.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// boolSignal converts a match flag into a factor value.
func boolSignal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// RecencyScore returns max(0, 1 - age/window) for an item published at
// published. Items with no publication date, or published in the future,
// are treated as 0 and 1 respectively.
func RecencyScore(published, now time.Time, window time.Duration) float64 {
	if published.IsZero() || window <= 0 {
		return 0
	}
	age := now.Sub(published)
	if age < 0 {
		return 1
	}
	return clamp01(1 - float64(age)/float64(window))
}

// PersonalPopularity is min((views + 2*likes)/100, 1).
func PersonalPopularity(item *ContentItem) float64 {
	return clamp01(float64(item.ViewCount+item.LikeCount*2) / 100)
}

// EngagementPopularity is min((views*0.1 + likes*0.5)/100, 1).
func EngagementPopularity(item *ContentItem) float64 {
	return clamp01((float64(item.ViewCount)*0.1 + float64(item.LikeCount)*0.5) / 100)
}

// engagement is the raw tie-break value views + 2*likes.
func engagement(item *ContentItem) int {
	return item.ViewCount + 2*item.LikeCount
}

// fuzzyTagMatch reports whether tag matches any keyword, either exactly
// (ignoring case) or as a substring in either direction.
func fuzzyTagMatch(tag string, keywords []string) bool {
	t := strings.ToLower(strings.TrimSpace(tag))
	if t == "" {
		return false
	}
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if t == k || strings.Contains(t, k) || strings.Contains(k, t) {
			return true
		}
	}
	return false
}

// PersonalizedSignals computes the factor values of item for profile.
func PersonalizedSignals(item *ContentItem, prefs *Preferences, now time.Time, window time.Duration) Signals {
	var tagRatio float64
	if len(item.Tags) > 0 {
		matched := 0
		for _, tag := range item.Tags {
			if fuzzyTagMatch(tag, prefs.Keywords) {
				matched++
			}
		}
		tagRatio = float64(matched) / float64(len(item.Tags))
	}

	return Signals{
		FactorCategory:   boolSignal(containsString(prefs.Categories, item.Category)),
		FactorTag:        tagRatio,
		FactorSourceType: boolSignal(containsSourceType(prefs.SourceTypes, item.SourceType)),
		FactorTrust:      float64(item.TrustScore) / 100,
		FactorRecency:    RecencyScore(item.PublishedAt, now, window),
		FactorPopularity: PersonalPopularity(item),
	}
}

// ScorePersonalized returns the personalized score of item for prefs.
func ScorePersonalized(item *ContentItem, prefs *Preferences, now time.Time, window time.Duration) float64 {
	return personalizedScorer.Score(PersonalizedSignals(item, prefs, now, window))
}

// TagSignals computes the tag relevance factors of item when it carries
// matching of the queryCount requested tags.
func TagSignals(item *ContentItem, matching, queryCount int, now time.Time, window time.Duration) Signals {
	var matchRatio, precision float64
	if queryCount > 0 {
		matchRatio = float64(matching) / float64(queryCount)
	}
	if len(item.Tags) > 0 {
		precision = float64(matching) / float64(len(item.Tags))
	}

	return Signals{
		FactorMatchRatio: matchRatio,
		FactorPrecision:  precision,
		FactorPopularity: EngagementPopularity(item),
		FactorRecency:    RecencyScore(item.PublishedAt, now, window),
	}
}

// ScoreTagRelevance returns the tag relevance score of item.
func ScoreTagRelevance(item *ContentItem, matching, queryCount int, now time.Time, window time.Duration) float64 {
	return tagScorer.Score(TagSignals(item, matching, queryCount, now, window))
}

// AssociationScore scores a co-occurring tag from its co-occurrence rate and
// global post count.
func AssociationScore(rate float64, globalPostCount int) float64 {
	return associationScorer.Score(Signals{
		FactorCoOccurrence:  rate,
		FactorTagPopularity: float64(globalPostCount) / 100,
		FactorSpecificity:   1 - float64(globalPostCount)/50,
	})
}

func containsString(set []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsSourceType(set []SourceType, v SourceType) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// normalizeTag lowercases and trims a tag name.
func normalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
