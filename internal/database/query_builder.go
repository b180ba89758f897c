// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package database

import (
	"fmt"
	"strings"

	"github.com/tomtom215/lodestar/internal/recommend"
)

// contentColumns is the column list scanned by scanItem, in order.
const contentColumns = `id, title, category, trust_score, source_type, published_at,
	view_count, like_count, bookmark_count, is_active, is_draft`

// buildInClause creates a parameterized IN clause for SQL queries.
// Returns the placeholder string and the arguments slice.
//
// Example:
//
//	placeholders, args := buildInClause([]string{"a", "b", "c"})
//	// placeholders = "?,?,?"
//	// args = []interface{}{"a", "b", "c"}
func buildInClause(items []string) (string, []interface{}) {
	placeholders := make([]string, len(items))
	args := make([]interface{}, len(items))
	for i, item := range items {
		placeholders[i] = "?"
		args[i] = item
	}
	return strings.Join(placeholders, ","), args
}

// buildContentQuery translates a recommend.Query into SQL.
// Zero-valued filters are omitted. Ties always break on id.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func buildContentQuery(q recommend.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if q.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, q.Category)
	}

	if len(q.IDs) > 0 {
		placeholders, idArgs := buildInClause(q.IDs)
		conditions = append(conditions, fmt.Sprintf("id IN (%s)", placeholders))
		args = append(args, idArgs...)
	}

	if len(q.ExcludeIDs) > 0 {
		placeholders, idArgs := buildInClause(q.ExcludeIDs)
		conditions = append(conditions, fmt.Sprintf("id NOT IN (%s)", placeholders))
		args = append(args, idArgs...)
	}

	if q.ActiveOnly {
		conditions = append(conditions, "is_active")
	}

	if q.ExcludeDrafts {
		conditions = append(conditions, "NOT is_draft")
	}

	if q.MinTrustScore > 0 {
		conditions = append(conditions, "trust_score >= ?")
		args = append(args, q.MinTrustScore)
	}

	if !q.PublishedAfter.IsZero() {
		conditions = append(conditions, "published_at >= ?")
		args = append(args, q.PublishedAfter.UTC())
	}

	if !q.PublishedBefore.IsZero() {
		conditions = append(conditions, "published_at < ?")
		args = append(args, q.PublishedBefore.UTC())
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(contentColumns)
	b.WriteString(" FROM content_items WHERE 1=1")
	for _, c := range conditions {
		b.WriteString(" AND ")
		b.WriteString(c)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(orderClause(q.Order))

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	return b.String(), args
}

// orderClause returns the ORDER BY expression matching recommend.SortItems.
func orderClause(o recommend.Ordering) string {
	switch o {
	case recommend.OrderEngagement:
		return "view_count DESC, like_count DESC, published_at DESC, id ASC"
	case recommend.OrderTrust:
		return "trust_score DESC, published_at DESC, id ASC"
	case recommend.OrderRecent:
		return "published_at DESC, id ASC"
	default:
		return "id ASC"
	}
}

// counterColumn maps a counter field onto its column. Unknown fields are rejected
// so the column name can be interpolated safely.
func counterColumn(field recommend.CounterField) (string, error) {
	switch field {
	case recommend.CounterViews, recommend.CounterLikes, recommend.CounterBookmarks:
		return string(field), nil
	default:
		return "", fmt.Errorf("unknown counter field %q", field)
	}
}
