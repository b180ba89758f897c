// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/lodestar/internal/recommend"
)

// Resolve implements recommend.TagRegistry. Names match case-insensitively;
// unknown names are omitted.
func (db *DB) Resolve(ctx context.Context, names []string) (tags []recommend.Tag, err error) {
	start := time.Now()
	defer func() { db.observe("resolve_tags", start, err) }()

	tags = make([]recommend.Tag, 0, len(names))
	names = normalizeTags(names)
	if len(names) == 0 {
		return tags, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders, args := buildInClause(names)
	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(
		"SELECT tag_id, name, post_count FROM tag_post_counts WHERE lower(name) IN (%s) ORDER BY name", placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	for rows.Next() {
		var t recommend.Tag
		var count int64
		if err := rows.Scan(&t.ID, &t.Name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		t.GlobalPostCount = int(count)
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

// ItemsForTags implements recommend.TagRegistry.
func (db *DB) ItemsForTags(ctx context.Context, tagIDs []string) (rows []recommend.TagItem, err error) {
	start := time.Now()
	defer func() { db.observe("items_for_tags", start, err) }()

	rows = make([]recommend.TagItem, 0)
	if len(tagIDs) == 0 {
		return rows, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders, args := buildInClause(tagIDs)
	result, err := db.conn.QueryContext(ctx, fmt.Sprintf(
		"SELECT item_id, tag_id FROM item_tags WHERE tag_id IN (%s) ORDER BY item_id, tag_id", placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag membership: %w", err)
	}
	defer closeWithLog(result, db.logger, "rows")

	for result.Next() {
		var r recommend.TagItem
		if err := result.Scan(&r.ItemID, &r.TagID); err != nil {
			return nil, fmt.Errorf("failed to scan tag membership: %w", err)
		}
		rows = append(rows, r)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tag membership: %w", err)
	}
	return rows, nil
}

var _ recommend.TagRegistry = (*DB)(nil)
