// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/lodestar/internal/metrics"
	"github.com/tomtom215/lodestar/internal/recommend"
)

const storeLabel = "duckdb"

// maxConflictRetries bounds retries of counter updates that hit a DuckDB write conflict.
const maxConflictRetries = 3

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanItem scans one contentColumns row.
func scanItem(row rowScanner) (recommend.ContentItem, error) {
	var item recommend.ContentItem
	var source string
	err := row.Scan(
		&item.ID, &item.Title, &item.Category, &item.TrustScore, &source, &item.PublishedAt,
		&item.ViewCount, &item.LikeCount, &item.BookmarkCount, &item.IsActive, &item.IsDraft,
	)
	if err != nil {
		return item, err
	}
	item.SourceType = recommend.SourceType(source)
	item.PublishedAt = item.PublishedAt.UTC()
	item.Tags = []string{}
	return item, nil
}

// observe records store metrics and logs lost connections.
func (db *DB) observe(op string, start time.Time, err error) {
	metrics.RecordStoreQuery(storeLabel, op, time.Since(start), err)
	if isConnectionError(err) {
		db.logger.Error().Str("op", op).Err(err).Msg("Database connection lost")
	}
}

// Query implements recommend.ContentStore.
//
//nolint:gocritic // hugeParam: Query is passed by value to match the interface
func (db *DB) Query(ctx context.Context, q recommend.Query) (items []recommend.ContentItem, err error) {
	start := time.Now()
	defer func() { db.observe("query", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query, args := buildContentQuery(q)
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content items: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	items = make([]recommend.ContentItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content items: %w", err)
	}

	if err := db.attachTags(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID implements recommend.ContentStore.
func (db *DB) GetByID(ctx context.Context, id string) (item *recommend.ContentItem, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, recommend.ErrNotFound) {
			db.observe("get", start, nil)
			return
		}
		db.observe("get", start, err)
	}()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, "SELECT "+contentColumns+" FROM content_items WHERE id = ?", id)
	found, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content item %s: %w", id, err)
	}

	items := []recommend.ContentItem{found}
	if err := db.attachTags(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// IncrementCounter implements recommend.ContentStore. Counters never go below zero.
func (db *DB) IncrementCounter(ctx context.Context, id string, field recommend.CounterField, delta int) (err error) {
	start := time.Now()
	defer func() { db.observe("increment_counter", start, err) }()

	column, err := counterColumn(field)
	if err != nil {
		return err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf("UPDATE content_items SET %s = GREATEST(%s + ?, 0) WHERE id = ?", column, column)

	var res sql.Result
	for attempt := 0; ; attempt++ {
		res, err = db.conn.ExecContext(ctx, query, delta, id)
		if err == nil || !isTransactionConflict(err) || attempt >= maxConflictRetries {
			break
		}
		db.logger.Debug().Str("item_id", id).Int("attempt", attempt+1).Msg("Retrying counter update after conflict")
	}
	if err != nil {
		return fmt.Errorf("failed to update %s for %s: %w", column, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %s: %w", id, recommend.ErrNotFound)
	}
	return nil
}

// attachTags fills Tags for every item with one membership query.
func (db *DB) attachTags(ctx context.Context, items []recommend.ContentItem) error {
	if len(items) == 0 {
		return nil
	}

	index := make(map[string]int, len(items))
	ids := make([]string, len(items))
	for i := range items {
		index[items[i].ID] = i
		ids[i] = items[i].ID
	}

	placeholders, args := buildInClause(ids)
	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(
		`SELECT it.item_id, t.name FROM item_tags it JOIN tags t ON t.id = it.tag_id
		 WHERE it.item_id IN (%s) ORDER BY it.item_id, t.name`, placeholders), args...)
	if err != nil {
		return fmt.Errorf("failed to query item tags: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	for rows.Next() {
		var itemID, name string
		if err := rows.Scan(&itemID, &name); err != nil {
			return fmt.Errorf("failed to scan item tag: %w", err)
		}
		if i, ok := index[itemID]; ok {
			items[i].Tags = append(items[i].Tags, name)
		}
	}
	return rows.Err()
}

// UpsertItem inserts or replaces an item and its tag membership.
// Unknown tags are created. Used by seeding and admin tooling.
func (db *DB) UpsertItem(ctx context.Context, item *recommend.ContentItem) (err error) {
	start := time.Now()
	defer func() { db.observe("upsert", start, err) }()

	if item.ID == "" || item.Category == "" {
		return fmt.Errorf("item id and category are required")
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	source := item.SourceType
	if source == "" {
		source = recommend.SourceManual
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO content_items
		(id, title, category, trust_score, source_type, published_at, view_count, like_count, bookmark_count, is_active, is_draft, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title, category = excluded.category, trust_score = excluded.trust_score,
			source_type = excluded.source_type, published_at = excluded.published_at,
			view_count = excluded.view_count, like_count = excluded.like_count,
			bookmark_count = excluded.bookmark_count, is_active = excluded.is_active,
			is_draft = excluded.is_draft, updated_at = excluded.updated_at`,
		item.ID, item.Title, item.Category, item.TrustScore, string(source), item.PublishedAt.UTC(),
		item.ViewCount, item.LikeCount, item.BookmarkCount, item.IsActive, item.IsDraft, db.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert item %s: %w", item.ID, err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM item_tags WHERE item_id = ?", item.ID); err != nil {
		return fmt.Errorf("failed to clear tags of %s: %w", item.ID, err)
	}

	for _, name := range normalizeTags(item.Tags) {
		var tagID string
		tagID, err = db.ensureTag(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, "INSERT INTO item_tags (item_id, tag_id) VALUES (?, ?)", item.ID, tagID); err != nil {
			return fmt.Errorf("failed to tag %s with %s: %w", item.ID, name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item %s: %w", item.ID, err)
	}
	return nil
}

// ImportItems upserts items in order and returns how many were written.
// It stops at the first failure.
func (db *DB) ImportItems(ctx context.Context, items []recommend.ContentItem) (int, error) {
	for i := range items {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := db.UpsertItem(ctx, &items[i]); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

// ensureTag returns the id of the named tag, creating it when missing.
// name must already be normalized.
func (db *DB) ensureTag(ctx context.Context, tx *sql.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE lower(name) = ? ORDER BY created_at LIMIT 1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to look up tag %s: %w", name, err)
	}

	id = uuid.NewString()
	if _, err := tx.ExecContext(ctx, "INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)", id, name, db.now().UTC()); err != nil {
		return "", fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return id, nil
}

// normalizeTags lowercases and trims tag names, returning the distinct
// non-empty values in sorted order.
func normalizeTags(s []string) []string {
	seen := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))
	for _, v := range s {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

var _ recommend.ContentStore = (*DB)(nil)
