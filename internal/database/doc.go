// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

/*
Package database provides the DuckDB-backed content store and tag registry.

It is the "rich" content source: items carry trust scores, source types and
engagement counters, and tag membership lives in a relational join table.

Tables:
  - content_items: one row per recommendable item
  - tags: tag identities, unique by name
  - item_tags: (item, tag) membership rows
  - schema_migrations: applied versioned migrations

Usage:

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	items, err := db.Query(ctx, recommend.Query{Category: "nutrition", ActiveOnly: true})

DB implements both recommend.ContentStore and recommend.TagRegistry. Every
call is timed through metrics.RecordStoreQuery under the "duckdb" store label.
*/
package database
