// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

// Package catalog provides the legacy flat content source and the merged
// dual-source stores.
//
// The legacy source is a YAML file of posts predating the DuckDB schema. It
// lacks trust scores and source types, so those are filled from defaults when
// the file is loaded. Counters recorded against legacy posts live in memory.
//
// Merged combines a primary (rich) and a fallback (legacy) store into one
// recommend.ContentStore by taking the union by id, preferring the primary
// copy, and re-sorting with recommend.MergeItems. MergedTags does the same for
// the two tag registries.
package catalog
