// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

// Package profiles provides the user profile stores.
//
// Profiles are persisted in one canonical layout:
//
//	{"schema_version":1,"user_id":"u1","preferences":{...},"interactions":{...},"updated_at":"..."}
//
// Records written by earlier releases use a flat camelCase layout
// (preferredCategories, likedPosts, ...). Both layouts are accepted on read and
// converted to the canonical shape before they reach the engine; the Badger
// store rewrites converted records in place. Interaction lists are deduplicated
// and the view history is capped on every read.
package profiles
