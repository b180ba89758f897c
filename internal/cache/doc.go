// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

/*
Package cache provides the thread-safe listing cache placed in front of the
recommendation engine's listing queries.

Entries are immutable snapshots stored under keys derived from query filters
and pagination. Every entry shares one fixed time-to-live (five minutes by
default) and the only bulk invalidation is Clear, which the engine calls after
every write it performs.

# Usage Example

	c := cache.NewWithConfig(cache.Config{
	    TTL:        5 * time.Minute,
	    MaxEntries: 10000,
	})
	defer c.Close()

	engine.SetCache(c)

# Thread Safety

Reads take a read lock; writes and Clear take the write lock. Concurrent Set
calls for the same key are allowed and the last writer wins, which is
acceptable because either snapshot is valid.

# Bounded Size

With MaxEntries set, inserting a new key into a full cache first drops every
expired entry and, if none were expired, the entry closest to expiry.
*/
package cache
