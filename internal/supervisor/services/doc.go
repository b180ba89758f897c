// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

/*
Package services provides suture.Service wrappers for Lodestar components.

Each wrapper translates a component's lifecycle into suture's context-aware
Serve method and implements fmt.Stringer so the supervisor's event log can
name it.

# Available Services

HTTPServerService wraps *http.Server. ListenAndServe runs in a goroutine;
cancellation triggers Shutdown with a bounded timeout.

InterestsService re-derives interests for every stored profile on a fixed
interval. Calls are paced by a golang.org/x/time/rate limiter and each
outcome is counted in lodestar_interest_derivations_total.

ValueLogGCService runs Badger value log GC for the profile store.

# Usage

	tree.AddAPIService(services.NewHTTPServerService(srv, addr, 10*time.Second, logger))
	tree.AddWorkerService(services.NewInterestsService(engine, profileStore, cfg, logger))
	tree.AddStorageService(services.NewValueLogGCService(badgerStore, 10*time.Minute, 0.5, logger))
*/
package services
