// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

/*
Package supervisor provides process supervision for Lodestar using suture v4.

Long-running services are organized into three layers so that a failure in
one layer restarts only that layer:

	RootSupervisor ("lodestar")
	├── StorageSupervisor ("storage-layer")
	│   └── ValueLogGCService (badger profile backend only)
	├── WorkerSupervisor ("worker-layer")
	│   └── InterestsService (if INTERESTS_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events are logged through sutureslog, fed by the zerolog-backed
slog handler from the logging package:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, addr, 10*time.Second, logger))

	errCh := tree.ServeBackground(ctx)
	<-errCh

# Failure Handling

Each failure increments a counter that decays over FailureDecay seconds.
Once the counter passes FailureThreshold the supervisor waits FailureBackoff
before the next restart. A service that returns nil is not restarted.

# What Is NOT Supervised

DuckDB and the Badger store are embedded libraries opened once in main and
closed after the tree stops. Only their maintenance loops are supervised.

If services do not stop within ShutdownTimeout, UnstoppedServiceReport
lists them.
*/
package supervisor
