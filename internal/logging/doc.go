// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

// Package logging provides the process-wide zerolog logger for Lodestar.
//
// Components receive a zerolog.Logger at construction and add their own
// "component" field; this package owns the global instance those loggers are
// derived from, the request-scoped context helpers used by the HTTP layer, and
// an slog.Handler so suture's event hook (sutureslog) logs through zerolog.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logger := logging.WithComponent("engine")
//	logger.Info().Int("items", n).Msg("catalog loaded")
//
// Request handlers log through the context so request and user ids are
// attached automatically:
//
//	ctx = logging.ContextWithRequestID(ctx, logging.GenerateRequestID())
//	logging.Ctx(ctx).Warn().Err(err).Msg("fell back to trust-sorted list")
//
// # Configuration
//
// The level, format and caller settings come from the logging section of the
// application config (LOG_LEVEL, LOG_FORMAT, LOG_CALLER).
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
package logging
