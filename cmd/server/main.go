// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomtom215/lodestar/internal/api"
	"github.com/tomtom215/lodestar/internal/config"
	"github.com/tomtom215/lodestar/internal/logging"
	"github.com/tomtom215/lodestar/internal/metrics"
	"github.com/tomtom215/lodestar/internal/supervisor"
	"github.com/tomtom215/lodestar/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := run(cfg); err != nil {
		logging.Error().Err(err).Msg("Lodestar exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := logging.Logger()
	logger.Info().Str("version", version).Msg("Starting Lodestar")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	prometheus.MustRegister(metrics.NewEngineCollector(app.engine))
	if app.cache != nil {
		prometheus.MustRegister(metrics.NewCacheCollector(app.cache))
	}

	handler := api.NewHandler(app.engine, api.HandlerConfig{
		DefaultLimit:   cfg.Recommend.DefaultLimit,
		RequestTimeout: cfg.Server.WriteTimeout,
	}, app.health, logger)

	mwCfg := api.DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwCfg.RateLimitRequests = cfg.Server.RateLimitReqs
	mwCfg.RateLimitWindow = cfg.Server.RateLimitWindow
	mwCfg.RateLimitDisabled = cfg.Server.RateLimitDisabled

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(handler, api.NewChiMiddleware(mwCfg)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.ShutdownTimeout, logger))

	if cfg.Interests.Enabled {
		tree.AddWorkerService(services.NewInterestsService(app.engine, app.profiles, services.InterestsServiceConfig{
			Interval:      cfg.Interests.Interval,
			RatePerSecond: cfg.Interests.RatePerSecond,
			Burst:         cfg.Interests.Burst,
		}, logger))
	}

	if app.badger != nil && cfg.Profiles.GCInterval > 0 {
		tree.AddStorageService(services.NewValueLogGCService(app.badger, cfg.Profiles.GCInterval, cfg.Profiles.GCDiscardRatio, logger))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				app.Reload()
				continue
			}
			logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
			return
		}
	}()

	logger.Info().Str("addr", addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var runErr error
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Supervisor tree error")
		runErr = err
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logger.Info().Msg("Lodestar stopped")
	return runErr
}
