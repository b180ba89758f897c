// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package api

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Health status values.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// healthCheckTimeout bounds each registered check.
const healthCheckTimeout = 2 * time.Second

// HealthCheckFunc probes one dependency.
type HealthCheckFunc func(ctx context.Context) error

// StateFunc reports the state of a circuit breaker.
type StateFunc func() string

// HealthChecker aggregates dependency checks and breaker states for /health.
type HealthChecker struct {
	version string
	started time.Time

	mu       sync.RWMutex
	checks   map[string]HealthCheckFunc
	breakers map[string]StateFunc
}

// NewHealthChecker creates an empty checker.
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		version:  version,
		started:  time.Now(),
		checks:   make(map[string]HealthCheckFunc),
		breakers: make(map[string]StateFunc),
	}
}

// AddCheck registers a named dependency check.
func (hc *HealthChecker) AddCheck(name string, fn HealthCheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = fn
}

// AddBreaker registers a named circuit breaker.
func (hc *HealthChecker) AddBreaker(name string, fn StateFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.breakers[name] = fn
}

// HealthStatus is the /health payload.
type HealthStatus struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks,omitempty"`
	Breakers      map[string]string `json:"breakers,omitempty"`
}

// Check runs every check concurrently. Any failing check or open breaker
// marks the status degraded.
func (hc *HealthChecker) Check(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]HealthCheckFunc, len(names))
	for i, name := range names {
		checks[i] = hc.checks[name]
	}
	breakers := make(map[string]string, len(hc.breakers))
	for name, fn := range hc.breakers {
		breakers[name] = fn()
	}
	hc.mu.RUnlock()

	results := make([]string, len(checks))
	var wg sync.WaitGroup
	for i, fn := range checks {
		wg.Add(1)
		go func(i int, fn HealthCheckFunc) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
			defer cancel()
			if err := fn(cctx); err != nil {
				results[i] = err.Error()
				return
			}
			results[i] = HealthOK
		}(i, fn)
	}
	wg.Wait()

	status := HealthStatus{
		Status:        HealthOK,
		Version:       hc.version,
		UptimeSeconds: int64(time.Since(hc.started).Seconds()),
	}
	if len(names) > 0 {
		status.Checks = make(map[string]string, len(names))
		for i, name := range names {
			status.Checks[name] = results[i]
			if results[i] != HealthOK {
				status.Status = HealthDegraded
			}
		}
	}
	if len(breakers) > 0 {
		status.Breakers = breakers
		for _, state := range breakers {
			if state == "open" {
				status.Status = HealthDegraded
			}
		}
	}
	return status
}

// Health handles GET /health. A degraded status still answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.health.Check(r.Context()))
}
