// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/innercircle-portal/internal/cache"
	"github.com/olegiv/innercircle-portal/internal/middleware"
	"github.com/olegiv/innercircle-portal/internal/scheduler"
	"github.com/olegiv/innercircle-portal/internal/session"
	"github.com/olegiv/innercircle-portal/internal/store"
	"github.com/olegiv/innercircle-portal/internal/version"
)

// Health check states.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// healthCheckTimeout bounds each dependency probe.
const healthCheckTimeout = 3 * time.Second

// Pinger reports whether a dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobLister lists scheduled jobs.
type JobLister interface {
	List() []scheduler.JobInfo
}

// HealthConfig wires the dependencies the health handler probes.
type HealthConfig struct {
	DB      *sql.DB
	API     Pinger
	Cache   cache.Result
	Jobs    JobLister
	Version version.Info
	Policy  middleware.AdminPolicy
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	cfg       HealthConfig
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg HealthConfig) *HealthHandler {
	return &HealthHandler{cfg: cfg, startTime: time.Now()}
}

// HealthStatusPublic is the minimal health response for anonymous callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the health response for signed-in callers. Checks, jobs
// and cache details are only filled for admins.
type HealthStatus struct {
	Status    string              `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Uptime    string              `json:"uptime"`
	Version   version.Info        `json:"version"`
	Checks    map[string]Check    `json:"checks,omitempty"`
	Database  *DatabaseInfo       `json:"database,omitempty"`
	Cache     *CacheInfo          `json:"cache,omitempty"`
	Jobs      []scheduler.JobInfo `json:"jobs,omitempty"`
	System    *SystemInfo         `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// DatabaseInfo describes the session database.
type DatabaseInfo struct {
	SchemaVersion  int64 `json:"schema_version"`
	ActiveSessions int   `json:"active_sessions"`
}

// CacheInfo describes the catalog cache.
type CacheInfo struct {
	Backend  string       `json:"backend"`
	Fallback bool         `json:"fallback,omitempty"`
	Stats    *cache.Stats `json:"stats,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health. The portal is degraded when either the
// session database or the Inner Circle API is unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"database": h.checkDatabase(r.Context()),
		"api":      h.checkAPI(r.Context()),
		"cache":    h.checkCache(r.Context()),
	}

	overallStatus := statusHealthy
	if checks["database"].Status != statusHealthy || checks["api"].Status != statusHealthy {
		overallStatus = statusDegraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if overallStatus != statusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	s := session.FromContext(r.Context())
	if !s.IsAuthenticated {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: overallStatus})
		return
	}

	status := HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.cfg.Version,
	}

	if h.cfg.Policy.IsAdmin(s.Member) {
		status.Checks = checks
		status.Database = h.databaseInfo(r.Context())
		status.Cache = h.cacheInfo()
		if h.cfg.Jobs != nil {
			status.Jobs = h.cfg.Jobs.List()
		}
		if r.URL.Query().Get("verbose") == "true" {
			status.System = getSystemInfo()
		}
	}

	_ = json.NewEncoder(w).Encode(status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	if h.cfg.DB == nil {
		return Check{Status: statusUnhealthy, Message: "database not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := store.Check(ctx, h.cfg.DB); err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: time.Since(start).String()}
	}
	return Check{Status: statusHealthy, Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkAPI(ctx context.Context) Check {
	if h.cfg.API == nil {
		return Check{Status: statusUnhealthy, Message: "api client not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := h.cfg.API.Ping(ctx); err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: time.Since(start).String()}
	}
	return Check{Status: statusHealthy, Latency: time.Since(start).String()}
}

// checkCache never degrades the portal: a failing cache only costs API calls.
func (h *HealthHandler) checkCache(ctx context.Context) Check {
	if h.cfg.Cache.Cache == nil {
		return Check{Status: statusDegraded, Message: "cache not configured"}
	}
	if h.cfg.Cache.Fallback {
		return Check{Status: statusDegraded, Message: "redis unavailable, serving from memory"}
	}
	p, ok := h.cfg.Cache.Cache.(Pinger)
	if !ok {
		return Check{Status: statusHealthy}
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := p.Ping(ctx); err != nil {
		return Check{Status: statusDegraded, Message: err.Error(), Latency: time.Since(start).String()}
	}
	return Check{Status: statusHealthy, Latency: time.Since(start).String()}
}

func (h *HealthHandler) databaseInfo(ctx context.Context) *DatabaseInfo {
	if h.cfg.DB == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	info := &DatabaseInfo{}
	var err error
	if info.SchemaVersion, err = store.SchemaVersion(h.cfg.DB); err != nil {
		slog.WarnContext(ctx, "reading schema version", "error", err)
	}
	if info.ActiveSessions, err = store.CountSessions(ctx, h.cfg.DB); err != nil {
		slog.WarnContext(ctx, "counting sessions", "error", err)
	}
	return info
}

func (h *HealthHandler) cacheInfo() *CacheInfo {
	if h.cfg.Cache.Cache == nil {
		return nil
	}
	info := &CacheInfo{Backend: h.cfg.Cache.Backend, Fallback: h.cfg.Cache.Fallback}
	if sp, ok := h.cfg.Cache.Cache.(cache.StatsProvider); ok {
		stats := sp.Stats()
		info.Stats = &stats
	}
	return info
}

func getSystemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
