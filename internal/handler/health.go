// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/logging"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/middleware"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/version"
)

// ReadinessTTL is how long a Notion connection check is reused.
const ReadinessTTL = time.Minute

// ConnectionCheckTimeout bounds one Notion connection check. The check runs
// detached from the request so a caller hanging up does not fail it.
const ConnectionCheckTimeout = 10 * time.Second

// RecentLogs exposes recently captured warnings and errors.
type RecentLogs interface {
	Recent() []logging.Entry
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	blog      Blog
	logs      RecentLogs
	secret    string
	version   version.Info
	startTime time.Time
	now       func() time.Time

	checkTimeout time.Duration
	checks       singleflight.Group

	mu        sync.Mutex
	status    notion.ConnectionStatus
	checkedAt time.Time
}

type connectionResult struct {
	status    notion.ConnectionStatus
	checkedAt time.Time
}

// NewHealthHandler creates a new health handler. Detailed output is given to
// callers presenting secret.
func NewHealthHandler(blog Blog, logs RecentLogs, secret string, info version.Info) *HealthHandler {
	return &HealthHandler{
		blog:      blog,
		logs:      logs,
		secret:    secret,
		version:   info,
		startTime: time.Now(),
		now:       time.Now,

		checkTimeout: ConnectionCheckTimeout,
	}
}

// StartTime returns when the handler (and application) was started.
func (h *HealthHandler) StartTime() time.Time {
	return h.startTime
}

// HealthStatusPublic is the minimal health response for unauthenticated callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus represents the overall health status (authenticated callers only).
type HealthStatus struct {
	Status     string           `json:"status"`
	Timestamp  time.Time        `json:"timestamp"`
	Uptime     string           `json:"uptime"`
	Version    string           `json:"version"`
	Commit     string           `json:"commit,omitempty"`
	Checks     map[string]Check `json:"checks"`
	RecentLogs []logging.Entry  `json:"recent_logs,omitempty"`
	System     *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Checked string `json:"checked,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health requests.
// Returns minimal status for unauthenticated callers, full details for authenticated ones.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	notionCheck := h.checkNotion(r.Context())

	overallStatus := "healthy"
	if notionCheck.Status != "healthy" {
		overallStatus = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if !h.isAuthenticated(r) {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{
			Status: overallStatus,
		})
		return
	}

	stats := h.blog.CacheStats()
	status := HealthStatus{
		Status:    overallStatus,
		Timestamp: h.now().UTC(),
		Uptime:    h.now().Sub(h.startTime).Round(time.Second).String(),
		Version:   h.version.Short(),
		Commit:    h.version.GitCommit,
		Checks: map[string]Check{
			"notion": notionCheck,
			"cache": {
				Status:  "healthy",
				Message: fmt.Sprintf("%s backend, %d items, hit rate %.2f", stats.Backend, stats.Items, stats.HitRate),
			},
		},
	}
	if h.logs != nil {
		status.RecentLogs = h.logs.Recent()
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = getSystemInfo()
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

// Readiness handles GET /health/ready - the service is ready once the
// Notion connection validates.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	check := h.checkNotion(r.Context())

	w.Header().Set("Content-Type", "application/json")

	if check.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
		})
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	resp := map[string]string{
		"status": "not_ready",
	}
	// Only include error details for authenticated callers
	if h.isAuthenticated(r) {
		resp["message"] = check.Message
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// connection returns the Notion connection status, reusing a result younger
// than ReadinessTTL. Concurrent callers share one check. A check that ran
// out of time is returned but not cached.
func (h *HealthHandler) connection(ctx context.Context) (notion.ConnectionStatus, time.Time) {
	h.mu.Lock()
	if !h.checkedAt.IsZero() && h.now().Sub(h.checkedAt) < ReadinessTTL {
		status, checkedAt := h.status, h.checkedAt
		h.mu.Unlock()
		return status, checkedAt
	}
	h.mu.Unlock()

	v, _, _ := h.checks.Do("notion", func() (any, error) {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.checkTimeout)
		defer cancel()

		res := connectionResult{
			status:    h.blog.ValidateConnection(checkCtx),
			checkedAt: h.now(),
		}
		if checkCtx.Err() == nil {
			h.mu.Lock()
			h.status, h.checkedAt = res.status, res.checkedAt
			h.mu.Unlock()
		}
		return res, nil
	})
	res := v.(connectionResult)
	return res.status, res.checkedAt
}

// checkNotion converts the connection status to a Check.
func (h *HealthHandler) checkNotion(ctx context.Context) Check {
	status, checkedAt := h.connection(ctx)
	check := Check{Checked: checkedAt.UTC().Format(time.RFC3339)}
	if status.Valid {
		check.Status = "healthy"
		check.Message = "Connected"
		if status.BotName != "" {
			check.Message = "Connected as " + status.BotName
		}
		return check
	}

	check.Status = "unhealthy"
	check.Message = "Notion connection invalid"
	if len(status.Errors) > 0 {
		check.Message = status.Errors[0]
	}
	return check
}

// isAuthenticated checks the revalidation secret.
func (h *HealthHandler) isAuthenticated(r *http.Request) bool {
	if h.secret == "" {
		return false
	}
	provided := r.Header.Get(middleware.SecretHeader)
	return provided != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) == 1
}

// getSystemInfo returns system-level metrics.
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

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
