// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/bhashini-go/internal/logging"
	"github.com/olegiv/bhashini-go/internal/version"
)

// EndpointProvider reports the configured translation endpoint.
// *translate.Client satisfies it.
type EndpointProvider interface {
	Endpoint() string
}

// SessionCounter reports how many submission controllers are live.
// *submission.Registry satisfies it.
type SessionCounter interface {
	Len() int
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	translator EndpointProvider
	sessions   SessionCounter
	recent     *logging.RecentHandler
	version    version.Info
	startTime  time.Time
}

// NewHealthHandler creates a new health handler. recent may be nil.
func NewHealthHandler(translator EndpointProvider, sessions SessionCounter, recent *logging.RecentHandler, info version.Info) *HealthHandler {
	return &HealthHandler{
		translator: translator,
		sessions:   sessions,
		recent:     recent,
		version:    info,
		startTime:  time.Now(),
	}
}

// StartTime returns when the handler (and application) was started.
func (h *HealthHandler) StartTime() time.Time {
	return h.startTime
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status     string           `json:"status"`
	Timestamp  time.Time        `json:"timestamp"`
	Uptime     string           `json:"uptime"`
	Version    string           `json:"version"`
	Checks     map[string]Check `json:"checks"`
	System     *SystemInfo      `json:"system,omitempty"`
	RecentLogs []logging.Entry  `json:"recent_logs,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
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
// ?verbose=true adds system info and the most recent warnings and errors.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	translatorCheck := h.checkTranslator()

	overallStatus := "healthy"
	statusCode := http.StatusOK
	if translatorCheck.Status != "healthy" {
		overallStatus = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	status := HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.Version,
		Checks: map[string]Check{
			"translator": translatorCheck,
			"sessions":   h.checkSessions(),
		},
	}

	if r.URL.Query().Get("verbose") == "true" {
		status.System = getSystemInfo()
		if h.recent != nil {
			status.RecentLogs = h.recent.Recent()
		}
	}

	writeJSON(w, statusCode, status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}

// Readiness handles GET /health/ready - the service is ready once a
// translation endpoint is configured.
func (h *HealthHandler) Readiness(w http.ResponseWriter, _ *http.Request) {
	check := h.checkTranslator()
	if check.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
		})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":  "not_ready",
		"message": check.Message,
	})
}

// checkTranslator verifies that a translation endpoint is configured. The
// remote service is not called: every call is a billable translation.
func (h *HealthHandler) checkTranslator() Check {
	if h.translator == nil || h.translator.Endpoint() == "" {
		return Check{
			Status:  "unhealthy",
			Message: "Translation endpoint not configured",
		}
	}
	return Check{
		Status:  "healthy",
		Message: "Endpoint configured",
	}
}

func (h *HealthHandler) checkSessions() Check {
	if h.sessions == nil {
		return Check{Status: "healthy", Message: "0 active"}
	}
	return Check{
		Status:  "healthy",
		Message: fmt.Sprintf("%d active", h.sessions.Len()),
	}
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
