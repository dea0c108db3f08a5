// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the data payload of GET /health.
type HealthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	StoreConnected bool    `json:"store_connected"`
	RealtimeActive bool    `json:"realtime_active"`
	WSClients      int     `json:"ws_clients"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health. Degraded means the process is up
// but a dependency is not serving.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	storeOK := h.store != nil && h.store.Ping() == nil

	status := "healthy"
	if !storeOK {
		status = "degraded"
	}

	health := HealthStatus{
		Status:         status,
		Version:        Version,
		StoreConnected: storeOK,
		RealtimeActive: h.hub != nil,
		UptimeSeconds:  time.Since(h.startTime).Seconds(),
	}
	if h.hub != nil {
		health.WSClients = h.hub.ClientCount()
	}

	rw.Success(health)
}

// HealthLive handles GET /api/v1/health/live. Returns 200 whenever the
// process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /api/v1/health/ready. Ready only when the
// store can serve traffic.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.store == nil || h.store.Ping() != nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeInternalError, "Store is not ready")
		return
	}

	rw.Success(map[string]interface{}{"ready": true})
}
