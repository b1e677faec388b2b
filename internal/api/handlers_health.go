// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the readiness report.
type HealthStatus struct {
	Status           string     `json:"status"`
	PlaneConfigured  bool       `json:"planeConfigured"`
	Teams            int        `json:"teams"`
	Templates        int        `json:"templates"`
	Projects         int        `json:"projects"`
	ProgressSyncing  bool       `json:"progressSyncing"`
	LastSync         *time.Time `json:"lastSync"`
	WebSocketClients int        `json:"websocketClients"`
	UptimeSeconds    float64    `json:"uptimeSeconds"`
}

// HealthLive reports that the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady reports whether the store is loaded and which integrations
// are running. Without Plane the service is degraded but still ready: the
// local data can be edited.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.store == nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "store is not initialized")
		return
	}

	snap := h.store.ExportData()
	status := HealthStatus{
		Status:          "healthy",
		PlaneConfigured: h.engine != nil,
		Teams:           len(snap.Teams),
		Templates:       len(snap.ModuleTemplates),
		Projects:        len(snap.Projects),
		LastSync:        snap.LastSync,
		UptimeSeconds:   time.Since(h.startTime).Seconds(),
	}
	if !status.PlaneConfigured {
		status.Status = "degraded"
	}
	if h.progress != nil {
		status.ProgressSyncing = h.progress.IsSyncing()
	}
	if h.wsHub != nil {
		status.WebSocketClients = h.wsHub.GetClientCount()
	}
	rw.Success(status)
}
