// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/planemanager/internal/config"
	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/models/plane"
	"github.com/tomtom215/planemanager/internal/persistence"
	"github.com/tomtom215/planemanager/internal/store"
	intsync "github.com/tomtom215/planemanager/internal/sync"
	ws "github.com/tomtom215/planemanager/internal/websocket"
)

// SyncEngine runs the optimistic remote operations.
// Satisfied by *intsync.Engine.
type SyncEngine interface {
	CreateProject(ctx context.Context, in intsync.CreateProjectInput) (models.Project, error)
	AddModuleToProject(ctx context.Context, projectID, moduleName string) (models.Module, error)
	RemoveModuleFromProject(ctx context.Context, projectID, moduleID string) error
	DeleteProject(ctx context.Context, projectID, planeProjectID string) error
}

// ProgressSyncer recomputes project progress from Plane.
// Satisfied by *intsync.ProgressSyncer.
type ProgressSyncer interface {
	TriggerSync(ctx context.Context) ([]intsync.ProgressResult, error)
	SyncProjectProgress(ctx context.Context, planeProjectID string) (intsync.ProgressResult, error)
	IsSyncing() bool
}

// RemoteProjectLister returns the cached Plane project list.
// Satisfied by *intsync.ProjectRefresher.
type RemoteProjectLister interface {
	RemoteProjects(ctx context.Context) ([]plane.Project, error)
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	store     *store.Store
	gateway   persistence.Gateway
	engine    SyncEngine
	progress  ProgressSyncer
	refresher RemoteProjectLister
	wsHub     *ws.Hub
	config    *config.Config
	startTime time.Time
}

// HandlerDeps lists the handler dependencies. Engine, Progress, Refresher
// and Hub may be nil when Plane is not configured; their endpoints then
// answer 503.
type HandlerDeps struct {
	Store     *store.Store
	Gateway   persistence.Gateway
	Engine    SyncEngine
	Progress  ProgressSyncer
	Refresher RemoteProjectLister
	Hub       *ws.Hub
	Config    *config.Config
}

// NewHandler creates the handler set.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		store:     deps.Store,
		gateway:   deps.Gateway,
		engine:    deps.Engine,
		progress:  deps.Progress,
		refresher: deps.Refresher,
		wsHub:     deps.Hub,
		config:    deps.Config,
		startTime: time.Now(),
	}
}

// requireComponent writes 503 and returns false when an optional
// component is missing.
func requireComponent(w http.ResponseWriter, r *http.Request, available bool, name string) bool {
	if !available {
		NewResponseWriter(w, r).Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			name+" is not available")
	}
	return available
}

// getUpgrader creates the WebSocket upgrader with origin checking.
func (h *Handler) getUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts browser origins listed in
// security.cors_origins. Requests without an Origin header are rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	if h.config == nil {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// sanitizeLogValue strips control characters and bounds the length of a
// client-supplied value before logging it.
func sanitizeLogValue(s string) string {
	const maxLen = 200
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}

// WebSocket upgrades the connection and attaches it to the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if !requireComponent(w, r, h.wsHub != nil, "WebSocket hub") {
		return
	}
	ws.ServeWS(h.wsHub, h.getUpgrader(), w, r)
}
