// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/planemanager/internal/middleware"
)

// Router builds the HTTP route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	mcpHandler    http.Handler
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithMCPHandler mounts the MCP endpoint at /mcp.
func WithMCPHandler(h http.Handler) RouterOption {
	return func(r *Router) { r.mcpHandler = h }
}

// NewRouter creates a router. The middleware configuration is taken from
// the handler's security settings.
func NewRouter(handler *Handler, opts ...RouterOption) *Router {
	mwConfig := DefaultChiMiddlewareConfig()
	if handler.config != nil {
		mwConfig = ChiMiddlewareConfigFromSecurity(handler.config.Security)
	}
	r := &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Setup configures all routes.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Persistence gateway
	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Post("/api/save-data", h.SaveData)
		r.Get("/api/load-data", h.LoadData)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.ListTeams)
			r.Post("/", h.CreateTeam)
			r.Get("/{id}", h.GetTeam)
			r.Put("/{id}", h.UpdateTeam)
			r.Delete("/{id}", h.DeleteTeam)
			r.Get("/{id}/templates", h.ListTeamTemplates)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Post("/", h.CreateTemplate)
			r.Get("/{id}", h.GetTemplate)
			r.Put("/{id}", h.UpdateTemplate)
			r.Delete("/{id}", h.DeleteTemplate)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/{id}", h.GetProject)
			r.Put("/{id}", h.UpdateProject)
			r.Delete("/{id}", h.DeleteProject)

			r.Post("/{id}/modules", h.AddModule)
			r.Delete("/{id}/modules/{moduleId}", h.RemoveModule)
			r.Patch("/{id}/modules/{moduleId}/tasks/{taskId}", h.UpdateTask)
			r.Post("/{id}/modules/{moduleId}/tasks/{taskId}/subtasks", h.AddSubTask)
			r.Patch("/{id}/modules/{moduleId}/tasks/{taskId}/subtasks/{subTaskId}", h.UpdateSubTask)
			r.Delete("/{id}/modules/{moduleId}/tasks/{taskId}/subtasks/{subTaskId}", h.DeleteSubTask)
		})

		r.Route("/data", func(r chi.Router) {
			r.Get("/export", h.ExportData)
			r.Post("/import", h.ImportData)
			r.Post("/clear", h.ClearData)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/progress", h.TriggerProgressSync)
			r.Post("/progress/{planeProjectId}", h.SyncOneProjectProgress)
			r.Get("/status", h.GetSyncStatus)
		})

		r.Get("/plane/projects", h.ListPlaneProjects)
		r.Get("/ws", h.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	if router.mcpHandler != nil {
		r.Handle("/mcp", router.mcpHandler)
		r.Handle("/mcp/*", router.mcpHandler)
	}

	return r
}
