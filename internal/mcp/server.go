// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/store"
	intsync "github.com/tomtom215/planemanager/internal/sync"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Engine runs the remote project operations.
type Engine interface {
	CreateProject(ctx context.Context, in intsync.CreateProjectInput) (models.Project, error)
	AddModuleToProject(ctx context.Context, projectID, moduleName string) (models.Module, error)
	RemoveModuleFromProject(ctx context.Context, projectID, moduleID string) error
	DeleteProject(ctx context.Context, projectID, planeProjectID string) error
}

// ProgressSyncer recomputes project progress from Plane.
type ProgressSyncer interface {
	TriggerSync(ctx context.Context) ([]intsync.ProgressResult, error)
	SyncProjectProgress(ctx context.Context, planeProjectID string) (intsync.ProgressResult, error)
}

// Deps lists the tool dependencies. Engine and Progress are nil when Plane
// is not configured; the tools needing them then return an error result.
type Deps struct {
	Store    *store.Store
	Engine   Engine
	Progress ProgressSyncer
}

// NewServer creates the MCP server with every tool registered.
func NewServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"plane-manager",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Manage teams, module templates and Plane.so projects. "+
			"Project creation is asynchronous: poll get_project until syncStatus is synced or error."),
	)

	listTeams := NewListTeamsTool(deps.Store)
	s.AddTool(listTeams.Definition(), listTeams.Handle)

	listTemplates := NewListTemplatesTool(deps.Store)
	s.AddTool(listTemplates.Definition(), listTemplates.Handle)

	listProjects := NewListProjectsTool(deps.Store)
	s.AddTool(listProjects.Definition(), listProjects.Handle)

	getProject := NewGetProjectTool(deps.Store)
	s.AddTool(getProject.Definition(), getProject.Handle)

	createProject := NewCreateProjectTool(deps.Engine)
	s.AddTool(createProject.Definition(), createProject.Handle)

	addModule := NewAddModuleTool(deps.Engine)
	s.AddTool(addModule.Definition(), addModule.Handle)

	removeModule := NewRemoveModuleTool(deps.Engine)
	s.AddTool(removeModule.Definition(), removeModule.Handle)

	deleteProject := NewDeleteProjectTool(deps.Store, deps.Engine)
	s.AddTool(deleteProject.Definition(), deleteProject.Handle)

	syncProgress := NewSyncProgressTool(deps.Progress)
	s.AddTool(syncProgress.Definition(), syncProgress.Handle)

	return s
}

// NewHTTPHandler serves s over streamable HTTP. Every call gets a fresh
// correlation id in its logging context.
func NewHTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithStateLess(true),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return logging.ContextWithNewCorrelationID(ctx)
		}),
	)
}
