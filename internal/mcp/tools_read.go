// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/store"
)

// ListTeamsTool handles the list_teams tool.
type ListTeamsTool struct {
	store *store.Store
}

// NewListTeamsTool creates a ListTeamsTool.
func NewListTeamsTool(st *store.Store) *ListTeamsTool {
	return &ListTeamsTool{store: st}
}

// Definition returns the list_teams schema.
func (t *ListTeamsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_teams",
		mcp.WithDescription("List all teams with their id, name and three-letter trigramme."),
	)
}

// Handle serves list_teams.
func (t *ListTeamsTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.store.Teams())
}

// ListTemplatesTool handles the list_templates tool.
type ListTemplatesTool struct {
	store *store.Store
}

// NewListTemplatesTool creates a ListTemplatesTool.
func NewListTemplatesTool(st *store.Store) *ListTemplatesTool {
	return &ListTemplatesTool{store: st}
}

// Definition returns the list_templates schema.
func (t *ListTemplatesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_templates",
		mcp.WithDescription("List module templates. A template becomes a Plane module with one issue per task."),
		mcp.WithString("team_id",
			mcp.Description("Only templates of this team"),
		),
	)
}

// Handle serves list_templates.
func (t *ListTemplatesTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if teamID := req.GetString("team_id", ""); teamID != "" {
		return jsonResult(t.store.TemplatesByTeam(teamID))
	}
	return jsonResult(t.store.Templates())
}

// ListProjectsTool handles the list_projects tool.
type ListProjectsTool struct {
	store *store.Store
}

// NewListProjectsTool creates a ListProjectsTool.
func NewListProjectsTool(st *store.Store) *ListProjectsTool {
	return &ListProjectsTool{store: st}
}

// projectSummary is the list_projects view of a project.
type projectSummary struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Identifier     string            `json:"identifier"`
	PlaneProjectID string            `json:"planeProjectId"`
	Status         string            `json:"status"`
	Progress       int               `json:"progress"`
	Modules        int               `json:"modules"`
	SyncStatus     models.SyncStatus `json:"syncStatus,omitempty"`
	SyncError      string            `json:"syncError,omitempty"`
}

// Definition returns the list_projects schema.
func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List projects with their progress and Plane sync status."),
		mcp.WithString("team_id",
			mcp.Description("Only projects having a module of this team"),
		),
		mcp.WithString("sync_status",
			mcp.Description("Only projects with this sync status"),
			mcp.Enum(string(models.SyncSyncing), string(models.SyncSynced), string(models.SyncError)),
		),
	)
}

// Handle serves list_projects.
func (t *ListProjectsTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var projects []models.Project
	if teamID := req.GetString("team_id", ""); teamID != "" {
		projects = t.store.ProjectsByTeam(teamID)
	} else {
		projects = t.store.Projects()
	}
	status := models.SyncStatus(req.GetString("sync_status", ""))

	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		if status != "" && p.SyncStatus != status {
			continue
		}
		out = append(out, projectSummary{
			ID:             p.ID,
			Name:           p.Name,
			Identifier:     p.Identifier,
			PlaneProjectID: p.PlaneProjectID,
			Status:         p.Status,
			Progress:       p.Progress,
			Modules:        len(p.Modules),
			SyncStatus:     p.SyncStatus,
			SyncError:      p.SyncError,
		})
	}
	return jsonResult(out)
}

// GetProjectTool handles the get_project tool.
type GetProjectTool struct {
	store *store.Store
}

// NewGetProjectTool creates a GetProjectTool.
func NewGetProjectTool(st *store.Store) *GetProjectTool {
	return &GetProjectTool{store: st}
}

// Definition returns the get_project schema.
func (t *GetProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("get_project",
		mcp.WithDescription("Get one project with its modules, tasks and sub-tasks."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Local project id"),
		),
	)
}

// Handle serves get_project.
func (t *GetProjectTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requiredString(req, "project_id")
	if errRes != nil {
		return errRes, nil
	}
	project, ok := t.store.ProjectByID(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("project %q not found", id)), nil
	}
	return jsonResult(project)
}
