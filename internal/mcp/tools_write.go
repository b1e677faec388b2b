// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/store"
	intsync "github.com/tomtom215/planemanager/internal/sync"
	"github.com/tomtom215/planemanager/internal/validation"
)

// CreateProjectTool handles the create_project tool.
type CreateProjectTool struct {
	engine Engine
}

// NewCreateProjectTool creates a CreateProjectTool.
func NewCreateProjectTool(engine Engine) *CreateProjectTool {
	return &CreateProjectTool{engine: engine}
}

// Definition returns the create_project schema.
func (t *CreateProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("create_project",
		mcp.WithDescription("Create a project. It is stored immediately with syncStatus syncing "+
			"and created in Plane in the background, together with the listed modules."),
		mcp.WithString("name",
			mcp.Description("Project name; defaults to the Salesforce number"),
		),
		mcp.WithString("salesforce_number",
			mcp.Description("Salesforce opportunity number"),
		),
		mcp.WithString("board_id",
			mcp.Description("Board id"),
		),
		mcp.WithString("description",
			mcp.Description("Project description"),
		),
		mcp.WithArray("modules",
			mcp.Description("Template or custom module names to add"),
			mcp.WithStringItems(),
		),
	)
}

// Handle serves create_project.
func (t *CreateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.engine == nil {
		return planeUnavailable()
	}
	in := intsync.CreateProjectInput{
		Name:             req.GetString("name", ""),
		SalesforceNumber: req.GetString("salesforce_number", ""),
		BoardID:          req.GetString("board_id", ""),
		Description:      req.GetString("description", ""),
		Modules:          req.GetStringSlice("modules", nil),
	}
	if verr := validation.ValidateStruct(&in); verr != nil {
		return mcp.NewToolResultError(verr.Error()), nil
	}

	project, err := t.engine.CreateProject(ctx, in)
	if err != nil {
		return errorResult("create_project", err)
	}
	logging.Ctx(ctx).Info().Str("project_id", project.ID).Msg("Project created from MCP")
	return jsonResult(project)
}

// AddModuleTool handles the add_module tool.
type AddModuleTool struct {
	engine Engine
}

// NewAddModuleTool creates an AddModuleTool.
func NewAddModuleTool(engine Engine) *AddModuleTool {
	return &AddModuleTool{engine: engine}
}

// Definition returns the add_module schema.
func (t *AddModuleTool) Definition() mcp.Tool {
	return mcp.NewTool("add_module",
		mcp.WithDescription("Add a module to a synced project. A name matching a template creates "+
			"its tasks as Plane issues; any other name creates an empty custom module."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Local project id"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Template or custom module name"),
		),
	)
}

// Handle serves add_module.
func (t *AddModuleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.engine == nil {
		return planeUnavailable()
	}
	projectID, errRes := requiredString(req, "project_id")
	if errRes != nil {
		return errRes, nil
	}
	name, errRes := requiredString(req, "name")
	if errRes != nil {
		return errRes, nil
	}
	module, err := t.engine.AddModuleToProject(ctx, projectID, name)
	if err != nil {
		return errorResult("add_module", err)
	}
	return jsonResult(module)
}

// RemoveModuleTool handles the remove_module tool.
type RemoveModuleTool struct {
	engine Engine
}

// NewRemoveModuleTool creates a RemoveModuleTool.
func NewRemoveModuleTool(engine Engine) *RemoveModuleTool {
	return &RemoveModuleTool{engine: engine}
}

// Definition returns the remove_module schema.
func (t *RemoveModuleTool) Definition() mcp.Tool {
	return mcp.NewTool("remove_module",
		mcp.WithDescription("Remove a module from a project and delete it in Plane."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Local project id"),
		),
		mcp.WithString("module_id",
			mcp.Required(),
			mcp.Description("Local module id"),
		),
	)
}

// Handle serves remove_module.
func (t *RemoveModuleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.engine == nil {
		return planeUnavailable()
	}
	projectID, errRes := requiredString(req, "project_id")
	if errRes != nil {
		return errRes, nil
	}
	moduleID, errRes := requiredString(req, "module_id")
	if errRes != nil {
		return errRes, nil
	}
	if err := t.engine.RemoveModuleFromProject(ctx, projectID, moduleID); err != nil {
		return errorResult("remove_module", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Module %s removed from project %s", moduleID, projectID)), nil
}

// DeleteProjectTool handles the delete_project tool.
type DeleteProjectTool struct {
	store  *store.Store
	engine Engine
}

// NewDeleteProjectTool creates a DeleteProjectTool.
func NewDeleteProjectTool(st *store.Store, engine Engine) *DeleteProjectTool {
	return &DeleteProjectTool{store: st, engine: engine}
}

// Definition returns the delete_project schema.
func (t *DeleteProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a project in Plane and then locally. This cannot be undone."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Local project id"),
		),
	)
}

// Handle serves delete_project.
func (t *DeleteProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.engine == nil {
		return planeUnavailable()
	}
	projectID, errRes := requiredString(req, "project_id")
	if errRes != nil {
		return errRes, nil
	}
	project, ok := t.store.ProjectByID(projectID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("project %q not found", projectID)), nil
	}
	if err := t.engine.DeleteProject(ctx, project.ID, project.PlaneProjectID); err != nil {
		return errorResult("delete_project", err)
	}
	logging.Ctx(ctx).Info().Str("project_id", project.ID).Msg("Project deleted from MCP")
	return mcp.NewToolResultText(fmt.Sprintf("Project %q deleted", project.Name)), nil
}

// SyncProgressTool handles the sync_progress tool.
type SyncProgressTool struct {
	progress ProgressSyncer
}

// NewSyncProgressTool creates a SyncProgressTool.
func NewSyncProgressTool(progress ProgressSyncer) *SyncProgressTool {
	return &SyncProgressTool{progress: progress}
}

// Definition returns the sync_progress schema.
func (t *SyncProgressTool) Definition() mcp.Tool {
	return mcp.NewTool("sync_progress",
		mcp.WithDescription("Recompute project progress from Plane issue states. Without "+
			"plane_project_id every linked project is synced."),
		mcp.WithString("plane_project_id",
			mcp.Description("Only sync the project linked to this Plane project"),
		),
	)
}

// Handle serves sync_progress.
func (t *SyncProgressTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.progress == nil {
		return planeUnavailable()
	}
	if planeProjectID := req.GetString("plane_project_id", ""); planeProjectID != "" {
		result, err := t.progress.SyncProjectProgress(ctx, planeProjectID)
		if err != nil {
			return errorResult("sync_progress", err)
		}
		return jsonResult(result)
	}
	results, err := t.progress.TriggerSync(ctx)
	if err != nil {
		return errorResult("sync_progress", err)
	}
	return jsonResult(results)
}
