// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tomtom215/planemanager/internal/models/plane"
)

// CreateModule creates a module inside a project.
func (c *PlaneClient) CreateModule(ctx context.Context, projectID string, req plane.CreateModuleRequest) (*plane.Module, error) {
	var module plane.Module
	if err := c.do(ctx, http.MethodPost, projectPath(projectID)+"modules/", req, &module); err != nil {
		return nil, err
	}
	return &module, nil
}

// DeleteModule deletes a module. Its issues are kept by Plane.
func (c *PlaneClient) DeleteModule(ctx context.Context, projectID, moduleID string) error {
	return c.do(ctx, http.MethodDelete, modulePath(projectID, moduleID), nil, nil)
}

// AddIssuesToModule attaches existing issues to a module.
func (c *PlaneClient) AddIssuesToModule(ctx context.Context, projectID, moduleID string, issueIDs []string) error {
	return c.do(ctx, http.MethodPost, modulePath(projectID, moduleID)+"module-issues/",
		plane.ModuleIssuesRequest{Issues: issueIDs}, nil)
}

func modulePath(projectID, moduleID string) string {
	return projectPath(projectID) + "modules/" + url.PathEscape(moduleID) + "/"
}
