// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tomtom215/planemanager/internal/models/plane"
)

// maxListPages bounds cursor pagination.
const maxListPages = 50

// ListProjects returns every project of the workspace.
func (c *PlaneClient) ListProjects(ctx context.Context) ([]plane.Project, error) {
	return listAll[plane.Project](ctx, c, "/projects/", nil)
}

// GetProject returns one project.
func (c *PlaneClient) GetProject(ctx context.Context, projectID string) (*plane.Project, error) {
	var project plane.Project
	if err := c.do(ctx, http.MethodGet, projectPath(projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject creates a project.
func (c *PlaneClient) CreateProject(ctx context.Context, req plane.CreateProjectRequest) (*plane.Project, error) {
	var project plane.Project
	if err := c.do(ctx, http.MethodPost, "/projects/", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project and everything in it.
func (c *PlaneClient) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, projectPath(projectID), nil, nil)
}

func projectPath(projectID string) string {
	return "/projects/" + url.PathEscape(projectID) + "/"
}

// listAll follows cursor pagination until the last page.
func listAll[T any](ctx context.Context, c *PlaneClient, path string, query url.Values) ([]T, error) {
	var all []T
	cursor := ""
	for page := 0; page < maxListPages; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		reqPath := path
		if len(q) > 0 {
			reqPath += "?" + q.Encode()
		}

		var resp plane.ListResponse[T]
		if err := c.do(ctx, http.MethodGet, reqPath, nil, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Results...)

		if !resp.NextPageResults || resp.NextCursor == "" || resp.NextCursor == cursor {
			return all, nil
		}
		cursor = resp.NextCursor
	}
	return all, fmt.Errorf("list %s: more than %d pages", path, maxListPages)
}
