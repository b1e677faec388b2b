// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"net/http"

	"github.com/tomtom215/planemanager/internal/models/plane"
)

// CreateLabel creates an issue label in a project.
func (c *PlaneClient) CreateLabel(ctx context.Context, projectID string, req plane.CreateLabelRequest) (*plane.Label, error) {
	var label plane.Label
	if err := c.do(ctx, http.MethodPost, projectPath(projectID)+"labels/", req, &label); err != nil {
		return nil, err
	}
	return &label, nil
}

// ListLabels returns the labels of a project.
func (c *PlaneClient) ListLabels(ctx context.Context, projectID string) ([]plane.Label, error) {
	return listAll[plane.Label](ctx, c, projectPath(projectID)+"labels/", nil)
}

// AssignLabels replaces the labels of an issue.
func (c *PlaneClient) AssignLabels(ctx context.Context, projectID, issueID string, labelIDs []string) (*plane.Issue, error) {
	return c.UpdateIssue(ctx, projectID, issueID, plane.UpdateIssueRequest{Labels: labelIDs})
}
