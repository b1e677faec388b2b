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

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/models/plane"
)

// SubIssueResult is a created sub-issue. Linked is false when the parent
// link could not be set; the issue exists either way.
type SubIssueResult struct {
	Issue   *plane.Issue
	Linked  bool
	LinkErr error
}

// CreateIssue creates an issue.
func (c *PlaneClient) CreateIssue(ctx context.Context, projectID string, req plane.CreateIssueRequest) (*plane.Issue, error) {
	var issue plane.Issue
	if err := c.do(ctx, http.MethodPost, projectPath(projectID)+"issues/", req, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateIssueInModule creates an issue and adds it to moduleID. A failure
// to add it to the module is logged and the issue is still returned.
func (c *PlaneClient) CreateIssueInModule(ctx context.Context, projectID, moduleID string, req plane.CreateIssueRequest) (*plane.Issue, error) {
	issue, err := c.CreateIssue(ctx, projectID, req)
	if err != nil {
		return nil, err
	}
	if moduleID == "" {
		return issue, nil
	}
	if err := c.AddIssuesToModule(ctx, projectID, moduleID, []string{issue.ID}); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("project_id", projectID).
			Str("module_id", moduleID).
			Str("issue_id", issue.ID).
			Msg("Failed to add issue to module")
	}
	return issue, nil
}

// CreateSubIssue creates an issue and links it to parentID with a PATCH of
// its parent field. Transient link failures are retried with the client's
// backoff policy; a link that still fails is logged and reported through
// SubIssueResult.Linked.
func (c *PlaneClient) CreateSubIssue(ctx context.Context, projectID, moduleID, parentID string, req plane.CreateIssueRequest) (*SubIssueResult, error) {
	req.Parent = ""
	issue, err := c.CreateIssueInModule(ctx, projectID, moduleID, req)
	if err != nil {
		return nil, err
	}

	linkErr := c.linkParent(ctx, projectID, issue.ID, parentID)
	if linkErr != nil {
		logging.Ctx(ctx).Warn().Err(linkErr).
			Str("project_id", projectID).
			Str("issue_id", issue.ID).
			Str("parent_id", parentID).
			Msg("Sub-issue created but parent link failed")
		return &SubIssueResult{Issue: issue, LinkErr: linkErr}, nil
	}

	issue.Parent = &parentID
	return &SubIssueResult{Issue: issue, Linked: true}, nil
}

// linkParent sets the parent of issueID. 429 answers are already retried by
// do; server errors and transport failures get the same backoff here.
func (c *PlaneClient) linkParent(ctx context.Context, projectID, issueID, parentID string) error {
	var err error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		_, err = c.UpdateIssue(ctx, projectID, issueID, plane.UpdateIssueRequest{Parent: &parentID})
		if err == nil {
			return nil
		}
		apiErr, ok := AsAPIError(err)
		if !ok || !apiErr.isTransient() || attempt == c.retry.MaxRetries {
			break
		}
		if sleepErr := c.sleep(ctx, c.retry.Backoff(attempt, c.jitter(c.retry.MaxJitter))); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

// UpdateIssue patches an issue.
func (c *PlaneClient) UpdateIssue(ctx context.Context, projectID, issueID string, req plane.UpdateIssueRequest) (*plane.Issue, error) {
	var issue plane.Issue
	if err := c.do(ctx, http.MethodPatch, issuePath(projectID, issueID), req, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// DeleteIssue deletes an issue.
func (c *PlaneClient) DeleteIssue(ctx context.Context, projectID, issueID string) error {
	return c.do(ctx, http.MethodDelete, issuePath(projectID, issueID), nil, nil)
}

// ListIssues returns every issue of a project with expanded states, so
// each issue carries its state group when Plane provides it.
func (c *PlaneClient) ListIssues(ctx context.Context, projectID string) ([]plane.Issue, error) {
	issues, err := listAll[plane.Issue](ctx, c, projectPath(projectID)+"issues/", url.Values{"expand": {"state"}})
	if err != nil {
		return nil, fmt.Errorf("list issues of %s: %w", projectID, err)
	}
	return issues, nil
}

func issuePath(projectID, issueID string) string {
	return projectPath(projectID) + "issues/" + url.PathEscape(issueID) + "/"
}
