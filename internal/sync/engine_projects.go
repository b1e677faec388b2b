// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/models/plane"
	"github.com/tomtom215/planemanager/internal/store"
	"github.com/tomtom215/planemanager/internal/validation"
)

// planeNetworkPublic makes new Plane projects visible to the workspace.
const planeNetworkPublic = 2

// CreateProjectInput is the user input of CreateProject. Modules lists
// module names; a module template with the same name provides its tasks.
type CreateProjectInput struct {
	Name             string   `json:"name" validate:"required_without=SalesforceNumber,max=255"`
	SalesforceNumber string   `json:"salesforceNumber" validate:"max=64"`
	BoardID          string   `json:"boardId" validate:"max=255"`
	Description      string   `json:"description" validate:"max=10000"`
	Modules          []string `json:"modules" validate:"max=100,dive,required,max=255"`
}

// normalized trims the input, fills the name from the Salesforce number
// (and the reverse for an all-digit name) and drops duplicate modules.
func (in CreateProjectInput) normalized() CreateProjectInput {
	in.Name = strings.TrimSpace(in.Name)
	in.SalesforceNumber = strings.TrimSpace(in.SalesforceNumber)
	if in.Name == "" {
		in.Name = in.SalesforceNumber
	}
	if in.SalesforceNumber == "" && isDigits(in.Name) {
		in.SalesforceNumber = in.Name
	}

	seen := make(map[string]bool, len(in.Modules))
	modules := make([]string, 0, len(in.Modules))
	for _, m := range in.Modules {
		m = strings.TrimSpace(m)
		key := strings.ToLower(m)
		if m == "" || seen[key] {
			continue
		}
		seen[key] = true
		modules = append(modules, m)
	}
	in.Modules = modules
	return in
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CreateProject inserts an optimistic project (temporary id, syncStatus
// syncing) and returns it. The Plane project, labels, modules, issues and
// sub-issues are created in the background; on success the optimistic
// project is replaced by the synced one, on failure it stays with
// syncStatus error and the failure message. Wait blocks until the flow
// has finished.
func (e *Engine) CreateProject(ctx context.Context, in CreateProjectInput) (models.Project, error) {
	if verr := validation.ValidateStruct(in); verr != nil {
		return models.Project{}, verr
	}
	in = in.normalized()

	tempID := e.tempID()
	optimistic := models.Project{
		ID:               tempID,
		Name:             in.Name,
		SalesforceNumber: in.SalesforceNumber,
		BoardID:          in.BoardID,
		Description:      in.Description,
		Status:           models.ProjectActive,
		SyncStatus:       models.SyncSyncing,
		Modules:          make([]models.Module, 0, len(in.Modules)),
	}
	for _, name := range in.Modules {
		optimistic.Modules = append(optimistic.Modules, e.localModule(e.blueprint(name)))
	}

	var (
		created models.Project
		synced  models.Project
		flowCtx context.Context
	)
	tx := &Transaction{
		Operation: "create_project",
		Apply: func() error {
			p, err := e.store.AddProject(optimistic)
			created = p
			return err
		},
		Remote: func(ctx context.Context) error {
			flowCtx = ctx
			p, err := e.createRemoteProject(ctx, in)
			synced = p
			return err
		},
		Commit: func() error {
			return e.commitCreatedProject(flowCtx, tempID, synced)
		},
		Revert: func(cause error) {
			e.markProjectError(tempID, cause)
		},
	}
	if err := tx.Begin(ctx); err != nil {
		return models.Project{}, err
	}

	logging.Ctx(ctx).Info().Str("project_id", tempID).Str("name", in.Name).
		Int("modules", len(in.Modules)).Msg("Project created locally, syncing with Plane")

	e.background(ctx, func(ctx context.Context) {
		err := tx.Complete(ctx)
		projectID := tempID
		if err == nil {
			projectID = synced.ID
		}
		e.notifyResult(ctx, "create_project", projectID, fmt.Sprintf("Project %q created in Plane", in.Name), err)
	})
	return created, nil
}

// createRemoteProject runs the remote part of CreateProject.
func (e *Engine) createRemoteProject(ctx context.Context, in CreateProjectInput) (models.Project, error) {
	log := logging.Ctx(ctx)

	identifier, err := e.client.UniqueIdentifier(ctx, in.Name, in.SalesforceNumber)
	if err != nil {
		return models.Project{}, fmt.Errorf("derive project identifier: %w", err)
	}

	pp, err := e.client.CreateProject(ctx, plane.CreateProjectRequest{
		Name:        in.Name,
		Identifier:  identifier,
		Description: in.Description,
		Network:     planeNetworkPublic,
	})
	if err != nil {
		return models.Project{}, fmt.Errorf("create plane project: %w", err)
	}
	if pp.Identifier != "" {
		identifier = pp.Identifier
	}
	log.Info().Str("plane_project_id", pp.ID).Str("identifier", identifier).Msg("Plane project created")

	labels := e.createTeamLabels(ctx, pp.ID)

	modules := make([]models.Module, 0, len(in.Modules))
	for _, name := range in.Modules {
		bp := e.blueprint(name)
		m, err := e.buildRemoteModule(ctx, pp.ID, identifier, bp, labels)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return models.Project{}, ctxErr
			}
			log.Warn().Err(err).Str("module", bp.name).Msg("Failed to create module, keeping a local placeholder")
			m = e.localModule(bp)
		}
		modules = append(modules, m)
	}

	return models.Project{
		ID:               pp.ID,
		Name:             in.Name,
		SalesforceNumber: in.SalesforceNumber,
		BoardID:          in.BoardID,
		PlaneProjectID:   pp.ID,
		Identifier:       identifier,
		Description:      in.Description,
		Modules:          modules,
		Status:           models.ProjectActive,
		SyncStatus:       models.SyncSynced,
	}, nil
}

// commitCreatedProject replaces the optimistic project. When the user
// removed it meanwhile, the new Plane project is deleted again (best
// effort) and the commit fails.
func (e *Engine) commitCreatedProject(ctx context.Context, tempID string, synced models.Project) error {
	_, err := e.store.ReplaceProject(tempID, synced)
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		logging.Ctx(ctx).Warn().Str("project_id", tempID).Str("plane_project_id", synced.PlaneProjectID).
			Msg("Optimistic project was removed during creation, deleting the Plane project")
		if delErr := e.client.DeleteProject(ctx, synced.PlaneProjectID); delErr != nil {
			logging.Ctx(ctx).Warn().Err(delErr).Str("plane_project_id", synced.PlaneProjectID).
				Msg("Failed to delete orphaned Plane project")
		}
	}
	return err
}

// markProjectError keeps the optimistic project visible in error state.
func (e *Engine) markProjectError(projectID string, cause error) {
	_, err := e.store.UpdateProjectFunc(projectID, func(p *models.Project) error {
		p.SyncStatus = models.SyncError
		p.SyncError = cause.Error()
		return nil
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logging.Warn().Err(err).Str("project_id", projectID).Msg("Failed to record sync error")
	}
}

// DeleteProject flags the project as deleting, deletes it in Plane and then
// removes it locally. On failure the flag is cleared and the project left
// intact. planeProjectID defaults to the project's own Plane id; a project
// that never reached Plane is only removed locally.
func (e *Engine) DeleteProject(ctx context.Context, projectID, planeProjectID string) error {
	project, ok := e.store.ProjectByID(projectID)
	if !ok {
		return fmt.Errorf("project %q: %w", projectID, store.ErrNotFound)
	}
	if planeProjectID == "" {
		planeProjectID = project.PlaneProjectID
	}

	tx := &Transaction{
		Operation: "delete_project",
		Apply: func() error {
			_, err := e.store.UpdateProjectFunc(projectID, func(p *models.Project) error {
				p.IsDeleting = true
				return nil
			})
			return err
		},
		Remote: func(ctx context.Context) error {
			if planeProjectID == "" || models.IsTempID(planeProjectID) {
				return nil
			}
			err := e.client.DeleteProject(ctx, planeProjectID)
			if apiErr, ok := AsAPIError(err); ok && apiErr.IsNotFound() {
				return nil
			}
			return err
		},
		Commit: func() error {
			if err := e.store.DeleteProject(projectID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			return nil
		},
		Revert: func(error) {
			_, err := e.store.UpdateProjectFunc(projectID, func(p *models.Project) error {
				p.IsDeleting = false
				return nil
			})
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				logging.Warn().Err(err).Str("project_id", projectID).Msg("Failed to clear deleting flag")
			}
		},
	}

	ctx = context.WithoutCancel(ctx)
	err := tx.Run(ctx)
	e.notifyResult(ctx, "delete_project", projectID, fmt.Sprintf("Project %q deleted", project.Name), err)
	return err
}
