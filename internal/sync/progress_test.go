// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/planemanager/internal/config"
	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/models/plane"
	"github.com/tomtom215/planemanager/internal/store"
)

func newTestProgressSyncer(t *testing.T, st *store.Store, fp *fakePlane, opts ...ProgressOption) *ProgressSyncer {
	t.Helper()
	cfg := config.SyncConfig{ProgressEnabled: true, ProgressInterval: time.Hour}
	opts = append([]ProgressOption{WithProgressClock(func() time.Time { return syncTestNow })}, opts...)
	return NewProgressSyncer(st, fp, cfg, opts...)
}

func issueInGroup(id, group string) plane.Issue {
	return plane.Issue{ID: id, State: plane.StateRef{ID: "state-" + group, Group: group}}
}

func strPtr(s string) *string { return &s }

// addLinkedProject stores a synced project linked to planeID with one task.
func addLinkedProject(t *testing.T, st *store.Store, planeID string, status models.TaskStatus) models.Project {
	t.Helper()
	p, err := st.AddProject(models.Project{
		ID:             "local-" + planeID,
		Name:           "Project " + planeID,
		PlaneProjectID: planeID,
		SyncStatus:     models.SyncSynced,
		Modules: []models.Module{{
			Name:  "Infra",
			Tasks: []models.Task{{Name: "Task", Status: status}},
		}},
	})
	checkNoError(t, "AddProject", err)
	return p
}

func TestSyncProjectProgress_StartedAndCompleted(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	p := addLinkedProject(t, st, "pp", models.TaskTodo)
	fp.setIssues("pp", issueInGroup("i1", plane.GroupStarted), issueInGroup("i2", plane.GroupCompleted))

	s := newTestProgressSyncer(t, st, fp)
	res, err := s.SyncProjectProgress(context.Background(), "pp")
	checkNoError(t, "SyncProjectProgress", err)

	checkIntEqual(t, "OldProgress", res.OldProgress, 0)
	checkIntEqual(t, "NewProgress", res.NewProgress, 75)
	checkIntEqual(t, "Issues", res.Issues, 2)
	if !res.Updated {
		t.Error("expected Updated")
	}
	got, _ := st.ProjectByID(p.ID)
	checkIntEqual(t, "stored progress", got.Progress, 75)

	// Unchanged value: no write, no version bump.
	res, err = s.SyncProjectProgress(context.Background(), "pp")
	checkNoError(t, "second SyncProjectProgress", err)
	if res.Updated {
		t.Error("second run should not update")
	}
	again, _ := st.ProjectByID(p.ID)
	if again.Version != got.Version {
		t.Errorf("version changed without a new value: %d -> %d", got.Version, again.Version)
	}
}

func TestSyncProjectProgress_GroupMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		issues []plane.Issue
		want   int
	}{
		{"backlog and cancelled", []plane.Issue{issueInGroup("a", plane.GroupBacklog), issueInGroup("b", plane.GroupCancelled)}, 50},
		{"all unstarted", []plane.Issue{issueInGroup("a", plane.GroupUnstarted)}, 0},
		{"rounding", []plane.Issue{
			issueInGroup("a", plane.GroupStarted),
			issueInGroup("b", plane.GroupUnstarted),
			issueInGroup("c", plane.GroupUnstarted),
		}, 17},
		{"timestamp heuristic", []plane.Issue{
			{ID: "a", State: plane.StateRef{ID: "s1"}, StartedAt: strPtr("2026-03-01T10:00:00Z")},
			{ID: "b", State: plane.StateRef{ID: "s2"}, CompletedAt: strPtr("2026-03-02T10:00:00Z")},
		}, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newSyncTestStore(t)
			fp := newFakePlane()
			addLinkedProject(t, st, "pp", models.TaskDone)
			fp.setIssues("pp", tt.issues...)

			res, err := newTestProgressSyncer(t, st, fp).SyncProjectProgress(context.Background(), "pp")
			checkNoError(t, "SyncProjectProgress", err)
			checkIntEqual(t, "NewProgress", res.NewProgress, tt.want)
		})
	}
}

func TestSyncProjectProgress_SampledStatesApplyToLaterIssues(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	addLinkedProject(t, st, "pp", models.TaskTodo)
	s := newTestProgressSyncer(t, st, fp)

	fp.setIssues("pp", plane.Issue{ID: "a", State: plane.StateRef{ID: "done"}, CompletedAt: strPtr("2026-03-02T10:00:00Z")})
	_, err := s.SyncProjectProgress(context.Background(), "pp")
	checkNoError(t, "first sync", err)

	// Same state id, timestamps missing: the sampled group is used.
	fp.setIssues("pp", plane.Issue{ID: "b", State: plane.StateRef{ID: "done"}})
	res, err := s.SyncProjectProgress(context.Background(), "pp")
	checkNoError(t, "second sync", err)
	checkIntEqual(t, "NewProgress", res.NewProgress, 100)
}

func TestSyncProjectProgress_NoIssuesLeavesProgress(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	p := addLinkedProject(t, st, "pp", models.TaskDone)

	res, err := newTestProgressSyncer(t, st, fp).SyncProjectProgress(context.Background(), "pp")
	checkNoError(t, "SyncProjectProgress", err)
	if res.Updated {
		t.Error("project without issues should not be updated")
	}
	got, _ := st.ProjectByID(p.ID)
	checkIntEqual(t, "progress", got.Progress, 100)
}

func TestSyncProjectProgress_RetriesOnVersionConflict(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	p := addLinkedProject(t, st, "pp", models.TaskTodo)
	fp.setIssues("pp", issueInGroup("i1", plane.GroupCompleted))

	// A user edit lands while the issues are being fetched.
	fp.onListIssues = func(string) {
		_, err := st.UpdateProject(p.ID, store.ProjectPatch{Description: strPtr("edited")})
		checkNoError(t, "concurrent UpdateProject", err)
	}

	res, err := newTestProgressSyncer(t, st, fp).SyncProjectProgress(context.Background(), "pp")
	checkNoError(t, "SyncProjectProgress", err)
	if !res.Updated {
		t.Error("expected update after retry")
	}
	got, _ := st.ProjectByID(p.ID)
	checkStringEqual(t, "description", got.Description, "edited")
	checkIntEqual(t, "progress", got.Progress, 100)
}

func TestSyncProjectProgress_UnknownProject(t *testing.T) {
	t.Parallel()

	s := newTestProgressSyncer(t, newSyncTestStore(t), newFakePlane())
	_, err := s.SyncProjectProgress(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSyncAllProjects(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	rn := &recordingNotifier{}
	addLinkedProject(t, st, "p1", models.TaskTodo)
	addLinkedProject(t, st, "p2", models.TaskTodo)
	_, err := st.AddProject(models.Project{ID: "temp-3", Name: "Unsynced"})
	checkNoError(t, "AddProject", err)

	fp.setIssues("p1", issueInGroup("a", plane.GroupCompleted))
	fp.listIssuesErr["p2"] = &APIError{Status: http.StatusInternalServerError, Message: "boom"}

	s := newTestProgressSyncer(t, st, fp, WithProgressNotifier(rn))
	results, err := s.SyncAllProjects(context.Background())
	checkNoError(t, "SyncAllProjects", err)

	checkIntEqual(t, "results", len(results), 2)
	if !results[0].Updated || results[0].NewProgress != 100 {
		t.Errorf("p1 result: %+v", results[0])
	}
	if results[1].Error == "" {
		t.Errorf("p2 should report its error: %+v", results[1])
	}
	last := st.LastSync()
	if last == nil || !last.Equal(syncTestNow) {
		t.Errorf("lastSync: expected %v, got %v", syncTestNow, last)
	}
	checkStringEqual(t, "notification", rn.last(t).Level, NotifyInfo)
	if s.IsSyncing() {
		t.Error("IsSyncing still true after the run")
	}
}

func TestSyncAllProjects_OverlappingCallIsDropped(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	addLinkedProject(t, st, "p1", models.TaskTodo)
	s := newTestProgressSyncer(t, st, fp)

	s.syncing.Store(true)
	results, err := s.SyncAllProjects(context.Background())
	checkNoError(t, "SyncAllProjects", err)
	checkIntEqual(t, "results", len(results), 0)
	checkIntEqual(t, "plane calls", fp.callCount(), 0)
	if st.LastSync() != nil {
		t.Error("dropped run should not set lastSync")
	}
}

func TestSyncAllProjects_SpacesProjects(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	addLinkedProject(t, st, "p1", models.TaskTodo)
	addLinkedProject(t, st, "p2", models.TaskTodo)
	addLinkedProject(t, st, "p3", models.TaskTodo)

	delay := 50 * time.Millisecond
	s := NewProgressSyncer(st, fp, config.SyncConfig{ProgressInterval: time.Hour, ProjectDelay: delay})

	start := time.Now()
	_, err := s.SyncAllProjects(context.Background())
	checkNoError(t, "SyncAllProjects", err)
	if elapsed := time.Since(start); elapsed < 2*delay {
		t.Errorf("three projects took %v, expected at least %v", elapsed, 2*delay)
	}
}

func TestProgressSyncer_StartStop(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	addLinkedProject(t, st, "p1", models.TaskTodo)
	s := newTestProgressSyncer(t, st, fp)

	checkNoError(t, "Start", s.Start(context.Background()))
	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start should fail")
	}

	deadline := time.Now().Add(5 * time.Second)
	for st.LastSync() == nil {
		if time.Now().After(deadline) {
			t.Fatal("initial sync did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}

	checkNoError(t, "Stop", s.Stop())
	if err := s.Stop(); err == nil {
		t.Error("second Stop should fail")
	}
}
