// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/planemanager/internal/config"
	"github.com/tomtom215/planemanager/internal/models"
	"github.com/tomtom215/planemanager/internal/models/plane"
	"github.com/tomtom215/planemanager/internal/store"
)

func newTestRefresher(t *testing.T, st *store.Store, fp *fakePlane) *ProjectRefresher {
	t.Helper()
	r := NewProjectRefresher(st, fp, config.SyncConfig{RefreshEnabled: true, RefreshInterval: time.Hour})
	t.Cleanup(r.Close)
	return r
}

func TestRefresh_Reconcile(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	fp.projects = []plane.Project{
		{ID: "p1", Name: "Renamed identifier", Identifier: "NEW"},
		{ID: "p3", Name: "Back again", Identifier: "BACK"},
	}

	mustAdd := func(p models.Project) models.Project {
		t.Helper()
		added, err := st.AddProject(p)
		checkNoError(t, "AddProject", err)
		return added
	}
	mustAdd(models.Project{ID: "p1", Name: "One", PlaneProjectID: "p1", Identifier: "OLD", SyncStatus: models.SyncSynced})
	mustAdd(models.Project{ID: "p2", Name: "Two", PlaneProjectID: "p2", Identifier: "TWO", SyncStatus: models.SyncSynced})
	mustAdd(models.Project{ID: "p3", Name: "Three", PlaneProjectID: "p3", Identifier: "BACK",
		SyncStatus: models.SyncError, SyncError: MissingRemoteMessage})
	mustAdd(models.Project{ID: "temp-4", Name: "Creating", SyncStatus: models.SyncSyncing})

	res, err := newTestRefresher(t, st, fp).Refresh(context.Background())
	checkNoError(t, "Refresh", err)
	checkIntEqual(t, "Remote", res.Remote, 2)
	checkIntEqual(t, "Updated", res.Updated, 3)
	checkIntEqual(t, "Missing", res.Missing, 1)

	p1, _ := st.ProjectByID("p1")
	checkStringEqual(t, "p1 identifier", p1.Identifier, "NEW")
	p2, _ := st.ProjectByID("p2")
	checkStringEqual(t, "p2 status", string(p2.SyncStatus), string(models.SyncError))
	checkStringEqual(t, "p2 error", p2.SyncError, MissingRemoteMessage)
	p3, _ := st.ProjectByID("p3")
	checkStringEqual(t, "p3 status", string(p3.SyncStatus), string(models.SyncSynced))
	temp, _ := st.ProjectByID("temp-4")
	checkStringEqual(t, "temp status", string(temp.SyncStatus), string(models.SyncSyncing))
}

func TestRefresh_SkipsProjectChangedMeanwhile(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	for _, id := range []string{"p1", "p2"} {
		_, err := st.AddProject(models.Project{ID: id, Name: id, PlaneProjectID: id, Identifier: "OLD", SyncStatus: models.SyncSynced})
		checkNoError(t, "AddProject", err)
	}
	fp.projects = []plane.Project{{ID: "p1", Identifier: "NEW"}, {ID: "p2", Identifier: "NEW"}}

	// A user rename of p2 lands right after the refresh updated p1.
	var once sync.Once
	st.Subscribe(func(ev store.Event) {
		if ev.ProjectID == "p1" && ev.Type == store.EventUpdated {
			once.Do(func() {
				_, err := st.UpdateProject("p2", store.ProjectPatch{Name: strPtr("Optimistic rename")})
				checkNoError(t, "UpdateProject", err)
			})
		}
	})

	res, err := newTestRefresher(t, st, fp).Refresh(context.Background())
	checkNoError(t, "Refresh", err)
	checkIntEqual(t, "Updated", res.Updated, 1)
	checkIntEqual(t, "Skipped", res.Skipped, 1)

	p2, _ := st.ProjectByID("p2")
	checkStringEqual(t, "p2 name", p2.Name, "Optimistic rename")
	checkStringEqual(t, "p2 identifier", p2.Identifier, "OLD")
}

func TestRefresh_ListFailure(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	fp.listProjectsErr = &APIError{Status: http.StatusServiceUnavailable, Message: "down"}

	r := newTestRefresher(t, st, fp)
	_, err := r.Refresh(context.Background())
	checkAPIStatus(t, err, http.StatusServiceUnavailable)

	_, err = r.RemoteProjects(context.Background())
	checkAPIStatus(t, err, http.StatusServiceUnavailable)
}

func TestRemoteProjects_Cache(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	fp.projects = []plane.Project{{ID: "p1", Name: "One"}}
	r := newTestRefresher(t, st, fp)

	got, err := r.RemoteProjects(context.Background())
	checkNoError(t, "RemoteProjects", err)
	checkIntEqual(t, "projects", len(got), 1)
	checkIntEqual(t, "plane calls after miss", fp.callCount(), 1)

	_, err = r.RemoteProjects(context.Background())
	checkNoError(t, "cached RemoteProjects", err)
	checkIntEqual(t, "plane calls after hit", fp.callCount(), 1)

	// A stale entry is served while the list is refreshed in the background.
	r.cache.SetWithTTL(remoteProjectsKey, []plane.Project{{ID: "old"}}, -time.Second)
	got, err = r.RemoteProjects(context.Background())
	checkNoError(t, "stale RemoteProjects", err)
	checkStringEqual(t, "stale project", got[0].ID, "old")

	r.bgWg.Wait()
	checkIntEqual(t, "plane calls after refresh", fp.callCount(), 2)
	got, err = r.RemoteProjects(context.Background())
	checkNoError(t, "refreshed RemoteProjects", err)
	checkStringEqual(t, "refreshed project", got[0].ID, "p1")
}

func TestProjectRefresher_StartStop(t *testing.T) {
	t.Parallel()

	st := newSyncTestStore(t)
	fp := newFakePlane()
	r := newTestRefresher(t, st, fp)

	checkNoError(t, "Start", r.Start(context.Background()))
	deadline := time.Now().Add(5 * time.Second)
	for fp.callCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("initial refresh did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}
	checkNoError(t, "Stop", r.Stop())

	disabled := NewProjectRefresher(st, fp, config.SyncConfig{})
	t.Cleanup(disabled.Close)
	if err := disabled.Start(context.Background()); err == nil {
		t.Error("Start with zero interval should fail")
	}
}
