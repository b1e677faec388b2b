// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/teams", "200"))
	RecordAPIRequest("GET", "/api/v1/teams", "200", 5*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/teams", "200"))

	if after-before != 1 {
		t.Errorf("api_requests_total increased by %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestRecordPlaneRequest(t *testing.T) {
	tests := []struct {
		name   string
		status int
		label  string
	}{
		{"created", 201, "201"},
		{"rate limited", 429, "429"},
		{"transport error", 0, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := PlaneRequestsTotal.WithLabelValues("POST", "issues", tt.label)
			before := testutil.ToFloat64(c)
			RecordPlaneRequest("POST", "issues", tt.status, 10*time.Millisecond)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("plane_requests_total{status=%q} increased by %v, want 1", tt.label, got)
			}
		})
	}
}

func TestSetPlaneQueueDepth(t *testing.T) {
	SetPlaneQueueDepth(7)
	if got := testutil.ToFloat64(PlaneQueueDepth); got != 7 {
		t.Errorf("plane_queue_depth = %v, want 7", got)
	}
	SetPlaneQueueDepth(0)
}

func TestRecordPersistenceSave(t *testing.T) {
	okBefore := testutil.ToFloat64(PersistenceSaves.WithLabelValues("success"))
	errBefore := testutil.ToFloat64(PersistenceSaves.WithLabelValues("error"))

	RecordPersistenceSave(time.Millisecond, nil)
	RecordPersistenceSave(time.Millisecond, errors.New("disk full"))

	if got := testutil.ToFloat64(PersistenceSaves.WithLabelValues("success")) - okBefore; got != 1 {
		t.Errorf("success saves increased by %v, want 1", got)
	}
	if got := testutil.ToFloat64(PersistenceSaves.WithLabelValues("error")) - errBefore; got != 1 {
		t.Errorf("error saves increased by %v, want 1", got)
	}
}

func TestRecordProgressSync(t *testing.T) {
	updatedBefore := testutil.ToFloat64(ProgressSyncProjectsUpdated)
	errorsBefore := testutil.ToFloat64(ProgressSyncErrors)

	RecordProgressSync(2*time.Second, 3, 1)

	if got := testutil.ToFloat64(ProgressSyncProjectsUpdated) - updatedBefore; got != 3 {
		t.Errorf("projects updated increased by %v, want 3", got)
	}
	if got := testutil.ToFloat64(ProgressSyncErrors) - errorsBefore; got != 1 {
		t.Errorf("errors increased by %v, want 1", got)
	}
	if testutil.ToFloat64(ProgressSyncLastSuccess) == 0 {
		t.Error("last success timestamp not set")
	}
}

func TestCounterHelpers(t *testing.T) {
	tests := []struct {
		name   string
		record func()
		value  func() float64
	}{
		{"rate limit retry", RecordRateLimitRetry, func() float64 { return testutil.ToFloat64(PlaneRateLimitRetries) }},
		{"store mutation", func() { RecordStoreMutation("team", "add") },
			func() float64 { return testutil.ToFloat64(StoreMutations.WithLabelValues("team", "add")) }},
		{"transaction", func() { RecordTransaction("delete_project", "rolled_back") },
			func() float64 {
				return testutil.ToFloat64(SyncTransactions.WithLabelValues("delete_project", "rolled_back"))
			}},
		{"progress skipped", RecordProgressSyncSkipped, func() float64 { return testutil.ToFloat64(ProgressSyncSkipped) }},
		{"refresh error", func() { RecordProjectRefresh(errors.New("x")) },
			func() float64 { return testutil.ToFloat64(ProjectRefreshTotal.WithLabelValues("error")) }},
		{"event published", func() { RecordEventPublished("store.changes") },
			func() float64 { return testutil.ToFloat64(EventsPublished.WithLabelValues("store.changes")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.value()
			tt.record()
			if got := tt.value() - before; got != 1 {
				t.Errorf("increased by %v, want 1", got)
			}
		})
	}
}
