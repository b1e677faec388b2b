// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package plane

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestStateRefUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantID    string
		wantGroup string
	}{
		{"id string", `{"state":"st-1"}`, "st-1", ""},
		{"expanded object", `{"state":{"id":"st-2","name":"Done","group":"completed"}}`, "st-2", GroupCompleted},
		{"null", `{"state":null}`, "", ""},
		{"missing", `{}`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var issue Issue
			if err := json.Unmarshal([]byte(tt.raw), &issue); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if issue.State.ID != tt.wantID {
				t.Errorf("State.ID = %q, want %q", issue.State.ID, tt.wantID)
			}
			if issue.State.Group != tt.wantGroup {
				t.Errorf("State.Group = %q, want %q", issue.State.Group, tt.wantGroup)
			}
		})
	}
}

func TestListResponseUnmarshal(t *testing.T) {
	t.Parallel()

	t.Run("bare array", func(t *testing.T) {
		var list ListResponse[Project]
		if err := json.Unmarshal([]byte(`[{"id":"a","identifier":"alpha"},{"id":"b"}]`), &list); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if len(list.Results) != 2 || list.Results[0].Identifier != "alpha" {
			t.Errorf("Results = %+v", list.Results)
		}
	})

	t.Run("paginated object", func(t *testing.T) {
		raw := `{"results":[{"id":"l1","name":"INF"}],"next_cursor":"100:1:0","next_page_results":true,"total_count":5}`
		var list ListResponse[Label]
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if len(list.Results) != 1 || list.Results[0].Name != "INF" {
			t.Errorf("Results = %+v", list.Results)
		}
		if !list.NextPageResults || list.NextCursor != "100:1:0" || list.TotalCount != 5 {
			t.Errorf("pagination fields not decoded: %+v", list)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		var list ListResponse[Issue]
		if err := json.Unmarshal([]byte(`[{"id":1`), &list); err == nil {
			t.Error("expected error for truncated JSON")
		}
	})
}

func TestUpdateIssueRequestOmitsNil(t *testing.T) {
	t.Parallel()

	parent := "issue-1"
	data, err := json.Marshal(UpdateIssueRequest{Parent: &parent})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"parent":"issue-1"}` {
		t.Errorf("Marshal = %s", data)
	}
}
