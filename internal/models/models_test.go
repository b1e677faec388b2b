// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package models

import (
	"reflect"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestDeriveTrigramme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word", "Infrastructure", "INF"},
		{"three words", "Quality Assurance Team", "QAT"},
		{"more than three words", "Network and Security Operations", "NAS"},
		{"two words fill from last word", "Data Science", "DSC"},
		{"lowercase", "backend", "BAC"},
		{"accents stripped", "Équipe Sécurité Réseau", "ESR"},
		{"digits dropped", "42 Ops", "OPS"},
		{"hyphenated", "front-end", "FEN"},
		{"short name padded", "QA", "QAX"},
		{"empty", "", "XXX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTrigramme(tt.in)
			if got != tt.want {
				t.Errorf("DeriveTrigramme(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !ValidTrigramme(got) {
				t.Errorf("DeriveTrigramme(%q) = %q is not a valid trigramme", tt.in, got)
			}
		})
	}
}

func TestValidTrigramme(t *testing.T) {
	t.Parallel()

	valid := []string{"INF", "ABC", "ZZZ"}
	invalid := []string{"", "AB", "ABCD", "abc", "A1C", "ÉAB", " AB"}

	for _, s := range valid {
		if !ValidTrigramme(s) {
			t.Errorf("ValidTrigramme(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if ValidTrigramme(s) {
			t.Errorf("ValidTrigramme(%q) = true, want false", s)
		}
	}
}

func tasksWith(statuses ...TaskStatus) []Task {
	tasks := make([]Task, len(statuses))
	for i, s := range statuses {
		tasks[i] = Task{ID: string(rune('a' + i)), Status: s}
	}
	return tasks
}

func TestComputeProgress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modules []Module
		want    int
	}{
		{"no modules", nil, 0},
		{"modules without tasks", []Module{{Name: "A"}, {Name: "B"}}, 0},
		{"all todo", []Module{{Tasks: tasksWith(TaskTodo, TaskTodo)}}, 0},
		{"all done", []Module{{Tasks: tasksWith(TaskDone, TaskDone)}}, 100},
		{"mixed", []Module{{Tasks: tasksWith(TaskDone, TaskInProgress, TaskTodo)}}, 50},
		{"rounds half up", []Module{{Tasks: tasksWith(TaskDone, TaskTodo, TaskTodo, TaskInProgress)}}, 38},
		{"rounds down", []Module{{Tasks: tasksWith(TaskDone, TaskTodo, TaskTodo)}}, 33},
		{"across modules", []Module{
			{Tasks: tasksWith(TaskDone)},
			{Tasks: tasksWith(TaskInProgress)},
		}, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeProgress(tt.modules); got != tt.want {
				t.Errorf("ComputeProgress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeProgressIgnoresSubTasks(t *testing.T) {
	t.Parallel()

	modules := []Module{{Tasks: []Task{{
		ID:       "t1",
		Status:   TaskTodo,
		SubTasks: []SubTask{{ID: "s1", Status: TaskDone}, {ID: "s2", Status: TaskDone}},
	}}}}

	if got := ComputeProgress(modules); got != 0 {
		t.Errorf("ComputeProgress() = %d, want 0", got)
	}
}

func TestProjectCloneIsDeep(t *testing.T) {
	t.Parallel()

	p := Project{
		ID: "p1",
		Modules: []Module{{
			ID:    "m1",
			Tasks: []Task{{ID: "t1", SubTasks: []SubTask{{ID: "s1"}}}},
		}},
	}
	c := p.Clone()
	c.Modules[0].Name = "changed"
	c.Modules[0].Tasks[0].Status = TaskDone
	c.Modules[0].Tasks[0].SubTasks[0].Name = "changed"

	if p.Modules[0].Name != "" || p.Modules[0].Tasks[0].Status != "" || p.Modules[0].Tasks[0].SubTasks[0].Name != "" {
		t.Error("Clone shares memory with the original project")
	}
}

func TestProjectLookups(t *testing.T) {
	t.Parallel()

	p := Project{Modules: []Module{
		{ID: "m1", Name: "Infrastructure", TeamID: "team-1", Tasks: []Task{{ID: "t1", SubTasks: []SubTask{{ID: "s1"}}}}},
		{ID: "m2", Name: "Security", TeamID: "team-2"},
	}}

	if got := p.ModuleByName("  infrastructure "); got != 0 {
		t.Errorf("ModuleByName() = %d, want 0", got)
	}
	if got := p.ModuleByName("Network"); got != -1 {
		t.Errorf("ModuleByName() = %d, want -1", got)
	}
	if got := p.ModuleIndex("m2"); got != 1 {
		t.Errorf("ModuleIndex() = %d, want 1", got)
	}
	if got := p.Modules[0].TaskIndex("t1"); got != 0 {
		t.Errorf("TaskIndex() = %d, want 0", got)
	}
	if got := p.Modules[0].Tasks[0].SubTaskIndex("missing"); got != -1 {
		t.Errorf("SubTaskIndex() = %d, want -1", got)
	}
	if !p.UsesTeam("team-2") || p.UsesTeam("team-3") {
		t.Error("UsesTeam() returned unexpected result")
	}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	lastSync := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Teams: []Team{{ID: "team-1", Name: "Infrastructure", Trigramme: "INF", Color: "#123456"}},
		ModuleTemplates: []ModuleTemplate{{
			ID:     "tpl-1",
			Name:   "Infrastructure",
			TeamID: "team-1",
			Tasks:  []TaskTemplate{{Name: "Provision", SubTasks: []SubTaskTemplate{{Name: "VPC"}}}, {Name: "Monitor"}},
		}},
		Projects: []Project{{
			ID:        "p1",
			Name:      "00004554",
			Status:    ProjectActive,
			CreatedAt: created,
			UpdatedAt: created,
			Modules: []Module{{
				ID:     "m1",
				Name:   "Infrastructure",
				TeamID: "team-1",
				Tasks:  []Task{{ID: "t1", Name: "Provision", Status: TaskDone}},
			}},
			Version: 3,
		}},
		LastSync: &lastSync,
	}
	want := snap.Normalize()

	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got = got.Normalize()

	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

func TestSnapshotLegacyTeamField(t *testing.T) {
	t.Parallel()

	raw := `{"teams":[],"moduleTemplates":[{"id":"tpl","name":"Infra","team":"Infrastructure","tasks":[]}],"projects":[],"lastSync":null}`
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if snap.ModuleTemplates[0].LegacyTeam != "Infrastructure" {
		t.Errorf("LegacyTeam = %q, want Infrastructure", snap.ModuleTemplates[0].LegacyTeam)
	}
	if snap.LastSync != nil {
		t.Error("LastSync should be nil")
	}
}

func TestEmptySnapshot(t *testing.T) {
	t.Parallel()

	s := EmptySnapshot()
	if !s.IsEmpty() {
		t.Error("EmptySnapshot().IsEmpty() = false")
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"teams":[],"moduleTemplates":[],"projects":[],"lastSync":null}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestIsTempID(t *testing.T) {
	t.Parallel()

	if !IsTempID("temp-123") {
		t.Error("IsTempID(temp-123) = false")
	}
	if IsTempID("7f1c") {
		t.Error("IsTempID(7f1c) = true")
	}
}
