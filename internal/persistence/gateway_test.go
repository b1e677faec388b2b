// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package persistence

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/planemanager/internal/config"
	"github.com/tomtom215/planemanager/internal/models"
)

func sampleSnapshot() models.Snapshot {
	lastSync := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return models.Snapshot{
		Teams: []models.Team{
			{ID: "t1", Name: "Infrastructure", Trigramme: "INF", Color: "#ff0000"},
		},
		ModuleTemplates: []models.ModuleTemplate{{
			ID: "m1", Name: "Infrastructure", TeamID: "t1",
			Tasks: []models.TaskTemplate{{
				Name:     "Provision servers",
				SubTasks: []models.SubTaskTemplate{{Name: "Order hardware"}},
			}},
		}},
		Projects: []models.Project{{
			ID: "p1", Name: "ACME", SalesforceNumber: "00004554", PlaneProjectID: "pp1",
			Status: models.ProjectActive, CreatedAt: created, UpdatedAt: created, Version: 3,
			Modules: []models.Module{{
				ID: "mod1", Name: "Infrastructure", TeamID: "t1", Status: models.ModuleActive,
				Tasks: []models.Task{{ID: "task1", Name: "Provision servers", Status: models.TaskDone}},
			}},
			Progress: 100,
		}},
		LastSync: &lastSync,
	}
}

func TestFileGateway_SaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	g := NewFileGateway(dir)
	ctx := context.Background()

	want := sampleSnapshot().Normalize()
	if err := g.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	for _, name := range []string{TeamsFile, TemplatesFile, ProjectsFile, MetadataFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	got, err := g.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v\nwant %+v", got, want)
	}
}

func TestFileGateway_PrettyPrinted(t *testing.T) {
	dir := t.TempDir()
	g := NewFileGateway(dir)
	if err := g.Save(context.Background(), sampleSnapshot()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, TeamsFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "[\n  {") {
		t.Errorf("teams.json is not indented with two spaces:\n%s", raw)
	}
}

func TestFileGateway_LoadMissingDirectory(t *testing.T) {
	g := NewFileGateway(filepath.Join(t.TempDir(), "absent"))

	got, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, models.EmptySnapshot()) {
		t.Errorf("Load() = %+v, want empty snapshot", got)
	}
	if got.Teams == nil || got.ModuleTemplates == nil || got.Projects == nil {
		t.Error("empty snapshot must have non-nil collections")
	}
}

func TestFileGateway_LoadDegradesPerFile(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(dir string) error
		check   func(t *testing.T, got, saved models.Snapshot)
	}{
		{
			name: "projects deleted",
			corrupt: func(dir string) error {
				return os.Remove(filepath.Join(dir, ProjectsFile))
			},
			check: func(t *testing.T, got, saved models.Snapshot) {
				if len(got.Projects) != 0 || got.Projects == nil {
					t.Errorf("Projects = %v, want []", got.Projects)
				}
				if !reflect.DeepEqual(got.Teams, saved.Teams) {
					t.Errorf("Teams = %v, want %v", got.Teams, saved.Teams)
				}
				if !reflect.DeepEqual(got.ModuleTemplates, saved.ModuleTemplates) {
					t.Errorf("ModuleTemplates = %v, want %v", got.ModuleTemplates, saved.ModuleTemplates)
				}
				if got.LastSync == nil || !got.LastSync.Equal(*saved.LastSync) {
					t.Errorf("LastSync = %v, want %v", got.LastSync, saved.LastSync)
				}
			},
		},
		{
			name: "projects corrupted",
			corrupt: func(dir string) error {
				return os.WriteFile(filepath.Join(dir, ProjectsFile), []byte("{not json"), 0o600)
			},
			check: func(t *testing.T, got, saved models.Snapshot) {
				if len(got.Projects) != 0 {
					t.Errorf("Projects = %v, want []", got.Projects)
				}
				if len(got.Teams) != 1 {
					t.Errorf("Teams = %v, want 1 team", got.Teams)
				}
			},
		},
		{
			name: "metadata corrupted",
			corrupt: func(dir string) error {
				return os.WriteFile(filepath.Join(dir, MetadataFile), []byte("]"), 0o600)
			},
			check: func(t *testing.T, got, _ models.Snapshot) {
				if got.LastSync != nil {
					t.Errorf("LastSync = %v, want nil", got.LastSync)
				}
				if len(got.Projects) != 1 {
					t.Errorf("Projects = %v, want 1 project", got.Projects)
				}
			},
		},
		{
			name: "teams null",
			corrupt: func(dir string) error {
				return os.WriteFile(filepath.Join(dir, TeamsFile), []byte("null"), 0o600)
			},
			check: func(t *testing.T, got, _ models.Snapshot) {
				if got.Teams == nil || len(got.Teams) != 0 {
					t.Errorf("Teams = %#v, want empty non-nil slice", got.Teams)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			g := NewFileGateway(dir)
			saved := sampleSnapshot()
			if err := g.Save(context.Background(), saved); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if err := tt.corrupt(dir); err != nil {
				t.Fatal(err)
			}

			got, err := g.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error = %v, want nil", err)
			}
			tt.check(t, got, saved)
		})
	}
}

func TestFileGateway_MetadataPreservesCreatedAt(t *testing.T) {
	dir := t.TempDir()
	g := NewFileGateway(dir)
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	g.now = func() time.Time { return first }
	if err := g.Save(context.Background(), sampleSnapshot()); err != nil {
		t.Fatal(err)
	}
	g.now = func() time.Time { return second }
	if err := g.Save(context.Background(), sampleSnapshot()); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		t.Fatal(err)
	}
	var meta models.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatal(err)
	}
	if !meta.CreatedAt.Equal(first) {
		t.Errorf("CreatedAt = %v, want %v", meta.CreatedAt, first)
	}
	if !meta.UpdatedAt.Equal(second) {
		t.Errorf("UpdatedAt = %v, want %v", meta.UpdatedAt, second)
	}
	if meta.Version != models.SnapshotVersion {
		t.Errorf("Version = %q, want %q", meta.Version, models.SnapshotVersion)
	}
	if len(meta.Checksums) != 3 {
		t.Errorf("Checksums = %v, want 3 entries", meta.Checksums)
	}
}

func TestFileGateway_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	g := NewFileGateway(dir)
	for i := 0; i < 3; i++ {
		if err := g.Save(context.Background(), sampleSnapshot()); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("data dir holds %v, want exactly the four data files", names)
	}
}

func TestFileGateway_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewFileGateway(t.TempDir())

	if err := g.Save(ctx, sampleSnapshot()); err == nil {
		t.Error("Save() with cancelled context should fail")
	}
	if _, err := g.Load(ctx); err == nil {
		t.Error("Load() with cancelled context should fail")
	}
}

func TestHTTPGateway(t *testing.T) {
	var stored models.Snapshot
	mux := http.NewServeMux()
	mux.HandleFunc(SavePath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&stored); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(SaveResponse{Success: false, Error: err.Error()})
			return
		}
		_ = json.NewEncoder(w).Encode(SaveResponse{Success: true, Message: "Data saved successfully"})
	})
	mux.HandleFunc(LoadPath, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(stored)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	g, err := NewHTTPGateway(server.URL+"/", server.Client())
	if err != nil {
		t.Fatalf("NewHTTPGateway() error = %v", err)
	}

	want := sampleSnapshot().Normalize()
	if err := g.Save(context.Background(), want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestHTTPGateway_SaveFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(SaveResponse{Success: false, Error: "disk full"})
	}))
	defer server.Close()

	g, err := NewHTTPGateway(server.URL, server.Client())
	if err != nil {
		t.Fatal(err)
	}
	err = g.Save(context.Background(), sampleSnapshot())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Save() error = %v, want disk full", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PersistenceConfig
		want    string
		wantErr bool
	}{
		{"local", config.PersistenceConfig{Mode: config.PersistenceLocal, DataDir: "data"}, "*persistence.FileGateway", false},
		{"remote", config.PersistenceConfig{Mode: config.PersistenceRemote, RemoteURL: "http://backend:3001"}, "*persistence.HTTPGateway", false},
		{"remote without url", config.PersistenceConfig{Mode: config.PersistenceRemote}, "", true},
		{"unknown", config.PersistenceConfig{Mode: "s3"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && reflect.TypeOf(g).String() != tt.want {
				t.Errorf("New() type = %T, want %s", g, tt.want)
			}
		})
	}
}
