// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package persistence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/models"
)

// FileGateway stores the snapshot as JSON files in a directory.
type FileGateway struct {
	dir string
	now func() time.Time

	// mu serializes saves so two writers never interleave their files.
	mu sync.Mutex
}

// NewFileGateway returns a gateway rooted at dir. The directory is created
// on the first save.
func NewFileGateway(dir string) *FileGateway {
	return &FileGateway{dir: dir, now: time.Now}
}

// Dir returns the data directory.
func (g *FileGateway) Dir() string {
	return g.dir
}

// Save overwrites the four files with snap.
func (g *FileGateway) Save(ctx context.Context, snap models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := os.MkdirAll(g.dir, 0o750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	snap = snap.Normalize()
	files := []struct {
		name  string
		value interface{}
	}{
		{TeamsFile, snap.Teams},
		{TemplatesFile, snap.ModuleTemplates},
		{ProjectsFile, snap.Projects},
	}

	checksums := make(map[string]string, len(files))
	for _, f := range files {
		data, err := marshalFile(f.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := writeFileAtomic(filepath.Join(g.dir, f.name), data); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		checksums[f.name] = checksum(data)
	}

	now := g.now().UTC()
	meta := models.Metadata{
		LastSync:  snap.LastSync,
		Version:   models.SnapshotVersion,
		CreatedAt: now,
		UpdatedAt: now,
		Checksums: checksums,
	}
	if prev, err := g.readMetadata(); err == nil && !prev.CreatedAt.IsZero() {
		meta.CreatedAt = prev.CreatedAt
	}

	data, err := marshalFile(meta)
	if err != nil {
		return fmt.Errorf("encode %s: %w", MetadataFile, err)
	}
	if err := writeFileAtomic(filepath.Join(g.dir, MetadataFile), data); err != nil {
		return fmt.Errorf("write %s: %w", MetadataFile, err)
	}
	return nil
}

// Load reads the four files independently. A missing or corrupt file
// degrades to its empty value; only context cancellation is an error.
func (g *FileGateway) Load(ctx context.Context) (models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	snap := models.EmptySnapshot()
	sums := make(map[string]string, 3)

	if teams, raw, ok := readFile[[]models.Team](g.dir, TeamsFile); ok {
		snap.Teams = teams
		sums[TeamsFile] = checksum(raw)
	}
	if templates, raw, ok := readFile[[]models.ModuleTemplate](g.dir, TemplatesFile); ok {
		snap.ModuleTemplates = templates
		sums[TemplatesFile] = checksum(raw)
	}
	if projects, raw, ok := readFile[[]models.Project](g.dir, ProjectsFile); ok {
		snap.Projects = projects
		sums[ProjectsFile] = checksum(raw)
	}

	if meta, _, ok := readFile[models.Metadata](g.dir, MetadataFile); ok {
		snap.LastSync = meta.LastSync
		for name, want := range meta.Checksums {
			if got, present := sums[name]; present && got != want {
				logging.Warn().
					Str("file", name).
					Str("dir", g.dir).
					Msg("Data file does not match metadata checksum, files may be from different saves")
			}
		}
	}

	return snap.Normalize(), nil
}

// readFile decodes one data file. A warning is logged on failure unless
// the file simply does not exist.
func readFile[T any](dir, name string) (T, []byte, bool) {
	var v T
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path) //nolint:gosec // path is built from the configured data dir
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn().Err(err).Str("file", path).Msg("Failed to read data file, using empty value")
		}
		return v, nil, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		logging.Warn().Err(err).Str("file", path).Msg("Failed to parse data file, using empty value")
		var zero T
		return zero, nil, false
	}
	return v, raw, true
}

func (g *FileGateway) readMetadata() (models.Metadata, error) {
	var meta models.Metadata
	raw, err := os.ReadFile(filepath.Join(g.dir, MetadataFile)) //nolint:gosec // fixed file name
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(raw, &meta)
	return meta, err
}

func marshalFile(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0o640); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
