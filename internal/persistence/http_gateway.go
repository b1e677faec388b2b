// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package persistence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/planemanager/internal/models"
)

// Gateway endpoint paths.
const (
	SavePath = "/api/save-data"
	LoadPath = "/api/load-data"
)

// maxResponseSize bounds gateway responses.
const maxResponseSize = 64 << 20

// SaveResponse is the body returned by POST /api/save-data.
type SaveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HTTPGateway talks to a remote persistence backend.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway returns a gateway for the backend at baseURL. A nil client
// gets a 30 second timeout.
func NewHTTPGateway(baseURL string, client *http.Client) (*HTTPGateway, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid persistence URL %q", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}, nil
}

// Save posts the snapshot to the backend.
func (g *HTTPGateway) Save(ctx context.Context, snap models.Snapshot) error {
	body, err := json.Marshal(snap.Normalize())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+SavePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var result SaveResponse
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read save response: %w", err)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("save snapshot: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode != http.StatusOK || !result.Success {
		msg := result.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("save snapshot: status %d: %s", resp.StatusCode, msg)
	}
	return nil
}

// Load fetches the snapshot from the backend.
func (g *HTTPGateway) Load(ctx context.Context) (models.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+LoadPath, http.NoBody)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return models.Snapshot{}, fmt.Errorf("load snapshot: status %d", resp.StatusCode)
	}

	var snap models.Snapshot
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap.Normalize(), nil
}
