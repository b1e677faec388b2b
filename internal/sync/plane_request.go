// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/planemanager/internal/logging"
	"github.com/tomtom215/planemanager/internal/metrics"
)

// maxErrorBodySize limits the maximum amount of response body read for error reporting
const maxErrorBodySize = 64 * 1024 // 64KB

// maxResponseSize bounds successful response bodies.
const maxResponseSize = 32 << 20

// planeResponse is one completed HTTP exchange.
type planeResponse struct {
	status int
	body   []byte
}

// readBodyForError reads the response body for error reporting (max 64KB)
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// do sends one logical request. Each attempt goes through the queue on its
// own, so other callers' requests can run between a 429 and its retry.
// result may be nil.
func (c *PlaneClient) do(ctx context.Context, method, path string, body, result interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(ctx, method, path, payload)
		if err == nil {
			if result == nil || len(bytes.TrimSpace(resp.body)) == 0 {
				return nil
			}
			if err := json.Unmarshal(resp.body, result); err != nil {
				return fmt.Errorf("decode %s %s response: %w", method, path, err)
			}
			return nil
		}

		apiErr, ok := AsAPIError(err)
		if !ok || !apiErr.IsRateLimited() || attempt >= c.retry.MaxRetries {
			return err
		}

		delay := c.retry.Backoff(attempt, c.jitter(c.retry.MaxJitter))
		metrics.RecordRateLimitRetry()
		logging.Ctx(ctx).Warn().
			Str("method", method).
			Str("path", path).
			Dur("retry_delay", delay).
			Int("attempt", attempt+1).
			Int("max_retries", c.retry.MaxRetries).
			Msg("Plane API rate limited (HTTP 429), retrying")

		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// attempt queues a single HTTP exchange and returns its response, or an
// *APIError for any non-2xx status or transport failure.
func (c *PlaneClient) attempt(ctx context.Context, method, path string, payload []byte) (*planeResponse, error) {
	var (
		resp *planeResponse
		err  error
	)
	qerr := c.queue.Do(ctx, func() {
		if c.breaker == nil {
			resp, err = c.send(ctx, method, path, payload)
			return
		}
		resp, err = executeWithBreaker(c.breaker, func() (*planeResponse, error) {
			r, sendErr := c.send(ctx, method, path, payload)
			if sendErr != nil {
				var apiErr *APIError
				if errors.As(sendErr, &apiErr) && apiErr.Status > 0 && !apiErr.IsServerError() {
					// 4xx answers are the caller's problem, not Plane's health.
					return r, nil
				}
			}
			return r, sendErr
		})
		if err == nil && resp != nil && (resp.status < 200 || resp.status > 299) {
			err = newAPIError(resp.status, resp.body)
		}
	})
	if qerr != nil {
		return nil, qerr
	}
	return resp, err
}

// send performs the HTTP exchange.
func (c *PlaneClient) send(ctx context.Context, method, path string, payload []byte) (*planeResponse, error) {
	var bodyReader io.Reader = http.NoBody
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resource := resourceOf(path)
	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordPlaneRequest(method, resource, 0, time.Since(start))
		return nil, &APIError{Message: err.Error(), Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	metrics.RecordPlaneRequest(method, resource, httpResp.StatusCode, time.Since(start))

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		body := readBodyForError(httpResp.Body)
		return &planeResponse{status: httpResp.StatusCode, body: body}, newAPIError(httpResp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, &APIError{Status: httpResp.StatusCode, Message: "read response: " + err.Error(), Err: err}
	}
	return &planeResponse{status: httpResp.StatusCode, body: body}, nil
}

var planeResources = map[string]bool{
	"projects":      true,
	"modules":       true,
	"module-issues": true,
	"issues":        true,
	"labels":        true,
}

// resourceOf returns the innermost resource named in path, used as a
// metrics label ("/projects/p1/issues/i1/" -> "issues").
func resourceOf(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	resource := "other"
	for _, segment := range strings.Split(path, "/") {
		if planeResources[segment] {
			resource = segment
		}
	}
	return resource
}
