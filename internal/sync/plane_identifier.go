// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package sync

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Identifier limits.
const (
	maxIdentifierLength   = 12
	maxIdentifierAttempts = 5
	fallbackIdentifier    = "project"
)

var (
	nonIdentifierRun  = regexp.MustCompile(`[^a-z0-9]+`)
	identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,11}$`)
)

// DeriveIdentifier builds a project identifier: lowercase letters, digits
// and single hyphens, at most 12 characters, starting with a letter and not
// ending with a hyphen. The name is used first, then the Salesforce number.
func DeriveIdentifier(name, salesforceNumber string) string {
	for _, source := range []string{name, salesforceNumber} {
		if id := identifierFrom(source); id != "" {
			return id
		}
	}
	return fallbackIdentifier
}

func identifierFrom(source string) string {
	id := nonIdentifierRun.ReplaceAllString(strings.ToLower(source), "-")
	id = strings.Trim(id, "-")
	if id == "" {
		return ""
	}
	if id[0] < 'a' || id[0] > 'z' {
		id = "p" + id
	}
	if len(id) > maxIdentifierLength {
		id = id[:maxIdentifierLength]
	}
	return strings.TrimRight(id, "-")
}

// ValidIdentifier reports whether id satisfies the identifier rules.
func ValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id) && !strings.HasSuffix(id, "-")
}

// withSuffix appends "-suffix", shortening base so the result fits.
func withSuffix(base, suffix string) string {
	keep := maxIdentifierLength - len(suffix) - 1
	if keep < 1 {
		keep = 1
	}
	if len(base) > keep {
		base = strings.TrimRight(base[:keep], "-")
	}
	return base + "-" + suffix
}

// UniqueIdentifier derives an identifier and makes it unique among the
// workspace's projects. On a collision a numeric suffix taken from the
// current time is appended; each candidate is re-validated.
func (c *PlaneClient) UniqueIdentifier(ctx context.Context, name, salesforceNumber string) (string, error) {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return "", fmt.Errorf("list projects for identifier check: %w", err)
	}
	taken := make(map[string]bool, len(projects))
	for _, p := range projects {
		taken[strings.ToLower(p.Identifier)] = true
	}
	return pickIdentifier(DeriveIdentifier(name, salesforceNumber), taken, c.now().UnixMilli())
}

func pickIdentifier(base string, taken map[string]bool, millis int64) (string, error) {
	if !taken[base] {
		return base, nil
	}
	for attempt := int64(0); attempt < maxIdentifierAttempts; attempt++ {
		suffix := strconv.FormatInt((millis+attempt)%10000, 10)
		candidate := withSuffix(base, suffix)
		if ValidIdentifier(candidate) && !taken[candidate] {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free project identifier derived from %q", base)
}
