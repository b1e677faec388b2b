// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package cache

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/planemanager/internal/models"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestTTL(t *testing.T, ttl time.Duration) (*TTL[string], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newTTL[string](ttl, clock.Now)
	t.Cleanup(c.Close)
	return c, clock
}

func TestTTLBasicOperations(t *testing.T) {
	c, _ := newTestTTL(t, time.Minute)

	c.Set("key1", "value1")
	value, ok := c.Get("key1")
	if !ok || value != "value1" {
		t.Errorf("Get(key1) = %q, %v; want value1, true", value, ok)
	}
	if _, ok := c.Get("key2"); ok {
		t.Error("Expected key2 to not exist")
	}

	c.Delete("key1")
	if _, ok := c.Get("key1"); ok {
		t.Error("Expected key1 to be deleted")
	}
}

func TestTTLExpiration(t *testing.T) {
	c, clock := newTestTTL(t, time.Minute)
	c.Set("projects", "list")

	clock.Advance(61 * time.Second)

	if _, ok := c.Get("projects"); ok {
		t.Error("Get() should miss an expired entry")
	}
	value, stale, ok := c.GetStale("projects")
	if !ok || !stale || value != "list" {
		t.Errorf("GetStale() = %q, stale=%v, ok=%v; want list, true, true", value, stale, ok)
	}
	if age, ok := c.Age("projects"); !ok || age != 61*time.Second {
		t.Errorf("Age() = %v, %v; want 61s", age, ok)
	}
}

func TestTTLGetStaleFresh(t *testing.T) {
	c, _ := newTestTTL(t, time.Minute)
	c.Set("k", "v")

	value, stale, ok := c.GetStale("k")
	if !ok || stale || value != "v" {
		t.Errorf("GetStale() = %q, stale=%v, ok=%v; want v, false, true", value, stale, ok)
	}
	if _, _, ok := c.GetStale("missing"); ok {
		t.Error("GetStale(missing) should report ok=false")
	}
}

func TestTTLCleanupKeepsRecentlyExpired(t *testing.T) {
	c, clock := newTestTTL(t, time.Minute)
	c.Set("old", "a")
	clock.Advance(2 * time.Minute)
	c.Set("new", "b")
	clock.Advance(3 * time.Minute)

	c.cleanup()

	if _, _, ok := c.GetStale("old"); ok {
		t.Error("entry expired four minutes ago should be dropped")
	}
	if _, _, ok := c.GetStale("new"); !ok {
		t.Error("entry expired two minutes ago should be kept")
	}
	if got := c.GetStats().TotalKeys; got != 1 {
		t.Errorf("TotalKeys = %d, want 1", got)
	}
}

func TestTTLClearAndStats(t *testing.T) {
	c, _ := newTestTTL(t, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Get("zzz")

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.TotalKeys != 2 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 2 keys", stats)
	}
	if rate := c.HitRate(); rate != 50 {
		t.Errorf("HitRate() = %v, want 50", rate)
	}

	c.Clear()
	if got := c.GetStats(); got.TotalKeys != 0 || got.Evictions != 2 {
		t.Errorf("after Clear stats = %+v", got)
	}
}

func TestTTLCloseIdempotent(t *testing.T) {
	c := NewTTL[int](time.Minute)
	c.Close()
	c.Close()
}

func TestTTLConcurrentAccess(t *testing.T) {
	c := NewTTL[int](time.Minute)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("k", n)
				c.Get("k")
				c.GetStale("k")
			}
		}(i)
	}
	wg.Wait()
}

func openTestSnapshotCache(t *testing.T) *SnapshotCache {
	t.Helper()
	c, err := OpenSnapshotCache(SnapshotCacheConfig{InMemory: true})
	if err != nil {
		t.Fatalf("OpenSnapshotCache() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSnapshotCache_PutGet(t *testing.T) {
	c := openTestSnapshotCache(t)

	if _, err := c.Get(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Get() on empty cache error = %v, want ErrNoSnapshot", err)
	}

	lastSync := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)
	want := models.Snapshot{
		Teams: []models.Team{{ID: "t1", Name: "Security", Trigramme: "SEC"}},
		Projects: []models.Project{{
			ID: "p1", Name: "ACME", Version: 2,
			CreatedAt: lastSync, UpdatedAt: lastSync,
		}},
		LastSync: &lastSync,
	}.Normalize()

	if err := c.Put(want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := c.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if ts, err := c.SavedAt(); err != nil || ts.IsZero() {
		t.Errorf("SavedAt() = %v, %v", ts, err)
	}
}

func TestSnapshotCache_Clear(t *testing.T) {
	c := openTestSnapshotCache(t)
	if err := c.Put(models.EmptySnapshot()); err != nil {
		t.Fatal(err)
	}
	if err := c.MarkEmptyStateMigrated(); err != nil {
		t.Fatal(err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := c.Get(); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Get() after Clear error = %v, want ErrNoSnapshot", err)
	}
	if done, err := c.EmptyStateMigrated(); err != nil || !done {
		t.Errorf("EmptyStateMigrated() = %v, %v; marker should survive Clear", done, err)
	}
	if err := c.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestSnapshotCache_MigrationMarker(t *testing.T) {
	c := openTestSnapshotCache(t)

	done, err := c.EmptyStateMigrated()
	if err != nil || done {
		t.Fatalf("EmptyStateMigrated() = %v, %v; want false, nil", done, err)
	}
	if err := c.MarkEmptyStateMigrated(); err != nil {
		t.Fatal(err)
	}
	if done, _ := c.EmptyStateMigrated(); !done {
		t.Error("EmptyStateMigrated() = false after marking")
	}
}
