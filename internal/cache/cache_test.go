// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package cache

import (
	"sync"
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c := New(ttl)
	t.Cleanup(c.Stop)
	return c
}

func TestCacheBasicOperations(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	_, exists = c.Get("key2")
	if exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheLazyExpiration(t *testing.T) {
	c := newTestCache(t, time.Minute)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("key1", "value1")

	// Still fresh.
	if _, exists := c.Get("key1"); !exists {
		t.Error("Expected key1 to exist before expiry")
	}

	// Advance past the TTL: the get is a miss and deletes the entry.
	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be expired")
	}

	// Re-miss is idempotent and the entry is gone from iteration.
	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to stay expired")
	}
	c.mu.RLock()
	_, still := c.entries["key1"]
	c.mu.RUnlock()
	if still {
		t.Error("Expected expired entry to be deleted")
	}
}

func TestCacheDelete(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be deleted")
	}
}

func TestCacheClear(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Clear()

	for _, key := range []string{"key1", "key2"} {
		if _, exists := c.Get(key); exists {
			t.Errorf("Expected %s to be cleared", key)
		}
	}
}

func TestCacheStats(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set("key1", "value1")
	c.Get("key1") // hit
	c.Get("key2") // miss
	c.Get("key1") // hit

	stats := c.GetStats()
	if stats.Hits != 2 {
		t.Errorf("Expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}

	hitRate := c.HitRate()
	want := 100.0 * 2 / 3
	if hitRate < want-0.01 || hitRate > want+0.01 {
		t.Errorf("Expected hit rate around %.2f%%, got %.2f%%", want, hitRate)
	}
}

func TestCacheSetWithTTL(t *testing.T) {
	c := newTestCache(t, time.Hour)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.SetWithTTL("short", "v", time.Second)
	c.Set("long", "v")

	c.now = func() time.Time { return base.Add(time.Minute) }
	if _, exists := c.Get("short"); exists {
		t.Error("Expected short-TTL entry to expire")
	}
	if _, exists := c.Get("long"); !exists {
		t.Error("Expected default-TTL entry to survive")
	}
}

func TestCacheCleanupSweep(t *testing.T) {
	c := newTestCache(t, time.Minute)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("a", 1)
	c.Set("b", 2)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	c.cleanup()

	stats := c.GetStats()
	if stats.TotalKeys != 0 {
		t.Errorf("Expected sweep to remove all entries, %d left", stats.TotalKeys)
	}
	if stats.Evictions != 2 {
		t.Errorf("Expected 2 evictions, got %d", stats.Evictions)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := newTestCache(t, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := Key("preferences", "user")
			for j := 0; j < 100; j++ {
				c.Set(key, n)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
}

func TestKeyFormat(t *testing.T) {
	if got := Key("preferences", "u1"); got != "preferences:u1" {
		t.Errorf("Key() = %q, want preferences:u1", got)
	}
}
