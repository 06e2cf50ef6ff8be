package cache

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// newTestCache creates a cache without a background sweep and registers cleanup.
func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c := New(Config{DefaultTTL: 5 * time.Minute})
	t.Cleanup(c.Stop)
	return c
}

// requireKey asserts that a key exists in the cache.
func requireKey(t *testing.T, c *Cache, key string) any {
	t.Helper()
	val, found := c.Get(key)
	if !found {
		t.Fatalf("expected key %q to exist", key)
	}
	return val
}

// requireNoKey asserts that a key does not exist in the cache.
func requireNoKey(t *testing.T, c *Cache, key string) {
	t.Helper()
	_, found := c.Get(key)
	if found {
		t.Fatalf("expected key %q to not exist", key)
	}
}

func TestSetAndGet(t *testing.T) {
	c := newTestCache(t)
	c.Set("key1", "value1")

	val := requireKey(t, c, "key1")
	if val != "value1" {
		t.Errorf("expected value1, got %v", val)
	}
}

func TestGetMissing(t *testing.T) {
	c := newTestCache(t)
	requireNoKey(t, c, "nonexistent")
}

func TestExpiration(t *testing.T) {
	c := newTestCache(t)

	c.Set("expiring", "value", WithTTL(50*time.Millisecond))
	requireKey(t, c, "expiring")

	time.Sleep(60 * time.Millisecond)
	requireNoKey(t, c, "expiring")
}

func TestZeroTTLExpiresImmediately(t *testing.T) {
	c := newTestCache(t)

	c.Set("instant", "value", WithTTL(0))
	requireNoKey(t, c, "instant")
}

func TestSetReplacesEntryAndTags(t *testing.T) {
	c := newTestCache(t)

	c.Set("key", "old", WithTags("a"))
	c.Set("key", "new", WithTags("b"))

	if val := requireKey(t, c, "key"); val != "new" {
		t.Errorf("expected new, got %v", val)
	}

	// The old tag must not match any more
	if removed := c.InvalidateByTags([]string{"a"}); removed != 0 {
		t.Errorf("expected 0 removed for stale tag, got %d", removed)
	}
	if removed := c.InvalidateByTags([]string{"b"}); removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
}

func TestInvalidateByTags(t *testing.T) {
	c := newTestCache(t)

	c.Set("n1", 1, WithTags("news"))
	c.Set("n2", 2, WithTags("news", "stats"))
	c.Set("s1", 3, WithTags("stats"))
	c.Set("plain", 4)

	removed := c.InvalidateByTags([]string{"news"})
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	requireNoKey(t, c, "n1")
	requireNoKey(t, c, "n2")
	requireKey(t, c, "s1")
	requireKey(t, c, "plain")

	// No remaining entry carries the invalidated tag
	for _, info := range c.DebugInfo() {
		for _, tag := range info.Tags {
			if tag == "news" {
				t.Errorf("entry %q still tagged news", info.Key)
			}
		}
	}
}

func TestInvalidateByTagsEmpty(t *testing.T) {
	c := newTestCache(t)
	c.Set("key", "value", WithTags("a"))

	if removed := c.InvalidateByTags(nil); removed != 0 {
		t.Errorf("expected 0 removed, got %d", removed)
	}
	requireKey(t, c, "key")
}

func TestWrapComputesOnMiss(t *testing.T) {
	c := newTestCache(t)

	var calls atomic.Int32
	producer := func() (any, error) {
		calls.Add(1)
		return "computed", nil
	}

	val, err := c.Wrap("key", producer)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if val != "computed" {
		t.Errorf("expected computed, got %v", val)
	}

	// Second call within TTL must not invoke the producer again
	val, err = c.Wrap("key", producer)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if val != "computed" {
		t.Errorf("expected computed, got %v", val)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 producer call, got %d", calls.Load())
	}
}

func TestWrapPropagatesProducerError(t *testing.T) {
	c := newTestCache(t)

	wantErr := errors.New("producer failed")
	_, err := c.Wrap("key", func() (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected producer error, got %v", err)
	}

	// A failed computation must not be cached
	requireNoKey(t, c, "key")
}

func TestCleanup(t *testing.T) {
	c := newTestCache(t)

	c.Set("live", "value")
	c.Set("dead1", "value", WithTTL(time.Nanosecond))
	c.Set("dead2", "value", WithTTL(time.Nanosecond))
	time.Sleep(time.Millisecond)

	removed := c.Cleanup()
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	requireKey(t, c, "live")
}

func TestMaxSizeEviction(t *testing.T) {
	c := New(Config{MaxSize: 2, DefaultTTL: 5 * time.Minute})
	t.Cleanup(c.Stop)

	c.Set("a", 1, WithTTL(time.Minute))
	c.Set("b", 2, WithTTL(10*time.Minute))
	c.Set("c", 3, WithTTL(10*time.Minute))

	// "a" expires soonest and should have been evicted
	requireNoKey(t, c, "a")
	requireKey(t, c, "b")
	requireKey(t, c, "c")

	if size := c.Stats().Size; size != 2 {
		t.Errorf("expected size 2, got %d", size)
	}
}

func TestStats(t *testing.T) {
	c := newTestCache(t)

	c.Set("key", "value")
	c.Get("key")
	c.Get("key")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
	if stats.Size != 1 {
		t.Errorf("expected size 1, got %d", stats.Size)
	}

	wantRate := float64(2) / float64(3) * 100
	if stats.HitRate != wantRate {
		t.Errorf("expected hit rate %.2f, got %.2f", wantRate, stats.HitRate)
	}
}

func TestResetStats(t *testing.T) {
	c := newTestCache(t)

	c.Set("key", "value")
	c.Get("key")
	c.ResetStats()

	stats := c.Stats()
	if stats.Hits != 0 || stats.Misses != 0 || stats.Sets != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
	if stats.ResetAt == nil {
		t.Error("expected ResetAt to be set")
	}
}

func TestSetConfigAppliesAtRuntime(t *testing.T) {
	c := newTestCache(t)

	cfg := c.Config()
	cfg.MaxSize = 42
	cfg.DefaultTTL = time.Second
	c.SetConfig(cfg)

	got := c.Config()
	if got.MaxSize != 42 {
		t.Errorf("expected MaxSize 42, got %d", got.MaxSize)
	}
	if got.DefaultTTL != time.Second {
		t.Errorf("expected DefaultTTL 1s, got %v", got.DefaultTTL)
	}
}

func TestDebugInfo(t *testing.T) {
	c := newTestCache(t)

	c.Set("key", "value", WithTags("news", "stats"))

	infos := c.DebugInfo()
	if len(infos) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(infos))
	}
	if infos[0].Key != "key" {
		t.Errorf("expected key, got %s", infos[0].Key)
	}
	if len(infos[0].Tags) != 2 {
		t.Errorf("expected 2 tags, got %v", infos[0].Tags)
	}
	if !infos[0].ExpiresAt.After(time.Now()) {
		t.Error("expected entry to expire in the future")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := newTestCache(t)

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				c.Set("shared", n, WithTags("load"))
				c.Get("shared")
				c.InvalidateByTags([]string{"load"})
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		<-done
	}
}
