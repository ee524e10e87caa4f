package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/cache"
)

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
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[*int](5 * time.Minute)
	defer c.Close()

	v := 42
	c.Set("key1", &v)
	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if *got != 42 {
		t.Errorf("expected 42, got %d", *got)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)}
	c := cache.NewWithClock[string](time.Minute, clock.Now)
	defer c.Close()

	c.Set("key1", "value1")
	clock.Advance(59 * time.Second)
	if _, ok := c.Get("key1"); !ok {
		t.Fatal("expected entry before TTL")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected cache entry to be expired")
	}
	if c.Len() != 1 {
		t.Fatalf("expired entry is kept until swept, got %d", c.Len())
	}

	c.Sweep()
	if c.Len() != 0 {
		t.Errorf("expected sweep to remove expired entry, got %d", c.Len())
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_CloseTwice(t *testing.T) {
	c := cache.New[string](time.Minute)
	c.Close()
	c.Close()

	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Error("cache must stay usable after Close")
	}
}
