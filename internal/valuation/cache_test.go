package valuation

import (
	"testing"
	"time"
)

func TestCacheHitAndExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	cache := NewCache(2*time.Minute, 10)
	cache.now = func() time.Time { return now }

	report := &Report{Address: "0xabc"}
	cache.Put("key", report)

	got, ok := cache.Get("key")
	if !ok || got != report {
		t.Fatalf("expected cache hit")
	}

	now = now.Add(2*time.Minute + time.Second)
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCacheMiss(t *testing.T) {
	cache := NewCache(time.Minute, 10)
	if _, ok := cache.Get("absent"); ok {
		t.Fatalf("expected miss for absent key")
	}
}

func TestCacheCapacityEviction(t *testing.T) {
	now := time.Unix(1000, 0)
	cache := NewCache(time.Hour, 2)
	cache.now = func() time.Time { return now }

	cache.Put("a", &Report{Address: "a"})
	now = now.Add(time.Second)
	cache.Put("b", &Report{Address: "b"})
	now = now.Add(time.Second)
	cache.Put("c", &Report{Address: "c"})

	if _, ok := cache.Get("a"); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
	if _, ok := cache.Get("b"); !ok {
		t.Fatalf("expected b to survive")
	}
	if _, ok := cache.Get("c"); !ok {
		t.Fatalf("expected c to survive")
	}
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	now := time.Unix(1000, 0)
	cache := NewCache(time.Hour, 2)
	cache.now = func() time.Time { return now }

	cache.Put("a", &Report{Address: "a"})
	now = now.Add(time.Second)
	cache.Put("b", &Report{Address: "b"})
	now = now.Add(time.Second)
	cache.Put("b", &Report{Address: "b2"})

	if _, ok := cache.Get("a"); !ok {
		t.Fatalf("overwriting an existing key must not evict others")
	}
	got, _ := cache.Get("b")
	if got == nil || got.Address != "b2" {
		t.Fatalf("expected overwritten value")
	}
}
