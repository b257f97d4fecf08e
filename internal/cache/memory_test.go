package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttl time.Duration) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: ttl})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newTestCache(t, time.Minute)

	_, err := c.Get(context.Background(), "missing")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	_, err := c.Get(ctx, "key")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after expiry, got %v", err)
	}

	has, err := c.Has(ctx, "key")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if has {
		t.Error("Has should report false after expiry")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()

	_ = c.Set(ctx, "key", []byte("value"), 0)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err := c.Get(ctx, "key")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestMemoryCacheDeleteByPrefix(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()

	_ = c.Set(ctx, "stats:products", []byte("a"), 0)
	_ = c.Set(ctx, "stats:categories", []byte("b"), 0)
	_ = c.Set(ctx, "categories:list", []byte("c"), 0)

	if err := c.DeleteByPrefix(ctx, "stats:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	if _, err := c.Get(ctx, "stats:products"); !errors.Is(err, ErrCacheMiss) {
		t.Error("stats:products should be deleted")
	}
	if _, err := c.Get(ctx, "categories:list"); err != nil {
		t.Errorf("categories:list should survive: %v", err)
	}
}

func TestMemoryCacheValueCopied(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()

	src := []byte("value")
	_ = c.Set(ctx, "key", src, 0)
	src[0] = 'X' // Mutating the source must not affect the cached copy

	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("cached value mutated: %q", got)
	}

	got[0] = 'Y' // Mutating the returned slice must not affect the cache
	again, _ := c.Get(ctx, "key")
	if string(again) != "value" {
		t.Errorf("cached value mutated via returned slice: %q", again)
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	_ = c.Close()

	if _, err := c.Get(context.Background(), "key"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
	if err := c.Set(context.Background(), "key", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
}

func TestNewFactoryDefaultsToMemory(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New without RedisURL should return *MemoryCache, got %T", c)
	}
}
