package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got map[string]int
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["a"] != 1 {
		t.Fatalf("got %v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var got string
	if err := mc.Get(context.Background(), "missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiryNotExtendedByReads(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", 40*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got string
	time.Sleep(25 * time.Millisecond)
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}
	time.Sleep(25 * time.Millisecond)
	if err := mc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("read extended the ttl: %v", err)
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	mc.Set(ctx, "a", 1, time.Minute)
	mc.Set(ctx, "b", 2, time.Minute)

	var v int
	if err := mc.Get(ctx, "a", &v); err != nil {
		t.Fatalf("get a: %v", err)
	}
	mc.Set(ctx, "c", 3, time.Minute) // evicts b, the least recently used

	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("b survived eviction")
	}
	if ok, _ := mc.Exists(ctx, "a"); !ok {
		t.Fatalf("a evicted")
	}
}

func TestMemoryCacheLen(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	mc.Set(ctx, "live", 1, time.Minute)
	mc.Set(ctx, "dead", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	n, err := mc.Len(ctx)
	if err != nil || n != 1 {
		t.Fatalf("len=%d err=%v", n, err)
	}
}
