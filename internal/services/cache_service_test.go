package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewCacheService(rdb, time.Minute, true), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newRedisCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	stored := payload{Name: "rice", Price: 2.50}

	if !cache.Set(ctx, "belanja:test:abc", stored, 0) {
		t.Fatal("set failed")
	}

	var loaded payload
	if !cache.Get(ctx, "belanja:test:abc", &loaded) {
		t.Fatal("expected cache hit")
	}
	if loaded != stored {
		t.Fatalf("got %+v, want %+v", loaded, stored)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	cache, mr := newRedisCache(t)
	ctx := context.Background()

	cache.Set(ctx, "belanja:test:ttl", "value", 10*time.Second)

	var out string
	if !cache.Get(ctx, "belanja:test:ttl", &out) {
		t.Fatal("expected hit before expiry")
	}

	mr.FastForward(11 * time.Second)

	if cache.Get(ctx, "belanja:test:ttl", &out) {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestCacheDisabled(t *testing.T) {
	cache := NewCacheService(nil, time.Minute, false)
	ctx := context.Background()

	if cache.Set(ctx, "k", "v", 0) {
		t.Fatal("disabled cache must reject sets")
	}
	var out string
	if cache.Get(ctx, "k", &out) {
		t.Fatal("disabled cache must always miss")
	}
}

func TestCacheKeyDeterministic(t *testing.T) {
	a := CacheKey("ingredient", map[string]string{"name": "rice", "state": "selangor"})
	b := CacheKey("ingredient", map[string]string{"state": "selangor", "name": "rice"})
	if a != b {
		t.Fatalf("same params must hash to the same key: %q vs %q", a, b)
	}

	c := CacheKey("ingredient", map[string]string{"name": "rice", "state": "johor"})
	if a == c {
		t.Fatal("different params must not collide")
	}
}

func TestMemoryFallbackWithoutRedis(t *testing.T) {
	cache := NewCacheService(nil, time.Minute, true)
	ctx := context.Background()

	if !cache.Set(ctx, "mem:key", 42, 0) {
		t.Fatal("memory set failed")
	}

	var out int
	if !cache.Get(ctx, "mem:key", &out) || out != 42 {
		t.Fatalf("memory get failed: %d", out)
	}

	cache.ClearMemory()
	if cache.Get(ctx, "mem:key", &out) {
		t.Fatal("expected miss after ClearMemory")
	}
}

func TestMemoryFIFOEviction(t *testing.T) {
	cache := NewCacheService(nil, time.Minute, true)
	ctx := context.Background()

	for i := 0; i <= maxMemoryEntries; i++ {
		cache.Set(ctx, fmt.Sprintf("key-%04d", i), i, 0)
	}

	stats := cache.Stats(ctx)
	want := maxMemoryEntries + 1 - memoryEvictBatch
	if stats.MemoryCacheSize != want {
		t.Fatalf("expected %d entries after eviction, got %d", want, stats.MemoryCacheSize)
	}

	// Oldest entries evicted first
	var out int
	if cache.Get(ctx, "key-0000", &out) {
		t.Fatal("oldest entry should be evicted")
	}
	if !cache.Get(ctx, fmt.Sprintf("key-%04d", maxMemoryEntries), &out) {
		t.Fatal("newest entry should survive eviction")
	}
}

func TestCacheStats(t *testing.T) {
	cache, mr := newRedisCache(t)
	ctx := context.Background()

	stats := cache.Stats(ctx)
	if !stats.Enabled || !stats.RedisAvailable {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	mr.Close()
	stats = cache.Stats(ctx)
	if stats.RedisAvailable {
		t.Fatal("redis should report unavailable after close")
	}
	if stats.RedisError == "" {
		t.Fatal("expected redis error detail")
	}
}
