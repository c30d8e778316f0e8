/**
 * @description
 * Cache layer for normalized price lookups, recipe results and meal plans.
 * Redis is the primary backend with native TTL; a bounded in-process map takes
 * over whenever Redis is absent or failing. Every operation is best-effort:
 * cache failures degrade to misses and never surface to callers.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9
 * - backend/internal/logger
 *
 * @notes
 * - Memory fallback has no per-entry TTL and evicts the 200 oldest-inserted
 *   entries once it exceeds 1000 (FIFO, not LRU).
 * - Keys derive from an md5 of the sorted request parameters so identical
 *   requests hit the same entry regardless of parameter ordering.
 */

package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/belanja-project/backend/internal/logger"
	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix = "belanja"

	maxMemoryEntries = 1000
	memoryEvictBatch = 200
)

// CacheService wraps Redis with an in-process fallback
type CacheService struct {
	Redis      *redis.Client // nil when Redis is not configured
	DefaultTTL time.Duration
	Enabled    bool

	mu     sync.Mutex
	memory map[string][]byte
	order  []string // insertion order for FIFO eviction
}

// NewCacheService creates a CacheService. rdb may be nil.
func NewCacheService(rdb *redis.Client, defaultTTL time.Duration, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &CacheService{
		Redis:      rdb,
		DefaultTTL: defaultTTL,
		Enabled:    enabled,
		memory:     make(map[string][]byte),
	}
}

// CacheKey builds a deterministic namespaced key from sorted parameters
func CacheKey(prefix string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
		b.WriteByte(';')
	}

	sum := md5.Sum([]byte(b.String()))
	return cacheKeyPrefix + ":" + prefix + ":" + hex.EncodeToString(sum[:])[:12]
}

// Get loads a cached value into dest. Returns false on miss or any failure.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled {
		return false
	}

	if c.Redis != nil {
		data, err := c.Redis.Get(ctx, key).Bytes()
		if err == nil {
			if jsonErr := json.Unmarshal(data, dest); jsonErr == nil {
				return true
			}
			return false
		}
		if err != redis.Nil {
			logger.Error("Cache get error for %s, falling back to memory: %v", key, err)
		} else {
			return false
		}
	}

	c.mu.Lock()
	data, ok := c.memory[key]
	c.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// Set stores a value. Returns true when at least one backend accepted it.
func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	if !c.Enabled {
		return false
	}
	if ttl <= 0 {
		ttl = c.DefaultTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		logger.Error("Cache marshal error for %s: %v", key, err)
		return false
	}

	if c.Redis != nil {
		if err := c.Redis.Set(ctx, key, data, ttl).Err(); err == nil {
			return true
		} else {
			logger.Error("Cache set error for %s, falling back to memory: %v", key, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.memory[key]; !exists {
		c.order = append(c.order, key)
	}
	c.memory[key] = data

	if len(c.memory) > maxMemoryEntries {
		evict := c.order[:memoryEvictBatch]
		c.order = c.order[memoryEvictBatch:]
		for _, k := range evict {
			delete(c.memory, k)
		}
	}
	return true
}

// IngredientPriceKey namespaces cached per-ingredient price lookups
func IngredientPriceKey(ingredient, state string) string {
	return CacheKey("ingredient", map[string]string{
		"name":  strings.ToLower(strings.TrimSpace(ingredient)),
		"state": strings.ToLower(strings.TrimSpace(state)),
	})
}

// StoresKey is the snapshot of all stores from the latest refresh
func StoresKey() string {
	return cacheKeyPrefix + ":pricecatcher:stores"
}

// CategoryKey namespaces refreshed records grouped by item category
func CategoryKey(category string) string {
	return cacheKeyPrefix + ":pricecatcher:category:" + strings.ToLower(strings.TrimSpace(category))
}

// MealPlanKey namespaces cached budget meal-plan results
func MealPlanKey(params map[string]string) string {
	return CacheKey("meal_plan", params)
}

// RecipeKey namespaces cached recipe search results
func RecipeKey(params map[string]string) string {
	return CacheKey("recipe", params)
}

// ClearMemory drops every entry from the in-process fallback
func (c *CacheService) ClearMemory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory = make(map[string][]byte)
	c.order = nil
	logger.Info("🧹 Memory cache cleared")
}

// CacheStats reports backend health for the admin surface
type CacheStats struct {
	Enabled         bool   `json:"cache_enabled"`
	RedisAvailable  bool   `json:"redis_available"`
	MemoryCacheSize int    `json:"memory_cache_size"`
	RedisError      string `json:"redis_error,omitempty"`
}

// Stats returns current cache statistics
func (c *CacheService) Stats(ctx context.Context) CacheStats {
	c.mu.Lock()
	size := len(c.memory)
	c.mu.Unlock()

	stats := CacheStats{
		Enabled:         c.Enabled,
		MemoryCacheSize: size,
	}

	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			stats.RedisError = err.Error()
		} else {
			stats.RedisAvailable = true
		}
	}
	return stats
}
