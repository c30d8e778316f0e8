/**
 * @description
 * Admin API handlers: health, OpenDOSM integration status, manual refresh,
 * cache statistics and cache clearing.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 * - backend/internal/opendosm
 */

package handlers

import (
	"time"

	"github.com/belanja-project/backend/internal/opendosm"
	"github.com/belanja-project/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminHandler struct {
	DB        *gorm.DB
	Cache     *services.CacheService
	Processor *services.PriceProcessor
	Client    *opendosm.Client
}

func NewAdminHandler(db *gorm.DB, cache *services.CacheService, processor *services.PriceProcessor, client *opendosm.Client) *AdminHandler {
	return &AdminHandler{DB: db, Cache: cache, Processor: processor, Client: client}
}

// Health reports component statuses
// GET /api/admin/health
func (h *AdminHandler) Health(c *fiber.Ctx) error {
	status := "healthy"
	components := fiber.Map{}

	if sqlDB, err := h.DB.DB(); err == nil && sqlDB.PingContext(c.Context()) == nil {
		components["database"] = fiber.Map{"status": "healthy"}
	} else {
		components["database"] = fiber.Map{"status": "unhealthy"}
		status = "degraded"
	}

	cacheStats := h.Cache.Stats(c.Context())
	components["cache"] = fiber.Map{
		"status":          cacheStatus(cacheStats),
		"redis_available": cacheStats.RedisAvailable,
	}

	meta := h.Client.GetLatestDataInfo(c.Context())
	components["opendosm"] = fiber.Map{
		"status":        meta.Status,
		"last_updated":  meta.LastUpdated,
		"total_records": meta.TotalRecords,
		"needs_refresh": h.Processor.NeedsRefresh(),
	}
	if meta.Status != "available" {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":     status,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"components": components,
	})
}

func cacheStatus(stats services.CacheStats) string {
	if !stats.Enabled {
		return "disabled"
	}
	if stats.RedisAvailable {
		return "healthy"
	}
	return "memory-only"
}

// OpenDOSMStatus reports detailed upstream integration state
// GET /api/admin/opendosm/status
func (h *AdminHandler) OpenDOSMStatus(c *fiber.Ctx) error {
	meta := h.Client.GetLatestDataInfo(c.Context())

	lastRefresh := ""
	if t := h.Processor.LastRefresh(); !t.IsZero() {
		lastRefresh = t.UTC().Format(time.RFC3339)
	}

	return c.JSON(fiber.Map{
		"api_integration": meta,
		"processor": fiber.Map{
			"state":         h.Processor.State(),
			"needs_refresh": h.Processor.NeedsRefresh(),
			"last_refresh":  lastRefresh,
		},
		"cache": h.Cache.Stats(c.Context()),
	})
}

// Refresh triggers a manual full data refresh
// POST /api/admin/refresh
func (h *AdminHandler) Refresh(c *fiber.Ctx) error {
	stats, err := h.Processor.RefreshAll(c.Context())
	if err != nil {
		// Total upstream outage: return the stats anyway, flagged failed
		return c.Status(fiber.StatusBadGateway).JSON(stats)
	}
	return c.JSON(stats)
}

// CacheStats returns cache backend statistics
// GET /api/admin/cache/stats
func (h *AdminHandler) CacheStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"cache_stats": h.Cache.Stats(c.Context()),
	})
}

// CacheClear drops the in-process cache entries
// POST /api/admin/cache/clear
func (h *AdminHandler) CacheClear(c *fiber.Ctx) error {
	h.Cache.ClearMemory()
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Memory cache cleared",
		"note":    "Redis entries expire via TTL and were not cleared",
	})
}
