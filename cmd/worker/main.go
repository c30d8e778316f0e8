/**
 * @description
 * Worker Service Entry Point.
 * Responsible for background tasks:
 * 1. Refreshing the local PriceCatcher snapshot from OpenDOSM on a schedule.
 * 2. Purging observations past the retention window (part of each refresh).
 *
 * @dependencies
 * - backend/internal/config
 * - backend/internal/db
 * - backend/internal/opendosm
 * - backend/internal/services
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/belanja-project/backend/internal/config"
	"github.com/belanja-project/backend/internal/db"
	"github.com/belanja-project/backend/internal/logger"
	"github.com/belanja-project/backend/internal/models"
	"github.com/belanja-project/backend/internal/opendosm"
	"github.com/belanja-project/backend/internal/services"
)

func main() {
	logger.Info("🔥 Starting Belanja Worker...")

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// 2. Connect DBs
	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		logger.Fatal("Postgres connection failed: %v", err)
	}
	if err := pgDB.AutoMigrate(&models.GroceryPrice{}); err != nil {
		logger.Fatal("Migration failed: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Error("⚠️ Redis unavailable, caching refreshed data in memory: %v", err)
		redisClient = nil
	}

	// 3. Initialize Services
	client := opendosm.NewClient(cfg)
	cache := services.NewCacheService(redisClient,
		time.Duration(cfg.Services.CacheTTLSeconds)*time.Second, cfg.Services.EnableCaching)
	store := services.NewGormPriceStore(pgDB)
	processor := services.NewPriceProcessor(client, store, cache,
		time.Duration(cfg.OpenDOSM.RefreshIntervalHours)*time.Hour,
		time.Duration(cfg.OpenDOSM.RetentionDays)*24*time.Hour)

	// 4. Context with Cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Refresh Loop
	// Checks hourly; RefreshAll only runs when the snapshot is stale.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Initial refresh
		runRefresh(ctx, processor)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runRefresh(ctx, processor)
			}
		}
	}()

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()

	time.Sleep(1 * time.Second) // Let an in-flight refresh observe the cancel
	logger.Info("Worker exited.")
}

// runRefresh triggers a PriceCatcher refresh when the local snapshot is stale
func runRefresh(ctx context.Context, processor *services.PriceProcessor) {
	if !processor.NeedsRefresh() {
		logger.Info("Price snapshot still fresh, skipping refresh.")
		return
	}

	logger.Info("🔄 Refreshing PriceCatcher data...")
	stats, err := processor.RefreshAll(ctx)
	if err != nil {
		logger.Error("Failed to refresh PriceCatcher data: %v", err)
		return
	}

	logger.Info("✅ Refresh %s: %d processed, %d inserted, %d purged (%.1fs)",
		stats.Status, stats.Processed, stats.Inserted, stats.Purged, stats.ProcessingSeconds)
}
