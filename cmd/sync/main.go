package main

import (
	"context"
	"log"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/belanja-project/backend/internal/config"
	"github.com/belanja-project/backend/internal/db"
	"github.com/belanja-project/backend/internal/models"
	"github.com/belanja-project/backend/internal/opendosm"
	"github.com/belanja-project/backend/internal/services"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("🚀 Starting manual PriceCatcher sync from OpenDOSM...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	if err := pgDB.AutoMigrate(&models.GroceryPrice{}); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		log.Fatalf("failed to start in-memory redis: %v", err)
	}
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client := opendosm.NewClient(cfg)
	cache := services.NewCacheService(redisClient,
		time.Duration(cfg.Services.CacheTTLSeconds)*time.Second, cfg.Services.EnableCaching)
	store := services.NewGormPriceStore(pgDB)
	processor := services.NewPriceProcessor(client, store, cache,
		time.Duration(cfg.OpenDOSM.RefreshIntervalHours)*time.Hour,
		time.Duration(cfg.OpenDOSM.RetentionDays)*24*time.Hour)

	ctx := context.Background()

	stats, err := processor.RefreshAll(ctx)
	if err != nil {
		log.Fatalf("price refresh failed: %v", err)
	}

	var rowCount int64
	if err := pgDB.Model(&models.GroceryPrice{}).Count(&rowCount).Error; err == nil {
		log.Printf("✅ Price observations stored in Postgres: %d", rowCount)
	} else {
		log.Printf("⚠️ Failed to count price observations: %v", err)
	}

	log.Printf("✅ Manual sync completed: %s (%d processed, %d inserted, %d purged).",
		stats.Status, stats.Processed, stats.Inserted, stats.Purged)
}
