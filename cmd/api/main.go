/**
 * @description
 * Main entry point for the Belanja Backend API.
 * Initializes the Fiber web server, loads configuration, and sets up routes.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2: Web framework
 * - github.com/belanja-project/backend/internal/config: Config loader
 * - github.com/belanja-project/backend/internal/db: Database connections
 *
 * @notes
 * - Connects to Postgres and Redis on startup.
 * - Redis is optional: the cache layer falls back to in-process memory.
 * - Sets up basic middleware (CORS, Logger, Recover).
 */

package main

import (
	"log"

	"github.com/belanja-project/backend/internal/api"
	"github.com/belanja-project/backend/internal/config"
	"github.com/belanja-project/backend/internal/db"
	"github.com/belanja-project/backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Database Connections
	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	// Redis (Cache). Optional: memory fallback covers an outage.
	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		log.Printf("⚠️ Redis unavailable, running on in-process cache: %v", err)
		redisClient = nil
	}

	// 3. Migrate & Seed
	if err := pgDB.AutoMigrate(
		&models.GroceryPrice{},
		&models.Recipe{},
		&models.Ingredient{},
		&models.MealPlan{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := db.Seed(pgDB); err != nil {
		log.Printf("⚠️ Failed to seed recipe catalogue: %v", err)
	}

	// 4. Initialize Fiber App
	app := fiber.New(fiber.Config{
		AppName:       "Belanja Grocery API",
		StrictRouting: true,
		CaseSensitive: true,
	})

	// 5. Global Middleware
	app.Use(recover.New()) // Panic recovery
	app.Use(logger.New())  // Request logging
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*", // TODO: Lock this down in production
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// 6. Routes
	api.SetupRoutes(app, pgDB, redisClient, cfg)

	// 7. Start Server
	log.Printf("🚀 Starting Belanja Backend on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
