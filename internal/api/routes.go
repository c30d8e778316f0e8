/**
 * @description
 * API route definitions.
 * Sets up the router groups, constructs the service graph, and assigns handlers.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/api/handlers
 * - backend/internal/api/middleware
 * - backend/internal/services
 * - backend/internal/opendosm
 */

package api

import (
	"log"
	"time"

	"github.com/belanja-project/backend/internal/api/handlers"
	"github.com/belanja-project/backend/internal/api/middleware"
	"github.com/belanja-project/backend/internal/config"
	"github.com/belanja-project/backend/internal/integrations/gemini"
	"github.com/belanja-project/backend/internal/opendosm"
	"github.com/belanja-project/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes configures all API routes.
// rdb may be nil; the cache layer then runs on its in-process fallback.
func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	// 1. Initialize Middleware
	if err := middleware.InitAdminAuth(cfg); err != nil {
		log.Printf("Failed to init admin auth middleware: %v", err)
		// App still starts; admin routes will reject requests.
	}

	// 2. Initialize Services
	client := opendosm.NewClient(cfg)
	cache := services.NewCacheService(rdb, time.Duration(cfg.Services.CacheTTLSeconds)*time.Second, cfg.Services.EnableCaching)
	store := services.NewGormPriceStore(db)
	processor := services.NewPriceProcessor(client, store, cache,
		time.Duration(cfg.OpenDOSM.RefreshIntervalHours)*time.Hour,
		time.Duration(cfg.OpenDOSM.RetentionDays)*24*time.Hour)
	groceryService := services.NewGroceryService(store, processor)
	recipeService := services.NewRecipeService(db)
	mealService := services.NewMealService(db, cache, gemini.NewClient(cfg))

	// 3. Initialize Handlers
	groceryHandler := handlers.NewGroceryHandler(groceryService)
	recipeHandler := handlers.NewRecipeHandler(recipeService)
	mealHandler := handlers.NewMealHandler(mealService)
	adminHandler := handlers.NewAdminHandler(db, cache, processor, client)

	// 4. Define Routes
	apiGroup := app.Group("/api")

	// Health Check (public)
	apiGroup.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Grocery Routes (public)
	grocery := apiGroup.Group("/grocery")
	grocery.Post("/compare", groceryHandler.CompareGroceryPrices)
	grocery.Get("/stores", groceryHandler.GetStores)
	grocery.Get("/items", groceryHandler.SearchItems)

	// Recipe Routes (public)
	// StrictRouting is on, so the list endpoint is registered with and
	// without the trailing slash.
	recipes := apiGroup.Group("/recipes")
	recipes.Get("", recipeHandler.SearchRecipes)
	recipes.Get("/", recipeHandler.SearchRecipes)
	recipes.Get("/:id", recipeHandler.GetRecipe)

	// Meal Planning Routes (public)
	meal := apiGroup.Group("/meal")
	meal.Post("/suggest", mealHandler.SuggestMeals)

	// Admin Routes (read endpoints public, mutations protected)
	admin := apiGroup.Group("/admin")
	admin.Get("/health", adminHandler.Health)
	admin.Get("/opendosm/status", adminHandler.OpenDOSMStatus)
	admin.Get("/cache/stats", adminHandler.CacheStats)
	admin.Post("/refresh", middleware.AdminProtected(), adminHandler.Refresh)
	admin.Post("/cache/clear", middleware.AdminProtected(), adminHandler.CacheClear)
}
