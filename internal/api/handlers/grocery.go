/**
 * @description
 * Grocery API handlers: price comparison, store directory, item search.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/belanja-project/backend/internal/opendosm"
	"github.com/belanja-project/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// compareDeadline bounds one comparison request end-to-end; past it the
// engine falls through to the synthetic tier.
const compareDeadline = 15 * time.Second

// CompareRequest is the body of POST /api/grocery/compare
type CompareRequest struct {
	Ingredients []string `json:"ingredients"`
	Location    string   `json:"location"`
}

type GroceryHandler struct {
	Service *services.GroceryService
}

func NewGroceryHandler(service *services.GroceryService) *GroceryHandler {
	return &GroceryHandler{Service: service}
}

// CompareGroceryPrices compares ingredient prices across stores
// POST /api/grocery/compare
func (h *GroceryHandler) CompareGroceryPrices(c *fiber.Ctx) error {
	var req CompareRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ingredients := make([]string, 0, len(req.Ingredients))
	for _, ingredient := range req.Ingredients {
		if trimmed := strings.TrimSpace(ingredient); trimmed != "" {
			ingredients = append(ingredients, trimmed)
		}
	}
	if len(ingredients) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "At least one ingredient is required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), compareDeadline)
	defer cancel()

	result, err := h.Service.Compare(ctx, ingredients, req.Location)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compare grocery prices",
		})
	}

	return c.JSON(result)
}

// GetStores lists known stores, from the durable data when present
// GET /api/grocery/stores?state=&chain=
func (h *GroceryHandler) GetStores(c *fiber.Ctx) error {
	state := c.Query("state")
	chain := c.Query("chain")

	stores, err := h.Service.Store.DistinctStores(c.Context(), state, chain)
	if err != nil || len(stores) == 0 {
		// Fall back to the chain directory so the endpoint never 500s on a
		// cold database.
		return c.JSON(fiber.Map{
			"stores": []services.StoreInfo{},
			"chains": opendosm.KnownChains(),
		})
	}

	return c.JSON(fiber.Map{
		"stores": stores,
		"count":  len(stores),
	})
}

// SearchItems looks up recent price records by item name
// GET /api/grocery/items?search=&state=&limit=
func (h *GroceryHandler) SearchItems(c *fiber.Ctx) error {
	search := strings.TrimSpace(c.Query("search"))
	if search == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "search parameter is required",
		})
	}

	limit := c.QueryInt("limit", 20)
	records, err := h.Service.Store.SearchRecent(c.Context(), services.PriceQuery{
		Ingredients: []string{search},
		State:       c.Query("state"),
		Since:       time.Now().Add(-services.DefaultRetention),
		Limit:       limit,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search items",
		})
	}

	return c.JSON(fiber.Map{
		"items": records,
		"count": len(records),
	})
}
