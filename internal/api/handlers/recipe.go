/**
 * @description
 * Recipe API handlers.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"github.com/belanja-project/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type RecipeHandler struct {
	Service *services.RecipeService
}

func NewRecipeHandler(service *services.RecipeService) *RecipeHandler {
	return &RecipeHandler{Service: service}
}

// SearchRecipes lists recipes matching the query filters
// GET /api/recipes?search=&max_cost=&vegetarian=&halal=&limit=
func (h *RecipeHandler) SearchRecipes(c *fiber.Ctx) error {
	params := services.RecipeSearchParams{
		Query:          c.Query("search"),
		MaxCostRM:      c.QueryFloat("max_cost", 0),
		VegetarianOnly: c.QueryBool("vegetarian", false),
		HalalOnly:      c.QueryBool("halal", false),
		Limit:          c.QueryInt("limit", 20),
	}

	recipes, err := h.Service.SearchRecipes(c.Context(), params)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search recipes",
		})
	}

	return c.JSON(fiber.Map{
		"recipes": recipes,
		"count":   len(recipes),
	})
}

// GetRecipe returns one recipe by ID
// GET /api/recipes/:id
func (h *RecipeHandler) GetRecipe(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid recipe id",
		})
	}

	recipe, err := h.Service.GetRecipe(c.Context(), uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch recipe",
		})
	}
	if recipe == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Recipe not found",
		})
	}

	return c.JSON(recipe)
}
