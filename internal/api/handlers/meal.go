/**
 * @description
 * Meal planning API handlers.
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

// MealSuggestionRequest is the body of POST /api/meal/suggest
type MealSuggestionRequest struct {
	BudgetRM           float64  `json:"budget_rm"`
	NumPeople          int      `json:"num_people"`
	DietaryPreferences []string `json:"dietary_preferences"`
}

type MealHandler struct {
	Service *services.MealService
}

func NewMealHandler(service *services.MealService) *MealHandler {
	return &MealHandler{Service: service}
}

// SuggestMeals returns budget-based meal suggestions
// POST /api/meal/suggest
func (h *MealHandler) SuggestMeals(c *fiber.Ctx) error {
	var req MealSuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.BudgetRM <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "budget_rm must be positive",
		})
	}
	if req.NumPeople <= 0 {
		req.NumPeople = 1
	}

	plan, err := h.Service.SuggestMeals(c.Context(), req.BudgetRM, req.NumPeople, req.DietaryPreferences)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate meal suggestions",
		})
	}

	return c.JSON(plan)
}
