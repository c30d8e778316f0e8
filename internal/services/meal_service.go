/**
 * @description
 * Budget meal planning.
 * Tries AI-generated suggestions first (cached), then falls back to a
 * relational filter over the recipe catalogue. AI absence or malformed AI
 * output must never surface as an error.
 *
 * @dependencies
 * - backend/internal/integrations/gemini
 * - gorm.io/gorm
 * - github.com/shopspring/decimal
 */

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/belanja-project/backend/internal/integrations/gemini"
	"github.com/belanja-project/backend/internal/logger"
	"github.com/belanja-project/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxMealSuggestions = 10

// MealSuggestion is one proposed dish within budget
type MealSuggestion struct {
	RecipeID           uint    `json:"recipe_id"`
	Name               string  `json:"name"`
	NameBM             string  `json:"name_bm,omitempty"`
	Description        string  `json:"description"`
	EstimatedCostRM    float64 `json:"estimated_cost_rm"`
	CostPerPerson      float64 `json:"cost_per_person"`
	CaloriesPerServing float64 `json:"calories_per_serving"`
	PrepTimeMinutes    int     `json:"prep_time_minutes"`
	CookTimeMinutes    int     `json:"cook_time_minutes"`
	DifficultyLevel    string  `json:"difficulty_level"`
	Servings           int     `json:"servings"`
	IsVegetarian       bool    `json:"is_vegetarian"`
	IsHalal            bool    `json:"is_halal"`
}

// MealPlanResponse wraps the suggestions with request context
type MealPlanResponse struct {
	BudgetRM             float64          `json:"budget_rm"`
	NumPeople            int              `json:"num_people"`
	Suggestions          []MealSuggestion `json:"suggestions"`
	AverageCostPerPerson float64          `json:"average_cost_per_person"`
	GeneratedBy          string           `json:"generated_by"` // "ai" or "database"
}

// MealService produces budget-based meal plans
type MealService struct {
	db    *gorm.DB
	cache *CacheService
	ai    *gemini.Client
}

// NewMealService creates a MealService. ai may be nil or unconfigured.
func NewMealService(db *gorm.DB, cache *CacheService, ai *gemini.Client) *MealService {
	return &MealService{db: db, cache: cache, ai: ai}
}

// SuggestMeals returns dishes within budget for the requested party size
func (s *MealService) SuggestMeals(ctx context.Context, budgetRM float64, numPeople int, preferences []string) (*MealPlanResponse, error) {
	if numPeople < 1 {
		numPeople = 1
	}

	cacheKey := MealPlanKey(map[string]string{
		"budget": fmt.Sprintf("%.2f", budgetRM),
		"people": fmt.Sprintf("%d", numPeople),
		"prefs":  strings.Join(preferences, ","),
	})

	var cached MealPlanResponse
	if s.cache != nil && s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	resp := s.aiSuggestions(ctx, budgetRM, numPeople, preferences)
	if resp == nil {
		var err error
		resp, err = s.databaseSuggestions(ctx, budgetRM, numPeople, preferences)
		if err != nil {
			return nil, err
		}
	}

	s.persistPlan(ctx, resp, preferences)
	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, resp, 0)
	}
	return resp, nil
}

// aiSuggestions asks Gemini for a JSON meal plan. Any failure (no key,
// transport, malformed output) returns nil so the caller falls back.
func (s *MealService) aiSuggestions(ctx context.Context, budgetRM float64, numPeople int, preferences []string) *MealPlanResponse {
	if s.ai == nil || !s.ai.Available() {
		return nil
	}

	prompt := fmt.Sprintf(
		"Suggest Malaysian dishes for %d people within a total budget of RM %.2f. "+
			"Dietary preferences: %s. "+
			`Respond with only a JSON array of objects with keys: "name", "name_bm", "description", "estimated_cost_rm", "calories_per_serving", "prep_time_minutes", "cook_time_minutes".`,
		numPeople, budgetRM, strings.Join(preferences, ", "))

	text, err := s.ai.Generate(ctx, prompt)
	if err != nil {
		logger.Error("AI meal planning failed, falling back to database: %v", err)
		return nil
	}

	var aiMeals []struct {
		Name               string  `json:"name"`
		NameBM             string  `json:"name_bm"`
		Description        string  `json:"description"`
		EstimatedCostRM    float64 `json:"estimated_cost_rm"`
		CaloriesPerServing float64 `json:"calories_per_serving"`
		PrepTimeMinutes    int     `json:"prep_time_minutes"`
		CookTimeMinutes    int     `json:"cook_time_minutes"`
	}
	if err := json.Unmarshal([]byte(extractJSONArray(cleanJSONFence(text))), &aiMeals); err != nil {
		logger.Error("AI meal plan decode failed, falling back to database: %v", err)
		return nil
	}
	if len(aiMeals) == 0 {
		return nil
	}

	suggestions := make([]MealSuggestion, 0, len(aiMeals))
	for _, meal := range aiMeals {
		if meal.Name == "" || meal.EstimatedCostRM <= 0 || meal.EstimatedCostRM > budgetRM {
			continue
		}
		suggestions = append(suggestions, MealSuggestion{
			Name:               meal.Name,
			NameBM:             meal.NameBM,
			Description:        meal.Description,
			EstimatedCostRM:    meal.EstimatedCostRM,
			CostPerPerson:      round2(meal.EstimatedCostRM / float64(numPeople)),
			CaloriesPerServing: meal.CaloriesPerServing,
			PrepTimeMinutes:    meal.PrepTimeMinutes,
			CookTimeMinutes:    meal.CookTimeMinutes,
			DifficultyLevel:    "medium",
			Servings:           numPeople,
			IsVegetarian:       containsFold(preferences, "vegetarian"),
			IsHalal:            true,
		})
		if len(suggestions) >= maxMealSuggestions {
			break
		}
	}
	if len(suggestions) == 0 {
		return nil
	}

	logger.Info("🧠 Generated %d AI meal suggestions", len(suggestions))
	return &MealPlanResponse{
		BudgetRM:             budgetRM,
		NumPeople:            numPeople,
		Suggestions:          suggestions,
		AverageCostPerPerson: averageCostPerPerson(suggestions),
		GeneratedBy:          "ai",
	}
}

// databaseSuggestions filters the recipe catalogue by budget and preferences
func (s *MealService) databaseSuggestions(ctx context.Context, budgetRM float64, numPeople int, preferences []string) (*MealPlanResponse, error) {
	logger.Info("📚 Using database recipe suggestions")

	query := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("estimated_cost_rm <= ?", budgetRM)

	if containsFold(preferences, "vegetarian") {
		query = query.Where("is_vegetarian = ?", true)
	}
	if containsFold(preferences, "halal") {
		query = query.Where("is_halal = ?", true)
	}

	var recipes []models.Recipe
	if err := query.Order("estimated_cost_rm ASC").Limit(maxMealSuggestions).Find(&recipes).Error; err != nil {
		return nil, err
	}

	suggestions := make([]MealSuggestion, 0, len(recipes))
	for _, recipe := range recipes {
		suggestions = append(suggestions, MealSuggestion{
			RecipeID:           recipe.ID,
			Name:               recipe.Name,
			NameBM:             recipe.NameBM,
			Description:        recipe.Description,
			EstimatedCostRM:    recipe.EstimatedCostRM,
			CostPerPerson:      round2(recipe.EstimatedCostRM / float64(numPeople)),
			CaloriesPerServing: recipe.CaloriesPerServing,
			PrepTimeMinutes:    recipe.PrepTimeMinutes,
			CookTimeMinutes:    recipe.CookTimeMinutes,
			DifficultyLevel:    recipe.DifficultyLevel,
			Servings:           recipe.Servings,
			IsVegetarian:       recipe.IsVegetarian,
			IsHalal:            recipe.IsHalal,
		})
	}

	return &MealPlanResponse{
		BudgetRM:             budgetRM,
		NumPeople:            numPeople,
		Suggestions:          suggestions,
		AverageCostPerPerson: averageCostPerPerson(suggestions),
		GeneratedBy:          "database",
	}, nil
}

// persistPlan records the generated plan for auditing; failures are logged only
func (s *MealService) persistPlan(ctx context.Context, resp *MealPlanResponse, preferences []string) {
	if s.db == nil || len(resp.Suggestions) == 0 {
		return
	}

	selected, _ := json.Marshal(resp.Suggestions)
	prefs, _ := json.Marshal(preferences)

	total := decimal.Zero
	for _, suggestion := range resp.Suggestions {
		total = total.Add(decimal.NewFromFloat(suggestion.EstimatedCostRM))
	}

	plan := models.MealPlan{
		BudgetRM:            resp.BudgetRM,
		NumPeople:           resp.NumPeople,
		DietaryPreferences:  string(prefs),
		SelectedRecipes:     string(selected),
		TotalCostRM:         total.Round(2).InexactFloat64(),
		CostPerPerson:       round2(total.InexactFloat64() / float64(resp.NumPeople)),
		GenerationAlgorithm: "budget_optimizer_" + resp.GeneratedBy,
	}
	if err := s.db.WithContext(ctx).Create(&plan).Error; err != nil {
		logger.Error("Failed to persist meal plan: %v", err)
	}
}

func averageCostPerPerson(suggestions []MealSuggestion) float64 {
	if len(suggestions) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, suggestion := range suggestions {
		sum = sum.Add(decimal.NewFromFloat(suggestion.CostPerPerson))
	}
	return sum.Div(decimal.NewFromInt(int64(len(suggestions)))).Round(2).InexactFloat64()
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

// cleanJSONFence strips markdown code fences from model output
func cleanJSONFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractJSONArray pulls the first top-level JSON array from a string
func extractJSONArray(s string) string {
	start := strings.IndexByte(s, '[')
	if start == -1 {
		return s
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return s
}
