/**
 * @description
 * Recipe, Ingredient and MealPlan database models.
 * Back the recipe browsing and budget meal-planning endpoints.
 *
 * @dependencies
 * - gorm.io/gorm (tags only)
 */

package models

import "time"

// Recipe is a Malaysian dish with cost and nutrition per serving
type Recipe struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;uniqueIndex" json:"name"`
	NameBM      string `gorm:"size:100" json:"name_bm"` // Bahasa Malaysia name
	Description string `gorm:"type:text" json:"description"`

	PrepTimeMinutes int    `json:"prep_time_minutes"`
	CookTimeMinutes int    `json:"cook_time_minutes"`
	Servings        int    `gorm:"default:4" json:"servings"`
	DifficultyLevel string `gorm:"size:20;default:medium" json:"difficulty_level"`

	EstimatedCostRM    float64 `json:"estimated_cost_rm"`
	CaloriesPerServing float64 `json:"calories_per_serving"`

	Instructions string `gorm:"type:text" json:"instructions"` // JSON array of steps

	CuisineType  string `gorm:"size:50;default:Malaysian" json:"cuisine_type"`
	IsVegetarian bool   `json:"is_vegetarian"`
	IsHalal      bool   `gorm:"default:true" json:"is_halal"`
	IsPopular    bool   `json:"is_popular"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ingredient is a purchasable ingredient with a reference price
type Ingredient struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;uniqueIndex" json:"name"`
	NameBM   string `gorm:"size:100" json:"name_bm"`
	Category string `gorm:"size:50" json:"category"`

	AvgPriceRM   float64 `json:"avg_price_rm"`
	StandardUnit string  `gorm:"size:20;default:kg" json:"standard_unit"`

	CaloriesPer100g float64 `json:"calories_per_100g"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MealPlan stores a generated budget meal plan for auditing
type MealPlan struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BudgetRM           float64 `gorm:"not null" json:"budget_rm"`
	NumPeople          int     `gorm:"default:1" json:"num_people"`
	DietaryPreferences string  `gorm:"size:200" json:"dietary_preferences"` // JSON array

	SelectedRecipes string  `gorm:"type:text" json:"selected_recipes"` // JSON array of suggestions
	TotalCostRM     float64 `json:"total_cost_rm"`
	CostPerPerson   float64 `json:"cost_per_person"`

	GenerationAlgorithm string `gorm:"size:50" json:"generation_algorithm"`

	CreatedAt time.Time `json:"created_at"`
}
