/**
 * @description
 * Seed data for the recipe and ingredient catalogue.
 * Gives the meal-planning fallback tier content on a cold database.
 *
 * @dependencies
 * - gorm.io/gorm
 * - backend/internal/models
 *
 * @notes
 * - Idempotent: skips seeding when recipes already exist.
 */

package db

import (
	"github.com/belanja-project/backend/internal/logger"
	"github.com/belanja-project/backend/internal/models"
	"gorm.io/gorm"
)

var seedIngredients = []models.Ingredient{
	{Name: "Rice", NameBM: "Beras", Category: "Grains", AvgPriceRM: 2.50, StandardUnit: "kg", CaloriesPer100g: 130},
	{Name: "Chicken Breast", NameBM: "Daging Ayam", Category: "Meat", AvgPriceRM: 12.50, StandardUnit: "kg", CaloriesPer100g: 165},
	{Name: "Coconut Milk", NameBM: "Santan", Category: "Cooking", AvgPriceRM: 2.90, StandardUnit: "can", CaloriesPer100g: 230},
	{Name: "Onion", NameBM: "Bawang", Category: "Vegetables", AvgPriceRM: 4.20, StandardUnit: "kg", CaloriesPer100g: 40},
	{Name: "Garlic", NameBM: "Bawang Putih", Category: "Vegetables", AvgPriceRM: 20.00, StandardUnit: "kg", CaloriesPer100g: 149},
	{Name: "Chili", NameBM: "Cili", Category: "Spices", AvgPriceRM: 8.00, StandardUnit: "kg", CaloriesPer100g: 40},
	{Name: "Anchovies", NameBM: "Ikan Bilis", Category: "Seafood", AvgPriceRM: 25.00, StandardUnit: "kg", CaloriesPer100g: 210},
	{Name: "Peanuts", NameBM: "Kacang Tanah", Category: "Nuts", AvgPriceRM: 8.00, StandardUnit: "kg", CaloriesPer100g: 567},
	{Name: "Cucumber", NameBM: "Timun", Category: "Vegetables", AvgPriceRM: 3.50, StandardUnit: "kg", CaloriesPer100g: 15},
	{Name: "Beef", NameBM: "Daging Lembu", Category: "Meat", AvgPriceRM: 35.00, StandardUnit: "kg", CaloriesPer100g: 250},
	{Name: "Cooking Oil", NameBM: "Minyak Masak", Category: "Cooking", AvgPriceRM: 6.80, StandardUnit: "liter", CaloriesPer100g: 884},
}

var seedRecipes = []models.Recipe{
	{
		Name: "Nasi Lemak", NameBM: "Nasi Lemak",
		Description:     "Coconut rice with sambal, anchovies, peanuts and cucumber",
		PrepTimeMinutes: 20, CookTimeMinutes: 40, Servings: 4, DifficultyLevel: "medium",
		EstimatedCostRM: 8.50, CaloriesPerServing: 644,
		Instructions: `["Rinse rice and cook with coconut milk and pandan","Fry anchovies and peanuts","Prepare sambal","Serve with cucumber and egg"]`,
		IsHalal:      true, IsPopular: true,
	},
	{
		Name: "Ayam Goreng Berempah", NameBM: "Ayam Goreng Berempah",
		Description:     "Spiced fried chicken",
		PrepTimeMinutes: 30, CookTimeMinutes: 25, Servings: 4, DifficultyLevel: "easy",
		EstimatedCostRM: 14.00, CaloriesPerServing: 420,
		Instructions: `["Marinate chicken in spice paste","Rest for 20 minutes","Deep fry until golden"]`,
		IsHalal:      true, IsPopular: true,
	},
	{
		Name: "Nasi Goreng Kampung", NameBM: "Nasi Goreng Kampung",
		Description:     "Village-style fried rice with anchovies",
		PrepTimeMinutes: 15, CookTimeMinutes: 15, Servings: 4, DifficultyLevel: "easy",
		EstimatedCostRM: 6.00, CaloriesPerServing: 380,
		Instructions: `["Fry anchovies","Saute aromatics","Stir in rice and season"]`,
		IsHalal:      true, IsPopular: true,
	},
	{
		Name: "Sayur Lodeh", NameBM: "Sayur Lodeh",
		Description:     "Vegetables simmered in coconut gravy",
		PrepTimeMinutes: 15, CookTimeMinutes: 25, Servings: 4, DifficultyLevel: "easy",
		EstimatedCostRM: 7.20, CaloriesPerServing: 210,
		Instructions: `["Blend spice paste","Simmer vegetables in coconut milk"]`,
		IsVegetarian: true, IsHalal: true,
	},
	{
		Name: "Rendang Daging", NameBM: "Rendang Daging",
		Description:     "Slow-cooked dry beef curry",
		PrepTimeMinutes: 30, CookTimeMinutes: 180, Servings: 6, DifficultyLevel: "hard",
		EstimatedCostRM: 28.00, CaloriesPerServing: 510,
		Instructions: `["Blend rempah","Brown beef","Simmer with coconut milk until dry"]`,
		IsHalal:      true, IsPopular: true,
	},
}

// Seed populates the recipe catalogue on a fresh database
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Recipe{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := db.Create(&seedIngredients).Error; err != nil {
		return err
	}
	if err := db.Create(&seedRecipes).Error; err != nil {
		return err
	}

	logger.Info("🌱 Seeded %d recipes and %d ingredients", len(seedRecipes), len(seedIngredients))
	return nil
}
