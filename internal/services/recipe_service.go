/**
 * @description
 * Recipe browsing: filtered queries over the relational recipe catalogue.
 *
 * @dependencies
 * - gorm.io/gorm
 * - backend/internal/models
 */

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/belanja-project/backend/internal/models"
	"gorm.io/gorm"
)

// RecipeSearchParams filters a recipe search
type RecipeSearchParams struct {
	Query          string
	MaxCostRM      float64
	VegetarianOnly bool
	HalalOnly      bool
	Limit          int
}

// RecipeService serves recipe queries
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a RecipeService
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// SearchRecipes returns recipes matching the filters, cheapest first
func (s *RecipeService) SearchRecipes(ctx context.Context, params RecipeSearchParams) ([]models.Recipe, error) {
	limit := params.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if term := strings.TrimSpace(params.Query); term != "" {
		pattern := "%" + term + "%"
		query = query.Where("name ILIKE ? OR name_bm ILIKE ?", pattern, pattern)
	}
	if params.MaxCostRM > 0 {
		query = query.Where("estimated_cost_rm <= ?", params.MaxCostRM)
	}
	if params.VegetarianOnly {
		query = query.Where("is_vegetarian = ?", true)
	}
	if params.HalalOnly {
		query = query.Where("is_halal = ?", true)
	}

	var recipes []models.Recipe
	err := query.Order("estimated_cost_rm ASC").Limit(limit).Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetRecipe returns one recipe by ID, or nil when not found
func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).First(&recipe, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
