package mocks

import (
	"context"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockCatalog is a mock implementation of the recipe catalog
type MockCatalog struct {
	mock.Mock
}

// ListRecipes mocks the ListRecipes method
func (m *MockCatalog) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

// GetRecipe mocks the GetRecipe method
func (m *MockCatalog) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// MockEnricher is a mock implementation of the nutrition enricher
type MockEnricher struct {
	mock.Mock
}

// EnsureNutritionAndCost mocks the EnsureNutritionAndCost method
func (m *MockEnricher) EnsureNutritionAndCost(ctx context.Context, recipes []model.Recipe) ([]model.Recipe, error) {
	args := m.Called(ctx, recipes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

// MockCoLikes is a mock implementation of the collaborative score source
type MockCoLikes struct {
	mock.Mock
}

// CoLikeScores mocks the CoLikeScores method
func (m *MockCoLikes) CoLikeScores(ctx context.Context, userID string, likedRecipeIDs []string) (map[string]float64, error) {
	args := m.Called(ctx, userID, likedRecipeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}
