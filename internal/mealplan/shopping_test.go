package mealplan

import (
	"testing"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestShoppingList(t *testing.T) {
	recipes := []model.Recipe{
		{ID: "r1", Ingredients: []model.Ingredient{
			{ID: "1", Name: "Tomato", Amount: 2, Unit: "pc"},
			{ID: "2", Name: "Olive Oil", Amount: 2, Unit: "tbsp"},
			{ID: "3", Name: "Basil", Amount: 1, Unit: "bunch"},
		}},
		{ID: "r2", Ingredients: []model.Ingredient{
			{ID: "4", Name: "tomato", Amount: 3, Unit: "PC"},
			{ID: "5", Name: "Tomato", Amount: 400, Unit: "g"},
			{ID: "6", Name: "chickpeas", Amount: 1, Unit: "can"},
		}},
	}

	list := ShoppingList(recipes, []string{"olive oil", " Chickpeas "})

	assert.Equal(t, []ShoppingItem{
		{Name: "Basil", Amount: 1, Unit: "bunch", Recipes: []string{"r1"}},
		{Name: "Tomato", Amount: 400, Unit: "g", Recipes: []string{"r2"}},
		{Name: "Tomato", Amount: 5, Unit: "pc", Recipes: []string{"r1", "r2"}},
	}, list)
}

func TestShoppingListFallsBackToIngredientID(t *testing.T) {
	list := ShoppingList([]model.Recipe{{ID: "r1", Ingredients: []model.Ingredient{{ID: "rice", Amount: 1, Unit: "cup"}}}}, nil)

	assert.Equal(t, []ShoppingItem{{Name: "rice", Amount: 1, Unit: "cup", Recipes: []string{"r1"}}}, list)
	assert.Empty(t, ShoppingList(nil, nil))
}
