package recommend

import (
	"math"
	"testing"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/preset"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePreferencesFillsDefaults(t *testing.T) {
	p := NormalizePreferences(model.Preferences{})

	for _, list := range [][]string{p.DietaryRestrictions, p.LikedRecipes, p.DislikedRecipes,
		p.LikedFoods, p.DislikedFoods, p.Pantry, p.RecentlyViewed} {
		assert.NotNil(t, list)
		assert.Empty(t, list)
	}
	assert.Equal(t, DefaultExperience, p.Cooking.Experience)
	assert.Equal(t, DefaultBudgetTier, p.Cooking.BudgetTier)
	assert.Equal(t, WeightsForGoal(preset.Healthy), p.Weights)
}

func TestNormalizePreferencesCleansInput(t *testing.T) {
	p := NormalizePreferences(model.Preferences{
		DailyCalories: math.NaN(),
		ProteinGrams:  -5,
		FatGrams:      70,
		Pantry:        []string{" Rice ", "RICE", "", "straße", "STRASSE"},
		LikedRecipes:  []string{"A", "a", "A"},
		FitnessGoal:   "bulk",
		Cooking:       model.CookingConstraints{MaxPrepMinutes: -10, Experience: " Advanced ", BudgetTier: "LUXURY"},
	})

	assert.Zero(t, p.DailyCalories)
	assert.Zero(t, p.ProteinGrams)
	assert.Equal(t, 70.0, p.FatGrams)
	assert.Equal(t, []string{"Rice", "straße"}, p.Pantry)
	assert.Equal(t, []string{"A", "a"}, p.LikedRecipes)
	assert.Equal(t, "advanced", p.Cooking.Experience)
	assert.Equal(t, DefaultBudgetTier, p.Cooking.BudgetTier)
	assert.Zero(t, p.Cooking.MaxPrepMinutes)
	assert.Equal(t, WeightsForGoal(preset.MuscleGain), p.Weights)
}

func TestNormalizePreferencesRescalesCustomWeights(t *testing.T) {
	p := NormalizePreferences(model.Preferences{
		Weights: model.Weights{NutritionalFit: 2, PantryMatch: 2, CostScore: math.Inf(1)},
	})

	assert.InDelta(t, 0.5, p.Weights.NutritionalFit, 1e-9)
	assert.InDelta(t, 0.5, p.Weights.PantryMatch, 1e-9)
	assert.Zero(t, p.Weights.CostScore)
}
