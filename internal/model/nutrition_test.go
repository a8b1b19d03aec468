package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNutritionOfNeverFails(t *testing.T) {
	cases := map[string]*Recipe{
		"nil recipe":       nil,
		"no nutrition":     {ID: "a"},
		"partial":          {ID: "b", Nutrition: &Nutrition{Calories: 300}},
		"negative and NaN": {ID: "c", Nutrition: &Nutrition{Protein: -4, Fat: math.NaN(), Cost: 2}},
		"infinite":         {ID: "d", Nutrition: &Nutrition{Calories: math.Inf(1), Sugar: math.Inf(-1), Fiber: 5}},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			n := NutritionOf(r)
			for _, v := range []float64{n.Calories, n.Protein, n.Carbs, n.Fat, n.Fiber, n.Sugar, n.Cost} {
				assert.False(t, math.IsNaN(v))
				assert.False(t, math.IsInf(v, 0))
				assert.GreaterOrEqual(t, v, 0.0)
			}
		})
	}

	assert.Equal(t, Nutrition{Cost: 2}, NutritionOf(cases["negative and NaN"]))
	assert.Equal(t, 300.0, NutritionOf(cases["partial"]).Calories)
	assert.Equal(t, Nutrition{Fiber: 5}, NutritionOf(cases["infinite"]))
}

func TestNutritionOfDoesNotAliasRecipe(t *testing.T) {
	r := &Recipe{Nutrition: &Nutrition{Calories: 100}}
	n := NutritionOf(r)
	n.Calories = 1
	assert.Equal(t, 100.0, r.Nutrition.Calories)
}

func TestDeriveNutrientScore(t *testing.T) {
	assert.Equal(t, 100.0, DeriveNutrientScore(Nutrition{Calories: 400, Protein: 30, Fiber: 6}))
	assert.Equal(t, 0.0, DeriveNutrientScore(Nutrition{}))
	assert.Equal(t, 50.0, DeriveNutrientScore(Nutrition{Protein: 10}))

	sugary := DeriveNutrientScore(Nutrition{Calories: 400, Sugar: 40})
	assert.Equal(t, 0.0, sugary)

	mid := DeriveNutrientScore(Nutrition{Calories: 500, Protein: 20, Fiber: 4, Sugar: 10})
	assert.Greater(t, mid, 0.0)
	assert.Less(t, mid, 100.0)
}

func TestRecipeFacetsAndTags(t *testing.T) {
	r := &Recipe{Category: "Dinner", Tags: JSONBStringArray{" Italian ", "pasta", ""}}
	assert.Equal(t, map[string]struct{}{"italian": {}, "pasta": {}, "dinner": {}}, r.Facets())
	assert.True(t, r.HasTag("PASTA"))
	assert.False(t, r.HasTag("soup"))
}

func TestIngredientDisplayName(t *testing.T) {
	assert.Equal(t, "Basil", Ingredient{ID: "42", Name: "Basil"}.DisplayName())
	assert.Equal(t, "42", Ingredient{ID: "42"}.DisplayName())
}
