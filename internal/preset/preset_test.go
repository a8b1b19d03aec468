package preset

import (
	"math"
	"testing"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestResolveGoal(t *testing.T) {
	cases := map[string]Goal{
		"Healthy":      Healthy,
		"WeightLoss":   WeightLoss,
		"weight_loss":  WeightLoss,
		"Weight-Loss":  WeightLoss,
		"MuscleGain":   MuscleGain,
		"muscle_gain":  MuscleGain,
		" musclegain ": MuscleGain,
	}
	for in, want := range cases {
		got, ok := ResolveGoal(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	got, ok := ResolveGoal("keto-shred")
	assert.False(t, ok)
	assert.Equal(t, Healthy, got)
}

func TestUnknownGoalFallsBackToHealthy(t *testing.T) {
	assert.Equal(t, DailyCalorieTarget(Healthy), DailyCalorieTarget(Goal("Unknown")))
	assert.Equal(t, MacroPercentages(Healthy), MacroPercentages(Goal("")))
	assert.Equal(t, PresetWeights(Healthy), PresetWeights(Goal("nope")))
}

func TestMacroPercentagesSumToOne(t *testing.T) {
	for _, g := range Goals {
		m := MacroPercentages(g)
		assert.InDelta(t, 1.0, m.Protein+m.Carbs+m.Fat, 1e-9, g)
	}
}

func TestMealBudgetsSumToDailyTarget(t *testing.T) {
	for _, g := range Goals {
		prefs := model.Preferences{RecommendationPreset: string(g)}
		total := 0
		for _, mt := range []string{Breakfast, Lunch, Dinner} {
			total += MealBudget(prefs, mt, true).Calories
		}
		assert.InDelta(t, DailyCalorieTarget(g), float64(total), 3, g)
	}
}

func TestMealBudgetWithoutBreakfast(t *testing.T) {
	prefs := model.Preferences{FitnessGoal: "weight_loss"}
	lunch := MealBudget(prefs, Lunch, false)
	dinner := MealBudget(prefs, Dinner, false)
	assert.Equal(t, 720, lunch.Calories)
	assert.Equal(t, 880, dinner.Calories)
	assert.Equal(t, string(WeightLoss), lunch.Goal)
}

func TestMealBudgetWithSnacks(t *testing.T) {
	prefs := model.Preferences{IncludeSnacks: true}
	total := 0
	for _, mt := range MealTypes(true, true) {
		total += MealBudget(prefs, mt, true).Calories
	}
	assert.InDelta(t, 2000, total, 4)
	assert.Equal(t, 200, MealBudget(prefs, Dessert, true).Calories)
}

func TestMealBudgetUnknownMealTypeGetsAThird(t *testing.T) {
	b := MealBudget(model.Preferences{}, "brunch", true)
	assert.Equal(t, 667, b.Calories)
	assert.InDelta(t, 1.0/3.0, b.Fraction, 1e-12)
}

func TestMealBudgetHonorsOverrides(t *testing.T) {
	prefs := model.Preferences{
		RecommendationPreset: "MuscleGain",
		DailyCalories:        3000,
		ProteinGrams:         200,
	}
	b := MealBudget(prefs, Dinner, true)
	assert.Equal(t, 1200, b.Calories)
	assert.Equal(t, 80, b.Protein)
	// carbs fall back to the preset share of the overridden calories
	assert.Equal(t, int(math.Round(3000*0.45/4*0.40)), b.Carbs)
	assert.Equal(t, int(math.Round(32*0.40)), b.FiberMin)
}

func TestRecommendationPresetWinsOverFitnessGoal(t *testing.T) {
	prefs := model.Preferences{RecommendationPreset: "WeightLoss", FitnessGoal: "MuscleGain"}
	assert.Equal(t, WeightLoss, UserGoal(prefs))
	assert.Equal(t, Healthy, UserGoal(model.Preferences{}))
}

func TestSugarCaps(t *testing.T) {
	bSoft, bHard := SugarCaps(Breakfast)
	lSoft, lHard := SugarCaps(Lunch)
	assert.Greater(t, bSoft, lSoft)
	assert.Greater(t, bHard, lHard)

	sSoft, sHard := SugarCaps(Snack)
	dSoft, dHard := SugarCaps(Dessert)
	assert.Equal(t, []float64{8, 15}, []float64{sSoft, sHard})
	assert.Equal(t, []float64{20, 30}, []float64{dSoft, dHard})

	uSoft, uHard := SugarCaps("mystery")
	assert.Equal(t, lSoft, uSoft)
	assert.Equal(t, lHard, uHard)
}
