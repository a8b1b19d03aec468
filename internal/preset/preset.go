// Package preset maps fitness goals to calorie, macro and per-meal nutrition
// targets. Every lookup falls back to the Healthy preset for unknown input.
package preset

import (
	"math"
	"strings"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
)

// Goal is a recognized fitness objective.
type Goal string

const (
	Healthy    Goal = "Healthy"
	WeightLoss Goal = "WeightLoss"
	MuscleGain Goal = "MuscleGain"
)

// Goals lists the built-in presets.
var Goals = []Goal{Healthy, WeightLoss, MuscleGain}

// Meal occasions.
const (
	Breakfast = "breakfast"
	Lunch     = "lunch"
	Dinner    = "dinner"
	Snack     = "snack"
	Dessert   = "dessert"
)

// Calories per gram of each macro.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

var aliases = map[string]Goal{
	"healthy":      Healthy,
	"balanced":     Healthy,
	"maintenance":  Healthy,
	"weightloss":   WeightLoss,
	"weight_loss":  WeightLoss,
	"weight-loss":  WeightLoss,
	"lose_weight":  WeightLoss,
	"cut":          WeightLoss,
	"musclegain":   MuscleGain,
	"muscle_gain":  MuscleGain,
	"muscle-gain":  MuscleGain,
	"build_muscle": MuscleGain,
	"bulk":         MuscleGain,
}

// ResolveGoal maps a goal name or alias to a Goal, ignoring case and
// surrounding space. The second result is false when the name was not
// recognized and Healthy was substituted.
func ResolveGoal(name string) (Goal, bool) {
	g, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Healthy, false
	}
	return g, true
}

// IsKnownGoal reports whether name resolves to a built-in goal.
func IsKnownGoal(name string) bool {
	_, ok := ResolveGoal(name)
	return ok
}

// Macros holds macro fractions of daily calories.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// Tolerance is how far a recipe may stray from a budget before its
// nutrition fit starts decaying, as fractions of the target.
type Tolerance struct {
	Calories float64 `json:"calories"`
	Macros   float64 `json:"macros"`
}

type goalRules struct {
	dailyCalories float64
	macros        Macros
	fiberMin      float64
	tolerance     Tolerance
	weights       model.Weights
}

var rules = map[Goal]goalRules{
	Healthy: {
		dailyCalories: 2000,
		macros:        Macros{Protein: 0.25, Carbs: 0.50, Fat: 0.25},
		fiberMin:      28,
		tolerance:     Tolerance{Calories: 0.15, Macros: 0.25},
		weights: model.Weights{
			NutritionalFit:    0.30,
			SimilarityToLikes: 0.20,
			VarietyBoost:      0.15,
			PantryMatch:       0.15,
			CostScore:         0.10,
			RecencyPenalty:    0.10,
		},
	},
	WeightLoss: {
		dailyCalories: 1600,
		macros:        Macros{Protein: 0.35, Carbs: 0.40, Fat: 0.25},
		fiberMin:      30,
		tolerance:     Tolerance{Calories: 0.10, Macros: 0.25},
		weights: model.Weights{
			NutritionalFit:    0.40,
			SimilarityToLikes: 0.15,
			VarietyBoost:      0.10,
			PantryMatch:       0.10,
			CostScore:         0.10,
			RecencyPenalty:    0.15,
		},
	},
	MuscleGain: {
		dailyCalories: 2600,
		macros:        Macros{Protein: 0.30, Carbs: 0.45, Fat: 0.25},
		fiberMin:      32,
		tolerance:     Tolerance{Calories: 0.20, Macros: 0.25},
		weights: model.Weights{
			NutritionalFit:    0.35,
			SimilarityToLikes: 0.20,
			VarietyBoost:      0.10,
			PantryMatch:       0.15,
			CostScore:         0.10,
			RecencyPenalty:    0.10,
		},
	},
}

func lookup(goal Goal) goalRules {
	if r, ok := rules[goal]; ok {
		return r
	}
	return rules[Healthy]
}

// DailyCalorieTarget returns the goal's daily calories.
func DailyCalorieTarget(goal Goal) float64 {
	return lookup(goal).dailyCalories
}

// MacroPercentages returns the goal's protein/carbs/fat split of calories.
func MacroPercentages(goal Goal) Macros {
	return lookup(goal).macros
}

// FiberMinimum returns the goal's daily fiber floor in grams.
func FiberMinimum(goal Goal) float64 {
	return lookup(goal).fiberMin
}

// ToleranceFor returns the goal's nutrition tolerance band.
func ToleranceFor(goal Goal) Tolerance {
	return lookup(goal).tolerance
}

// PresetWeights returns the goal's raw recommendation weights.
func PresetWeights(goal Goal) model.Weights {
	return lookup(goal).weights
}

// SugarCaps returns the soft and hard sugar caps in grams for one meal.
func SugarCaps(mealType string) (soft, hard float64) {
	switch normalizeMealType(mealType) {
	case Breakfast:
		return 15, 25
	case Snack:
		return 8, 15
	case Dessert:
		return 20, 30
	default:
		return 10, 20
	}
}

var (
	splitWithBreakfast = map[string]float64{
		Breakfast: 0.25,
		Lunch:     0.35,
		Dinner:    0.40,
	}
	splitWithoutBreakfast = map[string]float64{
		Lunch:  0.45,
		Dinner: 0.55,
	}
	splitWithSnacks = map[string]float64{
		Breakfast: 0.25,
		Lunch:     0.30,
		Dinner:    0.35,
		Snack:     0.10,
	}
	splitSnacksWithoutBreakfast = map[string]float64{
		Lunch:  0.40,
		Dinner: 0.50,
		Snack:  0.10,
	}
)

// MealFraction returns the share of daily targets allotted to mealType.
// Unknown meal types get a third of the day.
func MealFraction(mealType string, includeBreakfast, includeSnacks bool) float64 {
	var table map[string]float64
	switch {
	case includeSnacks && includeBreakfast:
		table = splitWithSnacks
	case includeSnacks:
		table = splitSnacksWithoutBreakfast
	case includeBreakfast:
		table = splitWithBreakfast
	default:
		table = splitWithoutBreakfast
	}

	mt := normalizeMealType(mealType)
	if mt == Dessert {
		mt = Snack
	}
	if f, ok := table[mt]; ok {
		return f
	}
	return 1.0 / 3.0
}

// MealTypes returns the meal occasions planned for a day.
func MealTypes(includeBreakfast, includeSnacks bool) []string {
	out := make([]string, 0, 4)
	if includeBreakfast {
		out = append(out, Breakfast)
	}
	out = append(out, Lunch, Dinner)
	if includeSnacks {
		out = append(out, Snack)
	}
	return out
}

// UserGoal resolves the goal a preferences profile asks for. The named
// recommendation preset wins over the fitness goal.
func UserGoal(prefs model.Preferences) Goal {
	for _, name := range []string{prefs.RecommendationPreset, prefs.FitnessGoal} {
		if strings.TrimSpace(name) == "" {
			continue
		}
		g, _ := ResolveGoal(name)
		return g
	}
	return Healthy
}

// DailyTargets resolves a user's daily calories and macro grams, honoring
// explicit overrides.
func DailyTargets(prefs model.Preferences) (calories, protein, carbs, fat float64) {
	goal := UserGoal(prefs)

	calories = prefs.DailyCalories
	if calories <= 0 {
		calories = DailyCalorieTarget(goal)
	}

	pct := MacroPercentages(goal)
	protein = prefs.ProteinGrams
	if protein <= 0 {
		protein = calories * pct.Protein / kcalPerGramProtein
	}
	carbs = prefs.CarbsGrams
	if carbs <= 0 {
		carbs = calories * pct.Carbs / kcalPerGramCarbs
	}
	fat = prefs.FatGrams
	if fat <= 0 {
		fat = calories * pct.Fat / kcalPerGramFat
	}
	return calories, protein, carbs, fat
}

// MealBudget derives the nutrition budget for one meal occasion.
func MealBudget(prefs model.Preferences, mealType string, includeBreakfast bool) model.MealBudget {
	goal := UserGoal(prefs)
	calories, protein, carbs, fat := DailyTargets(prefs)
	fraction := MealFraction(mealType, includeBreakfast, prefs.IncludeSnacks)
	soft, hard := SugarCaps(mealType)

	return model.MealBudget{
		Goal:         string(goal),
		MealType:     normalizeMealType(mealType),
		Fraction:     fraction,
		Calories:     round(calories * fraction),
		Protein:      round(protein * fraction),
		Carbs:        round(carbs * fraction),
		Fat:          round(fat * fraction),
		FiberMin:     round(FiberMinimum(goal) * fraction),
		SugarSoftCap: soft,
		SugarHardCap: hard,
	}
}

func normalizeMealType(mealType string) string {
	mt := strings.ToLower(strings.TrimSpace(mealType))
	switch mt {
	case "snacks":
		return Snack
	case "desserts":
		return Dessert
	}
	return mt
}

func round(v float64) int {
	return int(math.Round(v))
}
