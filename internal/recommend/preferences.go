package recommend

import (
	"strings"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/preset"
	"golang.org/x/text/cases"
)

// Cooking constraint defaults.
const (
	DefaultExperience = "beginner"
	DefaultBudgetTier = "medium"
)

// NormalizePreferences returns a fully populated copy of prefs: lists are
// trimmed, de-duplicated and never nil, cooking constraints carry their
// defaults, and the weight vector sums to 1.0 (the goal preset when unset).
func NormalizePreferences(prefs model.Preferences) model.Preferences {
	out := prefs

	out.DietaryRestrictions = cleanList(prefs.DietaryRestrictions, true)
	out.LikedRecipes = cleanList(prefs.LikedRecipes, false)
	out.DislikedRecipes = cleanList(prefs.DislikedRecipes, false)
	out.LikedFoods = cleanList(prefs.LikedFoods, true)
	out.DislikedFoods = cleanList(prefs.DislikedFoods, true)
	out.Pantry = cleanList(prefs.Pantry, true)
	out.RecentlyViewed = cleanList(prefs.RecentlyViewed, false)

	out.AuthorStyle = strings.TrimSpace(prefs.AuthorStyle)

	for _, v := range []*float64{&out.DailyCalories, &out.ProteinGrams, &out.CarbsGrams, &out.FatGrams} {
		if !usable(*v) {
			*v = 0
		}
	}

	switch strings.ToLower(strings.TrimSpace(prefs.Cooking.Experience)) {
	case "intermediate", "advanced":
		out.Cooking.Experience = strings.ToLower(strings.TrimSpace(prefs.Cooking.Experience))
	default:
		out.Cooking.Experience = DefaultExperience
	}
	if _, ok := costCeilings[strings.ToLower(strings.TrimSpace(prefs.Cooking.BudgetTier))]; ok {
		out.Cooking.BudgetTier = strings.ToLower(strings.TrimSpace(prefs.Cooking.BudgetTier))
	} else {
		out.Cooking.BudgetTier = DefaultBudgetTier
	}
	if out.Cooking.MaxPrepMinutes < 0 {
		out.Cooking.MaxPrepMinutes = 0
	}

	if !anyPositive(prefs.Weights) {
		out.Weights = WeightsForGoal(preset.UserGoal(prefs))
	} else {
		out.Weights = Normalize(prefs.Weights)
	}
	return out
}

// cleanList trims entries and drops blanks and duplicates, keeping the first
// occurrence. With fold set, duplicates are detected under Unicode case folding.
func cleanList(in []string, fold bool) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	folder := cases.Fold()
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := v
		if fold {
			key = folder.String(v)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func anyPositive(w model.Weights) bool {
	for _, v := range WeightsToMap(w) {
		if usable(v) && v > 0 {
			return true
		}
	}
	return false
}
