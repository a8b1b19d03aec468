// Package mealplan builds multi-day meal plans from recommendations and turns
// planned recipes into a shopping list.
package mealplan

import (
	"context"
	"fmt"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/preset"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/recommend"
	"go.uber.org/zap"
)

// Plan length limits in days.
const (
	DefaultDays = 7
	MaxDays     = 14
)

// Recommender ranks recipes for one meal occasion.
type Recommender interface {
	GetRecommendations(ctx context.Context, req recommend.Request) ([]model.ScoredRecipe, error)
}

// PlannedMeal is one meal slot. Recipe is nil when nothing eligible was left.
type PlannedMeal struct {
	MealType string              `json:"meal_type"`
	Recipe   *model.ScoredRecipe `json:"recipe"`
}

// DayPlan holds the meals of one day, in serving order.
type DayPlan struct {
	Day   int           `json:"day"`
	Meals []PlannedMeal `json:"meals"`
}

// WeekPlan is a plan over consecutive days.
type WeekPlan struct {
	Days []DayPlan `json:"days"`
}

// Recipes returns every planned recipe in plan order.
func (w *WeekPlan) Recipes() []model.Recipe {
	var out []model.Recipe
	for _, d := range w.Days {
		for _, m := range d.Meals {
			if m.Recipe != nil {
				out = append(out, m.Recipe.Recipe)
			}
		}
	}
	return out
}

// Planner fills meal slots with the top recommendation for each occasion.
type Planner struct {
	recommender Recommender
	logger      *zap.Logger
}

// NewPlanner creates a new Planner instance
func NewPlanner(recommender Recommender, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{recommender: recommender, logger: logger}
}

// BuildWeek plans days days (DefaultDays when out of range) of the meal
// occasions prefs asks for. A recipe is planned at most once per plan, and
// the recipes of the same day count as already picked for variety.
func (p *Planner) BuildWeek(ctx context.Context, userID string, prefs model.Preferences, days int) (*WeekPlan, error) {
	if days <= 0 || days > MaxDays {
		days = DefaultDays
	}
	mealTypes := preset.MealTypes(!prefs.SkipBreakfast, prefs.IncludeSnacks)

	plan := &WeekPlan{Days: make([]DayPlan, 0, days)}
	var planned []string
	for day := 1; day <= days; day++ {
		dp := DayPlan{Day: day, Meals: make([]PlannedMeal, 0, len(mealTypes))}
		var today []model.Recipe

		for _, mt := range mealTypes {
			recs, err := p.recommender.GetRecommendations(ctx, recommend.Request{
				UserID:     userID,
				Prefs:      prefs,
				MealType:   mt,
				Count:      1,
				ExcludeIDs: planned,
				Existing:   today,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to plan day %d %s: %w", day, mt, err)
			}

			meal := PlannedMeal{MealType: mt}
			if len(recs) > 0 {
				pick := recs[0]
				meal.Recipe = &pick
				planned = append(planned, pick.ID)
				today = append(today, pick.Recipe)
			} else {
				p.logger.Debug("no recipe left for meal slot", zap.Int("day", day), zap.String("meal_type", mt))
			}
			dp.Meals = append(dp.Meals, meal)
		}
		plan.Days = append(plan.Days, dp)
	}
	return plan, nil
}
