package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"go.uber.org/zap"
)

// CostPerIngredient is the cost estimate used when a recipe carries none.
const CostPerIngredient = 1.25

// ErrMissingNutrientScore is returned by ValidateNutrientScores.
var ErrMissingNutrientScore = errors.New("recipe has no nutrient score")

// NutritionService fills in missing nutrition, cost and nutrient scores.
type NutritionService struct {
	llm    LLMClient
	logger *zap.Logger
}

// NewNutritionService creates a new NutritionService instance. Without an LLM
// client missing macros stay at zero.
func NewNutritionService(llm LLMClient, logger *zap.Logger) *NutritionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NutritionService{llm: llm, logger: logger}
}

// EnsureNutritionAndCost returns copies of recipes with complete nutrition.
// Recipes without any nutrition are estimated by the LLM when one is
// configured; an estimation failure leaves zeros. Only a cancelled context is
// reported as an error.
func (s *NutritionService) EnsureNutritionAndCost(ctx context.Context, recipes []model.Recipe) ([]model.Recipe, error) {
	out := make([]model.Recipe, len(recipes))
	for i := range recipes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := recipes[i]
		if s.llm != nil && model.NutritionOf(&r).IsZero() && len(r.Ingredients) > 0 {
			s.estimate(ctx, &r)
		}
		out[i] = r
	}
	return ApplyNutritionDefaults(out), nil
}

func (s *NutritionService) estimate(ctx context.Context, r *model.Recipe) {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, fmt.Sprintf("%g %s %s", ing.Amount, ing.Unit, ing.DisplayName()))
	}
	macros, err := CalculateMacros(ctx, s.llm, names, r.Servings)
	if err != nil {
		s.logger.Warn("nutrition estimate failed", zap.String("recipe_id", r.ID), zap.Error(err))
		return
	}
	r.Nutrition = &model.Nutrition{
		Calories: macros.Calories,
		Protein:  macros.Protein,
		Carbs:    macros.Carbs,
		Fat:      macros.Fat,
		Fiber:    macros.Fiber,
		Sugar:    macros.Sugar,
	}
}

// ApplyNutritionDefaults gives every recipe a non-nil nutrition record with
// non-negative fields, an estimated cost when none is known, and a nutrient
// score derived from its macros when none was precomputed. The input slice is
// modified in place and returned.
func ApplyNutritionDefaults(recipes []model.Recipe) []model.Recipe {
	for i := range recipes {
		r := &recipes[i]
		n := model.NutritionOf(r)
		if n.Cost == 0 && len(r.Ingredients) > 0 {
			n.Cost = CostPerIngredient * float64(len(r.Ingredients))
		}
		r.Nutrition = &n
		if r.NutrientScore == nil {
			score := model.DeriveNutrientScore(n)
			r.NutrientScore = &score
		}
	}
	return recipes
}

// ValidateNutrientScores fails on the first recipe without a nutrient score.
func ValidateNutrientScores(recipes []model.Recipe) error {
	for _, r := range recipes {
		if r.NutrientScore == nil {
			return fmt.Errorf("%w: %s", ErrMissingNutrientScore, r.ID)
		}
	}
	return nil
}
