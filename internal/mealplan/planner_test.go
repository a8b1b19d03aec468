package mealplan

import (
	"context"
	"errors"
	"testing"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/mocks"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/recommend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRecommender struct {
	mock.Mock
}

func (m *mockRecommender) GetRecommendations(ctx context.Context, req recommend.Request) ([]model.ScoredRecipe, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScoredRecipe), args.Error(1)
}

func meal(id, category string) model.Recipe {
	return model.Recipe{ID: id, Title: "Recipe " + id, Category: category}
}

func slotIDs(plan *WeekPlan) [][]string {
	out := make([][]string, len(plan.Days))
	for i, d := range plan.Days {
		for _, m := range d.Meals {
			id := ""
			if m.Recipe != nil {
				id = m.Recipe.ID
			}
			out[i] = append(out[i], m.MealType+":"+id)
		}
	}
	return out
}

func TestBuildWeekNeverRepeatsARecipe(t *testing.T) {
	catalog := new(mocks.MockCatalog)
	catalog.On("ListRecipes", mock.Anything).Return([]model.Recipe{
		meal("b1", "breakfast"), meal("b2", "breakfast"),
		meal("l1", "lunch"), meal("l2", "lunch"),
		meal("d1", "dinner"),
	}, nil)
	engine := recommend.NewEngine(catalog, nil, zap.NewNop())

	plan, err := NewPlanner(engine, zap.NewNop()).BuildWeek(context.Background(), "u-1",
		model.Preferences{Weights: model.Weights{NutritionalFit: 1}}, 2)

	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"breakfast:b1", "lunch:l1", "dinner:d1"},
		{"breakfast:b2", "lunch:l2", "dinner:"},
	}, slotIDs(plan))
	assert.Len(t, plan.Recipes(), 5)
}

func TestBuildWeekFollowsMealOccasions(t *testing.T) {
	rec := new(mockRecommender)
	rec.On("GetRecommendations", mock.Anything, mock.Anything).Return([]model.ScoredRecipe{}, nil)

	plan, err := NewPlanner(rec, nil).BuildWeek(context.Background(), "u-1",
		model.Preferences{SkipBreakfast: true, IncludeSnacks: true}, 0)

	require.NoError(t, err)
	require.Len(t, plan.Days, DefaultDays)
	var types []string
	for _, m := range plan.Days[0].Meals {
		types = append(types, m.MealType)
		assert.Nil(t, m.Recipe)
	}
	assert.Equal(t, []string{"lunch", "dinner", "snack"}, types)
	rec.AssertNumberOfCalls(t, "GetRecommendations", DefaultDays*3)
}

func TestBuildWeekPassesPlannedRecipesAlong(t *testing.T) {
	rec := new(mockRecommender)
	rec.On("GetRecommendations", mock.Anything, mock.MatchedBy(func(r recommend.Request) bool {
		return r.MealType == "breakfast"
	})).Return([]model.ScoredRecipe{{Recipe: meal("b1", "breakfast"), Score: 0.9}}, nil)
	rec.On("GetRecommendations", mock.Anything, mock.MatchedBy(func(r recommend.Request) bool {
		return r.MealType == "lunch" && len(r.ExcludeIDs) == 1 && r.ExcludeIDs[0] == "b1" &&
			len(r.Existing) == 1 && r.Existing[0].ID == "b1" && r.Count == 1 && r.UserID == "u-1"
	})).Return([]model.ScoredRecipe{{Recipe: meal("l1", "lunch"), Score: 0.8}}, nil)
	rec.On("GetRecommendations", mock.Anything, mock.MatchedBy(func(r recommend.Request) bool {
		return r.MealType == "dinner" && len(r.ExcludeIDs) == 2 && len(r.Existing) == 2
	})).Return([]model.ScoredRecipe{}, nil)

	plan, err := NewPlanner(rec, nil).BuildWeek(context.Background(), "u-1", model.Preferences{}, 1)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"breakfast:b1", "lunch:l1", "dinner:"}}, slotIDs(plan))
	rec.AssertExpectations(t)
}

func TestBuildWeekReturnsCatalogFailure(t *testing.T) {
	rec := new(mockRecommender)
	rec.On("GetRecommendations", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewPlanner(rec, nil).BuildWeek(context.Background(), "u-1", model.Preferences{}, 3)

	assert.ErrorContains(t, err, "day 1 breakfast")
}
