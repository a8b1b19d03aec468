// Package integration runs the whole service against PostgreSQL with pgvector.
// The tests skip when docker is unavailable.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mealplanner/backend/config"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/server"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/service"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/testhelpers"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)

	recipes := []model.Recipe{
		{ID: "d1", Title: "Tomato Basil Pasta", Category: "dinner", Tags: model.JSONBStringArray{"italian", "pasta"},
			Ingredients: []model.Ingredient{{ID: "tomato", Name: "tomato", Amount: 400, Unit: "g"}, {ID: "pasta", Name: "pasta", Amount: 200, Unit: "g"}},
			Nutrition:   &model.Nutrition{Calories: 780, Protein: 28, Carbs: 110, Fat: 22, Fiber: 10, Sugar: 9, Cost: 3}},
		{ID: "d2", Title: "Pasta e Fagioli", Category: "dinner", Tags: model.JSONBStringArray{"italian", "soup"},
			Ingredients: []model.Ingredient{{ID: "beans", Name: "beans", Amount: 240, Unit: "g"}, {ID: "pasta", Name: "pasta", Amount: 100, Unit: "g"}},
			Nutrition:   &model.Nutrition{Calories: 700, Protein: 30, Carbs: 95, Fat: 15, Fiber: 14, Sugar: 6, Cost: 2}},
		{ID: "d3", Title: "Chicken Tikka", Category: "dinner", Tags: model.JSONBStringArray{"indian"},
			Ingredients: []model.Ingredient{{ID: "chicken", Name: "chicken", Amount: 500, Unit: "g"}},
			Nutrition:   &model.Nutrition{Calories: 820, Protein: 60, Carbs: 40, Fat: 30, Fiber: 4, Sugar: 7, Cost: 6}},
	}
	require.NoError(t, service.NewRecipeService(db).UpsertRecipes(context.Background(), recipes))

	cfg := &config.Config{ServerHost: "localhost", ServerPort: "0", DBDriver: "postgres", SuggestionRateLimit: 10}
	srv, err := server.New(cfg, db, nil, zap.NewNop())
	require.NoError(t, err)
	return srv.Handler()
}

func call(t *testing.T, h http.Handler, user, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.UserIDHeader, user)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSimilarRecipesOnPostgres(t *testing.T) {
	h := newServer(t)

	rr := call(t, h, uuid.NewString(), http.MethodGet, "/api/v1/recipes/d1/similar?limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Recipes []model.Recipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Recipes, 2)
	for _, r := range resp.Recipes {
		assert.NotEqual(t, "d1", r.ID)
	}
}

func TestCollaborativeScoresFlowIntoRecommendations(t *testing.T) {
	h := newServer(t)
	alice, bob := uuid.NewString(), uuid.NewString()

	for _, id := range []string{"d1", "d3"} {
		require.Equal(t, http.StatusOK, call(t, h, alice, http.MethodPost, "/api/v1/recipes/"+id+"/like", nil).Code)
	}
	require.Equal(t, http.StatusOK, call(t, h, bob, http.MethodPost, "/api/v1/recipes/d1/like", nil).Code)

	rr := call(t, h, bob, http.MethodGet, "/api/v1/recommendations?meal_type=dinner", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Recommendations []model.ScoredRecipe `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	byID := map[string]model.ScoredRecipe{}
	for _, r := range resp.Recommendations {
		byID[r.ID] = r
	}
	require.Contains(t, byID, "d3")
	assert.InDelta(t, 1.0, byID["d3"].Breakdown.CollaborativeFiltering, 1e-9)
	assert.Zero(t, byID["d2"].Breakdown.CollaborativeFiltering)
}

func TestPreferencesPersistAcrossServers(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	cfg := &config.Config{ServerHost: "localhost", ServerPort: "0", DBDriver: "postgres", SuggestionRateLimit: 10}
	user := uuid.NewString()

	first, err := server.New(cfg, db, nil, nil)
	require.NoError(t, err)
	rr := call(t, first.Handler(), user, http.MethodPatch, "/api/v1/preferences", map[string]interface{}{
		"pantry":       []string{"rice", "eggs"},
		"fitness_goal": "bulk",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	second, err := server.New(cfg, db, nil, nil)
	require.NoError(t, err)
	rr = call(t, second.Handler(), user, http.MethodGet, "/api/v1/preferences", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var prefs model.Preferences
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &prefs))
	assert.Equal(t, []string{"rice", "eggs"}, prefs.Pantry)
	assert.Equal(t, "bulk", prefs.FitnessGoal)
}
