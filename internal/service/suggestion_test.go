package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/mealplan"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/mocks"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/recommend"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("REDIS_HOST not set, skipping redis-backed test")
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{Addr: host + ":" + port, DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func anyTitleContains(recipes []model.Recipe, words ...string) bool {
	for _, r := range recipes {
		for _, w := range words {
			if strings.Contains(strings.ToLower(r.Title), strings.ToLower(w)) {
				return true
			}
		}
	}
	return false
}

func TestSuggestByStyleOffline(t *testing.T) {
	svc := NewSuggestionService(nil, nil, zap.NewNop())

	recipes := svc.SuggestByStyle(context.Background(), "Italian", []string{"tomato", "basil", "mozzarella"})

	require.Len(t, recipes, SuggestionBatchSize)
	for _, r := range recipes {
		assert.Equal(t, "Italian", r.AuthorStyle)
		assert.True(t, r.HasTag("Italian"), r.Title)
		assert.True(t, r.HasTag(recommend.GeneratedTag), r.Title)
		assert.True(t, strings.HasPrefix(r.ID, "ai-"), r.ID)
		require.NotNil(t, r.Nutrition)
		require.NotNil(t, r.NutrientScore)
	}
	assert.True(t, anyTitleContains(recipes, "Italian"))
	assert.True(t, anyTitleContains(recipes, "tomato", "basil"))
}

func TestSuggestByStyleWithoutIngredientsUsesDefaults(t *testing.T) {
	svc := NewSuggestionService(nil, nil, zap.NewNop())

	recipes := svc.SuggestByStyle(context.Background(), "Thai", nil)

	require.Len(t, recipes, SuggestionBatchSize)
	assert.True(t, anyTitleContains(recipes, DefaultIngredients[0]))
	for _, r := range recipes {
		assert.True(t, r.HasTag("Thai"))
		assert.True(t, r.HasTag(recommend.GeneratedTag))
	}
}

func TestSuggestByStyleBlankStyleUsesDefault(t *testing.T) {
	svc := NewSuggestionService(nil, nil, zap.NewNop())

	recipes := svc.SuggestByStyle(context.Background(), "  ", []string{"lentils"})

	require.Len(t, recipes, SuggestionBatchSize)
	assert.Equal(t, recommend.DefaultStyle, recipes[0].AuthorStyle)
	assert.True(t, anyTitleContains(recipes, recommend.DefaultStyle))
}

func TestSynthesizeRecipesIsDeterministic(t *testing.T) {
	a := SynthesizeRecipes("Mexican", []string{"beans", "corn"})
	b := SynthesizeRecipes("Mexican", []string{"beans", "corn"})

	require.Len(t, a, SuggestionBatchSize)
	require.Len(t, b, SuggestionBatchSize)
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.Equal(t, a[i].Title, b[i].Title)
		assert.Equal(t, a[i].Category, b[i].Category)
		assert.Equal(t, a[i].Nutrition, b[i].Nutrition)
		require.Len(t, b[i].Ingredients, len(a[i].Ingredients))
		for j := range a[i].Ingredients {
			assert.Equal(t, a[i].Ingredients[j].Name, b[i].Ingredients[j].Name)
		}
	}
}

func TestSuggestByStyleLive(t *testing.T) {
	llm := new(mocks.MockLLMClient)
	llm.On("Complete", mock.Anything, mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Greek") && strings.Contains(p, "feta")
	})).Return(`{"recipes":[
		{"title":"Greek feta bake","category":"Dinner","difficulty":"Easy","prep_time":"30 min","servings":2,
		 "ingredients":[{"name":"feta","amount":200,"unit":"g"}],
		 "nutrition":{"calories":540,"protein":25,"carbs":30,"fat":32,"fiber":4,"sugar":6,"cost":5}},
		{"title":"Lemon orzo","category":"lunch"},
		{"title":"Spanakopita","category":"lunch"},
		{"title":"Souvlaki","category":""},
		{"title":"Horiatiki","category":"lunch"},
		{"title":"Extra that gets dropped","category":"lunch"}
	]}`, nil)

	svc := NewSuggestionService(llm, nil, zap.NewNop())
	recipes := svc.SuggestByStyle(context.Background(), "Greek", []string{"feta", "olives"})

	require.Len(t, recipes, SuggestionBatchSize)
	assert.Equal(t, "Greek feta bake", recipes[0].Title)
	assert.Equal(t, "dinner", recipes[0].Category)
	assert.Equal(t, "easy", recipes[0].Difficulty)
	assert.Equal(t, "dinner", recipes[3].Category)
	for _, r := range recipes {
		assert.True(t, r.HasTag("Greek"))
		assert.True(t, r.HasTag(recommend.GeneratedTag))
		assert.Equal(t, "Greek", r.AuthorStyle)
	}
	llm.AssertExpectations(t)
}

func TestSuggestByStyleLiveShortAnswerIsToppedUp(t *testing.T) {
	llm := new(mocks.MockLLMClient)
	llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"recipes":[{"title":"Pad kra pao"},{"title":""}]}`, nil)

	svc := NewSuggestionService(llm, nil, zap.NewNop())
	recipes := svc.SuggestByStyle(context.Background(), "Thai", []string{"basil", "pork"})

	require.Len(t, recipes, SuggestionBatchSize)
	assert.Equal(t, "Pad kra pao", recipes[0].Title)
	assert.True(t, anyTitleContains(recipes, "Thai"))
}

func TestSuggestByStyleLiveAddsStyleToATitle(t *testing.T) {
	llm := new(mocks.MockLLMClient)
	llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"recipes":[{"title":"A"},{"title":"B"},{"title":"C"},{"title":"D"},{"title":"E"}]}`, nil)

	svc := NewSuggestionService(llm, nil, zap.NewNop())
	recipes := svc.SuggestByStyle(context.Background(), "Korean", []string{"kimchi"})

	require.Len(t, recipes, SuggestionBatchSize)
	assert.Equal(t, "Korean A", recipes[0].Title)
}

func TestSuggestByStyleLiveFailureReturnsEmpty(t *testing.T) {
	for name, resp := range map[string]struct {
		content string
		err     error
	}{
		"client error": {"", errors.New("upstream down")},
		"bad json":     {"not json", nil},
	} {
		t.Run(name, func(t *testing.T) {
			llm := new(mocks.MockLLMClient)
			llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(resp.content, resp.err)

			svc := NewSuggestionService(llm, nil, zap.NewNop())
			recipes := svc.SuggestByStyle(context.Background(), "Italian", []string{"tomato"})

			assert.NotNil(t, recipes)
			assert.Empty(t, recipes)
		})
	}
}

func TestSuggestByStyleCachesLiveAnswers(t *testing.T) {
	client := newTestRedis(t)

	llm := new(mocks.MockLLMClient)
	llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"recipes":[{"title":"Italian risotto"}]}`, nil).Once()

	svc := NewSuggestionService(llm, client, zap.NewNop())
	first := svc.SuggestByStyle(context.Background(), "Italian", []string{"rice"})
	second := svc.SuggestByStyle(context.Background(), "Italian", []string{"rice"})

	require.Len(t, first, SuggestionBatchSize)
	require.Len(t, second, SuggestionBatchSize)
	assert.Equal(t, first[0].ID, second[0].ID)
	llm.AssertNumberOfCalls(t, "Complete", 1)
}

func TestGeneratedRecipeIDIsStable(t *testing.T) {
	assert.Equal(t, GeneratedRecipeID("Thai", "Pad kra pao"), GeneratedRecipeID(" thai ", "PAD KRA PAO"))
	assert.NotEqual(t, GeneratedRecipeID("Thai", "Pad kra pao"), GeneratedRecipeID("Thai", "Green curry"))
	assert.NotEqual(t, GeneratedRecipeID("Thai", "Curry"), GeneratedRecipeID("Indian", "Curry"))
}

func TestSuggestByStyleLiveKeepsIDsAcrossCalls(t *testing.T) {
	llm := new(mocks.MockLLMClient)
	llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"recipes":[{"title":"Pad kra pao"},{"title":"pad kra pao"},{"title":"Thai green curry"}]}`, nil)

	svc := NewSuggestionService(llm, nil, zap.NewNop())
	first := svc.SuggestByStyle(context.Background(), "Thai", []string{"basil", "pork"})
	second := svc.SuggestByStyle(context.Background(), "Thai", []string{"basil", "pork"})

	require.Len(t, first, SuggestionBatchSize)
	require.Len(t, second, SuggestionBatchSize)
	seen := map[string]bool{}
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.False(t, seen[first[i].ID], "duplicate id %s", first[i].ID)
		seen[first[i].ID] = true
	}
}

func emptyCatalogEngine() *recommend.Engine {
	catalog := new(mocks.MockCatalog)
	catalog.On("ListRecipes", mock.Anything).Return([]model.Recipe{}, nil)
	return recommend.NewEngine(catalog, NewSuggestionService(nil, nil, zap.NewNop()), zap.NewNop())
}

func TestRejectGeneratedRecipeFindsADifferentDish(t *testing.T) {
	engine := emptyCatalogEngine()
	ctx := context.Background()

	recommended, err := engine.GetRecommendations(ctx, recommend.Request{Count: 3})
	require.NoError(t, err)
	require.Len(t, recommended, 3)

	rejected := recommended[0]
	res, err := engine.Reject(ctx, nil, recommend.RejectRequest{
		RejectedID:  rejected.ID,
		Recommended: recommended,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Replacement)

	assert.NotEqual(t, rejected.Title, res.Replacement.Title)
	for _, r := range recommended {
		assert.NotEqual(t, r.ID, res.Replacement.ID)
		assert.NotEqual(t, r.Title, res.Replacement.Title)
	}
	assert.Contains(t, res.Prefs.DislikedRecipes, rejected.ID)

	again, err := engine.GetRecommendations(ctx, recommend.Request{Prefs: res.Prefs})
	require.NoError(t, err)
	for _, r := range again {
		assert.NotEqual(t, rejected.Title, r.Title)
	}
}

func TestBuildWeekFromGeneratedRecipesNeverRepeatsADish(t *testing.T) {
	planner := mealplan.NewPlanner(emptyCatalogEngine(), zap.NewNop())

	plan, err := planner.BuildWeek(context.Background(), "", model.Preferences{}, 3)
	require.NoError(t, err)

	recipes := plan.Recipes()
	assert.Len(t, recipes, SuggestionBatchSize)
	titles := map[string]bool{}
	for _, r := range recipes {
		assert.False(t, titles[r.Title], "%q planned twice", r.Title)
		titles[r.Title] = true
	}
}
