package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/recommend"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SuggestionBatchSize is the number of recipes every suggestion call yields.
const SuggestionBatchSize = 5

// DefaultIngredients are used when the caller supplies none.
var DefaultIngredients = []string{"chicken", "rice", "onion", "garlic", "olive oil"}

// Nutrition filler for synthesized recipes.
var synthesizedNutrition = model.Nutrition{
	Calories: 520,
	Protein:  32,
	Carbs:    48,
	Fat:      18,
	Fiber:    7,
	Sugar:    6,
	Cost:     6.5,
}

type suggestionTemplate struct {
	title      func(style string, ing []string) string
	category   string
	difficulty string
	prepTime   string
	// picks are indexes into the ingredient list
	picks []int
}

var suggestionTemplates = [SuggestionBatchSize]suggestionTemplate{
	{
		title:      func(style string, ing []string) string { return fmt.Sprintf("%s bowl with %s", style, ing[0]) },
		category:   "lunch",
		difficulty: "easy",
		prepTime:   "20 min",
		picks:      []int{0, 1, 2},
	},
	{
		title:      func(_ string, ing []string) string { return fmt.Sprintf("Skillet of %s and %s", ing[0], ing[1]) },
		category:   "dinner",
		difficulty: "easy",
		prepTime:   "25 min",
		picks:      []int{0, 1},
	},
	{
		title:      func(_ string, ing []string) string { return fmt.Sprintf("Roasted %s with %s", ing[1], ing[2]) },
		category:   "dinner",
		difficulty: "medium",
		prepTime:   "45 min",
		picks:      []int{1, 2},
	},
	{
		title:      func(style string, ing []string) string { return fmt.Sprintf("%s-style %s salad", style, ing[2]) },
		category:   "lunch",
		difficulty: "easy",
		prepTime:   "15 min",
		picks:      []int{2, 0},
	},
	{
		title:      func(_ string, ing []string) string { return fmt.Sprintf("Slow-cooked %s stew", ing[0]) },
		category:   "dinner",
		difficulty: "medium",
		prepTime:   "1 hr 30 min",
		picks:      []int{0, 1, 2},
	},
}

// SuggestionService is the style-driven recipe generator. Without a live LLM
// client it synthesizes candidates; with one it asks the model and caches the
// answer in redis.
type SuggestionService struct {
	llm    LLMClient
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSuggestionService creates a new SuggestionService instance. llm and
// redisClient may be nil.
func NewSuggestionService(llm LLMClient, redisClient *redis.Client, logger *zap.Logger) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{
		llm:    llm,
		redis:  redisClient,
		ttl:    24 * time.Hour,
		logger: logger,
	}
}

// SuggestByStyle returns SuggestionBatchSize recipes in style built from
// ingredients. It never fails: a live-model failure yields an empty slice.
func (s *SuggestionService) SuggestByStyle(ctx context.Context, style string, ingredients []string) []model.Recipe {
	style = strings.TrimSpace(style)
	if style == "" {
		style = recommend.DefaultStyle
	}
	ingredients = suggestionIngredients(ingredients)

	if s.llm == nil {
		return SynthesizeRecipes(style, ingredients)
	}

	key := suggestionCacheKey(style, ingredients)
	if cached, ok := s.cached(ctx, key); ok {
		return cached
	}

	recipes, err := s.generate(ctx, style, ingredients)
	if err != nil {
		s.logger.Warn("live suggestion failed", zap.String("style", style), zap.Error(err))
		return []model.Recipe{}
	}
	s.store(ctx, key, recipes)
	return recipes
}

// SynthesizeRecipes builds the deterministic offline batch. Only the
// per-ingredient identifiers vary between calls.
func SynthesizeRecipes(style string, ingredients []string) []model.Recipe {
	ingredients = suggestionIngredients(ingredients)
	ing := make([]string, 3)
	for i := range ing {
		ing[i] = ingredients[i%len(ingredients)]
	}

	out := make([]model.Recipe, 0, SuggestionBatchSize)
	for _, tpl := range suggestionTemplates {
		nutrition := synthesizedNutrition
		score := model.DeriveNutrientScore(nutrition)

		items := make([]model.Ingredient, 0, len(tpl.picks))
		seen := make(map[string]struct{}, len(tpl.picks))
		for _, p := range tpl.picks {
			name := ing[p]
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			items = append(items, model.Ingredient{
				ID:     strconv.Itoa(rand.IntN(1_000_000)),
				Amount: 150,
				Unit:   "g",
				Name:   name,
			})
		}

		out = append(out, generatedRecipe(style, tpl.title(style, ing), tpl.category, model.Recipe{
			PrepTime:      tpl.prepTime,
			Difficulty:    tpl.difficulty,
			Servings:      2,
			Ingredients:   items,
			Nutrition:     &nutrition,
			NutrientScore: &score,
		}))
	}
	return out
}

// generatedRecipeNamespace scopes the name-based ids of generated recipes.
var generatedRecipeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("alchemorsel-mealplanner/generated-recipe"))

// GeneratedRecipeID is the stable id of the generated recipe titled title in
// style. The same dish gets the same id on every call.
func GeneratedRecipeID(style, title string) string {
	name := strings.ToLower(strings.TrimSpace(style)) + "|" + strings.ToLower(strings.TrimSpace(title))
	return "ai-" + uuid.NewSHA1(generatedRecipeNamespace, []byte(name)).String()
}

// generatedRecipe stamps the id, title, style and marker tags onto base.
func generatedRecipe(style, title, category string, base model.Recipe) model.Recipe {
	base.ID = GeneratedRecipeID(style, title)
	base.Title = title
	base.Category = category
	base.AuthorStyle = style
	base.Tags = model.JSONBStringArray{style, recommend.GeneratedTag, category}
	base.Alternatives = model.JSONBStringArray{}
	return base
}

type llmSuggestion struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	PrepTime    string `json:"prep_time"`
	Servings    int    `json:"servings"`
	Ingredients []struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
		Unit   string  `json:"unit"`
	} `json:"ingredients"`
	Nutrition *model.Nutrition `json:"nutrition"`
}

func (s *SuggestionService) generate(ctx context.Context, style string, ingredients []string) ([]model.Recipe, error) {
	system := "You are a recipe developer. Respond only with JSON of the form " +
		`{"recipes":[{"title":"","category":"breakfast|lunch|dinner|snack","difficulty":"easy|medium|hard",` +
		`"prep_time":"25 min","servings":2,"ingredients":[{"name":"","amount":0,"unit":""}],` +
		`"nutrition":{"calories":0,"protein":0,"carbs":0,"fat":0,"fiber":0,"sugar":0,"cost":0}}]}`
	prompt := fmt.Sprintf("Create %d distinct %s-style recipes that use mainly these ingredients: %s. "+
		"At least one title must contain the word %q. Nutrition is per serving, cost in USD per serving.",
		SuggestionBatchSize, style, strings.Join(ingredients, ", "), style)

	content, err := s.llm.Complete(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Recipes []llmSuggestion `json:"recipes"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}

	out := make([]model.Recipe, 0, SuggestionBatchSize)
	seen := make(map[string]struct{}, SuggestionBatchSize)
	for _, sug := range parsed.Recipes {
		if len(out) == SuggestionBatchSize {
			break
		}
		title := strings.TrimSpace(sug.Title)
		if title == "" {
			continue
		}
		if _, dup := seen[GeneratedRecipeID(style, title)]; dup {
			continue
		}
		seen[GeneratedRecipeID(style, title)] = struct{}{}
		items := make([]model.Ingredient, 0, len(sug.Ingredients))
		for _, it := range sug.Ingredients {
			items = append(items, model.Ingredient{
				ID:     strconv.Itoa(rand.IntN(1_000_000)),
				Amount: it.Amount,
				Unit:   it.Unit,
				Name:   it.Name,
			})
		}
		category := strings.ToLower(strings.TrimSpace(sug.Category))
		if category == "" {
			category = "dinner"
		}
		out = append(out, generatedRecipe(style, title, category, model.Recipe{
			PrepTime:    sug.PrepTime,
			Difficulty:  strings.ToLower(sug.Difficulty),
			Servings:    sug.Servings,
			Ingredients: items,
			Nutrition:   sug.Nutrition,
		}))
	}

	// Top up a short answer so callers always see a full batch.
	for _, r := range SynthesizeRecipes(style, ingredients) {
		if len(out) == SuggestionBatchSize {
			break
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	ensureStyleInTitle(out, style)
	return out, nil
}

func ensureStyleInTitle(recipes []model.Recipe, style string) {
	lower := strings.ToLower(style)
	for _, r := range recipes {
		if strings.Contains(strings.ToLower(r.Title), lower) {
			return
		}
	}
	if len(recipes) > 0 {
		recipes[0].Title = style + " " + recipes[0].Title
	}
}

func (s *SuggestionService) cached(ctx context.Context, key string) ([]model.Recipe, bool) {
	if s.redis == nil {
		return nil, false
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("suggestion cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var recipes []model.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil || len(recipes) != SuggestionBatchSize {
		return nil, false
	}
	return recipes, true
}

func (s *SuggestionService) store(ctx context.Context, key string, recipes []model.Recipe) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(recipes)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("suggestion cache write failed", zap.Error(err))
	}
}

func suggestionCacheKey(style string, ingredients []string) string {
	return fmt.Sprintf("suggestions:%s:%s", strings.ToLower(style), strings.ToLower(strings.Join(ingredients, ",")))
}

func suggestionIngredients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultIngredients...)
	}
	return out
}
