// Package recommend ranks catalog recipes for a user: weight normalization,
// per-recipe scoring, hard-constraint filtering, diversification and the
// cold-start backfill from the suggestion adapter.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/preset"
	"go.uber.org/zap"
)

const (
	// DefaultStyle is asked of the suggestion adapter when the user has no
	// style preference.
	DefaultStyle = "Mediterranean"
	// GeneratedTag marks recipes synthesized by the suggestion adapter.
	GeneratedTag = "ai-generated"

	DefaultCount = 6
	MaxCount     = 50
)

// ErrNoCatalog is returned when the engine was built without a recipe source.
var ErrNoCatalog = errors.New("recommend: no recipe catalog configured")

// CatalogSource supplies the organic candidate recipes.
type CatalogSource interface {
	ListRecipes(ctx context.Context) ([]model.Recipe, error)
}

// Suggester generates recipes in a style from a list of ingredients. It never
// fails; an empty result means nothing could be generated.
type Suggester interface {
	SuggestByStyle(ctx context.Context, style string, ingredients []string) []model.Recipe
}

// Enricher fills in missing nutrition and cost.
type Enricher interface {
	EnsureNutritionAndCost(ctx context.Context, recipes []model.Recipe) ([]model.Recipe, error)
}

// CoLikeSource scores recipes by how often users with overlapping likes liked them.
type CoLikeSource interface {
	CoLikeScores(ctx context.Context, userID string, likedRecipeIDs []string) (map[string]float64, error)
}

// Request describes one recommendation call.
type Request struct {
	UserID string
	Prefs  model.Preferences
	// MealType restricts candidates to one meal occasion and selects the
	// meal budget. Empty means any meal and no budget.
	MealType string
	// Count is the maximum number of results; DefaultCount when zero.
	Count int
	// ExcludeIDs are never returned, in addition to disliked recipes.
	ExcludeIDs []string
	// Existing recipes count as already picked for variety purposes.
	Existing []model.Recipe
}

// Engine produces ranked recommendations.
type Engine struct {
	catalog   CatalogSource
	suggester Suggester
	enricher  Enricher
	coLikes   CoLikeSource
	metrics   *Metrics
	logger    *zap.Logger
}

// NewEngine creates a new Engine instance. Only catalog is required.
func NewEngine(catalog CatalogSource, suggester Suggester, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog:   catalog,
		suggester: suggester,
		logger:    logger,
	}
}

// WithEnricher sets the nutrition enricher applied to candidates before scoring.
func (e *Engine) WithEnricher(enricher Enricher) *Engine {
	e.enricher = enricher
	return e
}

// WithCoLikes enables the collaborative filtering factor.
func (e *Engine) WithCoLikes(src CoLikeSource) *Engine {
	e.coLikes = src
	return e
}

// WithMetrics records pipeline metrics.
func (e *Engine) WithMetrics(m *Metrics) *Engine {
	e.metrics = m
	return e
}

// GetRecommendations returns at most req.Count recipes, highest score first.
// Suggestion and enrichment failures degrade the result; only a catalog read
// failure is returned as an error.
func (e *Engine) GetRecommendations(ctx context.Context, req Request) ([]model.ScoredRecipe, error) {
	start := time.Now()
	if e.catalog == nil {
		return nil, ErrNoCatalog
	}

	prefs := NormalizePreferences(req.Prefs)
	count := clampCount(req.Count)

	all, err := e.catalog.ListRecipes(ctx)
	if err != nil {
		e.metrics.observeRequest("error", time.Since(start).Seconds(), 0)
		return nil, fmt.Errorf("failed to load recipe catalog: %w", err)
	}

	excluded := idSet(prefs.DislikedRecipes, req.ExcludeIDs)
	candidates := Filter(all, prefs.DietaryRestrictions, req.MealType, excluded)

	if trigger := coldStartTrigger(len(candidates), prefs); trigger != "" {
		generated := e.suggest(ctx, trigger, prefs, excluded, candidates)
		candidates = append(candidates, generated...)
	}

	if e.enricher != nil && len(candidates) > 0 {
		enriched, err := e.enricher.EnsureNutritionAndCost(ctx, candidates)
		if err != nil {
			e.logger.Warn("nutrition enrichment failed, scoring with available data", zap.Error(err))
		} else if len(enriched) == len(candidates) {
			candidates = enriched
		}
	}

	var budget *model.MealBudget
	if mt := strings.TrimSpace(req.MealType); mt != "" {
		b := preset.MealBudget(prefs, mt, !prefs.SkipBreakfast)
		budget = &b
	}

	scorer := NewScorer(BuildProfile(prefs, likedRecipes(all, prefs.LikedRecipes), e.coLikeScores(ctx, req.UserID, prefs)), prefs.Weights, budget)
	ranked := Rank(scorer, candidates, req.Existing, count)

	e.metrics.observeRequest("ok", time.Since(start).Seconds(), len(candidates))
	e.logger.Debug("recommendations ranked",
		zap.String("user_id", req.UserID),
		zap.String("meal_type", req.MealType),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(ranked)))
	return ranked, nil
}

// coldStartTrigger names why the suggestion adapter should be consulted, or
// returns "" when it should not.
func coldStartTrigger(organic int, prefs model.Preferences) string {
	switch {
	case organic == 0:
		return "empty"
	case prefs.AuthorStyle != "":
		return "style"
	default:
		return ""
	}
}

func (e *Engine) suggest(ctx context.Context, trigger string, prefs model.Preferences, excluded map[string]struct{}, existing []model.Recipe) []model.Recipe {
	if e.suggester == nil {
		e.metrics.coldStart(trigger, false)
		return nil
	}
	style := prefs.AuthorStyle
	if style == "" {
		style = DefaultStyle
	}

	seen := make(map[string]struct{}, len(existing))
	for i := range existing {
		seen[existing[i].ID] = struct{}{}
	}

	var out []model.Recipe
	for _, r := range e.suggester.SuggestByStyle(ctx, style, prefs.Pantry) {
		if _, skip := excluded[r.ID]; skip {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}

	e.metrics.coldStart(trigger, len(out) > 0)
	if len(out) == 0 {
		e.logger.Warn("suggestion adapter produced no candidates",
			zap.String("style", style),
			zap.String("trigger", trigger))
	}
	return out
}

func (e *Engine) coLikeScores(ctx context.Context, userID string, prefs model.Preferences) map[string]float64 {
	if e.coLikes == nil || userID == "" {
		return nil
	}
	scores, err := e.coLikes.CoLikeScores(ctx, userID, prefs.LikedRecipes)
	if err != nil {
		e.logger.Warn("collaborative scores unavailable", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return scores
}

// Filter drops recipes that violate a hard constraint: a missing dietary tag,
// an excluded id, or a different meal type.
func Filter(recipes []model.Recipe, dietary []string, mealType string, excluded map[string]struct{}) []model.Recipe {
	out := make([]model.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if _, skip := excluded[r.ID]; skip {
			continue
		}
		if !MatchesMealType(&r, mealType) || !MatchesDiet(&r, dietary) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// MatchesMealType reports whether r is categorized or tagged as mealType.
// An empty mealType matches everything.
func MatchesMealType(r *model.Recipe, mealType string) bool {
	mt := canonicalTag(mealType)
	if mt == "" {
		return true
	}
	if canonicalTag(r.Category) == mt {
		return true
	}
	for _, t := range r.Tags {
		if canonicalTag(t) == mt {
			return true
		}
	}
	return false
}

// MatchesDiet reports whether r carries a tag for every restriction.
// "Gluten Free", "gluten_free" and "gluten-free" are the same tag.
func MatchesDiet(r *model.Recipe, restrictions []string) bool {
	if len(restrictions) == 0 {
		return true
	}
	tags := make(map[string]struct{}, len(r.Tags))
	for _, t := range r.Tags {
		tags[canonicalTag(t)] = struct{}{}
	}
	for _, req := range restrictions {
		key := canonicalTag(req)
		if key == "" {
			continue
		}
		if _, ok := tags[key]; !ok {
			return false
		}
	}
	return true
}

// Rank greedily picks up to count recipes. After every pick the variety
// sub-score of the remaining pool is recomputed against everything picked so
// far (including existing), so near-duplicates sink. Ties go to the lower id.
func Rank(scorer *Scorer, candidates []model.Recipe, existing []model.Recipe, count int) []model.ScoredRecipe {
	type entry struct {
		recipe    model.Recipe
		breakdown model.ScoreBreakdown
	}

	pool := make([]entry, len(candidates))
	for i := range candidates {
		pool[i] = entry{recipe: candidates[i], breakdown: scorer.Breakdown(&candidates[i], nil)}
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].recipe.ID < pool[j].recipe.ID })

	picked := append([]model.Recipe(nil), existing...)
	out := make([]model.ScoredRecipe, 0, min(count, len(pool)))

	for len(out) < count && len(pool) > 0 {
		best, bestScore := -1, 0.0
		for i := range pool {
			pool[i].breakdown.VarietyBoost = VarietyBoost(&pool[i].recipe, picked)
			s := scorer.Combine(pool[i].breakdown)
			if best < 0 || s > bestScore {
				best, bestScore = i, s
			}
		}

		chosen := pool[best]
		out = append(out, model.ScoredRecipe{Recipe: chosen.recipe, Score: bestScore, Breakdown: chosen.breakdown})
		picked = append(picked, chosen.recipe)
		pool = append(pool[:best], pool[best+1:]...)
	}
	return out
}

// IsGenerated reports whether r came from the suggestion adapter.
func IsGenerated(r *model.Recipe) bool {
	return r.HasTag(GeneratedTag)
}

func likedRecipes(all []model.Recipe, ids []string) []model.Recipe {
	if len(ids) == 0 {
		return nil
	}
	want := idSet(ids)
	var out []model.Recipe
	for _, r := range all {
		if _, ok := want[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func idSet(lists ...[]string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, l := range lists {
		for _, id := range l {
			if id = strings.TrimSpace(id); id != "" {
				out[id] = struct{}{}
			}
		}
	}
	return out
}

func canonicalTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "-", " ", "-").Replace(s)
}

func clampCount(n int) int {
	switch {
	case n <= 0:
		return DefaultCount
	case n > MaxCount:
		return MaxCount
	default:
		return n
	}
}
