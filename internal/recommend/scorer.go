package recommend

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/preset"
)

const (
	// RecencyWindow is how many recently viewed recipes carry a penalty.
	RecencyWindow = 10

	defaultCostCeiling = 15.0
)

var costCeilings = map[string]float64{
	"low":    8,
	"medium": defaultCostCeiling,
	"high":   25,
}

// Profile is the per-user data the scorer reads besides the recipe itself.
type Profile struct {
	Prefs       model.Preferences
	Goal        preset.Goal
	LikedFacets map[string]struct{}
	// LikedCentroid is the mean embedding of liked recipes; nil when none.
	LikedCentroid []float32
	// CoLikes maps recipe id to a collaborative score in [0,1].
	CoLikes map[string]float64
}

// BuildProfile collects the liked-recipe facets and embedding centroid for prefs.
func BuildProfile(prefs model.Preferences, liked []model.Recipe, coLikes map[string]float64) Profile {
	p := Profile{
		Prefs:       prefs,
		Goal:        preset.UserGoal(prefs),
		LikedFacets: make(map[string]struct{}),
		CoLikes:     coLikes,
	}

	var sum []float32
	for i := range liked {
		for f := range liked[i].Facets() {
			p.LikedFacets[f] = struct{}{}
		}
		vec := embeddingOf(&liked[i])
		if sum == nil {
			sum = make([]float32, len(vec))
		}
		for j := range vec {
			if j < len(sum) {
				sum[j] += vec[j]
			}
		}
	}
	if len(liked) > 0 {
		for j := range sum {
			sum[j] /= float32(len(liked))
		}
		p.LikedCentroid = sum
	}
	return p
}

// Scorer computes composite scores for one user, weight vector and budget.
type Scorer struct {
	weights     model.Weights
	profile     Profile
	budget      *model.MealBudget
	costCeiling float64
}

// NewScorer builds a scorer. weights must already be normalized; budget may be
// nil, in which case nutrition fit falls back to the recipe's nutrient score.
func NewScorer(profile Profile, weights model.Weights, budget *model.MealBudget) *Scorer {
	ceiling, ok := costCeilings[strings.ToLower(profile.Prefs.Cooking.BudgetTier)]
	if !ok {
		ceiling = defaultCostCeiling
	}
	return &Scorer{
		weights:     weights,
		profile:     profile,
		budget:      budget,
		costCeiling: ceiling,
	}
}

// Score returns recipe with its composite score, treating selected as the
// recipes already picked in the current batch.
func (s *Scorer) Score(recipe model.Recipe, selected []model.Recipe) model.ScoredRecipe {
	b := s.Breakdown(&recipe, selected)
	return model.ScoredRecipe{Recipe: recipe, Score: s.Combine(b), Breakdown: b}
}

// Breakdown computes every sub-score of recipe.
func (s *Scorer) Breakdown(recipe *model.Recipe, selected []model.Recipe) model.ScoreBreakdown {
	n := model.NutritionOf(recipe)
	prefs := s.profile.Prefs

	var fit float64
	if s.budget != nil {
		fit = NutritionFit(n, *s.budget, preset.ToleranceFor(s.profile.Goal))
	} else {
		score := model.DeriveNutrientScore(n)
		if recipe.NutrientScore != nil {
			score = *recipe.NutrientScore
		}
		fit = clamp01(score / 100)
	}

	return model.ScoreBreakdown{
		NutritionalFit:         fit,
		SimilarityToLikes:      SimilarityToLikes(recipe, s.profile.LikedFacets, prefs.LikedFoods, prefs.DislikedFoods),
		VarietyBoost:           VarietyBoost(recipe, selected),
		PantryMatch:            PantryMatch(recipe, prefs.Pantry),
		CostScore:              CostScore(n.Cost, s.costCeiling),
		RecencyPenalty:         RecencyPenalty(recipe.ID, prefs.RecentlyViewed),
		MetadataOverlap:        MetadataOverlap(recipe, prefs),
		VectorSimilarity:       VectorSimilarity(recipe, s.profile.LikedCentroid),
		CollaborativeFiltering: clamp01(s.profile.CoLikes[recipe.ID]),
	}
}

// Combine folds a breakdown into the weighted composite. Recency is the only
// negative contribution; absent sub-scores are zero but their weight is spent.
func (s *Scorer) Combine(b model.ScoreBreakdown) float64 {
	w := s.weights
	return w.NutritionalFit*b.NutritionalFit +
		w.SimilarityToLikes*b.SimilarityToLikes +
		w.VarietyBoost*b.VarietyBoost +
		w.PantryMatch*b.PantryMatch +
		w.CostScore*b.CostScore +
		w.MetadataOverlap*b.MetadataOverlap +
		w.VectorSimilarity*b.VectorSimilarity +
		w.CollaborativeFiltering*b.CollaborativeFiltering -
		w.RecencyPenalty*b.RecencyPenalty
}

// NutritionFit scores how close n sits to budget. Inside the tolerance band the
// score stays at or above 0.75; outside it decays exponentially.
func NutritionFit(n model.Nutrition, budget model.MealBudget, tol preset.Tolerance) float64 {
	cal := closeness(n.Calories, float64(budget.Calories), tol.Calories)
	macro := (closeness(n.Protein, float64(budget.Protein), tol.Macros) +
		closeness(n.Carbs, float64(budget.Carbs), tol.Macros) +
		closeness(n.Fat, float64(budget.Fat), tol.Macros)) / 3

	fiber := 1.0
	if budget.FiberMin > 0 {
		fiber = math.Min(1, n.Fiber/float64(budget.FiberMin))
	}
	sugar := 1 - SugarPenalty(n.Sugar, budget.SugarSoftCap, budget.SugarHardCap)

	return clamp01(0.40*cal + 0.35*macro + 0.10*fiber + 0.15*sugar)
}

// SugarPenalty is 0 up to the soft cap, grows linearly to 1 at the hard cap and
// stays at 1 above it.
func SugarPenalty(sugar, soft, hard float64) float64 {
	switch {
	case sugar <= soft:
		return 0
	case sugar >= hard || hard <= soft:
		return 1
	default:
		return (sugar - soft) / (hard - soft)
	}
}

func closeness(actual, target, tol float64) float64 {
	if target <= 0 {
		return 1
	}
	if tol <= 0 {
		tol = 0.1
	}
	d := math.Abs(actual-target) / target
	if d <= tol {
		return 1 - 0.25*d/tol
	}
	return 0.75 * math.Exp(-(d-tol)/tol)
}

// SimilarityToLikes measures tag/category overlap with liked recipes and
// mentions of liked food terms. Disliked terms subtract.
func SimilarityToLikes(recipe *model.Recipe, likedFacets map[string]struct{}, likedFoods, dislikedFoods []string) float64 {
	facets := recipe.Facets()

	var tagScore float64
	if len(facets) > 0 && len(likedFacets) > 0 {
		shared := 0
		for f := range facets {
			if _, ok := likedFacets[f]; ok {
				shared++
			}
		}
		tagScore = float64(shared) / float64(len(facets))
	}

	text := searchText(recipe)
	var termScore float64
	if hits := countTerms(text, likedFoods); hits > 0 {
		termScore = math.Min(1, 0.5+0.25*float64(hits-1))
	}

	var score float64
	switch {
	case len(likedFacets) > 0 && len(likedFoods) > 0:
		score = 0.6*tagScore + 0.4*termScore
	case len(likedFacets) > 0:
		score = tagScore
	default:
		score = termScore
	}

	score -= 0.5 * float64(countTerms(text, dislikedFoods))
	return clamp01(score)
}

// VarietyBoost is 1 for a recipe that shares no tag or category with the
// already selected recipes, and shrinks with every shared facet.
func VarietyBoost(recipe *model.Recipe, selected []model.Recipe) float64 {
	if len(selected) == 0 {
		return 1
	}
	facets := recipe.Facets()
	overlap := 0
	for i := range selected {
		for f := range selected[i].Facets() {
			if _, ok := facets[f]; ok {
				overlap++
			}
		}
	}
	return 1 / (1 + float64(overlap))
}

// PantryMatch is the fraction of the recipe's ingredients found in the pantry,
// matching case-insensitively by equality or substring either way.
func PantryMatch(recipe *model.Recipe, pantry []string) float64 {
	if len(recipe.Ingredients) == 0 || len(pantry) == 0 {
		return 0
	}
	items := make([]string, 0, len(pantry))
	for _, p := range pantry {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			items = append(items, p)
		}
	}
	if len(items) == 0 {
		return 0
	}

	matched := 0
	for _, ing := range recipe.Ingredients {
		if InPantry(ing.DisplayName(), items) {
			matched++
		}
	}
	return float64(matched) / float64(len(recipe.Ingredients))
}

// InPantry reports whether name matches one of the lower-cased pantry items.
func InPantry(name string, items []string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	for _, p := range items {
		if name == p || strings.Contains(name, p) || strings.Contains(p, name) {
			return true
		}
	}
	return false
}

// CostScore is the inverse of cost scaled against ceiling. Unknown (zero) cost
// scores 1.
func CostScore(cost, ceiling float64) float64 {
	if cost <= 0 {
		return 1
	}
	if ceiling <= 0 {
		ceiling = defaultCostCeiling
	}
	return clamp01(1 - cost/ceiling)
}

// RecencyPenalty is 1 for the most recently viewed recipe, decaying linearly
// with position and reaching 0 outside the recency window.
func RecencyPenalty(id string, recentlyViewed []string) float64 {
	for i, v := range recentlyViewed {
		if i >= RecencyWindow {
			break
		}
		if v == id {
			return float64(RecencyWindow-i) / RecencyWindow
		}
	}
	return 0
}

// MetadataOverlap averages the metadata signals that apply to prefs: preferred
// style, difficulty against experience, and prep time against the limit.
func MetadataOverlap(recipe *model.Recipe, prefs model.Preferences) float64 {
	var total, n float64

	if style := strings.TrimSpace(prefs.AuthorStyle); style != "" {
		n++
		if strings.EqualFold(recipe.AuthorStyle, style) || recipe.HasTag(style) {
			total++
		}
	}

	if d := strings.ToLower(recipe.Difficulty); d != "" {
		n++
		if difficultyFits(d, prefs.Cooking.Experience) {
			total++
		}
	}

	if limit := prefs.Cooking.MaxPrepMinutes; limit > 0 {
		if minutes, ok := PrepMinutes(recipe.PrepTime); ok {
			n++
			if minutes <= limit {
				total++
			}
		}
	}

	if n == 0 {
		return 0
	}
	return total / n
}

func difficultyFits(difficulty, experience string) bool {
	switch strings.ToLower(experience) {
	case "advanced":
		return true
	case "intermediate":
		return difficulty != "hard"
	default:
		return difficulty == "easy"
	}
}

var (
	hoursPattern   = regexp.MustCompile(`(\d+)\s*(h|hr|hrs|hour|hours)\b`)
	minutesPattern = regexp.MustCompile(`(\d+)\s*(m|min|mins|minute|minutes)\b`)
	barePattern    = regexp.MustCompile(`^\s*(\d+)\s*$`)
)

// PrepMinutes parses labels like "25 min", "1 hr 10 min" or "40".
func PrepMinutes(label string) (int, bool) {
	label = strings.ToLower(label)
	if m := barePattern.FindStringSubmatch(label); m != nil {
		v, _ := strconv.Atoi(m[1])
		return v, true
	}
	var total int
	found := false
	if m := hoursPattern.FindStringSubmatch(label); m != nil {
		v, _ := strconv.Atoi(m[1])
		total += v * 60
		found = true
	}
	if m := minutesPattern.FindStringSubmatch(label); m != nil {
		v, _ := strconv.Atoi(m[1])
		total += v
		found = true
	}
	return total, found
}

// VectorSimilarity is the cosine similarity between the recipe embedding and
// the liked-recipe centroid, floored at 0.
func VectorSimilarity(recipe *model.Recipe, centroid []float32) float64 {
	if len(centroid) == 0 {
		return 0
	}
	vec := embeddingOf(recipe)
	var dot, na, nb float64
	for i := range vec {
		if i >= len(centroid) {
			break
		}
		dot += float64(vec[i]) * float64(centroid[i])
		na += float64(vec[i]) * float64(vec[i])
		nb += float64(centroid[i]) * float64(centroid[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func embeddingOf(recipe *model.Recipe) []float32 {
	if vec := recipe.Embedding.Slice(); len(vec) > 0 {
		return vec
	}
	return model.TextEmbedding(recipe.EmbeddingText()).Slice()
}

func searchText(recipe *model.Recipe) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(recipe.Title))
	for _, t := range recipe.Tags {
		sb.WriteByte(' ')
		sb.WriteString(strings.ToLower(t))
	}
	for _, ing := range recipe.Ingredients {
		sb.WriteByte(' ')
		sb.WriteString(strings.ToLower(ing.DisplayName()))
	}
	return sb.String()
}

func countTerms(text string, terms []string) int {
	hits := 0
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" && strings.Contains(text, t) {
			hits++
		}
	}
	return hits
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
