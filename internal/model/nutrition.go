package model

import "math"

// Nutrition holds per-serving nutrition facts. Cost is in the catalog currency.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Cost     float64 `json:"cost"`
}

// IsZero reports whether no nutrition field has been populated.
func (n Nutrition) IsZero() bool {
	return n == Nutrition{}
}

// MealBudget is the nutrition target for one meal occasion. It is derived on
// demand and never persisted.
type MealBudget struct {
	Goal         string  `json:"goal"`
	MealType     string  `json:"meal_type"`
	Fraction     float64 `json:"fraction"`
	Calories     int     `json:"kcal_target"`
	Protein      int     `json:"protein_g"`
	Carbs        int     `json:"carbs_g"`
	Fat          int     `json:"fat_g"`
	FiberMin     int     `json:"fiber_min_g"`
	SugarSoftCap float64 `json:"sugar_soft_cap_g"`
	SugarHardCap float64 `json:"sugar_hard_cap_g"`
}

// ScoreBreakdown lists every sub-score that went into a composite score.
type ScoreBreakdown struct {
	NutritionalFit         float64 `json:"nutritional_fit"`
	SimilarityToLikes      float64 `json:"similarity_to_likes"`
	VarietyBoost           float64 `json:"variety_boost"`
	PantryMatch            float64 `json:"pantry_match"`
	CostScore              float64 `json:"cost_score"`
	RecencyPenalty         float64 `json:"recency_penalty"`
	MetadataOverlap        float64 `json:"metadata_overlap"`
	VectorSimilarity       float64 `json:"vector_similarity"`
	CollaborativeFiltering float64 `json:"collaborative_filtering"`
}

// ScoredRecipe is a recipe with its composite score, used while ranking.
type ScoredRecipe struct {
	Recipe
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// NutritionOf returns a complete nutrition record for r. Missing data reads
// as zeros; it never returns nil.
func NutritionOf(r *Recipe) Nutrition {
	if r == nil || r.Nutrition == nil {
		return Nutrition{}
	}
	n := *r.Nutrition
	for _, f := range []*float64{&n.Calories, &n.Protein, &n.Carbs, &n.Fat, &n.Fiber, &n.Sugar, &n.Cost} {
		if *f < 0 || math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
		}
	}
	return n
}

// DeriveNutrientScore estimates a 0-100 nutrient density score from whatever
// macro fields are present: protein share of calories, fiber per 100 kcal and
// sugar share of calories.
func DeriveNutrientScore(n Nutrition) float64 {
	if n.Calories <= 0 {
		if n.Protein > 0 || n.Fiber > 0 {
			return 50
		}
		return 0
	}
	proteinRatio := n.Protein * 4 / n.Calories
	fiberPer100 := n.Fiber / n.Calories * 100
	sugarRatio := n.Sugar * 4 / n.Calories

	score := 40*minFloat(1, proteinRatio/0.3) +
		40*minFloat(1, fiberPer100/1.5) +
		20*(1-minFloat(1, sugarRatio/0.25))
	return float64(int(score*10+0.5)) / 10
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
