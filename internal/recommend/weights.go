package recommend

import (
	"math"
	"strings"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/preset"
)

// Factor names as they appear in persisted weight vectors.
const (
	FactorNutritionalFit         = "nutritional_fit"
	FactorSimilarityToLikes      = "similarity_to_likes"
	FactorVarietyBoost           = "variety_boost"
	FactorPantryMatch            = "pantry_match"
	FactorCostScore              = "cost_score"
	FactorRecencyPenalty         = "recency_penalty"
	FactorMetadataOverlap        = "metadata_overlap"
	FactorVectorSimilarity       = "vector_similarity"
	FactorCollaborativeFiltering = "collaborative_filtering"
)

// Factors lists the nine known scoring factors.
var Factors = []string{
	FactorNutritionalFit,
	FactorSimilarityToLikes,
	FactorVarietyBoost,
	FactorPantryMatch,
	FactorCostScore,
	FactorRecencyPenalty,
	FactorMetadataOverlap,
	FactorVectorSimilarity,
	FactorCollaborativeFiltering,
}

// DefaultWeights returns the normalized Healthy preset weights.
func DefaultWeights() model.Weights {
	return normalize(preset.PresetWeights(preset.Healthy))
}

// WeightsForGoal returns the normalized preset weights of goal.
func WeightsForGoal(goal preset.Goal) model.Weights {
	return normalize(preset.PresetWeights(goal))
}

// NormalizeWeights turns a partial, loosely typed weight vector into a complete
// one whose entries sum to 1.0. Missing, negative or non-numeric entries count
// as zero. Keys may be snake_case or camelCase. When nothing usable remains the
// default weights are returned instead of dividing by zero.
func NormalizeWeights(raw map[string]any) model.Weights {
	values := make(map[string]float64, len(Factors))
	for key, v := range raw {
		name := canonicalFactor(key)
		if name == "" {
			continue
		}
		if f, ok := numeric(v); ok {
			values[name] = f
		}
	}
	return normalize(fromMap(values))
}

// Normalize rescales w so its entries sum to 1.0, with the same zero-sum
// policy as NormalizeWeights.
func Normalize(w model.Weights) model.Weights {
	return normalize(w)
}

// WeightsToMap flattens w keyed by factor name.
func WeightsToMap(w model.Weights) map[string]float64 {
	return map[string]float64{
		FactorNutritionalFit:         w.NutritionalFit,
		FactorSimilarityToLikes:      w.SimilarityToLikes,
		FactorVarietyBoost:           w.VarietyBoost,
		FactorPantryMatch:            w.PantryMatch,
		FactorCostScore:              w.CostScore,
		FactorRecencyPenalty:         w.RecencyPenalty,
		FactorMetadataOverlap:        w.MetadataOverlap,
		FactorVectorSimilarity:       w.VectorSimilarity,
		FactorCollaborativeFiltering: w.CollaborativeFiltering,
	}
}

func normalize(w model.Weights) model.Weights {
	m := WeightsToMap(w)
	var largest float64
	for k, v := range m {
		if !usable(v) {
			m[k] = 0
			continue
		}
		largest = math.Max(largest, v)
	}
	if largest <= 0 {
		return normalize(preset.PresetWeights(preset.Healthy))
	}
	// Scaled by the largest entry; the raw sum can overflow.
	var total float64
	for k, v := range m {
		m[k] = v / largest
		total += m[k]
	}
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return normalize(preset.PresetWeights(preset.Healthy))
	}
	for k, v := range m {
		m[k] = v / total
	}
	return fromMap(m)
}

func fromMap(m map[string]float64) model.Weights {
	return model.Weights{
		NutritionalFit:         m[FactorNutritionalFit],
		SimilarityToLikes:      m[FactorSimilarityToLikes],
		VarietyBoost:           m[FactorVarietyBoost],
		PantryMatch:            m[FactorPantryMatch],
		CostScore:              m[FactorCostScore],
		RecencyPenalty:         m[FactorRecencyPenalty],
		MetadataOverlap:        m[FactorMetadataOverlap],
		VectorSimilarity:       m[FactorVectorSimilarity],
		CollaborativeFiltering: m[FactorCollaborativeFiltering],
	}
}

func canonicalFactor(key string) string {
	k := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "_", ""))
	for _, f := range Factors {
		if strings.ReplaceAll(f, "_", "") == k {
			return f
		}
	}
	return ""
}

func numeric(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case interface{ Float64() (float64, error) }:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	return f, usable(f)
}

func usable(f float64) bool {
	return f >= 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}
