package recommend

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/preset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetWeightsNormalizeToOne(t *testing.T) {
	for _, g := range preset.Goals {
		w := WeightsForGoal(g)
		assert.InDelta(t, 1.0, w.Sum(), 1e-5, g)
	}
	assert.InDelta(t, 1.0, DefaultWeights().Sum(), 1e-5)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	raw := map[string]any{
		"nutritional_fit": 3.0,
		"pantryMatch":     1,
		"cost_score":      0.5,
		"recency_penalty": 0.25,
	}
	once := NormalizeWeights(raw)
	twice := Normalize(once)

	m1, m2 := WeightsToMap(once), WeightsToMap(twice)
	for _, f := range Factors {
		assert.InDelta(t, m1[f], m2[f], 1e-12, f)
	}
	assert.InDelta(t, 1.0, twice.Sum(), 1e-9)
}

func TestNormalizeWeightsPartialVector(t *testing.T) {
	w := NormalizeWeights(map[string]any{
		"nutritional_fit":     1,
		"similarity_to_likes": 1,
	})
	assert.InDelta(t, 0.5, w.NutritionalFit, 1e-12)
	assert.InDelta(t, 0.5, w.SimilarityToLikes, 1e-12)
	assert.Zero(t, w.VarietyBoost)
	assert.Zero(t, w.CollaborativeFiltering)
}

func TestNormalizeWeightsIgnoresUnusableEntries(t *testing.T) {
	w := NormalizeWeights(map[string]any{
		"nutritional_fit":  2.0,
		"variety_boost":    "lots",
		"pantry_match":     -4.0,
		"cost_score":       math.NaN(),
		"recency_penalty":  math.Inf(1),
		"mystery_factor":   9.0,
		"vectorSimilarity": json.Number("2"),
	})
	assert.InDelta(t, 0.5, w.NutritionalFit, 1e-12)
	assert.InDelta(t, 0.5, w.VectorSimilarity, 1e-12)
	assert.Zero(t, w.VarietyBoost)
	assert.Zero(t, w.PantryMatch)
	assert.Zero(t, w.CostScore)
	assert.Zero(t, w.RecencyPenalty)

	huge := NormalizeWeights(map[string]any{
		"nutritional_fit": math.MaxFloat64,
		"cost_score":      math.MaxFloat64,
	})
	assert.InDelta(t, 0.5, huge.NutritionalFit, 1e-12)
	assert.InDelta(t, 0.5, huge.CostScore, 1e-12)
	assert.InDelta(t, 1.0, huge.Sum(), 1e-9)

	tiny := Normalize(model.Weights{NutritionalFit: math.SmallestNonzeroFloat64, PantryMatch: math.SmallestNonzeroFloat64})
	assert.InDelta(t, 0.5, tiny.NutritionalFit, 1e-12)
	assert.InDelta(t, 0.5, tiny.PantryMatch, 1e-12)
}

func TestZeroSumReturnsDefaultWeights(t *testing.T) {
	assert.Equal(t, DefaultWeights(), NormalizeWeights(nil))
	assert.Equal(t, DefaultWeights(), NormalizeWeights(map[string]any{"nutritional_fit": 0}))
	assert.Equal(t, DefaultWeights(), Normalize(model.Weights{}))
}

func TestWeightsRoundTripJSON(t *testing.T) {
	w := WeightsForGoal(preset.MuscleGain)
	b, err := json.Marshal(w)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	again := NormalizeWeights(raw)

	m1, m2 := WeightsToMap(w), WeightsToMap(again)
	for _, f := range Factors {
		assert.InDelta(t, m1[f], m2[f], 1e-12, f)
	}
}
