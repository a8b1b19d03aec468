package service

import (
	"context"
	"testing"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationKey(t *testing.T) {
	assert.Equal(t, "recommendations:u-1:any", recommendationKey("u-1", ""))
	assert.Equal(t, "recommendations:u-1:lunch", recommendationKey("u-1", " Lunch "))
}

func TestRecommendationCacheRoundTrip(t *testing.T) {
	cache := NewRecommendationCache(newTestRedis(t))
	ctx := context.Background()

	_, ok, err := cache.Load(ctx, "u-1", "dinner")
	require.NoError(t, err)
	assert.False(t, ok)

	recs := []model.ScoredRecipe{{Recipe: model.Recipe{ID: "r1", Title: "Soup"}, Score: 0.8}}
	require.NoError(t, cache.Save(ctx, "u-1", "dinner", recs))
	require.NoError(t, cache.Save(ctx, "u-1", "", recs))

	got, ok, err := cache.Load(ctx, "u-1", "dinner")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, 0.8, got[0].Score)

	require.NoError(t, cache.Invalidate(ctx, "u-1"))
	_, ok, err = cache.Load(ctx, "u-1", "dinner")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, _ = cache.Load(ctx, "u-1", "")
	assert.False(t, ok)
}
