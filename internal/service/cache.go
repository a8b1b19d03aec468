package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// RecommendationCacheTTL is how long a cached recommendation set lives.
const RecommendationCacheTTL = 30 * time.Minute

// RecommendationCache keeps the last recommendation set per user and meal
// type. Concurrent writers race; the last write wins.
type RecommendationCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRecommendationCache creates a new RecommendationCache instance
func NewRecommendationCache(client *redis.Client) *RecommendationCache {
	return &RecommendationCache{redis: client, ttl: RecommendationCacheTTL}
}

func recommendationKey(userID, mealType string) string {
	mt := strings.ToLower(strings.TrimSpace(mealType))
	if mt == "" {
		mt = "any"
	}
	return fmt.Sprintf("recommendations:%s:%s", userID, mt)
}

// Save stores recs for the user and meal type.
func (c *RecommendationCache) Save(ctx context.Context, userID, mealType string, recs []model.ScoredRecipe) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	if err := c.redis.Set(ctx, recommendationKey(userID, mealType), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save recommendations to Redis: %w", err)
	}
	return nil
}

// Load returns the cached set; the bool is false on a miss.
func (c *RecommendationCache) Load(ctx context.Context, userID, mealType string) ([]model.ScoredRecipe, bool, error) {
	data, err := c.redis.Get(ctx, recommendationKey(userID, mealType)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get recommendations from Redis: %w", err)
	}
	var recs []model.ScoredRecipe
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal recommendations: %w", err)
	}
	return recs, true, nil
}

// Invalidate drops every cached set of the user, e.g. after a preference change.
func (c *RecommendationCache) Invalidate(ctx context.Context, userID string) error {
	iter := c.redis.Scan(ctx, 0, fmt.Sprintf("recommendations:%s:*", userID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached recommendations: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...).Err()
}
