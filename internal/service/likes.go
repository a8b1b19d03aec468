package service

import (
	"context"
	"fmt"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeService records recipe likes and derives collaborative scores from them.
type LikeService struct {
	db *gorm.DB
}

// NewLikeService creates a new LikeService instance
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{db: db}
}

// Like records that userID liked recipeID. Repeated likes are ignored.
func (s *LikeService) Like(ctx context.Context, userID, recipeID string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.RecipeLike{UserID: userID, RecipeID: recipeID}).Error
	if err != nil {
		return fmt.Errorf("failed to record like: %w", err)
	}
	return nil
}

// Unlike removes a like.
func (s *LikeService) Unlike(ctx context.Context, userID, recipeID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&model.RecipeLike{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	return nil
}

// CoLikeScores finds the users who liked any of likedRecipeIDs and scores
// every recipe by the share of those users who liked it.
func (s *LikeService) CoLikeScores(ctx context.Context, userID string, likedRecipeIDs []string) (map[string]float64, error) {
	scores := make(map[string]float64)
	if len(likedRecipeIDs) == 0 {
		return scores, nil
	}

	var peers []string
	err := s.db.WithContext(ctx).Model(&model.RecipeLike{}).
		Distinct("user_id").
		Where("recipe_id IN ? AND user_id <> ?", likedRecipeIDs, userID).
		Pluck("user_id", &peers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find similar users: %w", err)
	}
	if len(peers) == 0 {
		return scores, nil
	}

	var rows []struct {
		RecipeID string
		Likes    int64
	}
	err = s.db.WithContext(ctx).Model(&model.RecipeLike{}).
		Select("recipe_id, COUNT(DISTINCT user_id) AS likes").
		Where("user_id IN ?", peers).
		Group("recipe_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count co-likes: %w", err)
	}

	for _, row := range rows {
		scores[row.RecipeID] = float64(row.Likes) / float64(len(peers))
	}
	return scores, nil
}
