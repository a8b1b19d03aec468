package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrRecipeNotFound is returned when a recipe id is unknown.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrSimilarityUnsupported is returned by SimilarRecipes off postgres.
	ErrSimilarityUnsupported = errors.New("similar recipes need postgres with pgvector")
)

// RecipeFilter narrows SearchRecipes. Zero values match everything.
type RecipeFilter struct {
	Query    string
	Category string
	Tag      string
	Limit    int
}

// RecipeService is the gorm-backed recipe catalog.
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// ListRecipes returns the whole catalog ordered by id.
func (s *RecipeService) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := s.db.WithContext(ctx).Order("id").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

// SearchRecipes matches the title case-insensitively and filters by category.
// Tag filtering happens in memory so it works on every driver.
func (s *RecipeService) SearchRecipes(ctx context.Context, f RecipeFilter) ([]model.Recipe, error) {
	query := s.db.WithContext(ctx).Order("id")
	if q := strings.TrimSpace(f.Query); q != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(c))
	}

	var recipes []model.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}

	if tag := strings.TrimSpace(f.Tag); tag != "" {
		filtered := recipes[:0]
		for _, r := range recipes {
			if r.HasTag(tag) {
				filtered = append(filtered, r)
			}
		}
		recipes = filtered
	}
	if f.Limit > 0 && len(recipes) > f.Limit {
		recipes = recipes[:f.Limit]
	}
	return recipes, nil
}

// UpsertRecipes inserts or fully updates recipes by id.
func (s *RecipeService) UpsertRecipes(ctx context.Context, recipes []model.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).CreateInBatches(recipes, 100).Error
	if err != nil {
		return fmt.Errorf("failed to upsert recipes: %w", err)
	}
	return nil
}

// SimilarRecipes returns the recipes nearest to id by embedding cosine
// distance. It needs the pgvector extension.
func (s *RecipeService) SimilarRecipes(ctx context.Context, id string, limit int) ([]model.Recipe, error) {
	if s.db.Dialector.Name() != "postgres" {
		return nil, ErrSimilarityUnsupported
	}
	target, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	vec := target.Embedding
	if len(vec.Slice()) == 0 {
		vec = model.TextEmbedding(target.EmbeddingText())
	}

	var recipes []model.Recipe
	err = s.db.WithContext(ctx).
		Where("id <> ?", id).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{pgvector.NewVector(vec.Slice())}},
		}).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find similar recipes: %w", err)
	}
	return recipes, nil
}
