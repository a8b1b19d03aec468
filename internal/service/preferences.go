package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/recommend"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecentlyViewedLimit caps the recently viewed history.
const RecentlyViewedLimit = 20

// ErrPreferencesNotFound is returned when a user has no stored preferences.
var ErrPreferencesNotFound = errors.New("preferences not found")

// PersistFunc durably stores a preferences value.
type PersistFunc func(ctx context.Context, prefs model.Preferences) error

// DefaultPreferences returns the normalized profile of a new user.
func DefaultPreferences() model.Preferences {
	return recommend.NormalizePreferences(model.Preferences{})
}

// PreferencesStore owns one user's preferences. Every mutation is normalized,
// handed to the persist callback, and rolled back if persisting fails.
type PreferencesStore struct {
	mu      sync.Mutex
	prefs   model.Preferences
	persist PersistFunc
	now     func() time.Time
}

// NewPreferencesStore creates a new PreferencesStore instance. persist may be nil.
func NewPreferencesStore(initial model.Preferences, persist PersistFunc) *PreferencesStore {
	return &PreferencesStore{
		prefs:   recommend.NormalizePreferences(initial),
		persist: persist,
		now:     time.Now,
	}
}

// Get returns a copy of the current preferences.
func (s *PreferencesStore) Get() model.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePreferences(s.prefs)
}

// Update merges patch into the current preferences.
func (s *PreferencesStore) Update(ctx context.Context, patch model.PreferencesPatch) (model.Preferences, error) {
	return s.mutate(ctx, func(p *model.Preferences) {
		applyPatch(p, patch)
	})
}

// Replace swaps the whole preferences value.
func (s *PreferencesStore) Replace(ctx context.Context, prefs model.Preferences) (model.Preferences, error) {
	return s.mutate(ctx, func(p *model.Preferences) {
		*p = clonePreferences(prefs)
	})
}

// Reset restores the defaults.
func (s *PreferencesStore) Reset(ctx context.Context) (model.Preferences, error) {
	return s.Replace(ctx, model.Preferences{})
}

// MarkViewed moves recipeID to the front of the recently viewed list.
func (s *PreferencesStore) MarkViewed(ctx context.Context, recipeID string) (model.Preferences, error) {
	return s.mutate(ctx, func(p *model.Preferences) {
		viewed := []string{recipeID}
		for _, id := range p.RecentlyViewed {
			if id != recipeID && len(viewed) < RecentlyViewedLimit {
				viewed = append(viewed, id)
			}
		}
		p.RecentlyViewed = viewed
	})
}

// Dislike adds recipeID to the disliked set and drops it from the liked set.
func (s *PreferencesStore) Dislike(ctx context.Context, recipeID string) (model.Preferences, error) {
	return s.mutate(ctx, func(p *model.Preferences) {
		p.LikedRecipes = without(p.LikedRecipes, recipeID)
		p.DislikedRecipes = append(without(p.DislikedRecipes, recipeID), recipeID)
	})
}

// Like adds recipeID to the liked set and drops it from the disliked set.
func (s *PreferencesStore) Like(ctx context.Context, recipeID string) (model.Preferences, error) {
	return s.mutate(ctx, func(p *model.Preferences) {
		p.DislikedRecipes = without(p.DislikedRecipes, recipeID)
		p.LikedRecipes = append(without(p.LikedRecipes, recipeID), recipeID)
	})
}

// Unlike drops recipeID from the liked set.
func (s *PreferencesStore) Unlike(ctx context.Context, recipeID string) (model.Preferences, error) {
	return s.mutate(ctx, func(p *model.Preferences) {
		p.LikedRecipes = without(p.LikedRecipes, recipeID)
	})
}

// AddPantryItems appends items not already in the pantry.
func (s *PreferencesStore) AddPantryItems(ctx context.Context, items []string) (model.Preferences, error) {
	return s.mutate(ctx, func(p *model.Preferences) {
		p.Pantry = append(p.Pantry, items...)
	})
}

func (s *PreferencesStore) mutate(ctx context.Context, fn func(*model.Preferences)) (model.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.prefs
	next := clonePreferences(prev)
	fn(&next)
	next = recommend.NormalizePreferences(next)
	next.UpdatedAt = s.now().UTC()

	s.prefs = next
	if s.persist != nil {
		if err := s.persist(ctx, clonePreferences(next)); err != nil {
			s.prefs = prev
			return clonePreferences(prev), fmt.Errorf("failed to persist preferences: %w", err)
		}
	}
	return clonePreferences(next), nil
}

func applyPatch(p *model.Preferences, patch model.PreferencesPatch) {
	if patch.DailyCalories != nil {
		p.DailyCalories = *patch.DailyCalories
	}
	if patch.ProteinGrams != nil {
		p.ProteinGrams = *patch.ProteinGrams
	}
	if patch.CarbsGrams != nil {
		p.CarbsGrams = *patch.CarbsGrams
	}
	if patch.FatGrams != nil {
		p.FatGrams = *patch.FatGrams
	}
	if patch.DietaryRestrictions != nil {
		p.DietaryRestrictions = patch.DietaryRestrictions
	}
	if patch.LikedRecipes != nil {
		p.LikedRecipes = patch.LikedRecipes
	}
	if patch.DislikedRecipes != nil {
		p.DislikedRecipes = patch.DislikedRecipes
	}
	if patch.LikedFoods != nil {
		p.LikedFoods = patch.LikedFoods
	}
	if patch.DislikedFoods != nil {
		p.DislikedFoods = patch.DislikedFoods
	}
	if patch.Pantry != nil {
		p.Pantry = patch.Pantry
	}
	if patch.RecommendationPreset != nil {
		p.RecommendationPreset = *patch.RecommendationPreset
		// A new preset brings its own weights unless the patch sets them.
		if patch.Weights == nil {
			p.Weights = model.Weights{}
		}
	}
	if patch.FitnessGoal != nil {
		p.FitnessGoal = *patch.FitnessGoal
	}
	if patch.Weights != nil {
		p.Weights = recommend.NormalizeWeights(patch.Weights)
	}
	if patch.AuthorStyle != nil {
		p.AuthorStyle = *patch.AuthorStyle
	}
	if patch.Cooking != nil {
		p.Cooking = *patch.Cooking
	}
	if patch.SkipBreakfast != nil {
		p.SkipBreakfast = *patch.SkipBreakfast
	}
	if patch.IncludeSnacks != nil {
		p.IncludeSnacks = *patch.IncludeSnacks
	}
}

func clonePreferences(p model.Preferences) model.Preferences {
	out := p
	out.DietaryRestrictions = cloneList(p.DietaryRestrictions)
	out.LikedRecipes = cloneList(p.LikedRecipes)
	out.DislikedRecipes = cloneList(p.DislikedRecipes)
	out.LikedFoods = cloneList(p.LikedFoods)
	out.DislikedFoods = cloneList(p.DislikedFoods)
	out.Pantry = cloneList(p.Pantry)
	out.RecentlyViewed = cloneList(p.RecentlyViewed)
	return out
}

func cloneList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if !strings.EqualFold(v, id) {
			out = append(out, v)
		}
	}
	return out
}

// PreferencesRepository loads and stores preference documents.
type PreferencesRepository interface {
	Load(ctx context.Context, userID string) (*model.Preferences, error)
	Save(ctx context.Context, userID string, prefs model.Preferences) error
}

// GormPreferencesRepository stores preferences as one JSON document per user.
type GormPreferencesRepository struct {
	db *gorm.DB
}

// NewGormPreferencesRepository creates a new GormPreferencesRepository instance
func NewGormPreferencesRepository(db *gorm.DB) *GormPreferencesRepository {
	return &GormPreferencesRepository{db: db}
}

// Load returns ErrPreferencesNotFound when the user has no document.
func (r *GormPreferencesRepository) Load(ctx context.Context, userID string) (*model.Preferences, error) {
	var row model.UserPreferences
	if err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPreferencesNotFound
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return &row.Preferences, nil
}

// Save upserts the user's document.
func (r *GormPreferencesRepository) Save(ctx context.Context, userID string, prefs model.Preferences) error {
	row := model.UserPreferences{UserID: userID, Preferences: prefs}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"preferences", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// PreferencesService hands out one store per user, loading it on first use.
type PreferencesService struct {
	repo   PreferencesRepository
	logger *zap.Logger

	mu     sync.Mutex
	stores map[string]*PreferencesStore
}

// NewPreferencesService creates a new PreferencesService instance
func NewPreferencesService(repo PreferencesRepository, logger *zap.Logger) *PreferencesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferencesService{
		repo:   repo,
		logger: logger,
		stores: make(map[string]*PreferencesStore),
	}
}

// Store returns the user's preferences store. Users without stored
// preferences start from the defaults.
func (s *PreferencesService) Store(ctx context.Context, userID string) (*PreferencesStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.stores[userID]; ok {
		return store, nil
	}

	initial := DefaultPreferences()
	loaded, err := s.repo.Load(ctx, userID)
	switch {
	case err == nil:
		initial = *loaded
	case errors.Is(err, ErrPreferencesNotFound):
		s.logger.Debug("no stored preferences, using defaults", zap.String("user_id", userID))
	default:
		return nil, err
	}

	store := NewPreferencesStore(initial, func(ctx context.Context, prefs model.Preferences) error {
		return s.repo.Save(ctx, userID, prefs)
	})
	s.stores[userID] = store
	return store, nil
}
