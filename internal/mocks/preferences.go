package mocks

import (
	"context"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockDislikeRecorder is a mock implementation of the preferences store's
// dislike operation
type MockDislikeRecorder struct {
	mock.Mock
}

// Dislike mocks the Dislike method
func (m *MockDislikeRecorder) Dislike(ctx context.Context, recipeID string) (model.Preferences, error) {
	args := m.Called(ctx, recipeID)
	return args.Get(0).(model.Preferences), args.Error(1)
}

// MockPreferencesRepository is a mock implementation of the preferences repository
type MockPreferencesRepository struct {
	mock.Mock
}

// Load mocks the Load method
func (m *MockPreferencesRepository) Load(ctx context.Context, userID string) (*model.Preferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Preferences), args.Error(1)
}

// Save mocks the Save method
func (m *MockPreferencesRepository) Save(ctx context.Context, userID string, prefs model.Preferences) error {
	args := m.Called(ctx, userID, prefs)
	return args.Error(0)
}
