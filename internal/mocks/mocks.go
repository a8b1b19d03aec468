package mocks

import (
	"context"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockSuggester is a mock implementation of the suggestion adapter
type MockSuggester struct {
	mock.Mock
}

// SuggestByStyle mocks the SuggestByStyle method
func (m *MockSuggester) SuggestByStyle(ctx context.Context, style string, ingredients []string) []model.Recipe {
	args := m.Called(ctx, style, ingredients)
	if args.Get(0) == nil {
		return []model.Recipe{}
	}
	return args.Get(0).([]model.Recipe)
}

// MockLLMClient is a mock implementation of the chat completion client
type MockLLMClient struct {
	mock.Mock
}

// Complete mocks the Complete method
func (m *MockLLMClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}
