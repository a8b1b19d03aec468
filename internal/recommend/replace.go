package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"go.uber.org/zap"
)

// DislikeRecorder persists a rejected recipe into the user's disliked set and
// returns the updated preferences.
type DislikeRecorder interface {
	Dislike(ctx context.Context, recipeID string) (model.Preferences, error)
}

// RejectRequest describes a user rejecting one recipe of a recommendation set.
type RejectRequest struct {
	Request
	RejectedID string
	// Recommended is the active recommendation set the rejected recipe came from.
	Recommended []model.ScoredRecipe
	// SelectedIDs are recipes the user already chose, e.g. for the current plan.
	SelectedIDs []string
}

// RejectResult is the recommendation set after a rejection.
type RejectResult struct {
	Recommendations []model.ScoredRecipe `json:"recommendations"`
	// Replacement is nil when no eligible recipe remained.
	Replacement *model.ScoredRecipe `json:"replacement,omitempty"`
	Prefs       model.Preferences   `json:"-"`
}

// Reject removes req.RejectedID from the recommendation set, records it as
// disliked through store, and tries to find exactly one replacement that is
// neither the rejected recipe nor already selected or recommended. Finding
// nothing is not an error.
func (e *Engine) Reject(ctx context.Context, store DislikeRecorder, req RejectRequest) (*RejectResult, error) {
	rejected := strings.TrimSpace(req.RejectedID)
	if rejected == "" {
		return nil, fmt.Errorf("rejected recipe id is required")
	}

	prefs := req.Prefs
	if store != nil {
		updated, err := store.Dislike(ctx, rejected)
		if err != nil {
			return nil, fmt.Errorf("failed to record disliked recipe: %w", err)
		}
		prefs = updated
	} else if !containsID(prefs.DislikedRecipes, rejected) {
		prefs.DislikedRecipes = append(append([]string(nil), prefs.DislikedRecipes...), rejected)
	}

	remaining := make([]model.ScoredRecipe, 0, len(req.Recommended))
	exclude := append([]string{rejected}, req.SelectedIDs...)
	existing := make([]model.Recipe, 0, len(req.Recommended))
	for _, r := range req.Recommended {
		exclude = append(exclude, r.ID)
		if r.ID == rejected {
			continue
		}
		remaining = append(remaining, r)
		existing = append(existing, r.Recipe)
	}

	next := req.Request
	next.Prefs = prefs
	next.Count = 1
	next.ExcludeIDs = append(append([]string(nil), req.ExcludeIDs...), exclude...)
	next.Existing = append(append([]model.Recipe(nil), req.Existing...), existing...)

	result := &RejectResult{Recommendations: remaining, Prefs: prefs}

	found, err := e.GetRecommendations(ctx, next)
	if err != nil {
		e.logger.Warn("replacement lookup failed", zap.String("rejected_id", rejected), zap.Error(err))
		e.metrics.replacement(false)
		return result, nil
	}
	if len(found) == 0 {
		e.metrics.replacement(false)
		return result, nil
	}

	replacement := found[0]
	result.Replacement = &replacement
	result.Recommendations = append(result.Recommendations, replacement)
	e.metrics.replacement(true)
	return result, nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
