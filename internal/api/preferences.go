package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/preset"
)

func (h *Handler) GetPreferences(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, store.Get())
}

// UpdatePreferences merges a partial update.
func (h *Handler) UpdatePreferences(c *gin.Context) {
	var patch model.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.savePreferences(c, func() (model.Preferences, error) {
		return store.Update(c.Request.Context(), patch)
	})
}

// ReplacePreferences swaps the whole profile.
func (h *Handler) ReplacePreferences(c *gin.Context) {
	var prefs model.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.savePreferences(c, func() (model.Preferences, error) {
		return store.Replace(c.Request.Context(), prefs)
	})
}

func (h *Handler) ResetPreferences(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.savePreferences(c, func() (model.Preferences, error) {
		return store.Reset(c.Request.Context())
	})
}

// MarkViewed pushes a recipe onto the recently viewed history.
func (h *Handler) MarkViewed(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.savePreferences(c, func() (model.Preferences, error) {
		return store.MarkViewed(c.Request.Context(), id)
	})
}

func (h *Handler) savePreferences(c *gin.Context, save func() (model.Preferences, error)) {
	prefs, err := save()
	if err != nil {
		h.logger.Error("failed to save preferences", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}
	h.invalidate(c)
	c.JSON(http.StatusOK, prefs)
}

type dailyTargets struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type budgetResponse struct {
	Goal  string             `json:"goal"`
	Daily dailyTargets       `json:"daily"`
	Meals []model.MealBudget `json:"meals"`
}

// GetBudget returns the caller's daily targets and per-meal budgets, or the
// budget of a single meal_type.
func (h *Handler) GetBudget(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	prefs := store.Get()
	includeBreakfast := !prefs.SkipBreakfast

	mealTypes := preset.MealTypes(includeBreakfast, prefs.IncludeSnacks)
	if mt := strings.TrimSpace(c.Query("meal_type")); mt != "" {
		mealTypes = []string{mt}
	}

	calories, protein, carbs, fat := preset.DailyTargets(prefs)
	resp := budgetResponse{
		Goal:  string(preset.UserGoal(prefs)),
		Daily: dailyTargets{Calories: calories, Protein: protein, Carbs: carbs, Fat: fat},
		Meals: make([]model.MealBudget, 0, len(mealTypes)),
	}
	for _, mt := range mealTypes {
		resp.Meals = append(resp.Meals, preset.MealBudget(prefs, mt, includeBreakfast))
	}
	c.JSON(http.StatusOK, resp)
}
