package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/mealplan"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/recommend"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/service"
)

// GetRecommendations ranks recipes for the caller. With cached=true a cached
// set is served when one exists.
func (h *Handler) GetRecommendations(c *gin.Context) {
	count, ok := queryInt(c, "count", 0)
	if !ok {
		return
	}
	mealType := strings.TrimSpace(c.Query("meal_type"))
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	if c.Query("cached") == "true" && h.cache != nil {
		recs, hit, err := h.cache.Load(ctx, userID, mealType)
		if err != nil {
			h.logger.Warn("failed to read cached recommendations", zap.Error(err))
		}
		if hit {
			c.JSON(http.StatusOK, gin.H{"recommendations": recs, "cached": true})
			return
		}
	}

	store, ok := h.store(c)
	if !ok {
		return
	}
	recs, err := h.engine.GetRecommendations(ctx, recommend.Request{
		UserID:   userID,
		Prefs:    store.Get(),
		MealType: mealType,
		Count:    count,
	})
	if err != nil {
		h.logger.Error("failed to get recommendations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recommendations"})
		return
	}
	h.saveCached(c, mealType, recs)
	c.JSON(http.StatusOK, gin.H{"recommendations": recs, "cached": false})
}

type rejectRequest struct {
	RecipeID string `json:"recipe_id" binding:"required"`
	MealType string `json:"meal_type"`
	// Recommended is the set the recipe was rejected from; the cached set
	// for the meal type is used when it is empty.
	Recommended []model.ScoredRecipe `json:"recommended"`
	SelectedIDs []string             `json:"selected_ids"`
}

// RejectRecommendation dislikes a recommended recipe and returns the set
// with at most one replacement.
func (h *Handler) RejectRecommendation(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store, ok := h.store(c)
	if !ok {
		return
	}
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	recommended := req.Recommended
	if len(recommended) == 0 && h.cache != nil {
		cached, _, err := h.cache.Load(ctx, userID, req.MealType)
		if err != nil {
			h.logger.Warn("failed to read cached recommendations", zap.Error(err))
		}
		recommended = cached
	}

	result, err := h.engine.Reject(ctx, store, recommend.RejectRequest{
		Request: recommend.Request{
			UserID:   userID,
			Prefs:    store.Get(),
			MealType: req.MealType,
		},
		RejectedID:  req.RecipeID,
		Recommended: recommended,
		SelectedIDs: req.SelectedIDs,
	})
	if err != nil {
		h.logger.Error("failed to reject recommendation", zap.String("recipe_id", req.RecipeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject recommendation"})
		return
	}

	h.invalidate(c)
	h.saveCached(c, req.MealType, result.Recommendations)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) saveCached(c *gin.Context, mealType string, recs []model.ScoredRecipe) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Save(c.Request.Context(), middleware.UserID(c), mealType, recs); err != nil {
		h.logger.Warn("failed to cache recommendations", zap.Error(err))
	}
}

type suggestRequest struct {
	Style       string   `json:"style"`
	Ingredients []string `json:"ingredients"`
}

// Suggest generates recipes in a style. Without ingredients the caller's
// pantry is used, then the adapter defaults.
func (h *Handler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	style := strings.TrimSpace(req.Style)
	if style == "" {
		style = recommend.DefaultStyle
	}
	if len(req.Ingredients) == 0 {
		store, ok := h.store(c)
		if !ok {
			return
		}
		req.Ingredients = store.Get().Pantry
	}

	recipes := h.suggester.SuggestByStyle(c.Request.Context(), style, req.Ingredients)
	c.JSON(http.StatusOK, gin.H{"style": style, "recipes": recipes})
}

type weekRequest struct {
	Days int `json:"days" binding:"gte=0,lte=14"`
}

// BuildWeek plans the coming days and lists what to buy for them.
func (h *Handler) BuildWeek(c *gin.Context) {
	var req weekRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	store, ok := h.store(c)
	if !ok {
		return
	}
	prefs := store.Get()

	plan, err := h.planner.BuildWeek(c.Request.Context(), middleware.UserID(c), prefs, req.Days)
	if err != nil {
		h.logger.Error("failed to build meal plan", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build meal plan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plan":          plan,
		"shopping_list": mealplan.ShoppingList(plan.Recipes(), prefs.Pantry),
	})
}

type shoppingListRequest struct {
	RecipeIDs []string `json:"recipe_ids" binding:"required,min=1"`
}

// ShoppingList aggregates the ingredients of the given recipes, leaving out
// what the caller's pantry already holds.
func (h *Handler) ShoppingList(c *gin.Context) {
	var req shoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store, ok := h.store(c)
	if !ok {
		return
	}

	recipes := make([]model.Recipe, 0, len(req.RecipeIDs))
	for _, id := range req.RecipeIDs {
		r, err := h.recipes.GetRecipe(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, service.ErrRecipeNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found", "recipe_id": id})
				return
			}
			h.logger.Error("failed to get recipe", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recipe"})
			return
		}
		recipes = append(recipes, *r)
	}
	c.JSON(http.StatusOK, gin.H{"items": mealplan.ShoppingList(recipes, store.Get().Pantry)})
}
