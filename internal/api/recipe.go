package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/service"
)

// ListRecipes searches the catalog by q, category, tag and limit.
func (h *Handler) ListRecipes(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	recipes, err := h.recipes.SearchRecipes(c.Request.Context(), service.RecipeFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("failed to fetch recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *Handler) GetRecipe(c *gin.Context) {
	recipe, ok := h.findRecipe(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// SimilarRecipes lists the nearest recipes by embedding.
func (h *Handler) SimilarRecipes(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 5)
	if !ok {
		return
	}
	recipes, err := h.recipes.SimilarRecipes(c.Request.Context(), c.Param("id"), limit)
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	case errors.Is(err, service.ErrSimilarityUnsupported):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("failed to find similar recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find similar recipes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *Handler) LikeRecipe(c *gin.Context) {
	h.setLike(c, true)
}

func (h *Handler) UnlikeRecipe(c *gin.Context) {
	h.setLike(c, false)
}

// setLike records the like both for collaborative filtering and in the
// caller's preferences.
func (h *Handler) setLike(c *gin.Context, liked bool) {
	recipe, ok := h.findRecipe(c)
	if !ok {
		return
	}
	store, ok := h.store(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	var err error
	if liked {
		err = h.likes.Like(ctx, userID, recipe.ID)
	} else {
		err = h.likes.Unlike(ctx, userID, recipe.ID)
	}
	if err != nil {
		h.logger.Error("failed to update like", zap.String("recipe_id", recipe.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update like"})
		return
	}

	var prefs model.Preferences
	if liked {
		prefs, err = store.Like(ctx, recipe.ID)
	} else {
		prefs, err = store.Unlike(ctx, recipe.ID)
	}
	if err != nil {
		h.logger.Error("failed to save preferences", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}
	h.invalidate(c)
	c.JSON(http.StatusOK, prefs)
}

// AnalyzeRecipePhoto extracts a recipe from the uploaded "image" and adds it
// to the catalog.
func (h *Handler) AnalyzeRecipePhoto(c *gin.Context) {
	if h.vision == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo analysis is not configured"})
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	extraction, err := h.vision.AnalyzeRecipePhoto(c.Request.Context(), data)
	if err != nil {
		h.visionError(c, err)
		return
	}

	recipe := extraction.ToRecipe()
	if err := h.recipes.UpsertRecipes(c.Request.Context(), []model.Recipe{recipe}); err != nil {
		h.logger.Error("failed to save extracted recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recipe"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"recipe":       recipe,
		"instructions": extraction.Instructions,
	})
}

func (h *Handler) findRecipe(c *gin.Context) (*model.Recipe, bool) {
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return nil, false
		}
		h.logger.Error("failed to get recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recipe"})
		return nil, false
	}
	return recipe, true
}

// readUpload reads at most one byte past the image limit so oversized
// uploads are still rejected by validation.
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, service.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

func (h *Handler) visionError(c *gin.Context, err error) {
	var verr *service.VisionError
	switch {
	case errors.Is(err, service.ErrImageTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnsupportedImageType),
		errors.Is(err, service.ErrNoImages),
		errors.Is(err, service.ErrTooManyImages),
		errors.Is(err, service.ErrInvalidScanType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &verr):
		h.logger.Warn("vision service error", zap.Int("status", verr.StatusCode), zap.String("message", verr.Message))
		c.JSON(http.StatusBadGateway, gin.H{"error": verr.Message})
	default:
		h.logger.Error("vision request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "vision service unavailable"})
	}
}
