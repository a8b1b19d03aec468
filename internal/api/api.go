// Package api exposes the planner over HTTP. Every route expects the caller
// identified by middleware.UserIdentity.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/mealplan"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/preset"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/recommend"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/service"
)

// Options carries the collaborators of a Handler. Cache, Vision and
// SuggestionLimiter are optional.
type Options struct {
	Recipes           *service.RecipeService
	Likes             *service.LikeService
	Preferences       *service.PreferencesService
	Engine            *recommend.Engine
	Suggester         recommend.Suggester
	Planner           *mealplan.Planner
	Cache             *service.RecommendationCache
	Vision            *service.VisionClient
	SuggestionLimiter *middleware.RateLimiter
	Logger            *zap.Logger
}

// Handler serves the /api/v1 routes.
type Handler struct {
	recipes     *service.RecipeService
	likes       *service.LikeService
	preferences *service.PreferencesService
	engine      *recommend.Engine
	suggester   recommend.Suggester
	planner     *mealplan.Planner
	cache       *service.RecommendationCache
	vision      *service.VisionClient
	limiter     *middleware.RateLimiter
	logger      *zap.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		recipes:     opts.Recipes,
		likes:       opts.Likes,
		preferences: opts.Preferences,
		engine:      opts.Engine,
		suggester:   opts.Suggester,
		planner:     opts.Planner,
		cache:       opts.Cache,
		vision:      opts.Vision,
		limiter:     opts.SuggestionLimiter,
		logger:      logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("/analyze", h.AnalyzeRecipePhoto)
		recipes.GET("/:id", h.GetRecipe)
		recipes.GET("/:id/similar", h.SimilarRecipes)
		recipes.POST("/:id/like", h.LikeRecipe)
		recipes.DELETE("/:id/like", h.UnlikeRecipe)
	}

	prefs := router.Group("/preferences")
	{
		prefs.GET("", h.GetPreferences)
		prefs.PATCH("", h.UpdatePreferences)
		prefs.PUT("", h.ReplacePreferences)
		prefs.DELETE("", h.ResetPreferences)
		prefs.POST("/viewed/:id", h.MarkViewed)
	}
	router.GET("/budget", h.GetBudget)

	router.GET("/recommendations", h.GetRecommendations)
	router.POST("/recommendations/reject", h.RejectRecommendation)

	suggestions := []gin.HandlerFunc{}
	if h.limiter != nil {
		suggestions = append(suggestions, h.limiter.RateLimitMiddleware())
	}
	suggestions = append(suggestions, h.Suggest)
	router.POST("/suggestions", suggestions...)

	router.POST("/mealplan/week", h.BuildWeek)
	router.POST("/shopping-list", h.ShoppingList)
	router.POST("/pantry/scan", h.ScanPantry)
}

var registerOnce sync.Once

// RegisterValidators adds the "goal" binding tag, which accepts any fitness
// goal name or alias preset.ResolveGoal knows.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("goal", func(fl validator.FieldLevel) bool {
			return preset.IsKnownGoal(fl.Field().String())
		})
	})
	return err
}

// store loads the caller's preferences store, answering 500 on failure.
func (h *Handler) store(c *gin.Context) (*service.PreferencesStore, bool) {
	userID := middleware.UserID(c)
	store, err := h.preferences.Store(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load preferences", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preferences"})
		return nil, false
	}
	return store, true
}

// invalidate drops cached recommendations after a preference change.
func (h *Handler) invalidate(c *gin.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(c.Request.Context(), middleware.UserID(c)); err != nil {
		h.logger.Warn("failed to invalidate cached recommendations", zap.Error(err))
	}
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", name)})
		return 0, false
	}
	return n, true
}
