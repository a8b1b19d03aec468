package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mealplanner/backend/config"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/api"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/mealplan"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/recommend"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/router"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// New wires the services, the recommendation engine and the routes. redisClient
// may be nil, which disables caching and the suggestion rate limit.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := api.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var llm service.LLMClient
	if cfg.DeepSeekAPIKey != "" {
		llm = service.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekAPIURL, logger)
		logger.Info("Live recipe suggestions enabled")
	} else {
		logger.Info("No DeepSeek key configured, suggestions are synthesized offline")
	}

	recipes := service.NewRecipeService(db)
	likes := service.NewLikeService(db)
	suggestions := service.NewSuggestionService(llm, redisClient, logger)
	engine := recommend.NewEngine(recipes, suggestions, logger).
		WithEnricher(service.NewNutritionService(llm, logger)).
		WithCoLikes(likes).
		WithMetrics(recommend.NewMetrics(registry))

	opts := api.Options{
		Recipes:           recipes,
		Likes:             likes,
		Preferences:       service.NewPreferencesService(service.NewGormPreferencesRepository(db), logger),
		Engine:            engine,
		Suggester:         suggestions,
		Planner:           mealplan.NewPlanner(engine, logger),
		SuggestionLimiter: middleware.NewSuggestionRateLimiter(redisClient, cfg.SuggestionRateLimit, logger),
		Logger:            logger,
	}
	if redisClient != nil {
		opts.Cache = service.NewRecommendationCache(redisClient)
	}
	if cfg.VisionAPIURL != "" {
		opts.Vision = service.NewVisionClient(cfg.VisionAPIURL, logger)
	}

	return &Server{
		router: router.SetupRouter(router.Config{
			Handler:     api.NewHandler(opts),
			DB:          db,
			Gatherer:    registry,
			CORSOrigins: cfg.CORSOrigins,
			Logger:      logger,
		}),
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.http.Handler = s.router

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.http.Shutdown(ctx)
}
