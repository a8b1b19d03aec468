package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mealplanner/backend/config"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/database"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/logger"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/service"
)

var (
	categories   = []string{"breakfast", "lunch", "dinner", "snack", "dessert"}
	cuisines     = []string{"italian", "mexican", "indian", "thai", "greek", "japanese", "mediterranean"}
	diets        = []string{"vegetarian", "vegan", "gluten-free", "dairy-free", "high-protein"}
	difficulties = []string{"easy", "medium", "hard"}
	units        = []string{"g", "ml", "pc"}
)

func main() {
	source := flag.String("source", "auto", "Catalog source: auto, fake or s3")
	count := flag.Int("count", 40, "Number of fake recipes to generate")
	seed := flag.Int64("seed", 0, "Random seed for fake recipes (0 uses the clock)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *source == "auto" {
		*source = "fake"
		if cfg.CatalogS3Bucket != "" {
			*source = "s3"
		}
	}

	var recipes []model.Recipe
	switch *source {
	case "s3":
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			log.Fatal("Failed to configure S3", zap.Error(err))
		}
		recipes, err = service.NewS3CatalogLoader(s3cfg.Client, s3cfg.BucketName, s3cfg.ObjectKey).Load(ctx)
		if err != nil {
			log.Fatal("Failed to load catalog from S3", zap.Error(err))
		}
	case "fake":
		if *seed == 0 {
			*seed = time.Now().UnixNano()
		}
		recipes = generateCatalog(gofakeit.New(*seed), *count)
	default:
		log.Fatal("Unknown catalog source", zap.String("source", *source))
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	if err := service.NewRecipeService(db).UpsertRecipes(ctx, recipes); err != nil {
		log.Fatal("Failed to seed recipes", zap.Error(err))
	}
	log.Info("Seeded recipe catalog", zap.String("source", *source), zap.Int("recipes", len(recipes)))
}

// generateCatalog builds n plausible recipes, cycling through the meal
// categories so every occasion has candidates.
func generateCatalog(f *gofakeit.Faker, n int) []model.Recipe {
	recipes := make([]model.Recipe, 0, n)
	for i := 0; i < n; i++ {
		category := categories[i%len(categories)]

		tags := model.JSONBStringArray{f.RandomString(cuisines)}
		if f.Bool() {
			tags = append(tags, f.RandomString(diets))
		}

		ingredients := make([]model.Ingredient, 0, 6)
		for j, k := 0, f.IntRange(3, 6); j < k; j++ {
			name := f.Vegetable()
			if j%2 == 1 {
				name = f.Fruit()
			}
			ingredients = append(ingredients, model.Ingredient{
				ID:     fmt.Sprintf("%d-%d", i+1, j+1),
				Amount: float64(f.IntRange(1, 40) * 10),
				Unit:   f.RandomString(units),
				Name:   name,
			})
		}

		nutrition := model.Nutrition{
			Calories: float64(f.IntRange(200, 900)),
			Protein:  float64(f.IntRange(5, 60)),
			Carbs:    float64(f.IntRange(10, 120)),
			Fat:      float64(f.IntRange(3, 45)),
			Fiber:    float64(f.IntRange(1, 15)),
			Sugar:    float64(f.IntRange(1, 35)),
			Cost:     float64(f.IntRange(100, 1200)) / 100,
		}
		score := model.DeriveNutrientScore(nutrition)

		recipes = append(recipes, model.Recipe{
			ID:            fmt.Sprintf("seed-%03d", i+1),
			Title:         mealTitle(f, category),
			Image:         f.ImageURL(640, 480),
			PrepTime:      fmt.Sprintf("%d min", f.IntRange(2, 12)*5),
			Category:      category,
			Tags:          tags,
			Ingredients:   ingredients,
			Nutrition:     &nutrition,
			Difficulty:    f.RandomString(difficulties),
			Servings:      f.IntRange(1, 6),
			Alternatives:  model.JSONBStringArray{},
			NutrientScore: &score,
		})
	}
	return recipes
}

func mealTitle(f *gofakeit.Faker, category string) string {
	switch category {
	case "breakfast":
		return f.Breakfast()
	case "lunch":
		return f.Lunch()
	case "snack":
		return f.Snack()
	case "dessert":
		return f.Dessert()
	default:
		return f.Dinner()
	}
}
