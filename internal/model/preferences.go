package model

import "time"

// Weights is the named vector of scoring-factor contributions. Values used
// for scoring always sum to 1.0; see recommend.NormalizeWeights.
type Weights struct {
	NutritionalFit         float64 `json:"nutritional_fit"`
	SimilarityToLikes      float64 `json:"similarity_to_likes"`
	VarietyBoost           float64 `json:"variety_boost"`
	PantryMatch            float64 `json:"pantry_match"`
	CostScore              float64 `json:"cost_score"`
	RecencyPenalty         float64 `json:"recency_penalty"`
	MetadataOverlap        float64 `json:"metadata_overlap,omitempty"`
	VectorSimilarity       float64 `json:"vector_similarity,omitempty"`
	CollaborativeFiltering float64 `json:"collaborative_filtering,omitempty"`
}

// Sum returns the total of all factors.
func (w Weights) Sum() float64 {
	return w.NutritionalFit + w.SimilarityToLikes + w.VarietyBoost + w.PantryMatch +
		w.CostScore + w.RecencyPenalty + w.MetadataOverlap + w.VectorSimilarity +
		w.CollaborativeFiltering
}

// CookingConstraints narrows what a user is able or willing to cook.
type CookingConstraints struct {
	// MaxPrepMinutes of 0 means no limit.
	MaxPrepMinutes int `json:"max_prep_minutes,omitempty"`
	// Experience is beginner, intermediate or advanced. Default beginner.
	Experience string `json:"experience,omitempty"`
	// BudgetTier is low, medium or high. Default medium.
	BudgetTier string `json:"budget_tier,omitempty"`
}

// Preferences is a user's recommendation profile.
//
// Zero values are meaningful defaults: a zero calorie or macro override means
// "use the goal preset", an empty goal means Healthy, zero weights mean the
// preset weights, and SkipBreakfast=false plans breakfast.
type Preferences struct {
	DailyCalories float64 `json:"daily_calories,omitempty"`
	ProteinGrams  float64 `json:"protein_grams,omitempty"`
	CarbsGrams    float64 `json:"carbs_grams,omitempty"`
	FatGrams      float64 `json:"fat_grams,omitempty"`

	DietaryRestrictions []string `json:"dietary_restrictions"`
	LikedRecipes        []string `json:"liked_recipes"`
	DislikedRecipes     []string `json:"disliked_recipes"`
	LikedFoods          []string `json:"liked_foods"`
	DislikedFoods       []string `json:"disliked_foods"`
	Pantry              []string `json:"pantry"`
	RecentlyViewed      []string `json:"recently_viewed"`

	RecommendationPreset string             `json:"recommendation_preset,omitempty"`
	FitnessGoal          string             `json:"fitness_goal,omitempty"`
	Weights              Weights            `json:"recommendation_weights"`
	AuthorStyle          string             `json:"author_style,omitempty"`
	Cooking              CookingConstraints `json:"cooking_constraints"`

	SkipBreakfast bool `json:"skip_breakfast,omitempty"`
	IncludeSnacks bool `json:"include_snacks,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// PreferencesPatch is a partial update; nil fields are left untouched.
type PreferencesPatch struct {
	DailyCalories        *float64            `json:"daily_calories,omitempty" binding:"omitempty,gte=0"`
	ProteinGrams         *float64            `json:"protein_grams,omitempty" binding:"omitempty,gte=0"`
	CarbsGrams           *float64            `json:"carbs_grams,omitempty" binding:"omitempty,gte=0"`
	FatGrams             *float64            `json:"fat_grams,omitempty" binding:"omitempty,gte=0"`
	DietaryRestrictions  []string            `json:"dietary_restrictions,omitempty"`
	LikedRecipes         []string            `json:"liked_recipes,omitempty"`
	DislikedRecipes      []string            `json:"disliked_recipes,omitempty"`
	LikedFoods           []string            `json:"liked_foods,omitempty"`
	DislikedFoods        []string            `json:"disliked_foods,omitempty"`
	Pantry               []string            `json:"pantry,omitempty"`
	RecommendationPreset *string             `json:"recommendation_preset,omitempty" binding:"omitempty,goal"`
	FitnessGoal          *string             `json:"fitness_goal,omitempty" binding:"omitempty,goal"`
	Weights              map[string]any      `json:"recommendation_weights,omitempty"`
	AuthorStyle          *string             `json:"author_style,omitempty"`
	Cooking              *CookingConstraints `json:"cooking_constraints,omitempty"`
	SkipBreakfast        *bool               `json:"skip_breakfast,omitempty"`
	IncludeSnacks        *bool               `json:"include_snacks,omitempty"`
}

// UserPreferences is the persisted preferences document for one user.
type UserPreferences struct {
	UserID      string      `gorm:"primaryKey;size:36" json:"user_id"`
	Preferences Preferences `gorm:"serializer:json;type:jsonb" json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}
