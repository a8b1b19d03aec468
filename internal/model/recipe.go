package model

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Name   string  `json:"name,omitempty"`
}

// DisplayName returns the ingredient name, falling back to its identifier.
func (i Ingredient) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

// Recipe is a catalog entry. Nutrition may be nil until enrichment runs.
type Recipe struct {
	ID            string           `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Title         string           `gorm:"size:255;not null" json:"title"`
	Image         string           `gorm:"size:255" json:"image"`
	PrepTime      string           `gorm:"size:50" json:"prep_time"`
	Category      string           `gorm:"size:50;index" json:"category"`
	Tags          JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	Ingredients   []Ingredient     `gorm:"serializer:json;type:jsonb" json:"ingredients"`
	Nutrition     *Nutrition       `gorm:"serializer:json;type:jsonb" json:"nutrition,omitempty"`
	Difficulty    string           `gorm:"size:20" json:"difficulty"`
	Servings      int              `json:"servings"`
	AuthorStyle   string           `gorm:"size:100" json:"author_style,omitempty"`
	Alternatives  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"alternatives,omitempty"`
	NutrientScore *float64         `json:"nutrient_score,omitempty"`
	Embedding     pgvector.Vector  `gorm:"type:vector(16)" json:"-"`
}

// BeforeSave keeps the embedding column populated; pgvector rejects empty vectors.
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	if len(r.Embedding.Slice()) == 0 {
		r.Embedding = TextEmbedding(r.EmbeddingText())
	}
	return nil
}

// EmbeddingText is the text a recipe's embedding is derived from.
func (r *Recipe) EmbeddingText() string {
	parts := make([]string, 0, len(r.Tags)+len(r.Ingredients)+2)
	parts = append(parts, r.Title, r.Category)
	parts = append(parts, r.Tags...)
	for _, ing := range r.Ingredients {
		parts = append(parts, ing.DisplayName())
	}
	return strings.Join(parts, " ")
}

// HasTag reports whether the recipe carries tag, ignoring case.
func (r *Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Facets returns the lower-cased tag set plus the category.
func (r *Recipe) Facets() map[string]struct{} {
	out := make(map[string]struct{}, len(r.Tags)+1)
	for _, t := range r.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out[t] = struct{}{}
		}
	}
	if c := strings.ToLower(strings.TrimSpace(r.Category)); c != "" {
		out[c] = struct{}{}
	}
	return out
}

// RecipeLike records that a user liked a recipe.
type RecipeLike struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_like_user_recipe" json:"user_id"`
	RecipeID  string    `gorm:"size:64;not null;uniqueIndex:idx_like_user_recipe;index" json:"recipe_id"`
}

func (RecipeLike) TableName() string {
	return "recipe_likes"
}
