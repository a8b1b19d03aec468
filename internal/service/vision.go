package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"go.uber.org/zap"
)

// Vision service limits.
const (
	MaxImageBytes   = 10 << 20
	MaxPantryImages = 5
)

// Scan types accepted by ScanPantry.
const (
	ScanReceipt = "receipt"
	ScanFridge  = "fridge"
)

var (
	ErrImageTooLarge        = errors.New("image exceeds 10MB")
	ErrUnsupportedImageType = errors.New("unsupported image type, expected jpeg, png or webp")
	ErrTooManyImages        = errors.New("too many images, at most 5 per scan")
	ErrNoImages             = errors.New("at least one image is required")
	ErrInvalidScanType      = errors.New("scan type must be receipt or fridge")
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// VisionError is a non-2xx answer from the vision service.
type VisionError struct {
	StatusCode int
	Message    string
}

func (e *VisionError) Error() string {
	return fmt.Sprintf("vision service returned %d: %s", e.StatusCode, e.Message)
}

// RecipeExtraction is the structured recipe read from a photo.
type RecipeExtraction struct {
	Title        string             `json:"title"`
	Ingredients  []model.Ingredient `json:"ingredients"`
	Instructions []string           `json:"instructions"`
	Difficulty   string             `json:"difficulty"`
	Category     string             `json:"category"`
	Tags         []string           `json:"tags"`
	Time         string             `json:"time"`
	Servings     int                `json:"servings"`
	Nutrition    *model.Nutrition   `json:"nutrition,omitempty"`
}

// ToRecipe converts the extraction to a catalog recipe with a fresh id.
func (x *RecipeExtraction) ToRecipe() model.Recipe {
	tags := model.JSONBStringArray{}
	for _, t := range x.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return model.Recipe{
		ID:           uuid.New().String(),
		Title:        x.Title,
		PrepTime:     x.Time,
		Category:     strings.ToLower(x.Category),
		Tags:         tags,
		Ingredients:  x.Ingredients,
		Nutrition:    x.Nutrition,
		Difficulty:   strings.ToLower(x.Difficulty),
		Servings:     x.Servings,
		Alternatives: model.JSONBStringArray{},
	}
}

// PantryItem is one item detected on a receipt or in a fridge.
type PantryItem struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Confidence float64 `json:"confidence"`
}

// VisionClient calls the photo and pantry analysis functions.
type VisionClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewVisionClient creates a new VisionClient instance
func NewVisionClient(baseURL string, logger *zap.Logger) *VisionClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
		logger:     logger,
	}
}

// ValidateImage checks the size and sniffed content type of one image.
func ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoImages
	}
	if len(data) > MaxImageBytes {
		return "", ErrImageTooLarge
	}
	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if allowedImageTypes[m.String()] {
			return m.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedImageType, mtype.String())
}

// AnalyzeRecipePhoto extracts a recipe from one photo.
func (c *VisionClient) AnalyzeRecipePhoto(ctx context.Context, image []byte) (*RecipeExtraction, error) {
	if _, err := ValidateImage(image); err != nil {
		return nil, err
	}

	var out struct {
		Recipe *RecipeExtraction `json:"recipe"`
	}
	if err := c.post(ctx, "/analyze-recipe-photo", nil, [][]byte{image}, &out); err != nil {
		return nil, err
	}
	if out.Recipe == nil {
		return nil, fmt.Errorf("vision service returned no recipe")
	}
	return out.Recipe, nil
}

// ScanPantry detects pantry items in up to MaxPantryImages photos.
// Confidences are clamped to [0,1].
func (c *VisionClient) ScanPantry(ctx context.Context, scanType string, images [][]byte) ([]PantryItem, error) {
	scanType = strings.ToLower(strings.TrimSpace(scanType))
	if scanType != ScanReceipt && scanType != ScanFridge {
		return nil, ErrInvalidScanType
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if len(images) > MaxPantryImages {
		return nil, ErrTooManyImages
	}
	for _, img := range images {
		if _, err := ValidateImage(img); err != nil {
			return nil, err
		}
	}

	var out struct {
		Items []PantryItem `json:"items"`
	}
	fields := map[string]string{"scanType": scanType}
	if err := c.post(ctx, "/scan-pantry", fields, images, &out); err != nil {
		return nil, err
	}

	items := make([]PantryItem, 0, len(out.Items))
	for _, it := range out.Items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			continue
		}
		switch {
		case it.Confidence < 0 || it.Confidence != it.Confidence:
			it.Confidence = 0
		case it.Confidence > 1:
			it.Confidence = 1
		}
		items = append(items, it)
	}
	return items, nil
}

func (c *VisionClient) post(ctx context.Context, path string, fields map[string]string, images [][]byte, out interface{}) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}
	for i, img := range images {
		mtype := mimetype.Detect(img)
		part, err := w.CreateFormFile("image", fmt.Sprintf("image-%d%s", i, mtype.Extension()))
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(img); err != nil {
			return fmt.Errorf("failed to write image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var payload struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		c.logger.Warn("vision request failed", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return &VisionError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
