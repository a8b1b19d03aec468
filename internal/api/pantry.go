package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/service"
)

// PantryConfidenceThreshold is the lowest detection confidence merged into
// the pantry.
const PantryConfidenceThreshold = 0.5

// ScanPantry detects items on receipt or fridge photos ("images" files,
// "scan_type" field) and adds the confident ones to the pantry.
func (h *Handler) ScanPantry(c *gin.Context) {
	if h.vision == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pantry scanning is not configured"})
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form expected"})
		return
	}
	files := form.File["images"]
	if len(files) > service.MaxPantryImages {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrTooManyImages.Error()})
		return
	}
	images := make([][]byte, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		images = append(images, data)
	}

	items, err := h.vision.ScanPantry(c.Request.Context(), c.PostForm("scan_type"), images)
	if err != nil {
		h.visionError(c, err)
		return
	}

	confident := []string{}
	for _, it := range items {
		if it.Confidence >= PantryConfidenceThreshold {
			confident = append(confident, it.Name)
		}
	}

	store, ok := h.store(c)
	if !ok {
		return
	}
	prefs, err := store.AddPantryItems(c.Request.Context(), confident)
	if err != nil {
		h.logger.Error("failed to save pantry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}
	h.invalidate(c)
	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"added":  confident,
		"pantry": prefs.Pantry,
	})
}
