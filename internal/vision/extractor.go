// Package vision extracts structured nutrition estimates from meal photos.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soyeahso/macrolog/internal/domain"
)

// Extractor analyzes an image and returns a macro estimate.
type Extractor interface {
	// Extract analyzes image bytes and returns a single meal entry.
	Extract(ctx context.Context, image []byte, mimeType string) (domain.MealEntry, error)

	// Name returns the provider name (e.g., "claude").
	Name() string
}

// extractionPrompt instructs the model to return a bare JSON object.
const extractionPrompt = `Analyze this meal photo and return ONLY a valid JSON object:
{
  "meal": "short meal description",
  "calories": number,
  "protein_g": number,
  "carbs_g": number,
  "fat_g": number,
  "fiber_g": number
}
Return ONLY the JSON, no other text.`

// validImageTypes is the whitelist of media types the vision API accepts.
var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// NormalizeMimeType strips content-type parameters and maps unrecognized
// image types to image/jpeg.
func NormalizeMimeType(mimeType string) string {
	mt, _, _ := strings.Cut(mimeType, ";")
	mt = strings.TrimSpace(mt)
	if !validImageTypes[mt] {
		return "image/jpeg"
	}
	return mt
}

// ParseEstimate parses a model reply into a meal entry. Replies wrapped
// in markdown code fences are unwrapped first; anything that then fails
// strict JSON parsing is an extraction error.
func ParseEstimate(reply string) (domain.MealEntry, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var entry domain.MealEntry
	if err := json.Unmarshal([]byte(cleaned), &entry); err != nil {
		return domain.MealEntry{}, fmt.Errorf("unparseable model output: %w", err)
	}
	return entry, nil
}
