package vision

import (
	"context"

	"github.com/soyeahso/macrolog/internal/domain"
)

// MockExtractor is a test double for Extractor.
type MockExtractor struct {
	ProviderName string
	ExtractFunc  func(ctx context.Context, image []byte, mimeType string) (domain.MealEntry, error)
}

func (m *MockExtractor) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

func (m *MockExtractor) Extract(ctx context.Context, image []byte, mimeType string) (domain.MealEntry, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, image, mimeType)
	}
	return domain.MealEntry{Meal: "mock meal", Calories: 100}, nil
}
