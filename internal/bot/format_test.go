package bot

import (
	"testing"

	"github.com/soyeahso/macrolog/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "450", formatNumber(450))
	assert.Equal(t, "450.5", formatNumber(450.5))
	assert.Equal(t, "0", formatNumber(0))
}

func TestFormatEntry(t *testing.T) {
	out := formatEntry(domain.MealEntry{
		Meal: "Chicken salad", Calories: 450, ProteinG: 40.5, CarbsG: 20, FatG: 18, FiberG: 6,
	})
	assert.Contains(t, out, "🍽 *Chicken salad*")
	assert.Contains(t, out, "• Calories: 450 kcal")
	assert.Contains(t, out, "• Protein: 40.5g")
}

func TestFormatTotals_Rounds(t *testing.T) {
	out := FormatTotals(domain.Totals{Calories: 749.6, Protein: 50.4, Carbs: 74, Fat: 23, Fiber: 14})
	assert.Contains(t, out, "📊 *Today's Totals*")
	assert.Contains(t, out, "• Calories: 750 kcal")
	assert.Contains(t, out, "• Protein: 50g")
}

func TestFormatMealList(t *testing.T) {
	out := formatMealList([]domain.MealEntry{{Meal: "Oatmeal"}, {Meal: "Chicken salad"}})
	assert.Equal(t, "1. Oatmeal\n2. Chicken salad", out)
}
