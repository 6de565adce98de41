package bot

import (
	"fmt"
	"math"
	"strings"

	"github.com/soyeahso/macrolog/internal/domain"
	"github.com/soyeahso/macrolog/internal/ledger"
)

// Reply texts use WhatsApp markup: *bold*, plain newlines, emoji.
const (
	analyzingReply = "🔍 Analyzing your meal..."

	emptyTodayReply = "No meals logged today yet. Send a photo to get started!"
	nothingToSave   = "No meals logged today yet!"

	saveFailedReply = "❌ Could not save your daily log. Your meals are still here, try *save* again later."

	defaultHint = "Send a meal photo to log macros, or type *help* for commands."

	helpReply = `*Macro Tracker Commands:*

📸 Send a photo → analyze meal
*OK* → confirm a meal
*protein 35* → edit a value
*today* → see running totals
*log today* → save your daily log
*help* → show this message`
)

// formatNumber renders macro values without trailing noise: integers
// stay integers, fractions keep one decimal.
func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.1f", f)
}

// formatEntry renders a single meal estimate.
func formatEntry(e domain.MealEntry) string {
	return fmt.Sprintf(`🍽 *%s*
• Calories: %s kcal
• Protein: %sg
• Carbs: %sg
• Fat: %sg
• Fiber: %sg`,
		e.Meal,
		formatNumber(e.Calories),
		formatNumber(e.ProteinG),
		formatNumber(e.CarbsG),
		formatNumber(e.FatG),
		formatNumber(e.FiberG),
	)
}

// FormatTotals renders the running totals, rounded for display.
func FormatTotals(t domain.Totals) string {
	cal, pro, carb, fat, fib := t.Round()
	return fmt.Sprintf(`📊 *Today's Totals*
• Calories: %d kcal
• Protein: %dg
• Carbs: %dg
• Fat: %dg
• Fiber: %dg`, cal, pro, carb, fat, fib)
}

// formatMealList renders the itemized day's meals.
func formatMealList(meals []domain.MealEntry) string {
	var b strings.Builder
	for i, m := range meals {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, m.Meal)
	}
	return b.String()
}

// formatSaved echoes what the ledger accepted.
func formatSaved(entry ledger.DailyLog) string {
	return fmt.Sprintf(`✅ Saved to your daily log!

*%s*
• Calories: %d kcal
• Protein: %dg
• Carbs: %dg
• Fat: %dg
• Fiber: %dg

Meals: %s`,
		entry.Date, entry.Calories, entry.Protein, entry.Carbs, entry.Fat, entry.Fiber, entry.Meals)
}

// formatPending renders a fresh estimate plus confirm/edit instructions.
func formatPending(e domain.MealEntry) string {
	return formatEntry(e) + "\n\nReply *OK* to confirm, or correct values (e.g. \"protein 35\" or \"calories 420\")."
}

// formatConfirmed renders the post-confirmation reply with updated totals.
func formatConfirmed(e domain.MealEntry, totals domain.Totals) string {
	return fmt.Sprintf("✅ *%s* logged!\n\n%s\n\nSend more meal photos or type *log today* to save your daily log.",
		e.Meal, FormatTotals(totals))
}
