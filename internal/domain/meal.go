package domain

import "math"

// MealEntry is a single analyzed meal. Values come from the vision
// extractor or from user corrections and are stored as-is; rounding
// happens only at presentation and flush time.
type MealEntry struct {
	Meal     string  `json:"meal"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
}

// Totals is the running sum of macro fields across a day's meals.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Aggregate sums macro fields across all meals. Zero-value fields
// contribute zero, so a meal with no fiber estimate simply doesn't move
// the fiber total.
func Aggregate(meals []MealEntry) Totals {
	var t Totals
	for _, m := range meals {
		t.Calories += m.Calories
		t.Protein += m.ProteinG
		t.Carbs += m.CarbsG
		t.Fat += m.FatG
		t.Fiber += m.FiberG
	}
	return t
}

// Round returns the totals rounded to the nearest integer, as shown to
// users and written to the ledger.
func (t Totals) Round() (calories, protein, carbs, fat, fiber int) {
	return int(math.Round(t.Calories)),
		int(math.Round(t.Protein)),
		int(math.Round(t.Carbs)),
		int(math.Round(t.Fat)),
		int(math.Round(t.Fiber))
}
