package bot

import (
	"regexp"
	"strconv"

	"github.com/soyeahso/macrolog/internal/domain"
)

// Correction field keys.
const (
	fieldCalories = "calories"
	fieldProtein  = "protein_g"
	fieldCarbs    = "carbs_g"
	fieldFat      = "fat_g"
	fieldFiber    = "fiber_g"
)

// correctionPatterns match "field value" edits like "protein 35".
// Optional plural forms mirror how people actually type.
var correctionPatterns = []struct {
	field string
	re    *regexp.Regexp
}{
	{fieldCalories, regexp.MustCompile(`(?i)calories?\s+(\d+)`)},
	{fieldProtein, regexp.MustCompile(`(?i)proteins?\s+(\d+)`)},
	{fieldCarbs, regexp.MustCompile(`(?i)carbs?\s+(\d+)`)},
	{fieldFat, regexp.MustCompile(`(?i)fat\s+(\d+)`)},
	{fieldFiber, regexp.MustCompile(`(?i)fiber\s+(\d+)`)},
}

// Corrections maps field keys to replacement values. A single message
// may correct several fields at once.
type Corrections map[string]float64

// ParseCorrections scans text for field corrections. An empty result
// means the text is not a correction command.
func ParseCorrections(text string) Corrections {
	edits := make(Corrections)
	for _, p := range correctionPatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				edits[p.field] = float64(v)
			}
		}
	}
	if len(edits) == 0 {
		return nil
	}
	return edits
}

// Apply overwrites only the matched fields on the entry; unmatched
// fields keep their current values.
func (c Corrections) Apply(e *domain.MealEntry) {
	if v, ok := c[fieldCalories]; ok {
		e.Calories = v
	}
	if v, ok := c[fieldProtein]; ok {
		e.ProteinG = v
	}
	if v, ok := c[fieldCarbs]; ok {
		e.CarbsG = v
	}
	if v, ok := c[fieldFat]; ok {
		e.FatG = v
	}
	if v, ok := c[fieldFiber]; ok {
		e.FiberG = v
	}
}

// isConfirm reports whether a lowercased text confirms a pending entry.
func isConfirm(lower string) bool {
	return lower == "ok" || lower == "yes" || lower == "confirm"
}

// isTotalsQuery reports whether a lowercased text asks for running totals.
func isTotalsQuery(lower string) bool {
	return lower == "today" || lower == "totals" || lower == "status"
}

// isSaveCommand reports whether a lowercased text requests a ledger flush.
func isSaveCommand(lower string) bool {
	return lower == "log today" || lower == "save" || lower == "done"
}
