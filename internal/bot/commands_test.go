package bot

import (
	"testing"

	"github.com/soyeahso/macrolog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCorrections_Single(t *testing.T) {
	edits := ParseCorrections("protein 35")
	require.Len(t, edits, 1)
	assert.Equal(t, 35.0, edits["protein_g"])
}

func TestParseCorrections_Plural(t *testing.T) {
	edits := ParseCorrections("calories 420")
	require.Len(t, edits, 1)
	assert.Equal(t, 420.0, edits["calories"])

	edits = ParseCorrections("carbs 55")
	assert.Equal(t, 55.0, edits["carbs_g"])
}

func TestParseCorrections_Multiple(t *testing.T) {
	edits := ParseCorrections("calorie 420, protein 32 and fat 12")
	require.Len(t, edits, 3)
	assert.Equal(t, 420.0, edits["calories"])
	assert.Equal(t, 32.0, edits["protein_g"])
	assert.Equal(t, 12.0, edits["fat_g"])
}

func TestParseCorrections_CaseInsensitive(t *testing.T) {
	edits := ParseCorrections("Protein 40")
	require.Len(t, edits, 1)
	assert.Equal(t, 40.0, edits["protein_g"])
}

func TestParseCorrections_NoMatch(t *testing.T) {
	assert.Nil(t, ParseCorrections("that looks delicious"))
	assert.Nil(t, ParseCorrections("protein"))
	assert.Nil(t, ParseCorrections(""))
}

func TestCorrections_Apply(t *testing.T) {
	entry := domain.MealEntry{Meal: "Bowl", Calories: 500, ProteinG: 20, CarbsG: 30, FatG: 15, FiberG: 4}
	ParseCorrections("protein 35 fiber 9").Apply(&entry)

	assert.Equal(t, 500.0, entry.Calories)
	assert.Equal(t, 35.0, entry.ProteinG)
	assert.Equal(t, 30.0, entry.CarbsG)
	assert.Equal(t, 15.0, entry.FatG)
	assert.Equal(t, 9.0, entry.FiberG)
}
