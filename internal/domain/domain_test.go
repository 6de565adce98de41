package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_Empty(t *testing.T) {
	totals := Aggregate(nil)
	assert.Equal(t, Totals{}, totals)
}

func TestAggregate_SumsAllFields(t *testing.T) {
	meals := []MealEntry{
		{Meal: "Chicken salad", Calories: 450, ProteinG: 40, CarbsG: 20, FatG: 18, FiberG: 6},
		{Meal: "Protein shake", Calories: 220, ProteinG: 30, CarbsG: 12, FatG: 4},
	}

	totals := Aggregate(meals)
	assert.Equal(t, 670.0, totals.Calories)
	assert.Equal(t, 70.0, totals.Protein)
	assert.Equal(t, 32.0, totals.Carbs)
	assert.Equal(t, 22.0, totals.Fat)
	assert.Equal(t, 6.0, totals.Fiber) // missing fiber contributes zero
}

func TestTotals_Round(t *testing.T) {
	totals := Totals{Calories: 450.6, Protein: 40.4, Carbs: 19.5, Fat: 18.0, Fiber: 5.9}
	cal, pro, carb, fat, fib := totals.Round()
	assert.Equal(t, 451, cal)
	assert.Equal(t, 40, pro)
	assert.Equal(t, 20, carb)
	assert.Equal(t, 18, fat)
	assert.Equal(t, 6, fib)
}

func TestSession_Confirm(t *testing.T) {
	sess := &Session{Owner: "whatsapp:+15551234567", Day: "2026-03-14"}
	sess.Pending = &MealEntry{Meal: "Chicken salad", Calories: 450, ProteinG: 42}

	entry := sess.Confirm()
	require.NotNil(t, entry)
	assert.Equal(t, "Chicken salad", entry.Meal)
	assert.Len(t, sess.Meals, 1)
	assert.Nil(t, sess.Pending)
	assert.Equal(t, StateIdle, sess.State())
}

func TestSession_Confirm_NothingPending(t *testing.T) {
	sess := &Session{Owner: "whatsapp:+15551234567", Day: "2026-03-14"}
	sess.Pending = &MealEntry{Meal: "Chicken salad", Calories: 450}

	require.NotNil(t, sess.Confirm())

	// A second confirmation with nothing pending must not append a duplicate.
	assert.Nil(t, sess.Confirm())
	assert.Len(t, sess.Meals, 1)
}

func TestSession_State(t *testing.T) {
	sess := &Session{}
	assert.Equal(t, StateIdle, sess.State())

	sess.Pending = &MealEntry{Meal: "Toast"}
	assert.Equal(t, StateAwaitingConfirmation, sess.State())
}
