// Package ledger persists confirmed daily totals to a tabular store.
package ledger

import (
	"context"

	"github.com/soyeahso/macrolog/internal/domain"
)

// DailyLog is one day's aggregated totals for a sender. Macro values are
// rounded to integers at flush time.
type DailyLog struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Sender   string `json:"-"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
	Fiber    int    `json:"fiber"`
	Meals    string `json:"meals"` // comma-joined meal descriptions
}

// Ledger upserts one row per date: an existing row for the date is
// overwritten, otherwise a new row is appended.
type Ledger interface {
	Upsert(ctx context.Context, entry DailyLog) error

	// Name returns the backend name (e.g., "sheets", "webhook", "sqlite").
	Name() string
}

// FromSession builds a DailyLog from a session's confirmed meals.
func FromSession(sess *domain.Session) DailyLog {
	totals := domain.Aggregate(sess.Meals)
	cal, pro, carb, fat, fib := totals.Round()

	meals := ""
	for i, m := range sess.Meals {
		if i > 0 {
			meals += ", "
		}
		meals += m.Meal
	}

	return DailyLog{
		Date:     sess.Day,
		Sender:   sess.Owner,
		Calories: cal,
		Protein:  pro,
		Carbs:    carb,
		Fat:      fat,
		Fiber:    fib,
		Meals:    meals,
	}
}
