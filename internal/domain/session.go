package domain

import "sync"

// SessionState classifies what the conversation is waiting for.
type SessionState string

const (
	// StateIdle means no entry is awaiting confirmation.
	StateIdle SessionState = "idle"
	// StateAwaitingConfirmation means a pending entry exists and the
	// sender must confirm or correct it.
	StateAwaitingConfirmation SessionState = "awaiting_confirmation"
)

// Session tracks one sender's meal log for a single calendar day.
// It is created lazily on first contact, replaced on day rollover, and
// never persisted; unflushed data is lost at rollover.
type Session struct {
	// Mu serializes event handling per sender. Handlers that mutate
	// the session hold it for the duration of one event.
	Mu sync.Mutex

	ID      string       `json:"id"`
	Owner   string       `json:"owner"` // sender identity, e.g. "whatsapp:+15551234567"
	Day     string       `json:"day"`   // YYYY-MM-DD, process-local timezone
	Meals   []MealEntry  `json:"meals,omitempty"`
	Pending *MealEntry   `json:"pending,omitempty"`
}

// State derives the conversation state from the pending entry.
func (s *Session) State() SessionState {
	if s.Pending != nil {
		return StateAwaitingConfirmation
	}
	return StateIdle
}

// Confirm appends the pending entry to the day's meals and clears it.
// Returns the confirmed entry, or nil if nothing was pending.
func (s *Session) Confirm() *MealEntry {
	if s.Pending == nil {
		return nil
	}
	entry := *s.Pending
	s.Meals = append(s.Meals, entry)
	s.Pending = nil
	return &entry
}

// Totals aggregates the confirmed meals.
func (s *Session) Totals() Totals {
	return Aggregate(s.Meals)
}
