// Package scheduler runs the daily ledger flush.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/soyeahso/macrolog/internal/bot"
	"github.com/soyeahso/macrolog/internal/domain"
	"github.com/soyeahso/macrolog/internal/ledger"
	"github.com/soyeahso/macrolog/internal/logging"
	"github.com/soyeahso/macrolog/internal/session"
)

// EventSink receives observability events (same contract as bot.EventSink).
type EventSink interface {
	Publish(event string, payload any)
}

// Scheduler flushes all non-empty sessions to the ledger once per day
// at a fixed local time, then notifies each owner.
type Scheduler struct {
	sessions  *session.Store
	ledger    ledger.Ledger
	messenger domain.Messenger
	at        string // "HH:MM", process-local timezone
	events    EventSink
	now       func() time.Time
	log       *logging.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the scheduler's clock (for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithEvents attaches an optional event sink.
func WithEvents(sink EventSink) Option {
	return func(s *Scheduler) { s.events = sink }
}

// New creates a daily flush scheduler firing at the given "HH:MM".
func New(sessions *session.Store, ldg ledger.Ledger, messenger domain.Messenger, at string, log *logging.Logger, opts ...Option) (*Scheduler, error) {
	if _, err := time.Parse("15:04", at); err != nil {
		return nil, fmt.Errorf("invalid flush time %q: %w", at, err)
	}
	s := &Scheduler{
		sessions:  sessions,
		ledger:    ldg,
		messenger: messenger,
		at:        at,
		now:       time.Now,
		log:       log.Sub("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run blocks, firing a flush at the configured time each day, until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := s.nextRun(s.now())
		s.log.Info().Time("next", next).Msg("daily flush scheduled")

		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info().Msg("scheduler stopped")
			return
		case <-timer.C:
			s.FlushAll(ctx)
		}
	}
}

// nextRun computes the next occurrence of the configured time-of-day
// strictly after now.
func (s *Scheduler) nextRun(now time.Time) time.Time {
	at, _ := time.Parse("15:04", s.at)
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// FlushAll saves every non-empty session to the ledger and notifies its
// owner. A failure for one sender is logged and skipped; the remaining
// senders still flush. Sessions are never cleared here; rollover on
// next access handles that.
func (s *Scheduler) FlushAll(ctx context.Context) {
	sessions := s.sessions.Snapshot()
	s.log.Info().Int("sessions", len(sessions)).Msg("running daily flush")

	var flushed int
	for _, sess := range sessions {
		sess.Mu.Lock()
		entry := ledger.FromSession(sess)
		totals := sess.Totals()
		empty := len(sess.Meals) == 0
		sess.Mu.Unlock()

		if empty {
			continue
		}

		if err := s.ledger.Upsert(ctx, entry); err != nil {
			s.log.Error().Err(err).Str("owner", sess.Owner).Str("date", entry.Date).Msg("flush failed for sender")
			continue
		}
		flushed++

		body := "🌙 Midnight auto-save complete!\n\n" + bot.FormatTotals(totals)
		if err := s.messenger.Send(ctx, sess.Owner, body); err != nil {
			s.log.Error().Err(err).Str("owner", sess.Owner).Msg("flush notification failed")
		}

		s.log.Info().Str("owner", sess.Owner).Str("date", entry.Date).Int("calories", entry.Calories).Msg("session flushed")
	}

	if s.events != nil {
		s.events.Publish("flush.completed", map[string]any{"sessions": len(sessions), "flushed": flushed})
	}
}
