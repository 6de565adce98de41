package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soyeahso/macrolog/internal/domain"
	"github.com/soyeahso/macrolog/internal/ledger"
	"github.com/soyeahso/macrolog/internal/logging"
	"github.com/soyeahso/macrolog/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMessenger struct {
	sent map[string]string // to → body
	err  error
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{sent: make(map[string]string)}
}

func (m *recordingMessenger) Send(ctx context.Context, to, body string) error {
	m.sent[to] = body
	return m.err
}

func testScheduler(t *testing.T, ldg ledger.Ledger, msgr domain.Messenger) (*Scheduler, *session.Store) {
	t.Helper()
	log := logging.New(nil, "silent")
	sessions := session.NewStore(log)
	s, err := New(sessions, ldg, msgr, "00:00", log)
	require.NoError(t, err)
	return s, sessions
}

func TestNew_RejectsBadTime(t *testing.T) {
	log := logging.New(nil, "silent")
	sessions := session.NewStore(log)

	_, err := New(sessions, &ledger.MockLedger{}, newRecordingMessenger(), "24:99", log)
	assert.Error(t, err)

	_, err = New(sessions, &ledger.MockLedger{}, newRecordingMessenger(), "midnight", log)
	assert.Error(t, err)
}

func TestNextRun_LaterToday(t *testing.T) {
	log := logging.New(nil, "silent")
	s, err := New(session.NewStore(log), &ledger.MockLedger{}, newRecordingMessenger(), "23:30", log)
	require.NoError(t, err)

	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	next := s.nextRun(now)
	assert.Equal(t, time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC), next)
}

func TestNextRun_RollsToTomorrow(t *testing.T) {
	log := logging.New(nil, "silent")
	s, err := New(session.NewStore(log), &ledger.MockLedger{}, newRecordingMessenger(), "00:00", log)
	require.NoError(t, err)

	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	next := s.nextRun(now)
	// Exactly at the configured time still schedules the next day.
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), next)

	next = s.nextRun(time.Date(2025, 3, 10, 0, 0, 1, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), next)
}

func TestFlushAll_SavesAndNotifies(t *testing.T) {
	ldg := &ledger.MockLedger{}
	msgr := newRecordingMessenger()
	s, sessions := testScheduler(t, ldg, msgr)

	sess := sessions.GetOrCreate("whatsapp:+15551230001")
	sess.Meals = []domain.MealEntry{
		{Meal: "Oatmeal", Calories: 300, ProteinG: 10, CarbsG: 54, FatG: 5, FiberG: 8},
		{Meal: "Chicken salad", Calories: 450, ProteinG: 40, CarbsG: 20, FatG: 18, FiberG: 6},
	}

	s.FlushAll(context.Background())

	require.Len(t, ldg.Entries, 1)
	assert.Equal(t, 750, ldg.Entries[0].Calories)
	assert.Equal(t, "Oatmeal, Chicken salad", ldg.Entries[0].Meals)

	body := msgr.sent["whatsapp:+15551230001"]
	assert.Contains(t, body, "🌙 Midnight auto-save complete!")
	assert.Contains(t, body, "• Calories: 750 kcal")
}

func TestFlushAll_SkipsEmptySessions(t *testing.T) {
	ldg := &ledger.MockLedger{}
	msgr := newRecordingMessenger()
	s, sessions := testScheduler(t, ldg, msgr)

	sessions.GetOrCreate("whatsapp:+15551230001")
	full := sessions.GetOrCreate("whatsapp:+15551230002")
	full.Meals = []domain.MealEntry{{Meal: "Dinner", Calories: 800}}

	s.FlushAll(context.Background())

	require.Len(t, ldg.Entries, 1)
	assert.Len(t, msgr.sent, 1)
	_, notified := msgr.sent["whatsapp:+15551230002"]
	assert.True(t, notified)
}

func TestFlushAll_FailureIsolatedPerSender(t *testing.T) {
	var saved []string
	ldg := &ledger.MockLedger{
		UpsertFunc: func(ctx context.Context, entry ledger.DailyLog) error {
			if entry.Sender == "whatsapp:+15551230001" {
				return errors.New("sheets unavailable")
			}
			saved = append(saved, entry.Sender)
			return nil
		},
	}
	msgr := newRecordingMessenger()
	s, sessions := testScheduler(t, ldg, msgr)

	a := sessions.GetOrCreate("whatsapp:+15551230001")
	a.Meals = []domain.MealEntry{{Meal: "Breakfast", Calories: 300}}
	b := sessions.GetOrCreate("whatsapp:+15551230002")
	b.Meals = []domain.MealEntry{{Meal: "Lunch", Calories: 600}}

	s.FlushAll(context.Background())

	require.Len(t, saved, 1)
	assert.Equal(t, "whatsapp:+15551230002", saved[0])

	// The failed sender gets no success notification.
	_, notified := msgr.sent["whatsapp:+15551230001"]
	assert.False(t, notified)
}

func TestFlushAll_DoesNotClearSessions(t *testing.T) {
	ldg := &ledger.MockLedger{}
	s, sessions := testScheduler(t, ldg, newRecordingMessenger())

	sess := sessions.GetOrCreate("whatsapp:+15551230001")
	sess.Meals = []domain.MealEntry{{Meal: "Dinner", Calories: 800}}

	s.FlushAll(context.Background())

	assert.Len(t, sess.Meals, 1)
	assert.Equal(t, 1, sessions.Count())
}

type captureSink struct {
	events []string
}

func (c *captureSink) Publish(event string, payload any) {
	c.events = append(c.events, event)
}

func TestFlushAll_PublishesCompletionEvent(t *testing.T) {
	log := logging.New(nil, "silent")
	sessions := session.NewStore(log)
	sink := &captureSink{}
	s, err := New(sessions, &ledger.MockLedger{}, newRecordingMessenger(), "00:00", log, WithEvents(sink))
	require.NoError(t, err)

	s.FlushAll(context.Background())
	assert.Equal(t, []string{"flush.completed"}, sink.events)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, _ := testScheduler(t, &ledger.MockLedger{}, newRecordingMessenger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}
