// Package session holds the in-memory per-sender session store.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/macrolog/internal/domain"
	"github.com/soyeahso/macrolog/internal/logging"
)

// Store maps sender identities to their current-day sessions. It is the
// only stateful core component; everything in it is lost on restart.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session // owner → session
	now      func() time.Time
	log      *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's notion of "now" (for tests and
// rollover control).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty session store.
func NewStore(log *logging.Logger, opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
		log:      log.Sub("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the store's current calendar date as YYYY-MM-DD.
func (s *Store) Today() string {
	return s.now().Format(time.DateOnly)
}

// GetOrCreate returns the sender's session for today. A missing session,
// or one left over from a previous day, is replaced with a fresh empty
// session. Replacing a stale session discards any unflushed meals; that
// is the data-loss window around midnight.
func (s *Store) GetOrCreate(owner string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.Today()
	if sess, ok := s.sessions[owner]; ok {
		if sess.Day == today {
			return sess
		}
		if len(sess.Meals) > 0 {
			s.log.Warn().
				Str("owner", owner).
				Str("day", sess.Day).
				Int("meals", len(sess.Meals)).
				Msg("discarding unflushed session on day rollover")
		}
	}

	sess := &domain.Session{
		ID:    uuid.New().String(),
		Owner: owner,
		Day:   today,
	}
	s.sessions[owner] = sess
	return sess
}

// Snapshot returns the current sessions. The slice is a copy; the
// sessions themselves are shared, so readers must hold each session's
// mutex while touching its fields.
func (s *Store) Snapshot() []*domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// Count returns the number of tracked senders.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
