// Package bot implements the per-sender conversation state machine.
package bot

import (
	"context"
	"strings"

	"github.com/soyeahso/macrolog/internal/domain"
	"github.com/soyeahso/macrolog/internal/ledger"
	"github.com/soyeahso/macrolog/internal/logging"
	"github.com/soyeahso/macrolog/internal/session"
	"github.com/soyeahso/macrolog/internal/vision"
)

// MediaFetcher resolves a message attachment to image bytes and a
// content type.
type MediaFetcher interface {
	FetchMedia(ctx context.Context, url string) ([]byte, string, error)
}

// EventSink receives observability events. Publishing must never block
// request handling.
type EventSink interface {
	Publish(event string, payload any)
}

// Controller drives the session state machine in response to inbound
// events. One instance serves all senders.
type Controller struct {
	sessions  *session.Store
	extractor vision.Extractor
	fetcher   MediaFetcher
	messenger domain.Messenger
	ledger    ledger.Ledger
	events    EventSink // optional
	log       *logging.Logger
}

// NewController creates a conversation controller.
func NewController(
	sessions *session.Store,
	extractor vision.Extractor,
	fetcher MediaFetcher,
	messenger domain.Messenger,
	ldg ledger.Ledger,
	log *logging.Logger,
) *Controller {
	return &Controller{
		sessions:  sessions,
		extractor: extractor,
		fetcher:   fetcher,
		messenger: messenger,
		ledger:    ldg,
		log:       log.Sub("bot"),
	}
}

// SetEvents attaches an optional event sink.
func (c *Controller) SetEvents(sink EventSink) { c.events = sink }

func (c *Controller) publish(event string, payload any) {
	if c.events != nil {
		c.events.Publish(event, payload)
	}
}

// Handle processes one inbound event and returns the synchronous reply
// body. Photo events get an immediate acknowledgment; the extraction
// continues in the background and its result is delivered out-of-band,
// because extraction latency is unbounded relative to the webhook's
// response window.
func (c *Controller) Handle(ctx context.Context, msg domain.InboundMessage) string {
	sess := c.sessions.GetOrCreate(msg.From)

	if len(msg.Media) > 0 {
		// The request context dies when the webhook response is
		// written; the extraction outlives it.
		go c.analyzePhoto(context.WithoutCancel(ctx), sess, msg.Media[0])
		return analyzingReply
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	return c.handleText(ctx, sess, msg.Body)
}

// analyzePhoto fetches the attachment, runs extraction, and stores the
// estimate as the session's pending entry. A photo arriving while an
// earlier estimate is still unconfirmed overwrites it (last write wins).
func (c *Controller) analyzePhoto(ctx context.Context, sess *domain.Session, media domain.Attachment) {
	image, contentType, err := c.fetcher.FetchMedia(ctx, media.URL)
	if err != nil {
		c.log.Error().Err(err).Str("owner", sess.Owner).Msg("media fetch failed")
		c.sendTo(ctx, sess.Owner, "❌ Error: "+err.Error())
		return
	}
	if contentType == "" {
		contentType = media.MimeType
	}

	entry, err := c.extractor.Extract(ctx, image, contentType)
	if err != nil {
		c.log.Error().Err(err).Str("owner", sess.Owner).Msg("extraction failed")
		c.sendTo(ctx, sess.Owner, "❌ Error: "+err.Error())
		return
	}

	sess.Mu.Lock()
	sess.Pending = &entry
	sess.Mu.Unlock()

	c.log.Info().
		Str("owner", sess.Owner).
		Str("meal", entry.Meal).
		Float64("calories", entry.Calories).
		Msg("meal extracted")
	c.publish("meal.pending", map[string]any{"owner": sess.Owner, "meal": entry.Meal})

	c.sendTo(ctx, sess.Owner, formatPending(entry))
}

// handleText applies a text command to the session. Caller holds the
// session mutex. Precedence: confirm, correction, totals query, save,
// help, hint.
func (c *Controller) handleText(ctx context.Context, sess *domain.Session, body string) string {
	lower := strings.ToLower(strings.TrimSpace(body))

	switch {
	case isConfirm(lower) && sess.Pending != nil:
		entry := sess.Confirm()
		totals := sess.Totals()
		c.log.Info().Str("owner", sess.Owner).Str("meal", entry.Meal).Msg("meal confirmed")
		c.publish("meal.logged", map[string]any{
			"owner": sess.Owner, "meal": entry.Meal, "meals": len(sess.Meals),
		})
		return formatConfirmed(*entry, totals)

	case sess.Pending != nil && ParseCorrections(body) != nil:
		edits := ParseCorrections(body)
		edits.Apply(sess.Pending)
		return "Updated! Here's the corrected entry:\n\n" + formatPending(*sess.Pending)

	case isTotalsQuery(lower):
		if len(sess.Meals) == 0 {
			return emptyTodayReply
		}
		return FormatTotals(sess.Totals()) + "\n\n*Meals logged:*\n" + formatMealList(sess.Meals)

	case isSaveCommand(lower):
		return c.saveToday(ctx, sess)

	case lower == "help":
		return helpReply

	default:
		return defaultHint
	}
}

// saveToday flushes the session's totals to the ledger. The session is
// left untouched either way, so a failed save can simply be retried.
func (c *Controller) saveToday(ctx context.Context, sess *domain.Session) string {
	if len(sess.Meals) == 0 {
		return nothingToSave
	}

	entry := ledger.FromSession(sess)
	if err := c.ledger.Upsert(ctx, entry); err != nil {
		c.log.Error().Err(err).Str("owner", sess.Owner).Str("date", entry.Date).Msg("ledger save failed")
		return saveFailedReply
	}

	c.log.Info().Str("owner", sess.Owner).Str("date", entry.Date).Int("calories", entry.Calories).Msg("daily log saved")
	c.publish("ledger.saved", map[string]any{"owner": sess.Owner, "date": entry.Date})
	return formatSaved(entry)
}

func (c *Controller) sendTo(ctx context.Context, to, body string) {
	if err := c.messenger.Send(ctx, to, body); err != nil {
		c.log.Error().Err(err).Str("to", to).Msg("failed to send message")
	}
}
