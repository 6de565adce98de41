package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/soyeahso/macrolog/internal/logging"
)

// WebhookLedger posts daily logs as JSON to an external endpoint, such
// as a Google Apps Script that writes the spreadsheet. The endpoint owns
// the upsert semantics.
type WebhookLedger struct {
	url    string
	client *http.Client
	log    *logging.Logger
}

// NewWebhookLedger creates a webhook-backed ledger.
func NewWebhookLedger(url string, log *logging.Logger) *WebhookLedger {
	return &WebhookLedger{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log.Sub("ledger"),
	}
}

// Name returns the backend name.
func (l *WebhookLedger) Name() string { return "webhook" }

// Upsert posts the daily log to the endpoint. Any non-2xx response is
// an error.
func (l *WebhookLedger) Upsert(ctx context.Context, entry DailyLog) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal daily log: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", l.url, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("ledger post failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ledger endpoint error (%d): %s", resp.StatusCode, string(body))
	}

	l.log.Debug().Str("date", entry.Date).Int("calories", entry.Calories).Msg("daily log posted")
	return nil
}
