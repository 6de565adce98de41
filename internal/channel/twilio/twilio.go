// Package twilio implements the Twilio WhatsApp messaging channel:
// webhook parsing, TwiML replies, the REST send API, and authenticated
// media fetching.
package twilio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soyeahso/macrolog/internal/logging"
)

const defaultAPIBaseURL = "https://api.twilio.com"

// Client sends WhatsApp messages via the Twilio REST API and fetches
// message media. It implements domain.Messenger.
type Client struct {
	accountSID string
	authToken  string
	from       string // e.g. "whatsapp:+14155238886"
	apiBaseURL string
	http       *http.Client
	media      *http.Client
	log        *logging.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIBaseURL overrides the REST API endpoint (for tests).
func WithAPIBaseURL(url string) ClientOption {
	return func(c *Client) { c.apiBaseURL = strings.TrimSuffix(url, "/") }
}

// NewClient creates a Twilio client.
func NewClient(accountSID, authToken, from string, log *logging.Logger, opts ...ClientOption) *Client {
	c := &Client{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		apiBaseURL: defaultAPIBaseURL,
		http:       &http.Client{Timeout: 30 * time.Second},
		// Media downloads are bounded separately; this is the only
		// explicit timeout on the extraction path.
		media: &http.Client{Timeout: 15 * time.Second},
		log:   log.Sub("twilio"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send delivers a text message to a sender identity outside the webhook
// response cycle.
func (c *Client) Send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.apiBaseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("twilio API error (%d): %s", resp.StatusCode, string(respBody))
	}

	c.log.Debug().Str("to", to).Int("bytes", len(body)).Msg("message sent")
	return nil
}

// FetchMedia downloads a message attachment using account credentials.
// Returns the image bytes and the content type with any parameters
// stripped.
func (c *Client) FetchMedia(ctx context.Context, mediaURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", mediaURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.media.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("media fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("media fetch error (%d)", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read media: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.TrimSpace(ct)

	c.log.Debug().Int("bytes", len(data)).Str("type", ct).Msg("media downloaded")
	return data, ct, nil
}
