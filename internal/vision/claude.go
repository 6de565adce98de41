package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/soyeahso/macrolog/internal/domain"
)

const defaultClaudeBaseURL = "https://api.anthropic.com"

// ClaudeExtractor calls the Claude messages API with an image block.
type ClaudeExtractor struct {
	apiKey    string
	model     string
	maxTokens int
	baseURL   string
	client    *http.Client
}

// ClaudeOption configures a ClaudeExtractor.
type ClaudeOption func(*ClaudeExtractor)

// WithBaseURL overrides the API endpoint (for tests).
func WithBaseURL(url string) ClaudeOption {
	return func(c *ClaudeExtractor) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// NewClaudeExtractor creates a Claude-backed extractor.
func NewClaudeExtractor(apiKey, model string, maxTokens int, opts ...ClaudeOption) *ClaudeExtractor {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	c := &ClaudeExtractor{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		baseURL:   defaultClaudeBaseURL,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider name.
func (c *ClaudeExtractor) Name() string { return "claude" }

// Extract sends the image to the messages API and parses the JSON reply.
func (c *ClaudeExtractor) Extract(ctx context.Context, image []byte, mimeType string) (domain.MealEntry, error) {
	body := map[string]any{
		"model":      c.model,
		"max_tokens": c.maxTokens,
		"messages": []map[string]any{{
			"role": "user",
			"content": []map[string]any{
				{
					"type": "image",
					"source": map[string]any{
						"type":       "base64",
						"media_type": NormalizeMimeType(mimeType),
						"data":       base64.StdEncoding.EncodeToString(image),
					},
				},
				{
					"type": "text",
					"text": extractionPrompt,
				},
			},
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return domain.MealEntry{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", strings.NewReader(string(payload)))
	if err != nil {
		return domain.MealEntry{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return domain.MealEntry{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.MealEntry{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.MealEntry{}, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result claudeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return domain.MealEntry{}, fmt.Errorf("failed to parse response: %w", err)
	}

	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return ParseEstimate(text.String())
}

type claudeResponse struct {
	Content []claudeContentBlock `json:"content"`
	Model   string               `json:"model"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}
