package domain

import "context"

// Attachment is a media reference on an inbound message, resolvable to
// a fetchable resource.
type Attachment struct {
	URL      string `json:"url"`
	MimeType string `json:"mimeType,omitempty"`
}

// InboundMessage is a webhook event received from the messaging channel.
type InboundMessage struct {
	From  string       `json:"from"`
	Body  string       `json:"body"`
	Media []Attachment `json:"media,omitempty"`
}

// Messenger delivers plain-text messages to a sender identity, outside
// the webhook request/response cycle.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}
