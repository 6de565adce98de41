package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/macrolog/internal/logging"
)

// EventFrame is one event on the websocket feed.
type EventFrame struct {
	Type    string `json:"type"`
	Event   string `json:"event"`
	Seq     int64  `json:"seq"`
	TS      int64  `json:"ts"`
	Payload any    `json:"payload,omitempty"`
}

// eventClient is one connected feed subscriber. Writes are serialized
// through the mutex; gorilla connections allow one concurrent writer.
type eventClient struct {
	connID string
	socket *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func (c *eventClient) send(frame EventFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	return c.socket.WriteJSON(frame)
}

func (c *eventClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.socket.Close()
}

// EventHub fans session and ledger events out to websocket subscribers.
// It satisfies the controller's and scheduler's EventSink. Publishing
// with no subscribers is a no-op; a slow or dead subscriber is dropped
// rather than blocking the caller.
type EventHub struct {
	mu      sync.RWMutex
	clients map[string]*eventClient // connID → client
	seq     atomic.Int64
	log     *logging.Logger
}

// NewEventHub creates an empty hub.
func NewEventHub(log *logging.Logger) *EventHub {
	return &EventHub{
		clients: make(map[string]*eventClient),
		log:     log.Sub("events"),
	}
}

func (h *EventHub) add(conn *websocket.Conn) *eventClient {
	c := &eventClient{connID: uuid.New().String(), socket: conn}
	h.mu.Lock()
	h.clients[c.connID] = c
	h.mu.Unlock()
	h.log.Info().Str("connId", c.connID).Msg("feed client connected")
	return c
}

func (h *EventHub) remove(connID string) {
	h.mu.Lock()
	c, ok := h.clients[connID]
	delete(h.clients, connID)
	h.mu.Unlock()
	if ok {
		c.close()
		h.log.Info().Str("connId", connID).Msg("feed client disconnected")
	}
}

// Count returns the number of connected subscribers.
func (h *EventHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts an event to every subscriber. Send failures evict
// the subscriber.
func (h *EventHub) Publish(event string, payload any) {
	frame := EventFrame{
		Type:    "event",
		Event:   event,
		Seq:     h.seq.Add(1),
		TS:      time.Now().UnixMilli(),
		Payload: payload,
	}

	h.mu.RLock()
	targets := make([]*eventClient, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.send(frame); err != nil {
			h.log.Warn().Err(err).Str("connId", c.connID).Str("event", event).Msg("feed send failed")
			h.remove(c.connID)
		}
	}
}

// CloseAll disconnects every subscriber.
func (h *EventHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
}
