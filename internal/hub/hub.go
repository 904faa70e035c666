// Package hub is the realtime fan-out: a registry of websocket
// connections keyed by topic, with best-effort delivery and no replay.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Topic families. Order mutations go to both the vendor's room and
// the order's own room; chat goes to the order room only.
func VendorTopic(vendorID string) string { return "vendor:" + vendorID }
func OrderTopic(orderID string) string   { return "order:" + orderID }

// Broker is what the order and chat managers publish through.
type Broker interface {
	Publish(topic, kind string, payload any)
}

type event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// client wraps one websocket connection. Writes are serialized per
// connection; gorilla conns do not allow concurrent writers.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

var _ Broker = (*Hub)(nil)

// Hub maps topics to subscribed connections.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*client]struct{}
	conns  map[*websocket.Conn]*client
	log    zerolog.Logger
}

// New builds an empty hub.
func New(log zerolog.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*client]struct{}),
		conns:  make(map[*websocket.Conn]*client),
		log:    log,
	}
}

// Subscribe adds conn to topic. Idempotent; a connection may be in
// any number of topics at once.
func (h *Hub) Subscribe(conn *websocket.Conn, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[conn]
	if !ok {
		c = &client{conn: conn}
		h.conns[conn] = c
	}
	set, ok := h.topics[topic]
	if !ok {
		set = make(map[*client]struct{})
		h.topics[topic] = set
	}
	set[c] = struct{}{}
}

// Unregister drops every topic membership of conn. Called when the
// transport closes; peers are not informed.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[conn]
	if !ok {
		return
	}
	delete(h.conns, conn)
	for topic, set := range h.topics {
		delete(set, c)
		if len(set) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Subscribers reports how many connections currently hold topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Publish delivers payload to every connection currently subscribed
// to topic, at most once each. Fire-and-forget: a failed write to one
// subscriber never affects the others or the caller.
func (h *Hub) Publish(topic, kind string, payload any) {
	body, err := json.Marshal(event{Type: kind, Data: payload})
	if err != nil {
		h.log.Error().Err(err).Str("topic", topic).Str("kind", kind).Msg("marshal event")
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.topics[topic]))
	for c := range h.topics[topic] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.send(body); err != nil {
			h.log.Debug().Err(err).Str("topic", topic).Msg("drop subscriber write")
		}
	}
}
