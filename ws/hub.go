// Package ws pushes notifications and unread badge counts to connected
// clients over WebSocket.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/logging"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/metrics"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
)

const (
	ChannelNotifications = "notifications"
	ChannelBadge         = "badge"

	writeWait  = 10 * time.Second
	bufferSize = 256
)

type BadgeMessage struct {
	UserID string `json:"user_id"`
	Count  int64  `json:"count"`
}

type client struct {
	conn    *websocket.Conn
	userID  string
	channel string
}

type message struct {
	userID  string
	channel string
	payload any
}

// Hub tracks open connections per user. A single Run goroutine performs all
// writes, so each connection has at most one writer.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*client]struct{}
	outbox   chan message
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		outbox:  make(chan message, bufferSize),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run delivers queued messages until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.outbox:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg message) {
	h.mu.RLock()
	var targets []*client
	for c := range h.clients[msg.userID] {
		if c.channel == msg.channel {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg.payload); err != nil {
			logging.Warn().Err(err).
				Str("user_id", c.userID).
				Str("channel", c.channel).
				Msg("websocket send failed")
			h.unregister(c)
			continue
		}
		metrics.WSMessagesSent.WithLabelValues(c.channel).Inc()
	}
}

func (h *Hub) enqueue(msg message) {
	select {
	case h.outbox <- msg:
	default:
		logging.Warn().Str("user_id", msg.userID).Str("channel", msg.channel).Msg("websocket outbox full, message dropped")
	}
}

// SendNotification queues n for the recipient's notification sockets.
func (h *Hub) SendNotification(n models.Notification) {
	h.enqueue(message{userID: n.UserID, channel: ChannelNotifications, payload: n})
}

// SendBadge queues the unread count for the user's badge sockets.
func (h *Hub) SendBadge(userID string, count int64) {
	h.enqueue(message{userID: userID, channel: ChannelBadge, payload: BadgeMessage{UserID: userID, Count: count}})
}

func (h *Hub) ServeNotifications(w http.ResponseWriter, r *http.Request, userID string) {
	h.serve(w, r, userID, ChannelNotifications, nil)
}

// ServeBadge pushes unread as soon as the socket is registered.
func (h *Hub) ServeBadge(w http.ResponseWriter, r *http.Request, userID string, unread int64) {
	h.serve(w, r, userID, ChannelBadge, func() { h.SendBadge(userID, unread) })
}

func (h *Hub) serve(w http.ResponseWriter, r *http.Request, userID, channel string, onOpen func()) {
	if userID == "" {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Str("channel", channel).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, userID: userID, channel: channel}
	h.register(c, onOpen)
	defer h.unregister(c)

	// Clients only send keep-alives; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// register runs onOpen under the registry lock so its messages are queued
// before any sent by callers that observed the connection.
func (h *Hub) register(c *client, onOpen func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	metrics.WSConnections.WithLabelValues(c.channel).Inc()
	if onOpen != nil {
		onOpen()
	}
	logging.Debug().Str("user_id", c.userID).Str("channel", c.channel).Msg("websocket connected")
}

// unregister is safe to call more than once for the same client.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.userID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	c.conn.Close()
	metrics.WSConnections.WithLabelValues(c.channel).Dec()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			c.conn.Close()
			metrics.WSConnections.WithLabelValues(c.channel).Dec()
		}
		delete(h.clients, userID)
	}
}

// Connections returns the number of open sockets of userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
