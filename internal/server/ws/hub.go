// Package ws streams signal bus events to dashboard clients over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message.
	maxMessageSize = 4096

	// sendBufferSize is the channel buffer for outgoing messages per client.
	sendBufferSize = 256
)

// Config captures the channels the hub relays and the metadata sent to
// clients on connect.
type Config struct {
	Channels  []string
	Mode      string
	Symbol    string
	StartedAt time.Time

	// CheckOrigin vets the Origin header of upgrade requests. Nil allows all.
	CheckOrigin func(r *http.Request) bool
}

// client represents a single WebSocket connection.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	subs map[string]bool
	mu   sync.RWMutex
}

// subscribeMsg is the JSON message a client sends to change its channels.
type subscribeMsg struct {
	Action   string   `json:"action"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// broadcastMsg carries a payload along with its source channel so the hub
// routes it only to clients subscribed to that channel.
type broadcastMsg struct {
	channel string
	data    []byte
}

// Hub bridges a domain.SignalBus to connected WebSocket clients.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan broadcastMsg
	register   chan *client
	unregister chan *client
	done       chan struct{}
	bus        domain.SignalBus
	channels   []string
	upgrader   websocket.Upgrader
	mu         sync.RWMutex
	logger     *slog.Logger
	mode       string
	symbol     string
	startedAt  time.Time
}

// NewHub creates a hub relaying cfg.Channels from bus.
func NewHub(bus domain.SignalBus, logger *slog.Logger, cfg Config) *Hub {
	startedAt := cfg.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan broadcastMsg, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		bus:        bus,
		channels:   cfg.Channels,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger:    logger.With(slog.String("component", "ws_hub")),
		mode:      strings.ToLower(strings.TrimSpace(cfg.Mode)),
		symbol:    cfg.Symbol,
		startedAt: startedAt,
	}
}

// Run subscribes to the configured channels and runs the hub's event loop
// until ctx is cancelled. Connected clients are closed on return.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for _, ch := range h.channels {
		go h.subscribeToChannel(ctx, ch)
	}

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return nil

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client connected", slog.Int("total_clients", n))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client disconnected", slog.Int("total_clients", n))

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				if !c.isSubscribed(msg.channel) {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					h.logger.Warn("dropping message for slow client", slog.String("channel", msg.channel))
				}
			}
			h.mu.RUnlock()
		}
	}
}

// subscribeToChannel forwards payloads from one bus channel to the hub.
func (h *Hub) subscribeToChannel(ctx context.Context, channel string) {
	msgCh, err := h.bus.Subscribe(ctx, channel)
	if err != nil {
		h.logger.Error("subscribe failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
		return
	}
	h.logger.Info("subscribed to channel", slog.String("channel", channel))

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-msgCh:
			if !ok {
				h.logger.Warn("channel subscription closed", slog.String("channel", channel))
				return
			}
			select {
			case h.broadcast <- broadcastMsg{channel: channel, data: data}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// HandleWS upgrades an HTTP request to a WebSocket connection and registers
// the client with the hub. New clients are subscribed to every channel.
// GET /ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		subs: make(map[string]bool, len(h.channels)),
	}
	for _, ch := range h.channels {
		c.subs[ch] = true
	}

	// Queued before registering: once registered, the hub owns c.send.
	c.sendInitialStatus()
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump reads subscription changes from the client until the connection
// fails.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("unexpected close error", slog.String("error", err.Error()))
			}
			return
		}

		var sub subscribeMsg
		if json.Unmarshal(message, &sub) == nil && sub.Action != "" {
			c.handleSubscription(sub)
		}
	}
}

func (c *client) handleSubscription(msg subscribeMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg.Action {
	case "subscribe":
		for _, ch := range msg.Channels {
			c.subs[ch] = true
		}
	case "unsubscribe":
		for _, ch := range msg.Channels {
			delete(c.subs, ch)
		}
	}
}

// sendInitialStatus lets clients mark the connection healthy before the
// first run finishes.
func (c *client) sendInitialStatus() {
	msg, err := json.Marshal(map[string]any{
		"type": "bot_status",
		"payload": map[string]any{
			"mode":           c.hub.mode,
			"symbol":         c.hub.symbol,
			"ws_connected":   true,
			"uptime_seconds": max(int64(time.Since(c.hub.startedAt).Seconds()), 0),
		},
	})
	if err != nil {
		return
	}

	select {
	case c.send <- msg:
	default:
	}
}

// isSubscribed checks whether the client is subscribed to channel, directly
// or through a trailing-wildcard subscription such as "ch:*".
func (c *client) isSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.subs[channel] {
		return true
	}
	for sub := range c.subs {
		if prefix, ok := strings.CutSuffix(sub, "*"); ok && strings.HasPrefix(channel, prefix) {
			return true
		}
	}
	return false
}

// writePump sends queued payloads as text frames and pings for keepalive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
