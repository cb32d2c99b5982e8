// Package websocket streams committed record changes to browser clients.
// Each client subscribes to one or more entity topics ("patient", "bill", ...)
// or to AllTopics, and receives an Event for every mutation on them.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/store"
)

// AllTopics subscribes a client to every entity.
const AllTopics = "*"

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// Event is a single record change pushed to subscribers.
type Event struct {
	Action    store.Action    `json:"action"`
	Entity    string          `json:"entity"`
	ID        int             `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Record    json.RawMessage `json:"record,omitempty"`
}

// ClientMessage is sent by a client to change its subscriptions.
type ClientMessage struct {
	Action string   `json:"action"` // "subscribe" or "unsubscribe"
	Topics []string `json:"topics"`
}

// Client is one connected subscriber.
type Client struct {
	ID     string
	Topics []string
	Send   chan []byte
	hub    *Hub
	conn   *gorillawebsocket.Conn
}

// Hub tracks clients and their topic subscriptions.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	topics  map[string]map[string]*Client
	logger  zerolog.Logger
	now     func() time.Time
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		topics:  make(map[string]map[string]*Client),
		logger:  logger.With().Str("component", "websocket").Logger(),
		now:     time.Now,
	}
}

// Register adds a client and its initial topics.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ID] = c
	for _, topic := range c.Topics {
		h.addLocked(c, topic)
	}
	h.logger.Debug().Str("client", c.ID).Strs("topics", c.Topics).Msg("client registered")
}

// Unregister removes a client from every topic and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	for topic, subs := range h.topics {
		delete(subs, c.ID)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(h.clients, c.ID)
	close(c.Send)
	h.logger.Debug().Str("client", c.ID).Msg("client unregistered")
}

// Subscribe adds topics to a registered client.
func (h *Hub) Subscribe(c *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range topics {
		h.addLocked(c, topic)
	}
}

// Unsubscribe removes topics from a registered client.
func (h *Hub) Unsubscribe(c *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range topics {
		subs, ok := h.topics[topic]
		if !ok {
			continue
		}
		delete(subs, c.ID)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	kept := c.Topics[:0]
	for _, t := range c.Topics {
		if !contains(topics, t) {
			kept = append(kept, t)
		}
	}
	c.Topics = kept
}

func (h *Hub) addLocked(c *Client, topic string) {
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[string]*Client)
		h.topics[topic] = subs
	}
	subs[c.ID] = c
	if !contains(c.Topics, topic) {
		c.Topics = append(c.Topics, topic)
	}
}

// ProcessMessage applies a subscription change sent by the client.
func (h *Hub) ProcessMessage(c *Client, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.logger.Warn().Err(err).Str("client", c.ID).Msg("malformed client message")
		return
	}
	switch msg.Action {
	case "subscribe":
		h.Subscribe(c, msg.Topics)
	case "unsubscribe":
		h.Unsubscribe(c, msg.Topics)
	default:
		h.logger.Warn().Str("client", c.ID).Str("action", msg.Action).Msg("unknown client action")
	}
}

// Broadcast delivers event to clients subscribed to its entity or to
// AllTopics. Clients whose buffer is full miss the event.
func (h *Hub) Broadcast(event Event) int {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("entity", event.Entity).Msg("encode event")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	seen := make(map[string]bool)
	for _, topic := range []string{event.Entity, AllTopics} {
		for id, c := range h.topics[topic] {
			if seen[id] {
				continue
			}
			seen[id] = true
			select {
			case c.Send <- data:
				sent++
			default:
				h.logger.Warn().Str("client", id).Str("entity", event.Entity).Msg("client buffer full, event dropped")
			}
		}
	}
	return sent
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TopicCount returns the number of clients subscribed to topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Observer returns a store observer that broadcasts every committed change
// on the hub.
func Observer[T any](h *Hub) store.Observer[T] {
	return func(_ context.Context, ch store.Change[T]) {
		raw, err := json.Marshal(ch.Record)
		if err != nil {
			h.logger.Error().Err(err).Str("entity", ch.Entity).Int("id", ch.ID).Msg("encode record")
			raw = nil
		}
		h.Broadcast(Event{
			Action:    ch.Action,
			Entity:    ch.Entity,
			ID:        ch.ID,
			Timestamp: h.now().UTC(),
			Record:    raw,
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Handler upgrades HTTP requests to change-feed connections.
type Handler struct {
	hub      *Hub
	upgrader gorillawebsocket.Upgrader
}

// NewHandler creates a handler. An empty allowedOrigins accepts any origin.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	return &Handler{
		hub: hub,
		upgrader: gorillawebsocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 || contains(allowed, "*") {
			return true
		}
		return contains(allowed, origin)
	}
}

// RegisterRoutes mounts GET /ws on g.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", h.Connect)
}

// Connect upgrades the request. Initial topics come from repeated
// ?topic= parameters and default to AllTopics.
func (h *Handler) Connect(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	topics := c.QueryParams()["topic"]
	if len(topics) == 0 {
		topics = []string{AllTopics}
	}
	client := &Client{
		ID:     uuid.New().String(),
		Topics: topics,
		Send:   make(chan []byte, sendBuffer),
		hub:    h.hub,
		conn:   conn,
	}
	h.hub.Register(client)

	go client.writePump()
	go client.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if gorillawebsocket.IsUnexpectedCloseError(err, gorillawebsocket.CloseGoingAway, gorillawebsocket.CloseNormalClosure) {
				c.hub.logger.Warn().Err(err).Str("client", c.ID).Msg("connection closed")
			}
			return
		}
		c.hub.ProcessMessage(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(gorillawebsocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(gorillawebsocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(gorillawebsocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
