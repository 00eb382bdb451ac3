package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/beatspace-ads/beatspace-backend/pkg/config"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
	"github.com/beatspace-ads/beatspace-backend/pkg/metrics"
)

// Frame is the toast message pushed to connected dashboard clients.
type Frame struct {
	Type    string    `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	OfferID string    `json:"offer_id,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// client is one websocket connection. The send channel is bounded; a client
// that cannot drain it in time is dropped rather than allowed to stall the hub.
type client struct {
	userID uuid.UUID
	role   enums.UserRole
	conn   *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan Frame
}

// tryQueue enqueues without blocking. The second return is false when the
// buffer is full and the client should be dropped.
func (c *client) tryQueue(frame Frame) (queued, alive bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, false
	}
	select {
	case c.send <- frame:
		return true, true
	default:
		return false, true
	}
}

func (c *client) shutdown() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	_ = c.conn.Close()
}

// Hub fans frames out to connected clients. Broadcast never blocks: frames to
// a saturated client are dropped and the client is unregistered.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}

	cfg     config.RealtimeConfig
	logg    *logger.Logger
	metrics *metrics.RealtimeMetrics

	upgrader websocket.Upgrader
}

// NewHub builds a hub with the configured buffer and timeouts.
func NewHub(cfg config.RealtimeConfig, logg *logger.Logger, m *metrics.RealtimeMetrics) *Hub {
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = 1
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Hub{
		clients: map[*client]struct{}{},
		cfg:     cfg,
		logg:    logg,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and runs the connection until either side
// closes. The caller supplies the authenticated identity.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID uuid.UUID, role enums.UserRole) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		userID: userID,
		role:   role,
		conn:   conn,
		send:   make(chan Frame, h.cfg.SendBuffer),
	}
	h.register(c)

	// Acked immediately so the dashboard can flip its indicator.
	c.tryQueue(Frame{Type: "connection_status", Message: "connected", SentAt: time.Now().UTC()})

	go h.writeLoop(c)
	h.readLoop(r.Context(), c)
	return nil
}

// Broadcast queues the frame to every connected client. Clients whose buffer
// is full are dropped on the spot.
func (h *Hub) Broadcast(frame Frame) {
	if frame.SentAt.IsZero() {
		frame.SentAt = time.Now().UTC()
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, frame)
	}
}

// BroadcastTo queues the frame only to connections owned by the given user.
func (h *Hub) BroadcastTo(userID uuid.UUID, frame Frame) {
	if frame.SentAt.IsZero() {
		frame.SentAt = time.Now().UTC()
	}

	h.mu.RLock()
	var targets []*client
	for c := range h.clients {
		if c.userID == userID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, frame)
	}
}

// BroadcastToRole queues the frame to every connection authenticated with the
// given role. The mediation dashboard registers as admin and receives buyer
// activity through this path.
func (h *Hub) BroadcastToRole(role enums.UserRole, frame Frame) {
	if frame.SentAt.IsZero() {
		frame.SentAt = time.Now().UTC()
	}

	h.mu.RLock()
	var targets []*client
	for c := range h.clients {
		if c.role == role {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, frame)
	}
}

func (h *Hub) deliver(c *client, frame Frame) {
	queued, alive := c.tryQueue(frame)
	switch {
	case queued:
		h.metrics.IncDispatched(frame.Type)
	case alive:
		h.metrics.IncDropped(frame.Type)
		h.unregister(c)
	}
}

// ConnectionCount reports the number of live clients.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = map[*client]struct{}{}
	h.mu.Unlock()

	for _, c := range clients {
		c.shutdown()
		h.metrics.ConnClosed()
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.ConnOpened()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()
	if ok {
		c.shutdown()
		h.metrics.ConnClosed()
	}
}

func (h *Hub) writeLoop(c *client) {
	ping := time.NewTicker(h.cfg.PingInterval)
	defer ping.Stop()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			payload, err := json.Marshal(frame)
			if err != nil {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.unregister(c)
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// readLoop drains inbound frames. Clients send pings as "pong" text frames;
// anything else is ignored.
func (h *Hub) readLoop(ctx context.Context, c *client) {
	defer h.unregister(c)
	for {
		if ctx.Err() != nil {
			return
		}
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var inbound struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &inbound); err != nil {
			continue
		}
		if inbound.Type == "pong" {
			c.tryQueue(Frame{Type: "pong", SentAt: time.Now().UTC()})
		}
	}
}
