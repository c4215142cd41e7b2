package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

// Client is one WebSocket connection of a driver. A driver may hold several.
type Client struct {
	ActorID string
	conn    *websocket.Conn
	send    chan []byte
}

func NewClient(actorID string, conn *websocket.Conn) *Client {
	return &Client{
		ActorID: actorID,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
	}
}

// Hub keeps the open connections per driver and fans messages out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger.Named("hub"),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.ActorID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.ActorID] = set
	}
	set[c] = struct{}{}
	h.logger.Info("client connected", zap.String("actor_id", c.ActorID), zap.Int("connections", len(set)))
}

// Unregister removes c and closes its send channel. Calling it twice is harmless.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.ActorID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.ActorID)
	}
	h.logger.Info("client disconnected", zap.String("actor_id", c.ActorID))
}

// Send queues message as JSON for c and reports whether it was accepted.
// A client whose buffer is full is dropped; a client that is no longer
// registered is ignored.
func (h *Hub) Send(c *Client, message any) bool {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to encode message", zap.String("actor_id", c.ActorID), zap.Error(err))
		return false
	}

	h.mu.RLock()
	if _, ok := h.clients[c.ActorID][c]; !ok {
		h.mu.RUnlock()
		return false
	}
	select {
	case c.send <- data:
		h.mu.RUnlock()
		return true
	default:
	}
	h.mu.RUnlock()

	h.logger.Warn("dropping slow client", zap.String("actor_id", c.ActorID))
	h.Unregister(c)
	return false
}

// OnlineCount returns the number of drivers with at least one open connection.
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for actorID, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, actorID)
	}
}

// WritePump sends queued messages and keep-alive pings until the send channel
// is closed or a write fails. It owns all writes to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump discards client messages and returns when the connection closes.
func (c *Client) ReadPump() error {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return err
			}
			return nil
		}
	}
}
