package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/histolib/internal/registry"
	"github.com/wonny/histolib/pkg/logger"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sendBuffer   = 64
)

// Message is one frame pushed to /ws/cards subscribers
type Message struct {
	Type  string              `json:"type"` // "snapshot", "list" or "card"
	List  registry.ListStatus `json:"list"`
	Cards []registry.Card     `json:"cards,omitempty"`
	Card  *registry.Card      `json:"card,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes registry changes to websocket clients. A client that cannot
// keep up is dropped rather than allowed to block registry writers.
// ⭐ SSOT: 카드 실시간 푸시는 이 허브에서만
type Hub struct {
	registry *registry.Registry
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	unsub   func()
}

// NewHub creates a hub subscribed to reg
func NewHub(reg *registry.Registry, log *logger.Logger) *Hub {
	h := &Hub{
		registry: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  log,
		clients: make(map[*client]struct{}),
	}
	h.unsub = reg.Subscribe(h.broadcast)
	return h
}

// ServeWS upgrades the request and sends a snapshot followed by every change
// GET /ws/cards
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	initial, err := json.Marshal(Message{
		Type:  "snapshot",
		List:  h.registry.List(),
		Cards: h.registry.Cards(),
	})
	if err == nil {
		c.send <- initial
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", count).Debug("WebSocket client connected")

	go h.writePump(c)
	go h.readPump(c)
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and stops listening to the registry
func (h *Hub) Close() {
	h.unsub()

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcast(ev registry.Event) {
	msg := Message{Type: "card", List: ev.List, Card: ev.Card}
	if ev.Card == nil {
		msg.Type = "list"
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode card event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// Events are emitted after the registry unlocks, so a card from a
	// superseded reload can arrive after the newer list event.
	if ev.Generation < h.registry.Generation() {
		return
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("WebSocket client too slow, dropping")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump discards client frames and detects disconnects
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.WithError(err).Debug("WebSocket read error")
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
