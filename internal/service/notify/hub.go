package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"PriceWatch/internal/domain/models"
	"PriceWatch/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Hub fans events out to connected websocket clients. Publish never blocks:
// a client whose send buffer is full is disconnected.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	buffer   int
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// HubOption configures Hub.
type HubOption func(*Hub)

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		buffer:  256,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	symbols map[string]struct{} // empty means every symbol
	once    sync.Once
}

func (c *client) wants(symbol string) bool {
	if len(c.symbols) == 0 {
		return true
	}
	_, ok := c.symbols[symbol]
	return ok
}

// ServeWS upgrades the request and streams events for symbols (all when empty)
// until the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, symbols []string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}

	c := &client{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan []byte, h.buffer),
		symbols: make(map[string]struct{}, len(symbols)),
	}
	for _, s := range symbols {
		if sym := models.NormalizeSymbol(s); sym != "" {
			c.symbols[sym] = struct{}{}
		}
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return fmt.Errorf("hub closed")
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.log.Debug("event client connected",
		logger.String("client_id", c.id),
		logger.Int("symbols", len(c.symbols)),
	)

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

// Publish implements repository.Notifier.
func (h *Hub) Publish(_ context.Context, ev models.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		if !c.wants(ev.Symbol) {
			continue
		}
		select {
		case c.send <- b:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("dropping slow event client", logger.String("client_id", c.id))
		h.unregister(c)
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.once.Do(func() { close(c.send) })
	}
	return nil
}

// unregister removes c and closes its send channel; the write pump then
// closes the connection.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.once.Do(func() { close(c.send) })
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		h.log.Debug("event client disconnected", logger.String("client_id", c.id))
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// inbound messages are ignored; reading drives control frames
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
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

// WithBuffer sets the per-client send buffer.
func WithBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) HubOption {
	return func(h *Hub) {
		h.log = l.With(logger.Component("notify_hub"))
	}
}
