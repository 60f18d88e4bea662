package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/yourorg/kap-news/internal/metrics"
	"github.com/yourorg/kap-news/internal/model"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 4
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// PriceSource lists the current price snapshots
type PriceSource interface {
	List(ctx context.Context) ([]model.PriceItem, error)
}

// Snapshot is one message on the price stream
type Snapshot struct {
	Type   string            `json:"type"`
	At     time.Time         `json:"at"`
	Prices []model.PriceItem `json:"prices"`
}

// Hub pushes price snapshots to every connected client
type Hub struct {
	source   PriceSource
	interval time.Duration
	clients  map[*client]struct{}
	mu       sync.Mutex
	logger   *zap.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a new price stream hub
func NewHub(source PriceSource, interval time.Duration, logger *zap.Logger) *Hub {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Hub{
		source:   source,
		interval: interval,
		clients:  make(map[*client]struct{}),
		logger:   logger,
	}
}

// Run broadcasts a snapshot every interval until ctx is done
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			if h.ClientCount() == 0 {
				continue
			}
			data, err := h.snapshot(ctx)
			if err != nil {
				h.logger.Warn("Failed to build price snapshot", zap.Error(err))
				continue
			}
			h.broadcast(data)
		}
	}
}

// ServeWS upgrades the connection and sends the current snapshot right away
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if data, err := h.snapshot(r.Context()); err != nil {
		h.logger.Warn("Failed to build initial price snapshot", zap.Error(err))
	} else {
		c.send <- data
	}
	h.register(c)

	go h.writePump(c)
	go h.readPump(c)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) snapshot(ctx context.Context) ([]byte, error) {
	prices, err := h.source.List(ctx)
	if err != nil {
		return nil, err
	}
	if prices == nil {
		prices = []model.PriceItem{}
	}
	return json.Marshal(Snapshot{Type: "prices", At: time.Now().UTC(), Prices: prices})
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.StreamClients.Set(float64(n))
	h.logger.Debug("Stream client connected", zap.Int("clients", n))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.StreamClients.Set(float64(n))
	h.logger.Debug("Stream client disconnected", zap.Int("clients", n))
}

// broadcast queues data for every client; clients that cannot keep up are dropped
func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
	metrics.StreamClients.Set(float64(len(h.clients)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	metrics.StreamClients.Set(0)
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// readPump discards client messages and detects disconnects
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
