// Package live pushes match snapshots to WebSocket clients such as a popout
// scoreboard or a second screen.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	service "github.com/okian/matchxg/internal/app"
	"github.com/okian/matchxg/pkg/logger"
	"github.com/okian/matchxg/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	defaultBroadcastBuffer = 64
	defaultClientBuffer    = 16
)

// Message types sent to clients.
const (
	TypeSnapshot = "snapshot"
)

// Message is the frame written to clients.
type Message struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

type clientRequest struct {
	Type string `json:"type"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithAllowedOrigins restricts the Origin header on upgrade. "*" allows all.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Hub) {
		h.origins = origins
	}
}

// WithClientBuffer sets how many frames a client may lag before it is dropped.
func WithClientBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.clientBuffer = n
		}
	}
}

// Hub fans snapshots out to connected clients. Broadcast never blocks;
// clients that cannot keep up are disconnected.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	refresh    chan *client

	// latest is replayed to every new client.
	latest atomic.Pointer[[]byte]
	count  atomic.Int64

	upgrader     websocket.Upgrader
	origins      []string
	clientBuffer int
	done         chan struct{}
	closeOnce    sync.Once

	logger logger.Logger
}

// NewHub creates a hub. Call Run to start delivering.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:      make(map[*client]struct{}),
		broadcast:    make(chan []byte, defaultBroadcastBuffer),
		register:     make(chan *client, defaultBroadcastBuffer),
		unregister:   make(chan *client, defaultBroadcastBuffer),
		refresh:      make(chan *client, defaultBroadcastBuffer),
		clientBuffer: defaultClientBuffer,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get()
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.origins) == 0 {
		return true
	}
	for _, o := range h.origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// Run delivers broadcasts until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeOnce.Do(func() { close(h.done) })
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			h.logger.Info(ctx, "live hub stopped")
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.updateCount()
			h.logger.Debug(ctx, "live client registered", logger.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.logger.Debug(ctx, "live client unregistered", logger.Int("clients", len(h.clients)))
			}

		case c := <-h.refresh:
			h.replay(ctx, c)

		case frame := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- frame:
				default:
					h.drop(c)
					metrics.RecordLiveDropped()
					h.logger.Warn(ctx, "live client too slow, dropped")
				}
			}
			metrics.RecordLiveBroadcast()
		}
	}
}

// replay sends the latest frame to c alone.
func (h *Hub) replay(ctx context.Context, c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	latest := h.latest.Load()
	if latest == nil {
		return
	}
	select {
	case c.send <- *latest:
	default:
		h.drop(c)
		metrics.RecordLiveDropped()
		h.logger.Warn(ctx, "live client too slow, dropped")
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.updateCount()
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.UpdateLiveClients(len(h.clients))
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int { return int(h.count.Load()) }

// Broadcast implements service.Broadcaster.
func (h *Hub) Broadcast(snap service.Snapshot) {
	frame, err := json.Marshal(Message{Type: TypeSnapshot, Timestamp: time.Now().UnixMilli(), Data: snap})
	if err != nil {
		metrics.RecordError("live", "marshal")
		h.logger.Error(context.Background(), "marshal snapshot", logger.Error(err))
		return
	}
	h.latest.Store(&frame)

	select {
	case h.broadcast <- frame:
	default:
		// Run is behind; the next snapshot supersedes this one.
		metrics.RecordError("live", "broadcast_full")
	}
}

// ServeHTTP upgrades the request and streams snapshots to it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "live feed closed", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, h.clientBuffer)}
	if latest := h.latest.Load(); latest != nil {
		c.send <- *latest
	}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn(context.Background(), "websocket read", logger.Error(err))
			}
			return
		}
		c.handle(data)
	}
}

// handle asks the hub to resend the latest snapshot to this client only on
// {"type":"refresh"}.
func (c *client) handle(data []byte) {
	var req clientRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	if req.Type != "refresh" {
		return
	}
	// c.send belongs to the hub goroutine.
	select {
	case c.hub.refresh <- c:
	case <-c.hub.done:
	default:
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
