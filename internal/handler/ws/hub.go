// Package ws pushes fresh predictions to websocket subscribers.
package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
	applogger "WalkSim/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

type client struct {
	conn   *websocket.Conn
	symbol string
	send   chan []byte
}

// Hub fans predictions out to connected clients. A client may subscribe to
// one symbol with ?symbol=; slow clients drop messages instead of blocking.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	ping     time.Duration
	closed   bool
	l        *applogger.Logger
}

func NewHub(pingInterval time.Duration) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		ping: pingInterval,
		l:    applogger.Nop(),
	}
}

func (h *Hub) SetLogger(l *applogger.Logger) {
	if l != nil {
		h.l = l
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/predictions", h.Serve)
}

// Serve upgrades the request and runs the client until it disconnects.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.l.Warn("ws upgrade", applogger.Error(err))
		return nil
	}
	cl := &client{
		conn:   conn,
		symbol: strings.ToUpper(c.QueryParam("symbol")),
		send:   make(chan []byte, sendBuffer),
	}
	if !h.add(cl) {
		_ = conn.Close()
		return nil
	}
	h.l.Info("ws client connected", applogger.String("symbol", cl.symbol), applogger.Int("clients", h.Len()))

	go h.writeLoop(cl)
	h.readLoop(cl)
	return nil
}

// Broadcast queues p for every client subscribed to its symbol.
func (h *Hub) Broadcast(p *models.PredictionResult) {
	if p == nil {
		return
	}
	b, err := json.Marshal(p)
	if err != nil {
		h.l.Warn("ws marshal", applogger.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		if cl.symbol != "" && cl.symbol != p.Symbol {
			continue
		}
		select {
		case cl.send <- b:
		default:
			// drop on backpressure
		}
	}
}

// Len reports connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	for cl := range h.clients {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
	return nil
}

func (h *Hub) add(cl *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[cl] = struct{}{}
	return true
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
}

// readLoop discards client frames and returns when the connection drops.
func (h *Hub) readLoop(cl *client) {
	defer func() {
		h.remove(cl)
		_ = cl.conn.Close()
	}()
	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(2 * h.ping))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(2 * h.ping))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(cl *client) {
	ticker := time.NewTicker(h.ping)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()
	for {
		select {
		case b, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ domrepo.Notifier = (*Hub)(nil)
