package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/fresco-dev/fresco/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

// ReloadMessage is the payload pushed to connected browsers. The injected
// live-reload client treats "full_reload" as a page refresh.
type ReloadMessage struct {
	Type string   `json:"type"`
	Hint []string `json:"hint,omitempty"`
}

// Hub fans reload messages out to connected live-reload clients. Register,
// unregister, and broadcast all funnel through the run loop so the client
// set needs no locking of its own.
type Hub struct {
	logger logging.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub; Run must be started for it to deliver anything.
func NewHub(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		logger:     logger.WithComponent("reload"),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 16),
		clients:    make(map[*client]struct{}),
	}
}

// Run processes hub events until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				c.conn.Close(websocket.StatusGoingAway, "server shutting down")
			}
			h.clients = make(map[*client]struct{})
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug(ctx, "reload client connected", "total", count)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Slow client; drop the message rather than block the hub.
				}
			}
			h.mu.RUnlock()

		case <-ticker.C:
			h.mu.RLock()
			for c := range h.clients {
				go func(conn *websocket.Conn) {
					pingCtx, cancel := context.WithTimeout(ctx, writeWait)
					defer cancel()
					_ = conn.Ping(pingCtx)
				}(c.conn)
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastReload tells every connected client to refresh, optionally hinting
// which paths changed.
func (h *Hub) BroadcastReload(changed ...string) {
	data, err := json.Marshal(ReloadMessage{Type: "full_reload", Hint: changed})
	if err != nil {
		data = []byte(`{"type":"full_reload"}`)
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn(context.Background(), nil, "reload broadcast dropped, channel full")
	}
}

// ClientCount reports connected clients. Used by health reporting and tests.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades a live-reload connection and pumps messages until either
// side goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, allowedHosts []string) {
	if !originAllowed(r, allowedHosts) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin already validated above
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}

	go h.writePump(c)
	go h.readPump(c)

	h.register <- c
}

// originAllowed accepts same-host origins plus the configured extras. The
// live-reload endpoint only exists in development, but origin checks stay on
// so a hostile page cannot hold reload sockets open.
func originAllowed(r *http.Request, allowedHosts []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	for _, host := range allowedHosts {
		if u.Host == host || origin == host {
			return true
		}
	}
	return false
}

func (h *Hub) writePump(c *client) {
	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			break
		}
	}
	c.conn.Close(websocket.StatusNormalClosure, "")
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister <- c
	}()
	for {
		// Clients never send application data; reads only surface closes.
		if _, _, err := c.conn.Read(context.Background()); err != nil {
			return
		}
	}
}
