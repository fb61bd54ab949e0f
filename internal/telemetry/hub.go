package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ematoledor/starflight-server/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Command is an inbound pilot control message. Unknown fields are ignored;
// unknown types are dropped at decode time.
type Command struct {
	Type   string  `json:"type"` // "control"
	Thrust float64 `json:"thrust"`
	Yaw    float64 `json:"yaw"`
	Pitch  float64 `json:"pitch"`
	Fire   bool    `json:"fire"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts world snapshots to connected viewers and queues their
// control commands for the input system. Connection handling runs on
// network goroutines; the game loop only touches Broadcast and Commands.
type Hub struct {
	cfg config.TelemetryConfig
	log *zap.Logger

	mu      sync.Mutex
	clients map[*client]struct{}

	commands chan Command
}

func NewHub(cfg config.TelemetryConfig, log *zap.Logger) *Hub {
	return &Hub{
		cfg:      cfg,
		log:      log,
		clients:  make(map[*client]struct{}),
		commands: make(chan Command, 256),
	}
}

// Commands returns the inbound control queue. Drained by the input system
// with a per-tick budget.
func (h *Hub) Commands() <-chan Command {
	return h.commands
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast marshals v once and queues it to every client. Slow consumers
// drop frames rather than stalling the game loop.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("telemetry marshal failed", zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// frame dropped for this client
		}
	}
}

// Serve registers the websocket endpoint and blocks on the HTTP listener.
// Run it on its own goroutine.
func (h *Hub) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	h.log.Info("telemetry listening", zap.String("addr", h.cfg.BindAddress))
	return http.ListenAndServe(h.cfg.BindAddress, mux)
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	queue := h.cfg.SendQueue
	if queue <= 0 {
		queue = 64
	}
	c := &client{conn: conn, send: make(chan []byte, queue)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("viewer connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.log.Debug("bad command frame", zap.Error(err))
			continue
		}
		if cmd.Type != "control" {
			continue
		}
		select {
		case h.commands <- cmd:
		default:
			// command queue full; the pilot is spamming faster than the
			// sim consumes, so the oldest intent wins
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	for data := range c.send {
		deadline := time.Now().Add(h.cfg.WriteTimeout)
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}
