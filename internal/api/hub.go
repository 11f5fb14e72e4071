package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans desk state out to websocket clients.
type Hub struct {
	log       zerolog.Logger
	lock      sync.Mutex
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
}

// NewHub creates a hub with a small broadcast buffer; slow consumers drop frames.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:       log,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 16),
	}
}

// Run writes queued messages to every client until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case message := <-h.broadcast:
			h.lock.Lock()
			for client := range h.clients {
				if err := h.write(client, message); err != nil {
					client.Close()
					delete(h.clients, client)
				}
			}
			h.lock.Unlock()
		}
	}
}

// Broadcast queues msg without blocking the caller.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Debug().Msg("ws broadcast dropped")
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// Serve upgrades the request and registers the connection. initial, when non-nil,
// is sent before the connection joins the broadcast set.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, initial []byte) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade")
		return
	}
	h.lock.Lock()
	if initial != nil {
		if err := h.write(conn, initial); err != nil {
			h.lock.Unlock()
			conn.Close()
			return
		}
	}
	h.clients[conn] = true
	h.lock.Unlock()

	// drain client frames so close and ping control messages are handled
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(conn)
				return
			}
		}
	}()
}

func (h *Hub) write(conn *websocket.Conn, msg []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, msg)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.lock.Lock()
	if h.clients[conn] {
		delete(h.clients, conn)
		conn.Close()
	}
	h.lock.Unlock()
}

func (h *Hub) closeAll() {
	h.lock.Lock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
	h.lock.Unlock()
}
