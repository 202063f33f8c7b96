package ws

import (
	"context"
	"sync"

	"lab-inventory/pkg/logger"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub fans inventory events out to every connected websocket client.
type Hub struct {
	clients    map[Conn]bool
	Register   chan Conn
	Unregister chan Conn
	Broadcast  chan []byte
	mutex      sync.RWMutex
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[Conn]bool),
		Register:   make(chan Conn),
		Unregister: make(chan Conn),
		Broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.stopOnce.Do(func() { close(h.done) })
			h.mutex.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.clients[conn] = true
			count := len(h.clients)
			h.mutex.Unlock()
			logger.Logger.Debug().Int("clients", count).Msg("WS client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Join registers conn. It reports false once the hub has stopped, in which
// case the caller owns conn.
func (h *Hub) Join(conn Conn) bool {
	select {
	case h.Register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters conn. After shutdown it returns immediately since Run
// already closed every client.
func (h *Hub) Leave(conn Conn) {
	select {
	case h.Unregister <- conn:
	case <-h.done:
	}
}

// Send queues message without blocking. It reports false when the buffer is full.
func (h *Hub) Send(message []byte) bool {
	select {
	case h.Broadcast <- message:
		return true
	default:
		return false
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
