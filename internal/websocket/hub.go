package websocket

import (
	"context"
	"sync"

	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/metrics"
)

// Message types pushed to console clients.
const (
	TypeTagUpdate         = "TAG_UPDATE"
	TypeAlarmRaised       = "ALARM_RAISED"
	TypeAlarmAcknowledged = "ALARM_ACKNOWLEDGED"
	TypeAlarmEscalated    = "ALARM_ESCALATED"
	TypeCausalityUpdated  = "CAUSALITY_UPDATED"
)

const broadcastBuffer = 256

// Message defines the generic structure for WS communication
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        *logger.Logger
	mu         sync.RWMutex
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub logic in a goroutine. It listens for context cancellation for clean shutdown.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("WebSocket Hub started")
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			h.log.Info("WebSocket Hub shutting down...")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WebsocketClients(n)
			h.log.Info("New WS Client connected. Total: %d", n)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WebsocketClients(n)
		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

// deliver fans a message out; clients whose buffer is full are dropped.
func (h *Hub) deliver(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			h.log.Warn("Dropped slow WS client")
		}
	}
	metrics.WebsocketClients(len(h.clients))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WebsocketClients(0)
}

// Broadcast queues a message for all connected clients. It never blocks the
// caller; when the queue is full the message is dropped and logged.
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	select {
	case h.broadcast <- Message{Type: msgType, Payload: payload}:
	default:
		h.log.Warn("Broadcast queue full, dropping %s", msgType)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
