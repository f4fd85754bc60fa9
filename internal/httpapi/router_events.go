package httpapi

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"augur/internal/gateway"
)

const eventWriteTimeout = 5 * time.Second

// EventHub fans pipeline events out to connected websocket clients. Publish
// never blocks: a client that cannot keep up loses events instead of
// stalling the pipeline.
type EventHub struct {
	logger *slog.Logger
	buffer int

	mu      sync.Mutex
	clients map[*hubClient]struct{}
}

type hubClient struct {
	send chan gateway.Event
}

func NewEventHub(buffer int, logger *slog.Logger) *EventHub {
	if buffer < 1 {
		buffer = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHub{
		logger:  logger,
		buffer:  buffer,
		clients: map[*hubClient]struct{}{},
	}
}

func (h *EventHub) Publish(event gateway.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- event:
		default:
		}
	}
}

func (h *EventHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *EventHub) subscribe() *hubClient {
	client := &hubClient{send: make(chan gateway.Event, h.buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
	return client
}

func (h *EventHub) unsubscribe(client *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(req *http.Request) bool { return true },
}

func (r *router) handleEvents(w http.ResponseWriter, req *http.Request) {
	if r.deps.Events == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event feed disabled"})
		return
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.deps.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	client := r.deps.Events.subscribe()
	defer r.deps.Events.unsubscribe(client)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-req.Context().Done():
			return
		case event := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
