package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// clientBuffer is how many events may queue for a slow client before
	// it is dropped.
	clientBuffer = 8
)

// EventType names a websocket notification.
type EventType string

const (
	EventHello  EventType = "hello"
	EventReload EventType = "reload"
)

// Event is sent to pages as JSON.
type Event struct {
	Type       EventType `json:"type"`
	Client     string    `json:"client,omitempty"`
	LayoutHash string    `json:"layout_hash,omitempty"`
	LoadedAt   time.Time `json:"loaded_at,omitzero"`
}

// Hub fans reload events out to connected pages.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]chan Event
	closed  bool
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[string]chan Event),
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues e for every client. Clients whose queue is full are
// disconnected; the page reconnects on reload anyway.
func (h *Hub) Broadcast(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.clients {
		select {
		case ch <- e:
		default:
			h.logger.Warn("dropping slow websocket client", "client", id)
			close(ch)
			delete(h.clients, id)
		}
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
}

func (h *Hub) register() (string, chan Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return "", nil, false
	}
	id := uuid.NewString()
	ch := make(chan Event, clientBuffer)
	h.clients[id] = ch
	return id, ch, true
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[id]; ok {
		close(ch)
		delete(h.clients, id)
	}
}

// ServeHTTP upgrades the request and streams events until the client goes
// away or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	id, events, ok := h.register()
	if !ok {
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
		return
	}
	defer h.unregister(id)
	h.logger.Debug("websocket client connected", "client", id)

	// The reader only handles pongs and notices disconnects.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := h.write(ws, Event{Type: EventHello, Client: id}); err != nil {
		return
	}
	for {
		select {
		case e, ok := <-events:
			if !ok {
				ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			if err := h.write(ws, e); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-gone:
			h.logger.Debug("websocket client disconnected", "client", id)
			return
		}
	}
}

func (h *Hub) write(ws *websocket.Conn, e Event) error {
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteJSON(e); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
		return err
	}
	return nil
}
