package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/poselens/internal/app"
)

const writeTimeout = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// SnapshotSource publishes pipeline snapshots.
type SnapshotSource interface {
	Subscribe() (<-chan app.Snapshot, func())
}

// LandmarksHandler broadcasts pipeline snapshots via WebSocket.
type LandmarksHandler struct {
	log     zerolog.Logger
	cancel  func()
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewLandmarksHandler subscribes to source and starts broadcasting.
func NewLandmarksHandler(source SnapshotSource, log zerolog.Logger) *LandmarksHandler {
	ch, cancel := source.Subscribe()
	h := &LandmarksHandler{
		log:     log,
		cancel:  cancel,
		clients: make(map[*websocket.Conn]bool),
	}
	go h.broadcast(ch)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade error")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *LandmarksHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the subscription; the broadcast loop exits.
func (h *LandmarksHandler) Close() {
	h.cancel()
}

// broadcast sends every snapshot to all connected clients.
func (h *LandmarksHandler) broadcast(ch <-chan app.Snapshot) {
	for snap := range ch {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		msg, err := json.Marshal(snap)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to encode snapshot")
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				// The reader loop notices the broken connection and unregisters it.
				conn.Close()
			}
		}
		h.mu.RUnlock()
	}
}
