// Package websocket streams live plan events to a read-only dashboard
// and exposes JWT-guarded admin controls (pause/resume the executive).
// Every connected client receives the same broadcast stream; there is
// only one plan running per process, so there is no per-client
// subscription filtering to track.
package websocket

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/plexilrun/plexil/internal/infrastructure/monitoring"
)

// Hub owns the client registry and fans every broadcast event out to
// every currently-connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan monitoring.PlanEvent

	log zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan monitoring.PlanEvent, 256),
		log:        log,
	}
}

// Run drains the hub's channels until stop is closed. Call it in its
// own goroutine alongside the executive.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case e := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- e:
				default:
					h.log.Warn().Str("client_id", c.id).Msg("dashboard client buffer full, dropping event")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// ClientCount reports how many dashboard clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Observer adapts Hub into a monitoring.PlanObserver: every published
// plan event is forwarded to the broadcast channel, best-effort.
// A full client buffer drops the event rather than blocking the executive.
type Observer struct {
	hub *Hub
}

func NewObserver(hub *Hub) *Observer {
	return &Observer{hub: hub}
}

func (o *Observer) OnEvent(e monitoring.PlanEvent) {
	select {
	case o.hub.broadcast <- e:
	default:
	}
}

var _ monitoring.PlanObserver = (*Observer)(nil)
