package websocket

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Controller is the admin surface a dashboard can drive: pausing holds
// the executive at its current step boundary without tearing anything
// down; resuming lets it continue draining the candidate queue.
type Controller interface {
	Pause()
	Resume()
	Paused() bool
}

// Handler serves the dashboard's WebSocket stream endpoint and its two
// JWT-guarded admin endpoints.
type Handler struct {
	hub  *Hub
	auth *JWTAdminAuth
	ctl  Controller
	log  zerolog.Logger
}

func NewHandler(hub *Hub, auth *JWTAdminAuth, ctl Controller, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, auth: auth, ctl: ctl, log: log}
}

// ServeStream upgrades to a WebSocket and streams events until the peer
// disconnects. No authentication is required to watch: the stream is
// read-only telemetry, never a control surface.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("dashboard upgrade failed")
		return
	}
	client := NewClient(uuid.New().String(), h.hub, conn, h.log)
	h.hub.register <- client

	go client.WritePump()
	client.ReadPump()
}

// ServePause and ServeResume require a valid admin bearer token before
// touching the executive.
func (h *Handler) ServePause(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Authenticate(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	h.ctl.Pause()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ServeResume(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Authenticate(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	h.ctl.Resume()
	w.WriteHeader(http.StatusNoContent)
}

// Mux builds the three routes this handler serves, ready to mount under
// an http.Server.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/dashboard/stream", h.ServeStream)
	mux.HandleFunc("/dashboard/admin/pause", h.ServePause)
	mux.HandleFunc("/dashboard/admin/resume", h.ServeResume)
	return mux
}
