package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/regifting/internal/auth"
)

// Spectator connection tuning. The ping interval stays below the read
// deadline so an idle but healthy client is never dropped.
const (
	spectatorWriteTimeout = 10 * time.Second
	spectatorReadTimeout  = time.Minute
	spectatorPingEvery    = spectatorReadTimeout * 9 / 10
	spectatorMaxMessage   = 4096
	spectatorQueue        = 256
)

var spectatorUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are vetted by the CORS middleware.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WSHandler upgrades spectators to WebSocket connections.
type WSHandler struct {
	hub    *Hub
	jwtMgr *auth.JWTManager
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(hub *Hub, jwtMgr *auth.JWTManager) *WSHandler {
	return &WSHandler{hub: hub, jwtMgr: jwtMgr}
}

// ServeWS handles GET /api/v1/ws. The bearer token travels in ?token=
// because browsers cannot attach headers to the handshake.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token parameter")
		return
	}
	claims, err := h.jwtMgr.ValidateToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	ws, err := spectatorUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("spectator", claims.Name).Msg("WebSocket upgrade failed")
		return
	}

	c := &WSConn{conn: ws, name: claims.Name, send: make(chan []byte, spectatorQueue)}
	h.hub.Register(c)
	c.enqueue(WSEvent{Type: "connected", Data: map[string]string{"name": claims.Name}})

	go c.writeLoop()
	go h.readLoop(c)

	log.Info().
		Str("spectator", claims.Name).
		Int("total", h.hub.ConnectionCount()).
		Msg("WebSocket client connected")
}

// readLoop consumes subscription requests until the peer goes away.
func (h *WSHandler) readLoop(c *WSConn) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("spectator", c.name).Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(spectatorMaxMessage)
	extend := func() error {
		return c.conn.SetReadDeadline(time.Now().Add(spectatorReadTimeout))
	}
	_ = extend()
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("spectator", c.name).Msg("WebSocket unexpected close")
			}
			return
		}
		h.dispatch(c, raw)
	}
}

// dispatch applies one client message. Malformed messages and unknown
// actions are ignored.
func (h *WSHandler) dispatch(c *WSConn, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.TournamentID == "" {
		return
	}
	switch msg.Action {
	case "subscribe":
		h.hub.Subscribe(c, msg.TournamentID)
		c.enqueue(WSEvent{Type: "subscribed", TournamentID: msg.TournamentID})
	case "unsubscribe":
		h.hub.Unsubscribe(c, msg.TournamentID)
		c.enqueue(WSEvent{Type: "unsubscribed", TournamentID: msg.TournamentID})
	}
}

// enqueue queues ev for delivery, dropping it when the queue is full.
func (c *WSConn) enqueue(ev WSEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if !c.offer(data) {
		log.Warn().Str("spectator", c.name).Str("type", ev.Type).Msg("Spectator queue full, dropping event")
	}
}

// writeLoop drains the send queue and keeps the connection alive with pings.
// It exits when the hub closes the queue or a write fails.
func (c *WSConn) writeLoop() {
	ping := time.NewTicker(spectatorPingEvery)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	write := func(kind int, payload []byte) error {
		_ = c.conn.SetWriteDeadline(time.Now().Add(spectatorWriteTimeout))
		return c.conn.WriteMessage(kind, payload)
	}
	for {
		select {
		case data, open := <-c.send:
			if !open {
				_ = write(websocket.CloseMessage, nil)
				return
			}
			if write(websocket.TextMessage, data) != nil {
				return
			}
		case <-ping.C:
			if write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}
