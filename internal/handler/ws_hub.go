package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// AllTournaments subscribes a connection to every tournament.
const AllTournaments = "*"

// WSEvent is the envelope of every server-to-spectator message.
type WSEvent struct {
	Type         string `json:"type"`
	TournamentID string `json:"tournament_id"`
	Data         any    `json:"data"`
}

// ClientMessage is a spectator request: "subscribe" or "unsubscribe".
type ClientMessage struct {
	Action       string `json:"action"`
	TournamentID string `json:"tournament_id"`
}

// WSConn is one spectator connection and its outbound queue.
type WSConn struct {
	conn *websocket.Conn
	name string
	send chan []byte
}

// offer queues data without blocking. A full queue drops the message so a
// slow spectator never stalls a running tournament.
func (c *WSConn) offer(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

type connSet map[*WSConn]struct{}

// Hub fans tournament events out to subscribed spectators.
type Hub struct {
	mu     sync.RWMutex
	conns  connSet
	topics map[string]connSet // tournament id or AllTournaments
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: connSet{}, topics: map[string]connSet{}}
}

// Register adds a connection.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister drops a connection with all its subscriptions and closes its
// queue. Repeated calls are no-ops.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; !ok {
		return
	}
	delete(h.conns, c)
	for topic := range h.topics {
		h.leave(c, topic)
	}
	close(c.send)
}

// Subscribe adds c to a tournament's audience.
func (h *Hub) Subscribe(c *WSConn, tournamentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.topics[tournamentID]
	if !ok {
		set = connSet{}
		h.topics[tournamentID] = set
	}
	set[c] = struct{}{}
}

// Unsubscribe removes c from a tournament's audience.
func (h *Hub) Unsubscribe(c *WSConn, tournamentID string) {
	h.mu.Lock()
	h.leave(c, tournamentID)
	h.mu.Unlock()
}

// leave requires h.mu held for writing.
func (h *Hub) leave(c *WSConn, topic string) {
	set := h.topics[topic]
	delete(set, c)
	if len(set) == 0 {
		delete(h.topics, topic)
	}
}

// BroadcastTournamentEvent sends an event to the tournament's subscribers
// and to wildcard subscribers, each connection at most once.
func (h *Hub) BroadcastTournamentEvent(tournamentID, eventType string, data any) {
	payload, err := json.Marshal(WSEvent{Type: eventType, TournamentID: tournamentID, Data: data})
	if err != nil {
		log.Error().Err(err).Str("tournamentId", tournamentID).Str("type", eventType).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	direct := h.topics[tournamentID]
	targets := make([]*WSConn, 0, len(direct))
	for c := range direct {
		targets = append(targets, c)
	}
	if tournamentID != AllTournaments {
		for c := range h.topics[AllTournaments] {
			if _, dup := direct[c]; !dup {
				targets = append(targets, c)
			}
		}
	}
	for _, c := range targets {
		if !c.offer(payload) {
			log.Warn().Str("spectator", c.name).Str("tournamentId", tournamentID).Str("type", eventType).
				Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// SubscriberCount returns how many connections follow tournamentID directly.
func (h *Hub) SubscriberCount(tournamentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[tournamentID])
}
