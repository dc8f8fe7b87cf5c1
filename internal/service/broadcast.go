package service

// Event types pushed to spectators.
const (
	EventTournamentStarted  = "tournament_started"
	EventGameStarted        = "game_started"
	EventProposal           = "proposal"
	EventVotes              = "votes"
	EventEliminated         = "eliminated"
	EventGameFinished       = "game_finished"
	EventTournamentFinished = "tournament_finished"
	EventTournamentFailed   = "tournament_failed"
)

// Broadcaster sends real-time events to connected clients.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastTournamentEvent(tournamentID string, eventType string, data any)
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastTournamentEvent(string, string, any) {}
