package service

import (
	"github.com/freeeve/regifting/internal/bot"
	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/pkg/bargain"
)

// ProposalPayload is the data of a proposal event.
type ProposalPayload struct {
	Game         int      `json:"game"`
	Round        int      `json:"round"`
	Director     string   `json:"director"`
	Strategy     string   `json:"strategy"`
	Seating      []string `json:"seating"`
	Distribution []int    `json:"distribution"`
	Valid        bool     `json:"valid"`
	Error        string   `json:"error,omitempty"`
}

// BallotPayload is one vote inside a votes event.
type BallotPayload struct {
	Seat   string `json:"seat"`
	Rank   int    `json:"rank"`
	Accept bool   `json:"accept"`
	Auto   bool   `json:"auto,omitempty"`
}

// VotesPayload is the data of a votes event.
type VotesPayload struct {
	Game             int             `json:"game"`
	Round            int             `json:"round"`
	Director         string          `json:"director"`
	Ballots          []BallotPayload `json:"ballots"`
	AcceptCount      int             `json:"accept_count"`
	RejectCount      int             `json:"reject_count"`
	AcceptPercentage float64         `json:"accept_percentage"`
	RejectPercentage float64         `json:"reject_percentage"`
	Accepted         bool            `json:"accepted"`
}

// EliminationPayload is the data of an eliminated event.
type EliminationPayload struct {
	Game         int      `json:"game"`
	Round        int      `json:"round"`
	Seat         string   `json:"seat"`
	Strategy     string   `json:"strategy"`
	Invalid      bool     `json:"invalid"`
	NextDirector string   `json:"next_director,omitempty"`
	Survivors    []string `json:"survivors"`
}

// BroadcastObserver relays tournament and engine events to a Broadcaster.
// One observer serves one tournament at a time.
type BroadcastObserver struct {
	b            Broadcaster
	tournamentID string
	game         int
}

var _ bot.TournamentObserver = (*BroadcastObserver)(nil)

// NewBroadcastObserver creates a BroadcastObserver.
func NewBroadcastObserver(b Broadcaster) *BroadcastObserver {
	return &BroadcastObserver{b: b}
}

func (o *BroadcastObserver) OnTournamentStart(id string, cfg bot.TournamentConfig) {
	o.tournamentID = id
	o.b.BroadcastTournamentEvent(id, EventTournamentStarted, map[string]any{
		"id":       id,
		"name":     cfg.Name,
		"entrants": cfg.Entrants,
		"pool":     cfg.Pool,
		"games":    cfg.Games,
		"seed":     cfg.Seed,
	})
}

func (o *BroadcastObserver) OnGameStart(id string, number int, seating []string) {
	o.game = number
	o.b.BroadcastTournamentEvent(id, EventGameStarted, map[string]any{
		"game":    number,
		"seating": seating,
	})
}

func (o *BroadcastObserver) OnProposal(e bargain.ProposalEvent) {
	p := ProposalPayload{
		Game:         o.game,
		Round:        e.Round,
		Director:     e.Director,
		Strategy:     e.Strategy,
		Seating:      e.Seating,
		Distribution: []int(e.Distribution),
		Valid:        e.Valid(),
	}
	if e.Err != nil {
		p.Error = e.Err.Error()
	}
	o.b.BroadcastTournamentEvent(o.tournamentID, EventProposal, p)
}

func (o *BroadcastObserver) OnVotes(e bargain.VoteEvent) {
	ballots := make([]BallotPayload, len(e.Ballots))
	for i, b := range e.Ballots {
		ballots[i] = BallotPayload{Seat: b.Seat, Rank: b.Rank, Accept: b.Accept, Auto: b.Auto}
	}
	o.b.BroadcastTournamentEvent(o.tournamentID, EventVotes, VotesPayload{
		Game:             o.game,
		Round:            e.Round,
		Director:         e.Director,
		Ballots:          ballots,
		AcceptCount:      e.AcceptCount,
		RejectCount:      e.RejectCount,
		AcceptPercentage: e.AcceptPercentage,
		RejectPercentage: e.RejectPercentage,
		Accepted:         e.Accepted,
	})
}

func (o *BroadcastObserver) OnElimination(e bargain.EliminationEvent) {
	o.b.BroadcastTournamentEvent(o.tournamentID, EventEliminated, EliminationPayload{
		Game:         o.game,
		Round:        e.Round,
		Seat:         e.Seat,
		Strategy:     e.Strategy,
		Invalid:      e.Invalid,
		NextDirector: e.NextDirector,
		Survivors:    e.Survivors,
	})
}

// OnOutcome is covered by OnGameEnd, which carries the archived record.
func (o *BroadcastObserver) OnOutcome(bargain.Outcome) {}

func (o *BroadcastObserver) OnGameEnd(id string, rec model.GameRecord) {
	o.b.BroadcastTournamentEvent(id, EventGameFinished, rec)
}

func (o *BroadcastObserver) OnTournamentEnd(res *bot.TournamentResult) {
	o.b.BroadcastTournamentEvent(res.ID, EventTournamentFinished, map[string]any{
		"id":        res.ID,
		"standings": res.Standings,
		"stats":     res.Stats,
		"totals":    res.Totals,
	})
}
