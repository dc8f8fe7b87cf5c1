package bot

import (
	"github.com/rs/zerolog"

	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/pkg/bargain"
)

// LogObserver writes tournament progress to a zerolog logger. Per-round
// events are logged at debug, game and tournament results at info and
// recovered strategy faults at warn.
type LogObserver struct {
	log          zerolog.Logger
	tournamentID string
	game         int
}

// NewLogObserver returns an observer writing to l.
func NewLogObserver(l zerolog.Logger) *LogObserver {
	return &LogObserver{log: l}
}

func (o *LogObserver) OnTournamentStart(id string, cfg TournamentConfig) {
	o.tournamentID = id
	o.log.Info().
		Str("tournamentId", id).
		Str("name", cfg.Name).
		Strs("entrants", cfg.Entrants).
		Int("pool", cfg.Pool).
		Int("games", cfg.Games).
		Int64("seed", cfg.Seed).
		Msg("Tournament started")
}

func (o *LogObserver) OnGameStart(_ string, number int, seating []string) {
	o.game = number
	o.log.Debug().Str("tournamentId", o.tournamentID).Int("game", number).Strs("seating", seating).Msg("Game started")
}

func (o *LogObserver) OnProposal(e bargain.ProposalEvent) {
	if !e.Valid() {
		ev := o.log.Debug()
		if _, fault := e.Err.(*bargain.StrategyFault); fault {
			ev = o.log.Warn()
		}
		ev.Err(e.Err).Int("game", o.game).Int("round", e.Round).Str("director", e.Director).Msg("Invalid proposal")
		return
	}
	o.log.Debug().
		Int("game", o.game).
		Int("round", e.Round).
		Str("director", e.Director).
		Str("distribution", e.Distribution.String()).
		Msg("Proposal")
}

func (o *LogObserver) OnVotes(e bargain.VoteEvent) {
	for _, b := range e.Ballots {
		if b.Err != nil {
			o.log.Warn().Err(b.Err).Int("game", o.game).Int("round", e.Round).Str("seat", b.Seat).Msg("Vote fault counted as reject")
		}
	}
	o.log.Debug().
		Int("game", o.game).
		Int("round", e.Round).
		Str("director", e.Director).
		Int("accept", e.AcceptCount).
		Int("reject", e.RejectCount).
		Bool("accepted", e.Accepted).
		Msg("Votes")
}

func (o *LogObserver) OnElimination(e bargain.EliminationEvent) {
	o.log.Debug().
		Int("game", o.game).
		Int("round", e.Round).
		Str("seat", e.Seat).
		Bool("invalid", e.Invalid).
		Str("nextDirector", e.NextDirector).
		Msg("Director eliminated")
}

func (o *LogObserver) OnOutcome(bargain.Outcome) {}

func (o *LogObserver) OnGameEnd(_ string, rec model.GameRecord) {
	o.log.Info().
		Str("tournamentId", o.tournamentID).
		Int("game", rec.Number).
		Str("resolution", rec.Resolution).
		Int("rounds", rec.Rounds).
		Str("decider", rec.Decider).
		Msg("Game finished")
}

func (o *LogObserver) OnTournamentEnd(res *TournamentResult) {
	o.log.Info().Str("tournamentId", res.ID).Str("leader", leader(res.Standings)).Msg("Tournament results ready")
}
