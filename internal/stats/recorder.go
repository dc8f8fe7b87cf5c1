// Package stats accumulates per-strategy behaviour across games by
// observing the round engine.
package stats

import (
	"errors"
	"sort"

	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/pkg/bargain"
)

type tally struct {
	games, proposals, accepted, invalid, eliminations int
	selfGift                                          float64
	selfGiftSamples                                   int
	votes, acceptVotes, faults, units                 int
}

// Recorder is a bargain.Observer that tallies statistics per strategy.
// Call BeginGame before each game so awards can be attributed to strategies.
// A Recorder is not safe for concurrent use.
type Recorder struct {
	tallies  map[string]*tally
	order    []string
	strategy map[string]string // seat identity -> strategy of the current game
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		tallies:  make(map[string]*tally),
		strategy: make(map[string]string),
	}
}

func (r *Recorder) get(name string) *tally {
	t, ok := r.tallies[name]
	if !ok {
		t = &tally{}
		r.tallies[name] = t
		r.order = append(r.order, name)
	}
	return t
}

// BeginGame registers the seats of the next game.
func (r *Recorder) BeginGame(seats []*bargain.Seat) {
	r.strategy = make(map[string]string, len(seats))
	for _, s := range seats {
		name := s.StrategyName()
		r.strategy[s.ID] = name
		r.get(name).games++
	}
}

func (r *Recorder) OnProposal(e bargain.ProposalEvent) {
	t := r.get(e.Strategy)
	t.proposals++
	if !e.Valid() {
		t.invalid++
		var fault *bargain.StrategyFault
		if errors.As(e.Err, &fault) {
			t.faults++
		}
		return
	}
	if e.Pool > 0 && len(e.Distribution) > 0 {
		t.selfGift += float64(e.Distribution[0]) / float64(e.Pool)
		t.selfGiftSamples++
	}
}

func (r *Recorder) OnVotes(e bargain.VoteEvent) {
	if e.Accepted {
		if s, ok := r.strategy[e.Director]; ok {
			r.get(s).accepted++
		}
	}
	for _, b := range e.Ballots {
		t := r.get(b.Strategy)
		if b.Err != nil {
			t.faults++
		}
		if b.Auto {
			continue
		}
		t.votes++
		if b.Accept {
			t.acceptVotes++
		}
	}
}

func (r *Recorder) OnElimination(e bargain.EliminationEvent) {
	r.get(e.Strategy).eliminations++
}

func (r *Recorder) OnOutcome(out bargain.Outcome) {
	for id, units := range out.Awards {
		if s, ok := r.strategy[id]; ok {
			r.get(s).units += units
		}
	}
}

// Snapshot returns the statistics in first-seen order.
func (r *Recorder) Snapshot() []model.StrategyStats {
	out := make([]model.StrategyStats, 0, len(r.order))
	for _, name := range r.order {
		t := r.tallies[name]
		s := model.StrategyStats{
			Strategy:          name,
			Games:             t.games,
			Proposals:         t.proposals,
			AcceptedProposals: t.accepted,
			InvalidProposals:  t.invalid,
			Eliminations:      t.eliminations,
			Votes:             t.votes,
			AcceptVotes:       t.acceptVotes,
			Faults:            t.faults,
			UnitsWon:          t.units,
		}
		if t.proposals > 0 {
			s.SuccessRate = float64(t.accepted) / float64(t.proposals)
		}
		if t.selfGiftSamples > 0 {
			s.SelfGiftRatio = t.selfGift / float64(t.selfGiftSamples)
		}
		if t.votes > 0 {
			s.AcceptRate = float64(t.acceptVotes) / float64(t.votes)
		}
		out = append(out, s)
	}
	return out
}

// Ranked returns the statistics sorted by units won, then by name.
func (r *Recorder) Ranked() []model.StrategyStats {
	out := r.Snapshot()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UnitsWon != out[j].UnitsWon {
			return out[i].UnitsWon > out[j].UnitsWon
		}
		return out[i].Strategy < out[j].Strategy
	})
	return out
}
