package stats_test

import (
	"testing"

	"github.com/freeeve/regifting/internal/bot"
	"github.com/freeeve/regifting/internal/stats"
	"github.com/freeeve/regifting/pkg/bargain"
)

type panicky struct{}

func (panicky) Name() string                                  { return "panicky" }
func (panicky) Propose(int, int) bargain.Distribution         { panic("no idea") }
func (panicky) Vote(bargain.Distribution, int, int, int) bool { panic("no idea") }

func play(t *testing.T, r *stats.Recorder, pool int, seats ...*bargain.Seat) *bargain.Outcome {
	t.Helper()
	r.BeginGame(seats)
	out, err := bargain.Play(seats, pool, bargain.WithObserver(r))
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	return out
}

func TestRecorderAcceptedGame(t *testing.T) {
	r := stats.NewRecorder()
	play(t, r, 10,
		bargain.NewSeat("g", bot.GreedyStrategy{}),
		bargain.NewSeat("v", bot.VengefulStrategy{}),
		bargain.NewSeat("r", bot.RationalStrategy{}),
	)

	byName := map[string]int{}
	snap := r.Snapshot()
	for i, s := range snap {
		byName[s.Strategy] = i
	}
	if len(snap) != 3 {
		t.Fatalf("expected 3 strategies, got %d", len(snap))
	}

	greedy := snap[byName["greedy"]]
	if greedy.Proposals != 1 || greedy.AcceptedProposals != 1 || greedy.SuccessRate != 1 {
		t.Errorf("greedy proposals: %+v", greedy)
	}
	if greedy.SelfGiftRatio != 0.8 {
		t.Errorf("expected self gift ratio 0.8, got %f", greedy.SelfGiftRatio)
	}
	if greedy.Votes != 0 {
		t.Errorf("director ballot should not count as a vote, got %d", greedy.Votes)
	}
	if greedy.UnitsWon != 8 {
		t.Errorf("expected greedy to win 8, got %d", greedy.UnitsWon)
	}

	vengeful := snap[byName["vengeful"]]
	if vengeful.Votes != 1 || vengeful.AcceptVotes != 0 || vengeful.AcceptRate != 0 {
		t.Errorf("vengeful votes: %+v", vengeful)
	}
	rational := snap[byName["rational"]]
	if rational.Votes != 1 || rational.AcceptVotes != 1 || rational.AcceptRate != 1 {
		t.Errorf("rational votes: %+v", rational)
	}
	if rational.Games != 1 || rational.UnitsWon != 1 {
		t.Errorf("rational totals: %+v", rational)
	}
}

func TestRecorderCountsFaultsAndEliminations(t *testing.T) {
	r := stats.NewRecorder()
	out := play(t, r, 4,
		bargain.NewSeat("p", panicky{}),
		bargain.NewSeat("g", bot.GreedyStrategy{}),
	)
	if out.Resolution != bargain.StateLoneSurvivor {
		t.Fatalf("expected lone survivor, got %s", out.Resolution)
	}
	for _, s := range r.Snapshot() {
		switch s.Strategy {
		case "panicky":
			if s.InvalidProposals != 1 || s.Faults != 1 || s.Eliminations != 1 {
				t.Errorf("panicky: %+v", s)
			}
			if s.SelfGiftRatio != 0 {
				t.Errorf("invalid proposals should not count toward self gift, got %f", s.SelfGiftRatio)
			}
		case "greedy":
			if s.UnitsWon != 4 {
				t.Errorf("expected greedy to take the pool, got %d", s.UnitsWon)
			}
		}
	}
}

func TestRankedOrdersByUnits(t *testing.T) {
	r := stats.NewRecorder()
	for i := 0; i < 3; i++ {
		play(t, r, 10,
			bargain.NewSeat("g", bot.GreedyStrategy{}),
			bargain.NewSeat("e", bot.EgalitarianStrategy{}),
		)
	}
	ranked := r.Ranked()
	if ranked[0].Strategy != "greedy" {
		t.Errorf("expected greedy first, got %s", ranked[0].Strategy)
	}
	if ranked[0].Games != 3 {
		t.Errorf("expected 3 games, got %d", ranked[0].Games)
	}
}
