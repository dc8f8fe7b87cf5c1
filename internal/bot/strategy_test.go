package bot

import (
	"errors"
	"reflect"
	"testing"

	"github.com/freeeve/regifting/pkg/bargain"
)

func TestDeterministicProposals(t *testing.T) {
	tests := []struct {
		name     string
		strategy bargain.Strategy
		pool, n  int
		want     bargain.Distribution
	}{
		{"rational five seats", RationalStrategy{}, 10, 5, bargain.Distribution{9, 1, 0, 0, 0}},
		{"rational three seats", RationalStrategy{}, 5, 3, bargain.Distribution{5, 0, 0}},
		{"greedy", GreedyStrategy{}, 10, 4, bargain.Distribution{7, 1, 1, 1}},
		{"egalitarian", EgalitarianStrategy{}, 10, 4, bargain.Distribution{3, 3, 2, 2}},
		{"fair", FairStrategy{}, 7, 3, bargain.Distribution{3, 2, 2}},
		{"vengeful", VengefulStrategy{}, 6, 3, bargain.Distribution{4, 1, 1}},
		{"grinch", GrinchStrategy{}, 10, 4, bargain.Distribution{8, 0, 1, 1}},
		{"grinch two seats", GrinchStrategy{}, 5, 2, bargain.Distribution{5, 0}},
		{"grinch small pool", GrinchStrategy{}, 2, 4, bargain.Distribution{1, 1, 0, 0}},
		{"gimme", GimmeStrategy{}, 10, 3, bargain.Distribution{10, 0, 0}},
		{"nogift", NoGiftStrategy{}, 10, 5, bargain.Distribution{6, 0, 2, 0, 2}},
		{"revelrous", RevelrousStrategy{}, 10, 4, bargain.Distribution{4, 2, 2, 2}},
		{"quack five seats", QuackStrategy{}, 10, 5, bargain.Distribution{2, 2, 2, 2, 2}},
		{"quack three seats", QuackStrategy{}, 10, 3, bargain.Distribution{2, 4, 4}},
		{"quack alone", QuackStrategy{}, 1, 1, bargain.Distribution{1}},
		{"sunflower", SunflowerStrategy{}, 10, 4, bargain.Distribution{5, 5, 0, 0}},
		{"sunflower alone", SunflowerStrategy{}, 10, 1, bargain.Distribution{10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.strategy.Propose(tt.pool, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestVotes(t *testing.T) {
	tests := []struct {
		name     string
		strategy bargain.Strategy
		d        bargain.Distribution
		pool     int
		rank     int
		want     bool
	}{
		{"rational senior takes one", RationalStrategy{}, bargain.Distribution{9, 1, 0, 0}, 10, 1, true},
		{"rational senior refuses zero", RationalStrategy{}, bargain.Distribution{10, 0, 0, 0}, 10, 1, false},
		{"rational junior takes zero", RationalStrategy{}, bargain.Distribution{10, 0, 0, 0}, 10, 3, true},
		{"greedy zero", GreedyStrategy{}, bargain.Distribution{10, 0}, 10, 1, false},
		{"greedy one", GreedyStrategy{}, bargain.Distribution{9, 1}, 10, 1, true},
		{"egalitarian even", EgalitarianStrategy{}, bargain.Distribution{3, 3, 2, 2}, 10, 3, true},
		{"egalitarian skewed", EgalitarianStrategy{}, bargain.Distribution{4, 2, 2, 2}, 10, 1, false},
		{"fair within one", FairStrategy{}, bargain.Distribution{3, 3, 2, 2}, 10, 2, true},
		{"fair too far", FairStrategy{}, bargain.Distribution{7, 1, 1, 1}, 10, 1, false},
		{"vengeful director keeps more", VengefulStrategy{}, bargain.Distribution{7, 1, 1, 1}, 10, 1, false},
		{"vengeful director keeps equal", VengefulStrategy{}, bargain.Distribution{2, 2, 3, 3}, 10, 1, true},
		{"vengeful director", VengefulStrategy{}, bargain.Distribution{7, 1, 1, 1}, 10, 0, true},
		{"grinch assistant", GrinchStrategy{}, bargain.Distribution{0, 10, 0}, 10, 1, false},
		{"grinch junior", GrinchStrategy{}, bargain.Distribution{8, 0, 1, 1}, 10, 2, true},
		{"gimme everything", GimmeStrategy{}, bargain.Distribution{0, 10, 0}, 10, 1, true},
		{"gimme almost", GimmeStrategy{}, bargain.Distribution{1, 9, 0}, 10, 1, false},
		{"nogift assistant", NoGiftStrategy{}, bargain.Distribution{0, 10, 0}, 10, 1, false},
		{"nogift junior", NoGiftStrategy{}, bargain.Distribution{6, 0, 4}, 10, 2, true},
		{"revelrous", RevelrousStrategy{}, bargain.Distribution{0, 10}, 10, 1, false},
		{"quack assistant of three", QuackStrategy{}, bargain.Distribution{0, 10, 0}, 10, 1, false},
		{"quack above expectation", QuackStrategy{}, bargain.Distribution{3, 3, 3, 0}, 9, 2, true},
		{"quack below expectation", QuackStrategy{}, bargain.Distribution{5, 2, 2, 0}, 9, 2, false},
		{"sunflower any gift", SunflowerStrategy{}, bargain.Distribution{9, 0, 1}, 10, 2, true},
		{"harpo fair enough", NewHarpoStrategy(NewRng(1)), bargain.Distribution{5, 4, 1}, 10, 1, true},
		{"harpo greedy director", NewHarpoStrategy(NewRng(1)), bargain.Distribution{6, 4, 0}, 10, 1, false},
		{"harpo below weight", NewHarpoStrategy(NewRng(1)), bargain.Distribution{5, 3, 2}, 10, 1, false},
		{"harpo junior favoured", NewHarpoStrategy(NewRng(1)), bargain.Distribution{1, 4, 5, 0}, 10, 1, false},
		{"gauss two close", NewGaussStrategy(NewRng(1)), bargain.Distribution{6, 4}, 10, 1, true},
		{"gauss two far", NewGaussStrategy(NewRng(1)), bargain.Distribution{10, 0}, 10, 1, false},
		{"gauss uniform", NewGaussStrategy(NewRng(1)), bargain.Distribution{2, 2, 2, 2}, 8, 1, false},
		{"gauss outlier", NewGaussStrategy(NewRng(1)), bargain.Distribution{20, 0, 0, 0, 0, 0, 0, 0, 0, 0}, 20, 3, false},
		{"gauss bell", NewGaussStrategy(NewRng(1)), bargain.Distribution{1, 2, 2, 3, 3, 3, 4, 4, 5}, 27, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.strategy.Vote(tt.d, tt.pool, len(tt.d), tt.rank)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestVoteRejectsMismatchedLength(t *testing.T) {
	rng := NewRng(7)
	for _, e := range Catalog() {
		s := e.New(rng)
		for _, d := range []bargain.Distribution{nil, {10}, {5, 5, 0}} {
			for i := 0; i < 10; i++ {
				if s.Vote(d, 10, 2, 1) {
					t.Errorf("%s accepted %v for 2 participants", e.Name, d)
					break
				}
			}
		}
	}
}

func TestCatalogProposalsAreValid(t *testing.T) {
	rng := NewRng(11)
	for _, e := range Catalog() {
		s := e.New(rng)
		if s.Name() != e.Name {
			t.Errorf("registry name %q built strategy named %q", e.Name, s.Name())
		}
		for n := 1; n <= 8; n++ {
			d := s.Propose(100, n)
			if err := bargain.Validate(d, n, 100); err != nil {
				t.Errorf("%s with %d seats: %v", e.Name, n, err)
			}
		}
	}
}

func TestRandomizedStrategiesAreReproducible(t *testing.T) {
	for _, e := range Catalog() {
		if !e.Randomized {
			continue
		}
		a, b := e.New(NewRng(42)), e.New(NewRng(42))
		for i := 0; i < 5; i++ {
			da, db := a.Propose(30, 6), b.Propose(30, 6)
			if !reflect.DeepEqual(da, db) {
				t.Fatalf("%s: same seed diverged: %v vs %v", e.Name, da, db)
			}
		}
	}
}

func TestHarpoKeepsHalf(t *testing.T) {
	s := NewHarpoStrategy(NewRng(3))
	d := s.Propose(10, 3)
	if d.Sum() != 10 {
		t.Fatalf("expected sum 10, got %v", d)
	}
	if d[0] < 5 {
		t.Errorf("expected director to keep at least half, got %v", d)
	}
	if d[1] < 2 {
		t.Errorf("expected rank 1 to get the larger decayed share, got %v", d)
	}
}

func TestStrategyForName(t *testing.T) {
	s, err := StrategyForName(" Rational ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "rational" {
		t.Errorf("expected rational, got %s", s.Name())
	}

	_, err = StrategyForName("pirate-king", nil)
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}

	if len(Names()) != len(Catalog()) {
		t.Errorf("names and catalog disagree: %d vs %d", len(Names()), len(Catalog()))
	}
}

func TestEgalitarianScenarioAcceptedByTolerantVoters(t *testing.T) {
	d := EgalitarianStrategy{}.Propose(10, 4)
	if !reflect.DeepEqual(d, bargain.Distribution{3, 3, 2, 2}) {
		t.Fatalf("expected [3 3 2 2], got %v", d)
	}
	for rank := 0; rank < 4; rank++ {
		if !(EgalitarianStrategy{}).Vote(d, 10, 4, rank) {
			t.Errorf("egalitarian rank %d rejected", rank)
		}
		if !(FairStrategy{}).Vote(d, 10, 4, rank) {
			t.Errorf("fair rank %d rejected", rank)
		}
	}
}
