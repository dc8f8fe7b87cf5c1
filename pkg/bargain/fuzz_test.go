package bargain

import (
	"fmt"
	"math/rand"
	"testing"
)

// chaotic proposes distributions that are valid only some of the time and
// votes at random.
type chaotic struct {
	rng *rand.Rand
}

func (chaotic) Name() string { return "chaotic" }

func (c chaotic) Propose(pool, n int) Distribution {
	size := n
	if c.rng.Intn(4) == 0 {
		size = c.rng.Intn(n + 2)
	}
	d := make(Distribution, size)
	if size == 0 {
		return d
	}
	for i := 0; i < pool; i++ {
		d[c.rng.Intn(size)]++
	}
	if c.rng.Intn(5) == 0 {
		d[0] += c.rng.Intn(3) - 1
	}
	return d
}

func (c chaotic) Vote(d Distribution, _, n, _ int) bool {
	if len(d) != n {
		return false
	}
	return c.rng.Intn(2) == 0
}

// FuzzPlay checks the conservation and elimination invariants on random games.
func FuzzPlay(f *testing.F) {
	f.Add(int64(42), uint8(5), uint8(10))
	f.Add(int64(7), uint8(1), uint8(0))
	f.Add(int64(0), uint8(12), uint8(3))

	f.Fuzz(func(t *testing.T, seed int64, size, pool uint8) {
		n := int(size%16) + 1
		rng := rand.New(rand.NewSource(seed))
		seats := make([]*Seat, n)
		for i := range seats {
			seats[i] = NewSeat(fmt.Sprintf("s%d", i), chaotic{rng: rng})
		}

		rec := &recorder{}
		out, err := Play(seats, int(pool), WithObserver(rec))
		if err != nil {
			t.Fatalf("play: %v", err)
		}

		if len(out.Awards) != n {
			t.Fatalf("expected %d awards, got %d", n, len(out.Awards))
		}
		switch out.Resolution {
		case StateAccepted, StateLoneSurvivor:
			if out.Total() != int(pool) {
				t.Errorf("expected total %d, got %d", pool, out.Total())
			}
		case StateExhausted:
			if out.Total() != 0 {
				t.Errorf("exhausted game awarded %d", out.Total())
			}
		default:
			t.Fatalf("non-terminal resolution %s", out.Resolution)
		}
		for _, id := range out.Eliminated {
			if out.Award(id) != 0 {
				t.Errorf("eliminated %s awarded %d", id, out.Award(id))
			}
		}
		if out.Rounds > n {
			t.Errorf("%d rounds for %d seats", out.Rounds, n)
		}
		if k := len(rec.eliminations); k > 0 {
			ranks := make(map[string]int, n)
			for _, s := range seats {
				ranks[s.ID] = s.Rank()
			}
			for rank, id := range rec.eliminations[k-1].Survivors {
				if ranks[id] != rank {
					t.Errorf("%s has rank %d, expected %d", id, ranks[id], rank)
				}
			}
		}
	})
}
