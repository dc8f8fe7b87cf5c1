package bot

import (
	"math"
	"math/rand"

	"github.com/freeeve/regifting/pkg/bargain"
)

// --- RationalStrategy ---

// RationalStrategy pays one unit to each of the most senior survivors it
// needs for a majority and keeps the rest.
type RationalStrategy struct{}

func (RationalStrategy) Name() string { return "rational" }

func (RationalStrategy) Propose(pool, n int) bargain.Distribution {
	d := make(bargain.Distribution, n)
	allies := n/2 - 1
	if allies < 0 {
		allies = 0
	}
	d[0] = pool - allies
	for i := 1; i <= allies; i++ {
		d[i] = 1
	}
	return d
}

// Vote accepts when the share is at least what a rational director would
// offer this rank: one unit for the senior half, nothing otherwise.
func (RationalStrategy) Vote(d bargain.Distribution, _, n, rank int) bool {
	mine, ok := ownShare(d, n, rank)
	if !ok {
		return false
	}
	expected := 0
	if rank < n/2 {
		expected = 1
	}
	return mine >= expected
}

// --- GreedyStrategy ---

// GreedyStrategy keeps everything except one unit per opponent.
type GreedyStrategy struct{}

func (GreedyStrategy) Name() string { return "greedy" }

func (GreedyStrategy) Propose(pool, n int) bargain.Distribution {
	return greedySplit(pool, n)
}

func (GreedyStrategy) Vote(d bargain.Distribution, _, n, rank int) bool {
	mine, ok := ownShare(d, n, rank)
	return ok && mine > 0
}

func greedySplit(pool, n int) bargain.Distribution {
	d := make(bargain.Distribution, n)
	d[0] = pool - (n - 1)
	for i := 1; i < n; i++ {
		d[i] = 1
	}
	return d
}

// --- EgalitarianStrategy ---

// EgalitarianStrategy splits evenly, handing the remainder to the most
// senior survivors, and accepts any near-equal split.
type EgalitarianStrategy struct{}

func (EgalitarianStrategy) Name() string { return "egalitarian" }

func (EgalitarianStrategy) Propose(pool, n int) bargain.Distribution {
	return evenSplit(pool, n)
}

func (EgalitarianStrategy) Vote(d bargain.Distribution, _, n, _ int) bool {
	if len(d) != n || n == 0 {
		return false
	}
	return d.Max()-d.Min() <= 1
}

func evenSplit(pool, n int) bargain.Distribution {
	d := make(bargain.Distribution, n)
	base, rem := pool/n, pool%n
	for i := range d {
		d[i] = base
		if i < rem {
			d[i]++
		}
	}
	return d
}

// --- FairStrategy ---

// FairStrategy proposes the even split and accepts when its own share is
// within one unit of the mean.
type FairStrategy struct{}

func (FairStrategy) Name() string { return "fair" }

func (FairStrategy) Propose(pool, n int) bargain.Distribution {
	return evenSplit(pool, n)
}

func (FairStrategy) Vote(d bargain.Distribution, pool, n, rank int) bool {
	mine, ok := ownShare(d, n, rank)
	if !ok {
		return false
	}
	mean := float64(pool) / float64(n)
	return math.Abs(float64(mine)-mean) <= 1
}

// --- RandomStrategy ---

// RandomStrategy scatters units uniformly and votes on a coin flip.
type RandomStrategy struct {
	rng *rand.Rand
}

// NewRandomStrategy creates a RandomStrategy drawing from rng.
func NewRandomStrategy(rng *rand.Rand) *RandomStrategy {
	return &RandomStrategy{rng: orDefault(rng)}
}

func (*RandomStrategy) Name() string { return "random" }

func (s *RandomStrategy) Propose(pool, n int) bargain.Distribution {
	d := make(bargain.Distribution, n)
	for i := 0; i < pool; i++ {
		d[s.rng.Intn(n)]++
	}
	return d
}

func (s *RandomStrategy) Vote(d bargain.Distribution, _, n, _ int) bool {
	if len(d) != n {
		return false
	}
	return s.rng.Float64() < 0.5
}

// --- VengefulStrategy ---

// VengefulStrategy proposes like GreedyStrategy but, as a voter, rejects
// any proposal in which the director keeps more than it does.
type VengefulStrategy struct{}

func (VengefulStrategy) Name() string { return "vengeful" }

func (VengefulStrategy) Propose(pool, n int) bargain.Distribution {
	return greedySplit(pool, n)
}

func (VengefulStrategy) Vote(d bargain.Distribution, _, n, rank int) bool {
	mine, ok := ownShare(d, n, rank)
	if !ok {
		return false
	}
	if rank == 0 {
		return true
	}
	return d[0] <= mine
}
