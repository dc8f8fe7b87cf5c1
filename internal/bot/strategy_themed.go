package bot

import (
	"math/rand"

	"github.com/freeeve/regifting/pkg/bargain"
)

// --- GrinchStrategy ---

// GrinchStrategy gives the assistant director (rank 1) nothing, one unit to
// everyone else, and as a voter refuses every proposal while it is next in
// line to direct.
type GrinchStrategy struct{}

func (GrinchStrategy) Name() string { return "grinch" }

func (GrinchStrategy) Propose(pool, n int) bargain.Distribution {
	d := make(bargain.Distribution, n)
	switch {
	case n <= 2:
		d[0] = pool
	case pool > 2:
		for i := 2; i < n; i++ {
			d[i] = 1
		}
		d[0] = pool - (n - 2)
	default:
		// Too little to bribe the juniors: fall back to the rational split.
		return RationalStrategy{}.Propose(pool, n)
	}
	return d
}

func (GrinchStrategy) Vote(d bargain.Distribution, _, n, rank int) bool {
	mine, ok := ownShare(d, n, rank)
	if !ok || rank == 1 {
		return false
	}
	return mine > 0
}

// --- GimmeStrategy ---

// GimmeStrategy proposes keeping the whole pool and accepts only proposals
// that hand it the whole pool.
type GimmeStrategy struct{}

func (GimmeStrategy) Name() string { return "gimme" }

func (GimmeStrategy) Propose(pool, n int) bargain.Distribution {
	d := make(bargain.Distribution, n)
	d[0] = pool
	return d
}

func (GimmeStrategy) Vote(d bargain.Distribution, pool, n, rank int) bool {
	mine, ok := ownShare(d, n, rank)
	if !ok {
		return false
	}
	return rank == 0 || mine == pool
}

// --- NoGiftStrategy ---

// NoGiftStrategy gives the base share to every second rank starting at 2
// and keeps the rest. As assistant director it never accepts.
type NoGiftStrategy struct{}

func (NoGiftStrategy) Name() string { return "nogift" }

func (NoGiftStrategy) Propose(pool, n int) bargain.Distribution {
	d := make(bargain.Distribution, n)
	base := pool / n
	for i := 2; i < n; i += 2 {
		d[i] = base
	}
	d[0] = pool - d.Sum()
	return d
}

func (NoGiftStrategy) Vote(d bargain.Distribution, _, n, rank int) bool {
	mine, ok := ownShare(d, n, rank)
	return ok && rank != 1 && mine > 0
}

// --- RevelrousStrategy ---

// RevelrousStrategy offers everyone the truncated mean, keeps the rounding
// surplus, and votes against everything.
type RevelrousStrategy struct{}

func (RevelrousStrategy) Name() string { return "revelrous" }

func (RevelrousStrategy) Propose(pool, n int) bargain.Distribution {
	d := make(bargain.Distribution, n)
	each := pool / n
	for i := 1; i < n; i++ {
		d[i] = each
	}
	d[0] = pool - each*(n-1)
	return d
}

func (RevelrousStrategy) Vote(bargain.Distribution, int, int, int) bool { return false }

// --- QuackStrategy ---

// QuackStrategy pays slightly more than the mean to the most junior voters,
// enough for a majority plus a square-root margin, and keeps the rest.
type QuackStrategy struct{}

func (QuackStrategy) Name() string { return "quack" }

func (QuackStrategy) Propose(pool, n int) bargain.Distribution {
	d := make(bargain.Distribution, n)
	needed := (n+1)/2 - 1
	needed += ceilSqrt(needed)
	if needed > n-1 {
		needed = n - 1
	}
	share := (pool + n - 1) / n
	if needed > 0 && share*needed > pool {
		share = pool / needed
	}
	for i := 0; i < needed; i++ {
		d[n-1-i] = share
	}
	d[0] = pool - share*needed
	return d
}

// Vote accepts when the share beats what this voter expects if the
// director walks the plank. The rank 1 voter in a three-way game always
// rejects: it inherits the directorship of a two-seat game.
func (QuackStrategy) Vote(d bargain.Distribution, pool, n, rank int) bool {
	mine, ok := ownShare(d, n, rank)
	switch {
	case !ok:
		return false
	case rank == 0:
		return true
	case n == 3 && rank == 1:
		return false
	case n < 2:
		return true
	}
	return float64(mine) >= float64(pool)/float64(n-1)
}

func ceilSqrt(n int) int {
	i := 0
	for i*i < n {
		i++
	}
	return i
}

// --- HarpoStrategy ---

// HarpoStrategy keeps half the pool, shares the rest along a 1/(rank+1)
// decay curve and scatters the leftovers at random.
type HarpoStrategy struct {
	rng *rand.Rand
}

// NewHarpoStrategy creates a HarpoStrategy drawing leftovers from rng.
func NewHarpoStrategy(rng *rand.Rand) *HarpoStrategy {
	return &HarpoStrategy{rng: orDefault(rng)}
}

func (*HarpoStrategy) Name() string { return "harpo" }

func (s *HarpoStrategy) Propose(pool, n int) bargain.Distribution {
	d := make(bargain.Distribution, n)
	d[0] = pool / 2
	remaining := pool - d[0]

	totalWeight := 0.0
	for r := 1; r < n; r++ {
		totalWeight += 1 / float64(r+1)
	}
	for r := 1; r < n; r++ {
		// Each share is taken from what is left after the more senior ranks.
		share := int(1 / float64(r+1) / totalWeight * float64(remaining))
		d[r] += share
		remaining -= share
	}
	for ; remaining > 0; remaining-- {
		d[s.rng.Intn(n)]++
	}
	return d
}

// Vote rejects shares below the rank-weighted fair share, directors keeping
// more than half, and proposals favouring anyone more junior.
func (*HarpoStrategy) Vote(d bargain.Distribution, pool, n, rank int) bool {
	mine, ok := ownShare(d, n, rank)
	if !ok {
		return false
	}
	rankWeight := float64(n - rank)
	totalWeight := float64(n * (n + 1) / 2)
	if float64(mine) < rankWeight/totalWeight*float64(pool) {
		return false
	}
	if float64(d[0]) > float64(pool)/2 {
		return false
	}
	for i := rank + 1; i < n; i++ {
		if d[i] > mine {
			return false
		}
	}
	return mine > 0
}

// --- SunflowerStrategy ---

// SunflowerStrategy shares equally among the most senior 70% of survivors
// (itself included), keeps the remainder, and accepts any non-zero share.
type SunflowerStrategy struct{}

func (SunflowerStrategy) Name() string { return "sunflower" }

func (SunflowerStrategy) Propose(pool, n int) bargain.Distribution {
	d := make(bargain.Distribution, n)
	included := int(float64(n) * 0.7)
	if included < 1 {
		included = 1
	}
	if included > n {
		included = n
	}
	share := pool / included
	for i := 0; i < included; i++ {
		d[i] = share
	}
	d[0] += pool - share*included
	return d
}

func (SunflowerStrategy) Vote(d bargain.Distribution, _, n, rank int) bool {
	mine, ok := ownShare(d, n, rank)
	return ok && mine > 0
}
