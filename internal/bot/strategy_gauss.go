package bot

import (
	"math/rand"

	"github.com/freeeve/regifting/pkg/bargain"
)

// gaussAlpha is the significance level below which a proposal is judged
// not normal enough to accept.
const gaussAlpha = 0.05

// GaussStrategy drops each unit on a seat drawn from a normal curve
// centred on the middle rank, and votes for proposals whose shares pass a
// Shapiro-Wilk normality test.
type GaussStrategy struct {
	rng *rand.Rand
}

// NewGaussStrategy creates a GaussStrategy sampling from rng.
func NewGaussStrategy(rng *rand.Rand) *GaussStrategy {
	return &GaussStrategy{rng: orDefault(rng)}
}

func (*GaussStrategy) Name() string { return "gauss" }

func (s *GaussStrategy) Propose(pool, n int) bargain.Distribution {
	d := make(bargain.Distribution, n)
	mu, sigma := float64(n)/2, float64(n)/5
	for i := 0; i < pool; i++ {
		idx := int(s.rng.NormFloat64()*sigma + mu)
		if idx < 0 {
			idx = 0
		}
		if idx > n-1 {
			idx = n - 1
		}
		d[idx]++
	}
	return d
}

func (*GaussStrategy) Vote(d bargain.Distribution, _, n, rank int) bool {
	if _, ok := ownShare(d, n, rank); !ok {
		return false
	}
	switch {
	case n == 1:
		return true
	case n == 2:
		diff := d[0] - d[1]
		if diff < 0 {
			diff = -diff
		}
		return diff < 5
	}
	// Identical shares make the test undefined; treat them as a reject.
	if d.Max() == d.Min() {
		return false
	}
	sample := make([]float64, n)
	for i, v := range d {
		sample[i] = float64(v)
	}
	_, p, err := ShapiroWilk(sample)
	if err != nil {
		return false
	}
	return p > gaussAlpha
}
