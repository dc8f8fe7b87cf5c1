package bot

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/freeeve/regifting/pkg/bargain"
)

// ErrUnknownStrategy is returned when a strategy name is not registered.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Factory builds a fresh strategy. Deterministic strategies ignore rng.
type Factory func(rng *rand.Rand) bargain.Strategy

// Entry describes a registered strategy.
type Entry struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Randomized  bool    `json:"randomized"`
	New         Factory `json:"-"`
}

var registry = []Entry{
	{Name: "rational", Description: "keeps the surplus after paying one unit to each senior ally needed for a majority",
		New: func(*rand.Rand) bargain.Strategy { return RationalStrategy{} }},
	{Name: "greedy", Description: "keeps all but one unit per opponent, accepts any non-zero share",
		New: func(*rand.Rand) bargain.Strategy { return GreedyStrategy{} }},
	{Name: "egalitarian", Description: "near-equal split, accepts when no two shares differ by more than one",
		New: func(*rand.Rand) bargain.Strategy { return EgalitarianStrategy{} }},
	{Name: "fair", Description: "near-equal split, accepts when its own share is within one of the mean",
		New: func(*rand.Rand) bargain.Strategy { return FairStrategy{} }},
	{Name: "random", Description: "scatters units uniformly, votes on a coin flip", Randomized: true,
		New: func(rng *rand.Rand) bargain.Strategy { return NewRandomStrategy(rng) }},
	{Name: "vengeful", Description: "greedy proposer that rejects any director keeping more than itself",
		New: func(*rand.Rand) bargain.Strategy { return VengefulStrategy{} }},
	{Name: "grinch", Description: "starves the assistant director and always votes against being next in line",
		New: func(*rand.Rand) bargain.Strategy { return GrinchStrategy{} }},
	{Name: "gimme", Description: "proposes keeping everything, accepts only when handed everything",
		New: func(*rand.Rand) bargain.Strategy { return GimmeStrategy{} }},
	{Name: "nogift", Description: "gifts the base share to every second rank and refuses as assistant director",
		New: func(*rand.Rand) bargain.Strategy { return NoGiftStrategy{} }},
	{Name: "revelrous", Description: "flat split with the rounding surplus kept, never accepts",
		New: func(*rand.Rand) bargain.Strategy { return RevelrousStrategy{} }},
	{Name: "quack", Description: "buys the most junior voters plus a square-root safety margin",
		New: func(*rand.Rand) bargain.Strategy { return QuackStrategy{} }},
	{Name: "gauss", Description: "bell-shaped proposal, accepts distributions that pass a normality test", Randomized: true,
		New: func(rng *rand.Rand) bargain.Strategy { return NewGaussStrategy(rng) }},
	{Name: "harpo", Description: "keeps half, decays the rest by rank, judges proposals by rank-weighted fairness", Randomized: true,
		New: func(rng *rand.Rand) bargain.Strategy { return NewHarpoStrategy(rng) }},
	{Name: "sunflower", Description: "shares equally with the most senior 70%, grateful for any gift",
		New: func(*rand.Rand) bargain.Strategy { return SunflowerStrategy{} }},
}

// Catalog returns every registered strategy in registration order.
func Catalog() []Entry {
	return append([]Entry(nil), registry...)
}

// Names returns the registered strategy names.
func Names() []string {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.Name
	}
	return names
}

// StrategyForName builds the named strategy, wiring rng into randomized ones.
func StrategyForName(name string, rng *rand.Rand) (bargain.Strategy, error) {
	key := normalizeName(name)
	for _, e := range registry {
		if e.Name == key {
			return e.New(rng), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// ownShare returns the voter's entry, or false when the distribution does
// not line up with the current participants.
func ownShare(d bargain.Distribution, participants, rank int) (int, bool) {
	if len(d) != participants {
		return 0, false
	}
	return d.Share(rank)
}
