package bot

import (
	"math/rand"
	"time"
)

// NewRng returns a random source for strategies and seat shuffling. A zero
// seed picks a time-based seed; any other value gives a reproducible stream.
func NewRng(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// orDefault guards constructors against a nil source.
func orDefault(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return NewRng(0)
	}
	return rng
}

func shuffleStrings(rng *rand.Rand, s []string) {
	rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
