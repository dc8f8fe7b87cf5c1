package bargain

// Outcome is the final result of a game. Awards covers every seat of the
// original roster; eliminated seats and unallocated survivors map to 0.
type Outcome struct {
	Awards     map[string]int
	Order      []string // original roster order
	Resolution State    // StateAccepted, StateLoneSurvivor or StateExhausted
	Rounds     int
	Decider    string       // author of the accepted proposal, or the lone survivor
	Accepted   Distribution // nil unless a proposal was accepted
	Eliminated []string     // in elimination order
	Pool       int
}

// Award returns the units won by id.
func (o *Outcome) Award(id string) int { return o.Awards[id] }

// Total returns the sum of all awards.
func (o *Outcome) Total() int {
	total := 0
	for _, v := range o.Awards {
		total += v
	}
	return total
}

// Clone returns a deep copy.
func (o Outcome) Clone() Outcome {
	awards := make(map[string]int, len(o.Awards))
	for k, v := range o.Awards {
		awards[k] = v
	}
	o.Awards = awards
	o.Order = cloneStrings(o.Order)
	o.Eliminated = cloneStrings(o.Eliminated)
	o.Accepted = o.Accepted.Clone()
	return o
}
