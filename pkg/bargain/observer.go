package bargain

// ProposalEvent is emitted after the director proposes and the proposal has
// been validated. Err is nil for a valid proposal.
type ProposalEvent struct {
	Round        int
	Director     string
	Strategy     string
	Pool         int
	Participants int
	Seating      []string // survivor identities by rank
	Distribution Distribution
	Err          error
}

// Valid reports whether the proposal went to a vote.
func (e ProposalEvent) Valid() bool { return e.Err == nil }

// Ballot is one survivor's vote.
type Ballot struct {
	Seat     string
	Strategy string
	Rank     int
	Accept   bool
	Auto     bool  // cast by the engine, the strategy was not polled
	Err      error // recovered strategy fault, counted as reject
}

// VoteEvent is emitted after a valid proposal has been voted on.
type VoteEvent struct {
	Round            int
	Director         string
	Distribution     Distribution
	Ballots          []Ballot
	AcceptCount      int
	RejectCount      int
	AcceptPercentage float64
	RejectPercentage float64
	Accepted         bool
}

// EliminationEvent is emitted when a director is removed from the game.
type EliminationEvent struct {
	Round        int
	Seat         string
	Strategy     string
	Invalid      bool     // eliminated for a malformed proposal rather than a vote
	NextDirector string   // empty when nobody remains
	Survivors    []string // identities by new rank
}

// Observer receives read-only notifications while a game runs. Events carry
// copies of engine state; mutating them has no effect on the game.
type Observer interface {
	OnProposal(ProposalEvent)
	OnVotes(VoteEvent)
	OnElimination(EliminationEvent)
	OnOutcome(Outcome)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) OnProposal(ProposalEvent)       {}
func (NopObserver) OnVotes(VoteEvent)              {}
func (NopObserver) OnElimination(EliminationEvent) {}
func (NopObserver) OnOutcome(Outcome)              {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (obs Observers) OnProposal(e ProposalEvent) {
	for _, o := range obs {
		e := e
		e.Distribution = e.Distribution.Clone()
		e.Seating = cloneStrings(e.Seating)
		o.OnProposal(e)
	}
}

func (obs Observers) OnVotes(e VoteEvent) {
	for _, o := range obs {
		e := e
		e.Distribution = e.Distribution.Clone()
		e.Ballots = append([]Ballot(nil), e.Ballots...)
		o.OnVotes(e)
	}
}

func (obs Observers) OnElimination(e EliminationEvent) {
	for _, o := range obs {
		e := e
		e.Survivors = cloneStrings(e.Survivors)
		o.OnElimination(e)
	}
}

func (obs Observers) OnOutcome(out Outcome) {
	for _, o := range obs {
		o.OnOutcome(out.Clone())
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
