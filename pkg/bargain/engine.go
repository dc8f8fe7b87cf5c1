package bargain

import "context"

// State is a step of the round state machine.
type State string

const (
	StateProposing    State = "proposing"
	StateValidating   State = "validating"
	StateVoting       State = "voting"
	StateEliminating  State = "eliminating"
	StateAccepted     State = "accepted"
	StateLoneSurvivor State = "lone_survivor"
	StateExhausted    State = "exhausted" // the last seat made an invalid proposal
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateAccepted || s == StateLoneSurvivor || s == StateExhausted
}

// Option configures a Game.
type Option func(*Game)

// WithObserver attaches an observer. Multiple calls accumulate.
func WithObserver(o Observer) Option {
	return func(g *Game) {
		if o != nil {
			g.observers = append(g.observers, o)
		}
	}
}

// WithDirectorPolled makes the engine ask the director's strategy for its
// vote instead of recording an automatic accept.
func WithDirectorPolled() Option {
	return func(g *Game) { g.pollDirector = true }
}

// Game drives one bargaining game from an ordered roster to an Outcome.
// A Game is not safe for concurrent use.
type Game struct {
	pool         int
	seats        []*Seat // survivors, index == rank
	roster       []*Seat
	observers    Observers
	pollDirector bool

	state      State
	round      int
	proposal   Distribution
	invalid    bool
	awards     map[string]int
	eliminated []string
	outcome    *Outcome
}

// NewGame validates the roster and seats every agent at its index. The
// roster order is final: seats[0] directs the first round.
func NewGame(seats []*Seat, pool int, opts ...Option) (*Game, error) {
	if err := validateRoster(seats, pool); err != nil {
		return nil, err
	}
	g := &Game{
		pool:   pool,
		seats:  append([]*Seat(nil), seats...),
		roster: append([]*Seat(nil), seats...),
		state:  StateProposing,
		awards: make(map[string]int, len(seats)),
	}
	for _, opt := range opts {
		opt(g)
	}
	for _, s := range g.roster {
		s.StrategyName()
	}
	g.rerank()
	return g, nil
}

// Play is a convenience wrapper that creates a game and runs it.
func Play(seats []*Seat, pool int, opts ...Option) (*Outcome, error) {
	g, err := NewGame(seats, pool, opts...)
	if err != nil {
		return nil, err
	}
	return g.Run(), nil
}

// PlayContext is Play that gives up with ctx.Err() when ctx is done.
func PlayContext(ctx context.Context, seats []*Seat, pool int, opts ...Option) (*Outcome, error) {
	g, err := NewGame(seats, pool, opts...)
	if err != nil {
		return nil, err
	}
	return g.RunContext(ctx)
}

// State returns the current state.
func (g *Game) State() State { return g.state }

// Round returns the 1-based number of the round in progress (0 before the
// first proposal).
func (g *Game) Round() int { return g.round }

// Pool returns the fixed number of units being divided.
func (g *Game) Pool() int { return g.pool }

// Survivors returns the identities still in contention, director first.
func (g *Game) Survivors() []string {
	ids := make([]string, len(g.seats))
	for i, s := range g.seats {
		ids[i] = s.ID
	}
	return ids
}

// Run steps the game until it reaches a terminal state and returns the
// outcome. Calling Run again returns the same outcome.
func (g *Game) Run() *Outcome {
	for !g.state.Terminal() {
		g.Step()
	}
	return g.outcome
}

// RunContext is Run that checks ctx before every transition. A cancelled
// game stays where it stopped and can be resumed.
func (g *Game) RunContext(ctx context.Context) (*Outcome, error) {
	for !g.state.Terminal() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.Step()
	}
	return g.outcome, nil
}

// Outcome returns the final outcome, or nil while the game is running.
func (g *Game) Outcome() *Outcome { return g.outcome }

// Step performs a single state transition and returns the new state.
func (g *Game) Step() State {
	switch g.state {
	case StateProposing:
		g.propose()
	case StateValidating:
		g.validate()
	case StateVoting:
		g.vote()
	case StateEliminating:
		g.eliminate()
	}
	return g.state
}

func (g *Game) propose() {
	g.round++
	director := g.seats[0]
	d, fault := safePropose(director, g.pool, len(g.seats))
	g.proposal = d
	g.invalid = false
	if fault != nil {
		g.invalid = true
		g.emitProposal(director, fault)
		g.state = StateEliminating
		return
	}
	g.state = StateValidating
}

func (g *Game) validate() {
	director := g.seats[0]
	err := Validate(g.proposal, len(g.seats), g.pool)
	g.emitProposal(director, err)
	if err != nil {
		g.invalid = true
		g.state = StateEliminating
		return
	}
	g.state = StateVoting
}

func (g *Game) vote() {
	n := len(g.seats)
	ev := VoteEvent{
		Round:        g.round,
		Director:     g.seats[0].ID,
		Distribution: g.proposal.Clone(),
		Ballots:      make([]Ballot, 0, n),
	}
	for i, s := range g.seats {
		b := Ballot{Seat: s.ID, Strategy: s.StrategyName(), Rank: i}
		switch {
		case n == 1, i == 0 && !g.pollDirector:
			b.Accept, b.Auto = true, true
		default:
			b.Accept, b.Err = safeVote(s, g.proposal.Clone(), g.pool, n, i)
		}
		if b.Accept {
			ev.AcceptCount++
		} else {
			ev.RejectCount++
		}
		ev.Ballots = append(ev.Ballots, b)
	}
	ev.AcceptPercentage = float64(ev.AcceptCount) / float64(n) * 100
	ev.RejectPercentage = float64(ev.RejectCount) / float64(n) * 100
	// An exact half passes: the director's own ballot breaks the tie.
	ev.Accepted = ev.AcceptCount*2 >= n
	g.observers.OnVotes(ev)

	if !ev.Accepted {
		g.state = StateEliminating
		return
	}
	for i, s := range g.seats {
		g.awards[s.ID] = g.proposal[i]
	}
	g.finish(StateAccepted, g.seats[0].ID)
}

func (g *Game) eliminate() {
	director := g.seats[0]
	g.awards[director.ID] = 0
	g.eliminated = append(g.eliminated, director.ID)
	g.seats = g.seats[1:]
	g.rerank()

	ev := EliminationEvent{
		Round:     g.round,
		Seat:      director.ID,
		Strategy:  director.StrategyName(),
		Invalid:   g.invalid,
		Survivors: g.Survivors(),
	}
	if len(g.seats) > 0 {
		ev.NextDirector = g.seats[0].ID
	}
	g.observers.OnElimination(ev)

	switch len(g.seats) {
	case 0:
		g.finish(StateExhausted, "")
	case 1:
		g.awards[g.seats[0].ID] = g.pool
		g.finish(StateLoneSurvivor, g.seats[0].ID)
	default:
		g.state = StateProposing
	}
}

func (g *Game) finish(state State, decider string) {
	g.state = state
	out := &Outcome{
		Awards:     make(map[string]int, len(g.roster)),
		Order:      make([]string, len(g.roster)),
		Resolution: state,
		Rounds:     g.round,
		Decider:    decider,
		Eliminated: cloneStrings(g.eliminated),
		Pool:       g.pool,
	}
	if state == StateAccepted {
		out.Accepted = g.proposal.Clone()
	}
	for i, s := range g.roster {
		out.Order[i] = s.ID
		out.Awards[s.ID] = g.awards[s.ID] // zero for anyone never awarded
	}
	g.outcome = out
	g.observers.OnOutcome(*out)
}

func (g *Game) rerank() {
	for i, s := range g.seats {
		s.setRank(i)
	}
}

func (g *Game) emitProposal(director *Seat, err error) {
	g.observers.OnProposal(ProposalEvent{
		Round:        g.round,
		Director:     director.ID,
		Strategy:     director.StrategyName(),
		Pool:         g.pool,
		Participants: len(g.seats),
		Seating:      g.Survivors(),
		Distribution: g.proposal,
		Err:          err,
	})
}

func safePropose(s *Seat, pool, n int) (d Distribution, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, &StrategyFault{Op: "propose", Seat: s.ID, Value: r}
		}
	}()
	return s.Strategy.Propose(pool, n), nil
}

func safeVote(s *Seat, d Distribution, pool, n, rank int) (accept bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			accept, err = false, &StrategyFault{Op: "vote", Seat: s.ID, Value: r}
		}
	}()
	return s.Strategy.Vote(d, pool, n, rank), nil
}
