package bargain

import (
	"errors"
	"fmt"
)

// Strategy decides how an agent proposes and votes.
//
// Propose is only called on the director (rank 0). Its output is not trusted:
// the engine validates it and eliminates the director on malformed output.
// Vote receives the voter's current rank and must return false, not panic,
// when the distribution length does not match participants.
type Strategy interface {
	Name() string
	Propose(pool, participants int) Distribution
	Vote(d Distribution, pool, participants, rank int) bool
}

// Seat binds a strategy to a stable identity for the duration of one game.
// The rank is owned by the engine and only changes when a director is
// eliminated.
type Seat struct {
	ID       string
	Strategy Strategy
	rank     int
	name     string
	named    bool
}

// NewSeat creates a seat. The rank is assigned when the seat joins a game.
func NewSeat(id string, s Strategy) *Seat {
	return &Seat{ID: id, Strategy: s}
}

// StrategyName returns the strategy's name, read once and cached. A
// panicking Name falls back to the strategy's Go type.
func (s *Seat) StrategyName() string {
	if !s.named {
		s.name, s.named = safeName(s.Strategy), true
	}
	return s.name
}

func safeName(st Strategy) (name string) {
	defer func() {
		if recover() != nil {
			name = fmt.Sprintf("%T", st)
		}
	}()
	return st.Name()
}

// Rank returns the seat's zero-based position among the current survivors.
func (s *Seat) Rank() int { return s.rank }

func (s *Seat) setRank(r int) { s.rank = r }

var (
	// ErrEmptyRoster is returned when a game is created without seats.
	ErrEmptyRoster = errors.New("roster must contain at least one seat")
	// ErrNegativePool is returned when the pool size is below zero.
	ErrNegativePool = errors.New("pool size must not be negative")
)

// RosterError describes a malformed seat in the initial roster.
type RosterError struct {
	Index  int
	ID     string
	Reason string
}

func (e *RosterError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid seat %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid seat %d (%s): %s", e.Index, e.ID, e.Reason)
}

// StrategyFault wraps a panic raised inside a strategy call.
type StrategyFault struct {
	Op    string // "propose" or "vote"
	Seat  string
	Value any
}

func (f *StrategyFault) Error() string {
	return fmt.Sprintf("strategy %s failed for %s: %v", f.Op, f.Seat, f.Value)
}

func validateRoster(seats []*Seat, pool int) error {
	if pool < 0 {
		return ErrNegativePool
	}
	if len(seats) == 0 {
		return ErrEmptyRoster
	}
	seen := make(map[string]bool, len(seats))
	for i, s := range seats {
		switch {
		case s == nil:
			return &RosterError{Index: i, Reason: "nil seat"}
		case s.ID == "":
			return &RosterError{Index: i, Reason: "empty identity"}
		case s.Strategy == nil:
			return &RosterError{Index: i, ID: s.ID, Reason: "no strategy"}
		case seen[s.ID]:
			return &RosterError{Index: i, ID: s.ID, Reason: "duplicate identity"}
		}
		seen[s.ID] = true
	}
	return nil
}
