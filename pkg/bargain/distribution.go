package bargain

import (
	"fmt"
	"strconv"
	"strings"
)

// Distribution is a proposed split of the pool. Entry i is the number of
// units awarded to the survivor at rank i.
type Distribution []int

// Sum returns the total number of units allocated.
func (d Distribution) Sum() int {
	total := 0
	for _, v := range d {
		total += v
	}
	return total
}

// Share returns the entry for rank, or false when rank is out of range.
func (d Distribution) Share(rank int) (int, bool) {
	if rank < 0 || rank >= len(d) {
		return 0, false
	}
	return d[rank], true
}

// Clone returns an independent copy of d. A nil distribution stays nil.
func (d Distribution) Clone() Distribution {
	if d == nil {
		return nil
	}
	out := make(Distribution, len(d))
	copy(out, d)
	return out
}

// Max returns the largest entry, or 0 for an empty distribution.
func (d Distribution) Max() int {
	if len(d) == 0 {
		return 0
	}
	m := d[0]
	for _, v := range d[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Min returns the smallest entry, or 0 for an empty distribution.
func (d Distribution) Min() int {
	if len(d) == 0 {
		return 0
	}
	m := d[0]
	for _, v := range d[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func (d Distribution) String() string {
	parts := make([]string, len(d))
	for i, v := range d {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// ProposalError describes why a distribution cannot be voted on.
type ProposalError struct {
	Reason       string // "length", "sum" or "negative"
	Participants int
	Pool         int
	Len          int
	Sum          int
}

func (e *ProposalError) Error() string {
	switch e.Reason {
	case "length":
		return fmt.Sprintf("invalid distribution: expected %d shares, got %d", e.Participants, e.Len)
	case "sum":
		return fmt.Sprintf("invalid distribution: expected shares totaling %d, got %d", e.Pool, e.Sum)
	default:
		return "invalid distribution: negative share"
	}
}

// Validate checks that d has one non-negative entry per participant and
// allocates exactly pool units. Returns nil or a *ProposalError.
func Validate(d Distribution, participants, pool int) error {
	if len(d) != participants {
		return &ProposalError{Reason: "length", Participants: participants, Pool: pool, Len: len(d), Sum: d.Sum()}
	}
	for _, v := range d {
		if v < 0 {
			return &ProposalError{Reason: "negative", Participants: participants, Pool: pool, Len: len(d), Sum: d.Sum()}
		}
	}
	if s := d.Sum(); s != pool {
		return &ProposalError{Reason: "sum", Participants: participants, Pool: pool, Len: len(d), Sum: s}
	}
	return nil
}
