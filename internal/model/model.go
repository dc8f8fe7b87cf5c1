package model

import "time"

// Tournament is a series of games played by a fixed list of entrants.
type Tournament struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Status     string          `json:"status"` // running, finished
	Pool       int             `json:"pool"`
	Seed       int64           `json:"seed"`
	Entrants   []string        `json:"entrants"`
	GameCount  int             `json:"game_count"`
	Standings  []Standing      `json:"standings,omitempty"`
	Stats      []StrategyStats `json:"stats,omitempty"`
	Games      []GameRecord    `json:"games,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// Tournament statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
)

// GameRecord is the result of one game within a tournament.
type GameRecord struct {
	TournamentID string         `json:"tournament_id"`
	Number       int            `json:"number"` // 1-based
	Seating      []string       `json:"seating"`
	Strategies   []string       `json:"strategies"` // parallel to Seating
	Resolution   string         `json:"resolution"` // accepted, lone_survivor, exhausted
	Rounds       int            `json:"rounds"`
	Decider      string         `json:"decider,omitempty"`
	Accepted     []int          `json:"accepted,omitempty"`
	Eliminated   []string       `json:"eliminated,omitempty"`
	Awards       map[string]int `json:"awards"`
}

// Standing is an entrant's running total within a tournament.
type Standing struct {
	Position int    `json:"position"`
	Entrant  string `json:"entrant"`
	Strategy string `json:"strategy"`
	Units    int    `json:"units"`
}

// StrategyStats aggregates the behaviour of one strategy across games.
type StrategyStats struct {
	Strategy          string  `json:"strategy"`
	Games             int     `json:"games"`
	Proposals         int     `json:"proposals"`
	AcceptedProposals int     `json:"accepted_proposals"`
	InvalidProposals  int     `json:"invalid_proposals"`
	Eliminations      int     `json:"eliminations"`
	SuccessRate       float64 `json:"success_rate"`
	SelfGiftRatio     float64 `json:"self_gift_ratio"`
	Votes             int     `json:"votes"`
	AcceptVotes       int     `json:"accept_votes"`
	AcceptRate        float64 `json:"accept_rate"`
	Faults            int     `json:"faults"`
	UnitsWon          int     `json:"units_won"`
}

// LeaderboardEntry is a strategy's total across every tournament played.
type LeaderboardEntry struct {
	Strategy string `json:"strategy"`
	Units    int64  `json:"units"`
}
