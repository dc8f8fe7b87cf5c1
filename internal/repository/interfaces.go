package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/freeeve/regifting/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ResultArchive stores finished games and tournaments (SQL).
type ResultArchive interface {
	CreateTournament(ctx context.Context, t *model.Tournament) error
	SaveGame(ctx context.Context, rec model.GameRecord) error
	FinishTournament(ctx context.Context, id string, standings []model.Standing, stats []model.StrategyStats) error
	FindTournament(ctx context.Context, id string) (*model.Tournament, error)
	ListTournaments(ctx context.Context, limit int) ([]model.Tournament, error)
}

// Leaderboard keeps cross-tournament totals and live tournament snapshots (Redis).
type Leaderboard interface {
	AddUnits(ctx context.Context, strategy string, units int) error
	Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error)
	SetLive(ctx context.Context, tournamentID string, snapshot json.RawMessage) error
	GetLive(ctx context.Context, tournamentID string) (json.RawMessage, error)
	ClearLive(ctx context.Context, tournamentID string) error
}
