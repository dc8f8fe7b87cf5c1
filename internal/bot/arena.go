package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/internal/repository"
	"github.com/freeeve/regifting/internal/stats"
	"github.com/freeeve/regifting/pkg/bargain"
)

// DefaultPool is the number of units divided when a tournament does not
// set one.
const DefaultPool = 100

// TournamentConfig configures a series of games between a fixed list of
// strategies.
type TournamentConfig struct {
	ID           string   `json:"id,omitempty"` // generated when empty
	Name         string   `json:"name"`
	Entrants     []string `json:"entrants"` // strategy names, repeats allowed
	Pool         int      `json:"pool"`
	Games        int      `json:"games"` // 0 = one full rotation
	Seed         int64    `json:"seed"`  // 0 = random
	Shuffle      bool     `json:"shuffle"`
	PollDirector bool     `json:"poll_director"`
	DryRun       bool     `json:"dry_run"` // skip archive and leaderboard writes
}

// TournamentResult describes a completed tournament.
type TournamentResult struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Pool      int                   `json:"pool"`
	Seed      int64                 `json:"seed"`
	Games     []model.GameRecord    `json:"games"`
	Totals    map[string]int        `json:"totals"`
	Standings []model.Standing      `json:"standings"`
	Stats     []model.StrategyStats `json:"stats"`
}

// TournamentObserver receives tournament progress in addition to the
// engine events of every game.
type TournamentObserver interface {
	bargain.Observer
	OnTournamentStart(id string, cfg TournamentConfig)
	OnGameStart(id string, number int, seating []string)
	OnGameEnd(id string, rec model.GameRecord)
	OnTournamentEnd(res *TournamentResult)
}

// NopTournamentObserver ignores all events. Embed it to implement only
// the hooks you need.
type NopTournamentObserver struct{ bargain.NopObserver }

func (NopTournamentObserver) OnTournamentStart(string, TournamentConfig) {}
func (NopTournamentObserver) OnGameStart(string, int, []string)          {}
func (NopTournamentObserver) OnGameEnd(string, model.GameRecord)         {}
func (NopTournamentObserver) OnTournamentEnd(*TournamentResult)          {}

// RunTournament plays cfg.Games games. Game g seats the entrants rotated
// left by g so every entrant directs in turn, optionally shuffling the
// non-director seats. Pass nil repos (or set DryRun) to skip persistence.
func RunTournament(
	ctx context.Context,
	cfg TournamentConfig,
	archive repository.ResultArchive,
	board repository.Leaderboard,
	observers ...TournamentObserver,
) (*TournamentResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Games == 0 {
		cfg.Games = len(cfg.Entrants)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Name == "" {
		cfg.Name = "tournament"
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.DryRun {
		archive, board = nil, nil
	}

	rng := NewRng(cfg.Seed)
	identities := SeatIdentities(cfg.Entrants)
	strategyOf := make(map[string]string, len(identities))
	for i, id := range identities {
		strategyOf[id] = normalizeName(cfg.Entrants[i])
	}

	result := &TournamentResult{
		ID:     cfg.ID,
		Name:   cfg.Name,
		Pool:   cfg.Pool,
		Seed:   cfg.Seed,
		Totals: make(map[string]int, len(identities)),
	}
	for _, id := range identities {
		result.Totals[id] = 0
	}

	if archive != nil {
		t := &model.Tournament{
			ID:        result.ID,
			Name:      cfg.Name,
			Status:    model.StatusRunning,
			Pool:      cfg.Pool,
			Seed:      cfg.Seed,
			Entrants:  append([]string(nil), cfg.Entrants...),
			GameCount: cfg.Games,
			CreatedAt: time.Now().UTC(),
		}
		if err := archive.CreateTournament(ctx, t); err != nil {
			return nil, fmt.Errorf("create tournament: %w", err)
		}
	}

	recorder := stats.NewRecorder()
	engineObservers := bargain.Observers{recorder}
	for _, o := range observers {
		engineObservers = append(engineObservers, o)
		o.OnTournamentStart(result.ID, cfg)
	}

	for g := 0; g < cfg.Games; g++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		seating := seatOrder(identities, g, cfg.Shuffle, rng)
		seats := make([]*bargain.Seat, len(seating))
		for i, id := range seating {
			s, err := StrategyForName(strategyOf[id], rng)
			if err != nil {
				return nil, err
			}
			seats[i] = bargain.NewSeat(id, s)
		}
		recorder.BeginGame(seats)
		for _, o := range observers {
			o.OnGameStart(result.ID, g+1, append([]string(nil), seating...))
		}

		opts := []bargain.Option{bargain.WithObserver(engineObservers)}
		if cfg.PollDirector {
			opts = append(opts, bargain.WithDirectorPolled())
		}
		out, err := bargain.PlayContext(ctx, seats, cfg.Pool, opts...)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", g+1, err)
		}

		rec := gameRecord(result.ID, g+1, seats, out)
		result.Games = append(result.Games, rec)
		for id, units := range out.Awards {
			result.Totals[id] += units
		}

		if archive != nil {
			if err := archive.SaveGame(ctx, rec); err != nil {
				return nil, fmt.Errorf("save game %d: %w", g+1, err)
			}
		}
		if board != nil {
			updateLeaderboard(ctx, board, result, rec, strategyOf)
		}
		for _, o := range observers {
			o.OnGameEnd(result.ID, rec)
		}
	}

	result.Standings = standings(result.Totals, strategyOf)
	result.Stats = recorder.Ranked()

	if archive != nil {
		if err := archive.FinishTournament(ctx, result.ID, result.Standings, result.Stats); err != nil {
			return nil, fmt.Errorf("finish tournament: %w", err)
		}
	}
	if board != nil {
		if err := board.ClearLive(ctx, result.ID); err != nil {
			log.Warn().Err(err).Str("tournamentId", result.ID).Msg("Failed to clear live snapshot")
		}
	}
	for _, o := range observers {
		o.OnTournamentEnd(result)
	}

	log.Info().
		Str("tournamentId", result.ID).
		Str("name", result.Name).
		Int("games", len(result.Games)).
		Str("leader", leader(result.Standings)).
		Msg("Tournament finished")
	return result, nil
}

// ValidateConfig checks a configuration without running it.
func ValidateConfig(cfg TournamentConfig) error {
	if len(cfg.Entrants) == 0 {
		return bargain.ErrEmptyRoster
	}
	if cfg.Pool < 0 {
		return bargain.ErrNegativePool
	}
	if cfg.Games < 0 {
		return fmt.Errorf("%w: games must be non-negative, got %d", ErrInvalidTournament, cfg.Games)
	}
	for _, name := range cfg.Entrants {
		if _, err := StrategyForName(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// Limits bounds the size of a tournament. Zero fields are unbounded.
type Limits struct {
	MaxPool     int `json:"max_pool"`
	MaxGames    int `json:"max_games"`
	MaxEntrants int `json:"max_entrants"`
}

// Check rejects cfg with ErrInvalidTournament when it exceeds a limit. The
// game count is checked after the one-rotation default is applied.
func (l Limits) Check(cfg TournamentConfig) error {
	games := cfg.Games
	if games == 0 {
		games = len(cfg.Entrants)
	}
	switch {
	case l.MaxPool > 0 && cfg.Pool > l.MaxPool:
		return fmt.Errorf("%w: pool %d exceeds the limit of %d", ErrInvalidTournament, cfg.Pool, l.MaxPool)
	case l.MaxEntrants > 0 && len(cfg.Entrants) > l.MaxEntrants:
		return fmt.Errorf("%w: %d entrants exceed the limit of %d", ErrInvalidTournament, len(cfg.Entrants), l.MaxEntrants)
	case l.MaxGames > 0 && games > l.MaxGames:
		return fmt.Errorf("%w: %d games exceed the limit of %d", ErrInvalidTournament, games, l.MaxGames)
	}
	return nil
}

// seatOrder rotates the identities left by game so entrant game%n directs,
// then optionally shuffles everyone behind the director.
func seatOrder(identities []string, game int, shuffle bool, rng *rand.Rand) []string {
	n := len(identities)
	out := make([]string, n)
	for i := range out {
		out[i] = identities[(i+game)%n]
	}
	if shuffle && n > 2 {
		shuffleStrings(rng, out[1:])
	}
	return out
}

func gameRecord(tournamentID string, number int, seats []*bargain.Seat, out *bargain.Outcome) model.GameRecord {
	rec := model.GameRecord{
		TournamentID: tournamentID,
		Number:       number,
		Seating:      make([]string, len(seats)),
		Strategies:   make([]string, len(seats)),
		Resolution:   string(out.Resolution),
		Rounds:       out.Rounds,
		Decider:      out.Decider,
		Eliminated:   out.Eliminated,
		Awards:       out.Awards,
	}
	for i, s := range seats {
		rec.Seating[i] = s.ID
		rec.Strategies[i] = s.StrategyName()
	}
	if out.Accepted != nil {
		rec.Accepted = []int(out.Accepted)
	}
	return rec
}

// updateLeaderboard credits the game's awards to each strategy and stores a
// live snapshot of the running totals. Cache failures never abort play.
func updateLeaderboard(ctx context.Context, board repository.Leaderboard, res *TournamentResult, rec model.GameRecord, strategyOf map[string]string) {
	for id, units := range rec.Awards {
		if units == 0 {
			continue
		}
		if err := board.AddUnits(ctx, strategyOf[id], units); err != nil {
			log.Warn().Err(err).Str("strategy", strategyOf[id]).Msg("Failed to update leaderboard")
		}
	}
	snapshot, err := json.Marshal(struct {
		Game   int            `json:"game"`
		Totals map[string]int `json:"totals"`
	}{rec.Number, res.Totals})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal live snapshot")
		return
	}
	if err := board.SetLive(ctx, res.ID, snapshot); err != nil {
		log.Warn().Err(err).Str("tournamentId", res.ID).Msg("Failed to store live snapshot")
	}
}

// standings orders totals by units descending, ties broken by identity.
func standings(totals map[string]int, strategyOf map[string]string) []model.Standing {
	out := make([]model.Standing, 0, len(totals))
	for id, units := range totals {
		out = append(out, model.Standing{Entrant: id, Strategy: strategyOf[id], Units: units})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return out[i].Entrant < out[j].Entrant
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

func leader(s []model.Standing) string {
	if len(s) == 0 {
		return ""
	}
	return s[0].Entrant
}

// IsConfigError reports whether err was caused by an invalid tournament
// configuration rather than a storage failure.
func IsConfigError(err error) bool {
	var re *bargain.RosterError
	return errors.Is(err, bargain.ErrEmptyRoster) ||
		errors.Is(err, bargain.ErrNegativePool) ||
		errors.Is(err, ErrUnknownStrategy) ||
		errors.Is(err, ErrInvalidTournament) ||
		errors.As(err, &re)
}
