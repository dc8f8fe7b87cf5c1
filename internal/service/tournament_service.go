package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/regifting/internal/bot"
	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/internal/repository"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrArchiveDisabled    = errors.New("result archive is not configured")
	ErrCacheDisabled      = errors.New("leaderboard cache is not configured")
	ErrBusy               = errors.New("too many tournaments running")
	ErrTournamentRunning  = errors.New("a tournament with this id is already running")
)

// Defaults fill in tournament settings a request leaves unset. Limits bound
// the ones it sets.
type Defaults struct {
	Pool   int
	Games  int
	Seed   int64
	Limits bot.Limits
}

// TournamentRequest is a tournament configuration in which unset fields
// take the service defaults.
type TournamentRequest struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Entrants     []string `json:"entrants"`
	Pool         *int     `json:"pool,omitempty"`
	Games        int      `json:"games,omitempty"`
	Seed         int64    `json:"seed,omitempty"`
	Shuffle      bool     `json:"shuffle,omitempty"`
	PollDirector bool     `json:"poll_director,omitempty"`
	DryRun       bool     `json:"dry_run,omitempty"`
}

// TournamentService runs tournaments and serves archived results.
type TournamentService struct {
	archive     repository.ResultArchive
	board       repository.Leaderboard
	broadcaster Broadcaster
	defaults    Defaults

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	slots  chan struct{}

	mu      sync.Mutex
	running map[string]struct{}
}

// NewTournamentService creates a TournamentService. archive and board may be
// nil to disable persistence; maxRunning bounds concurrent background runs.
func NewTournamentService(
	archive repository.ResultArchive,
	board repository.Leaderboard,
	broadcaster Broadcaster,
	defaults Defaults,
	maxRunning int,
) *TournamentService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	if maxRunning < 1 {
		maxRunning = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TournamentService{
		archive:     archive,
		board:       board,
		broadcaster: broadcaster,
		defaults:    defaults,
		ctx:         ctx,
		cancel:      cancel,
		slots:       make(chan struct{}, maxRunning),
		running:     make(map[string]struct{}),
	}
}

// Config resolves a request against the service defaults.
func (s *TournamentService) Config(req TournamentRequest) bot.TournamentConfig {
	cfg := bot.TournamentConfig{
		ID:           req.ID,
		Name:         req.Name,
		Entrants:     req.Entrants,
		Pool:         s.defaults.Pool,
		Games:        req.Games,
		Seed:         req.Seed,
		Shuffle:      req.Shuffle,
		PollDirector: req.PollDirector,
		DryRun:       req.DryRun,
	}
	if req.Pool != nil {
		cfg.Pool = *req.Pool
	}
	if cfg.Games == 0 {
		cfg.Games = s.defaults.Games
	}
	if cfg.Seed == 0 {
		cfg.Seed = s.defaults.Seed
	}
	return cfg
}

// prepare resolves and validates a request and reserves its id. The caller
// must release the id when the run ends.
func (s *TournamentService) prepare(req TournamentRequest) (bot.TournamentConfig, error) {
	cfg := s.Config(req)
	if err := bot.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	if err := s.defaults.Limits.Check(cfg); err != nil {
		return cfg, err
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.running[cfg.ID]; dup {
		return cfg, fmt.Errorf("%w: %s", ErrTournamentRunning, cfg.ID)
	}
	s.running[cfg.ID] = struct{}{}
	return cfg, nil
}

func (s *TournamentService) release(id string) {
	s.mu.Lock()
	delete(s.running, id)
	s.mu.Unlock()
}

// Run plays a tournament to completion, streaming events to spectators.
func (s *TournamentService) Run(ctx context.Context, req TournamentRequest) (*bot.TournamentResult, error) {
	cfg, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	defer s.release(cfg.ID)
	return bot.RunTournament(ctx, cfg, s.archive, s.board, NewBroadcastObserver(s.broadcaster))
}

// Start validates the request and runs the tournament in the background,
// returning its id immediately so clients can subscribe before play begins.
func (s *TournamentService) Start(req TournamentRequest) (string, error) {
	cfg, err := s.prepare(req)
	if err != nil {
		return "", err
	}

	select {
	case s.slots <- struct{}{}:
	default:
		s.release(cfg.ID)
		return "", ErrBusy
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.slots }()
		defer s.release(cfg.ID)

		if _, err := bot.RunTournament(s.ctx, cfg, s.archive, s.board, NewBroadcastObserver(s.broadcaster)); err != nil {
			log.Error().Err(err).Str("tournamentId", cfg.ID).Msg("Background tournament failed")
			s.broadcaster.BroadcastTournamentEvent(cfg.ID, EventTournamentFailed, map[string]string{"error": err.Error()})
		}
	}()
	return cfg.ID, nil
}

// Close cancels background tournaments and waits for them to stop.
func (s *TournamentService) Close() {
	s.cancel()
	s.wg.Wait()
}

// Get returns an archived tournament with its games.
func (s *TournamentService) Get(ctx context.Context, id string) (*model.Tournament, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	t, err := s.archive.FindTournament(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find tournament: %w", err)
	}
	return t, nil
}

// List returns recent archived tournaments.
func (s *TournamentService) List(ctx context.Context, limit int) ([]model.Tournament, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.ListTournaments(ctx, limit)
}

// Leaderboard returns the top n strategies across all tournaments.
func (s *TournamentService) Leaderboard(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if s.board == nil {
		return nil, ErrCacheDisabled
	}
	return s.board.Top(ctx, n)
}

// Live returns the running totals of an in-progress tournament.
func (s *TournamentService) Live(ctx context.Context, id string) (json.RawMessage, error) {
	if s.board == nil {
		return nil, ErrCacheDisabled
	}
	snap, err := s.board.GetLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrTournamentNotFound
	}
	return snap, nil
}

// Strategies lists the registered strategies.
func (s *TournamentService) Strategies() []bot.Entry {
	return bot.Catalog()
}
