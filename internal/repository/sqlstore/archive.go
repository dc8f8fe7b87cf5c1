package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/internal/repository"
)

// ArchiveRepo implements repository.ResultArchive.
type ArchiveRepo struct {
	s *Store
}

// NewArchiveRepo creates an ArchiveRepo.
func NewArchiveRepo(s *Store) *ArchiveRepo {
	return &ArchiveRepo{s: s}
}

var _ repository.ResultArchive = (*ArchiveRepo)(nil)

// CreateTournament inserts a running tournament.
func (r *ArchiveRepo) CreateTournament(ctx context.Context, t *model.Tournament) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Status == "" {
		t.Status = model.StatusRunning
	}
	q := r.s.insertQuery("tournaments", []string{
		"id", "name", "status", "pool", "seed", "entrants", "game_count", "created_ms",
	})
	_, err := r.s.db.ExecContext(ctx, q,
		t.ID, t.Name, t.Status, t.Pool, t.Seed, asJSON(t.Entrants), t.GameCount, t.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("create tournament: %w", err)
	}
	return nil
}

// SaveGame inserts one game record.
func (r *ArchiveRepo) SaveGame(ctx context.Context, rec model.GameRecord) error {
	q := r.s.insertQuery("games", []string{
		"tournament_id", "number", "seating", "strategies", "resolution", "rounds",
		"decider", "accepted", "eliminated", "awards",
	})
	_, err := r.s.db.ExecContext(ctx, q,
		rec.TournamentID, rec.Number, asJSON(rec.Seating), asJSON(rec.Strategies), rec.Resolution, rec.Rounds,
		rec.Decider, asJSON(rec.Accepted), asJSON(rec.Eliminated), asJSON(rec.Awards),
	)
	if err != nil {
		return fmt.Errorf("save game %d: %w", rec.Number, err)
	}
	return nil
}

// FinishTournament stores the final standings and statistics.
func (r *ArchiveRepo) FinishTournament(ctx context.Context, id string, standings []model.Standing, stats []model.StrategyStats) error {
	q := r.s.rebind(`UPDATE tournaments SET status = ?, standings = ?, stats = ?, finished_ms = ? WHERE id = ?`)
	res, err := r.s.db.ExecContext(ctx, q,
		model.StatusFinished, asJSON(standings), asJSON(stats), time.Now().UTC().UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("finish tournament: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish tournament: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish tournament %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

const tournamentColumns = `id, name, status, pool, seed, entrants, game_count, standings, stats, created_ms, finished_ms`

type scanner interface {
	Scan(dest ...any) error
}

func scanTournament(row scanner) (*model.Tournament, error) {
	var (
		t                         model.Tournament
		entrants, standings, stat string
		createdMs                 int64
		finishedMs                sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Status, &t.Pool, &t.Seed, &entrants, &t.GameCount,
		&standings, &stat, &createdMs, &finishedMs); err != nil {
		return nil, err
	}
	if err := fromJSON(entrants, &t.Entrants); err != nil {
		return nil, fmt.Errorf("decode entrants: %w", err)
	}
	if err := fromJSON(standings, &t.Standings); err != nil {
		return nil, fmt.Errorf("decode standings: %w", err)
	}
	if err := fromJSON(stat, &t.Stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	t.CreatedAt = time.UnixMilli(createdMs).UTC()
	if finishedMs.Valid {
		ft := time.UnixMilli(finishedMs.Int64).UTC()
		t.FinishedAt = &ft
	}
	return &t, nil
}

// FindTournament returns a tournament with its games, or ErrNotFound.
func (r *ArchiveRepo) FindTournament(ctx context.Context, id string) (*model.Tournament, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.rebind(`SELECT `+tournamentColumns+` FROM tournaments WHERE id = ?`), id)
	t, err := scanTournament(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find tournament: %w", err)
	}

	games, err := r.listGames(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Games = games
	return t, nil
}

// ListTournaments returns the most recent tournaments without their games.
func (r *ArchiveRepo) ListTournaments(ctx context.Context, limit int) ([]model.Tournament, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.s.db.QueryContext(ctx,
		r.s.rebind(`SELECT `+tournamentColumns+` FROM tournaments ORDER BY created_ms DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	defer rows.Close()

	var out []model.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tournament: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *ArchiveRepo) listGames(ctx context.Context, tournamentID string) ([]model.GameRecord, error) {
	rows, err := r.s.db.QueryContext(ctx, r.s.rebind(
		`SELECT number, seating, strategies, resolution, rounds, decider, accepted, eliminated, awards
		 FROM games WHERE tournament_id = ? ORDER BY number`), tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []model.GameRecord
	for rows.Next() {
		rec := model.GameRecord{TournamentID: tournamentID}
		var seating, strategies, accepted, eliminated, awards string
		if err := rows.Scan(&rec.Number, &seating, &strategies, &rec.Resolution, &rec.Rounds,
			&rec.Decider, &accepted, &eliminated, &awards); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		for _, f := range []struct {
			raw string
			dst any
		}{
			{seating, &rec.Seating},
			{strategies, &rec.Strategies},
			{accepted, &rec.Accepted},
			{eliminated, &rec.Eliminated},
			{awards, &rec.Awards},
		} {
			if err := fromJSON(f.raw, f.dst); err != nil {
				return nil, fmt.Errorf("decode game %d: %w", rec.Number, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func asJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func fromJSON(raw string, dst any) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}
