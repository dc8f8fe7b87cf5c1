package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/internal/repository"
)

const leaderboardKey = "leaderboard:units"

// liveTTL bounds how long a snapshot of an abandoned tournament survives.
const liveTTL = time.Hour

func liveKey(tournamentID string) string { return "tournament:" + tournamentID + ":live" }

var _ repository.Leaderboard = (*Client)(nil)

// AddUnits credits units to a strategy's all-time total.
func (c *Client) AddUnits(ctx context.Context, strategy string, units int) error {
	return c.rdb.ZIncrBy(ctx, leaderboardKey, float64(units), strategy).Err()
}

// Top returns the n strategies with the most units, best first.
func (c *Client) Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	zs, err := c.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard top: %w", err)
	}
	out := make([]model.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		name, _ := z.Member.(string)
		out = append(out, model.LeaderboardEntry{Strategy: name, Units: int64(z.Score)})
	}
	return out, nil
}

// SetLive stores the running snapshot of a tournament.
func (c *Client) SetLive(ctx context.Context, tournamentID string, snapshot json.RawMessage) error {
	return c.rdb.Set(ctx, liveKey(tournamentID), []byte(snapshot), liveTTL).Err()
}

// GetLive returns the running snapshot, or nil when none exists.
func (c *Client) GetLive(ctx context.Context, tournamentID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, liveKey(tournamentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get live snapshot: %w", err)
	}
	return json.RawMessage(data), nil
}

// ClearLive removes the running snapshot.
func (c *Client) ClearLive(ctx context.Context, tournamentID string) error {
	return c.rdb.Del(ctx, liveKey(tournamentID)).Err()
}
