package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/freeeve/regifting/internal/auth"
	"github.com/freeeve/regifting/internal/bot"
	"github.com/freeeve/regifting/internal/client"
	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/internal/report"
	"github.com/freeeve/regifting/internal/service"
)

type remoteOptions struct {
	server     string
	token      string
	name       string
	strategies string
	pool       int
	games      int
	seed       int64
	watch      bool
}

func newRemoteCmd() *cobra.Command {
	opts := &remoteOptions{}
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Run a tournament on a regifting server",
		Example: `  tournament remote --server http://localhost:8009 -s rational,greedy*2 --watch
  REGIFTING_TOKEN=... tournament remote -s fair,quack --pool 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.server, "server", "http://localhost:8009", "server base URL")
	f.StringVar(&opts.token, "token", os.Getenv("REGIFTING_TOKEN"), "operator bearer token (default: dev login)")
	f.StringVar(&opts.name, "name", "cli", "name for dev login")
	f.StringVarP(&opts.strategies, "strategies", "s", "", "comma separated entrants, e.g. rational,greedy*2")
	f.IntVar(&opts.pool, "pool", bot.DefaultPool, "units divided each game")
	f.IntVarP(&opts.games, "games", "n", 0, "games to play (0 = one rotation)")
	f.Int64Var(&opts.seed, "seed", 0, "random seed (0 = time based)")
	f.BoolVarP(&opts.watch, "watch", "w", false, "stream games as they are played")
	_ = cmd.MarkFlagRequired("strategies")
	return cmd
}

func (o *remoteOptions) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	entrants, err := bot.ParseEntrants(o.strategies)
	if err != nil {
		return err
	}
	pool := o.pool
	req := service.TournamentRequest{Entrants: entrants, Pool: &pool, Games: o.games, Seed: o.seed}

	c := client.New(o.server)
	if o.token != "" {
		c.SetToken(o.token)
	} else if err := c.Login(ctx, o.name, auth.RoleOperator); err != nil {
		return err
	}
	console := report.NewConsole(cmd.OutOrStdout(), false)

	if !o.watch {
		res, err := c.Run(ctx, req)
		if err != nil {
			return err
		}
		for _, g := range res.Games {
			console.PrintGame(g)
		}
		console.OnTournamentEnd(res)
		fmt.Fprintf(cmd.OutOrStdout(), "tournament %s\n", res.ID)
		return nil
	}

	if err := c.ConnectWS(ctx); err != nil {
		return err
	}
	defer c.CloseWS()
	req.ID = uuid.NewString()
	if err := c.Subscribe(req.ID); err != nil {
		return err
	}
	if err := awaitSubscribed(ctx, c.Events(), req.ID); err != nil {
		return err
	}
	if _, err := c.Start(ctx, req); err != nil {
		return err
	}
	return followTournament(ctx, c.Events(), req.ID, console)
}

// awaitSubscribed waits for the server to acknowledge a subscription so no
// early events are missed.
func awaitSubscribed(ctx context.Context, events <-chan client.Event, id string) error {
	timeout := time.NewTimer(10 * time.Second)
	defer timeout.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return errors.New("server did not acknowledge the subscription")
		case ev, ok := <-events:
			if !ok {
				return errors.New("event stream closed")
			}
			if ev.Type == "subscribed" && ev.TournamentID == id {
				return nil
			}
		}
	}
}

// followTournament renders streamed events for one tournament until it
// finishes or fails.
func followTournament(ctx context.Context, events <-chan client.Event, id string, console *report.Console) error {
	for {
		var ev client.Event
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return errors.New("event stream closed before the tournament finished")
			}
			ev = e
		}
		if ev.TournamentID != id {
			continue
		}

		switch ev.Type {
		case service.EventGameStarted:
			var p struct {
				Game    int      `json:"game"`
				Seating []string `json:"seating"`
			}
			if err := json.Unmarshal(ev.Data, &p); err != nil {
				return fmt.Errorf("decode %s: %w", ev.Type, err)
			}
			console.OnGameStart(id, p.Game, p.Seating)
		case service.EventGameFinished:
			var rec model.GameRecord
			if err := json.Unmarshal(ev.Data, &rec); err != nil {
				return fmt.Errorf("decode %s: %w", ev.Type, err)
			}
			console.PrintGame(rec)
		case service.EventTournamentFinished:
			var res bot.TournamentResult
			if err := json.Unmarshal(ev.Data, &res); err != nil {
				return fmt.Errorf("decode %s: %w", ev.Type, err)
			}
			console.OnTournamentEnd(&res)
			return nil
		case service.EventTournamentFailed:
			var p struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(ev.Data, &p)
			return fmt.Errorf("tournament %s failed: %s", id, p.Error)
		}
	}
}
