package main

import (
	"github.com/spf13/cobra"

	"github.com/freeeve/regifting/internal/bot"
)

func newPlayCmd(root *rootOptions) *cobra.Command {
	var (
		pool         int
		seed         int64
		pollDirector bool
		jsonOut      bool
	)
	cmd := &cobra.Command{
		Use:     "play STRATEGY...",
		Short:   "Play one game with the given seat order, director first",
		Example: `  tournament play greedy vengeful rational --pool 10`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := bot.TournamentConfig{
				Name:         "game",
				Entrants:     args,
				Pool:         pool,
				Games:        1,
				Seed:         seed,
				PollDirector: pollDirector,
				DryRun:       true,
			}
			return runTournament(cmd, cfg, &runOptions{jsonOut: jsonOut}, root)
		},
	}
	cmd.Flags().IntVar(&pool, "pool", bot.DefaultPool, "units to divide")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	cmd.Flags().BoolVar(&pollDirector, "poll-director", false, "let the director vote on its own proposal")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as JSON")
	return cmd
}
