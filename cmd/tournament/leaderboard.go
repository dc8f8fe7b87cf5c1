package main

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/freeeve/regifting/internal/config"
	redisrepo "github.com/freeeve/regifting/internal/repository/redis"
	"github.com/freeeve/regifting/internal/report"
)

func newLeaderboardCmd(root *rootOptions) *cobra.Command {
	var (
		redisURL string
		limit    int
		jsonOut  bool
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show units won per strategy across all tournaments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if redisURL == "" {
				appCfg, err := config.LoadFile(root.configFile)
				if err != nil {
					return err
				}
				redisURL = appCfg.RedisURL
			}
			if redisURL == "" {
				return fmt.Errorf("no Redis configured: pass --redis or set REGIFTING_REDIS_URL")
			}
			client, err := redisrepo.NewClient(cmd.Context(), redisURL)
			if err != nil {
				return err
			}
			defer client.Close()

			top, err := client.Top(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(top)
			}
			styles := report.NewStyles(lipgloss.NewRenderer(cmd.OutOrStdout()))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), styles.LeaderboardTable(top))
			return err
		},
	}
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL (defaults to the configured one)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "entries to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")
	return cmd
}
