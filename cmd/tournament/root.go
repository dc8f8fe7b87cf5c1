package main

import (
	"github.com/spf13/cobra"

	"github.com/freeeve/regifting/internal/logger"
)

type rootOptions struct {
	configFile string
	logLevel   string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "tournament",
		Short:        "Pit gift-splitting strategies against each other",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := opts.logLevel
			if opts.verbose {
				level = "debug"
			}
			logger.Init(logger.Options{Level: level, Out: cmd.ErrOrStderr()})
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ./regifting.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every proposal and vote")

	cmd.AddCommand(newRunCmd(opts), newPlayCmd(opts), newStrategiesCmd(), newLeaderboardCmd(opts), newRemoteCmd())
	return cmd
}
