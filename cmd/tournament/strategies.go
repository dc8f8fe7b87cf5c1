package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/freeeve/regifting/internal/bot"
	"github.com/freeeve/regifting/internal/report"
)

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List registered strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			styles := report.NewStyles(lipgloss.NewRenderer(cmd.OutOrStdout()))
			_, err := fmt.Fprintln(cmd.OutOrStdout(), styles.CatalogTable(bot.Catalog()))
			return err
		},
	}
}
