package commands

import (
	"fmt"

	"rayenna-crm/internal/database"
	"rayenna-crm/internal/sla"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep-sla",
	Short: "Recompute the cached SLA indicator of every in-flight project once",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Init(cfg); err != nil {
			return err
		}

		sweeper := sla.NewSweeper(database.NewProjectStore(database.DB), sla.NewEngine(), 0)
		changed, err := sweeper.SweepOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d project indicator(s) updated\n", changed)
		return nil
	},
}
