package commands

import (
	"context"
	"fmt"

	"rayenna-crm/internal/config"
	"rayenna-crm/internal/logging"
	"rayenna-crm/internal/telemetry"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const serviceName = "rayenna-crm"

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.Config

	shutdownTracing = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "rayenna-crm",
	Short: "Rayenna CRM serves the solar EPC role dashboards",
	Long: `Project lifecycle tracking for a solar EPC business: fiscal-year dashboards
per role, revenue and pipeline classification, and stage SLA indicators.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		if err := logging.Init(cfg.LogsFolder, verbose || cfg.LogVerbose); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}

		shutdownTracing, err = telemetry.Setup(cmd.Context(), serviceName, cfg.OTelEndpoint)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("rayenna-crm starting")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to flush traces")
		}
	},
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(serveCmd, sweepCmd, versionCmd)
}
