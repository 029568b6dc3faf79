package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rayenna-crm/internal/database"
	"rayenna-crm/internal/server"
	"rayenna-crm/internal/sla"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the periodic SLA sweeper",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := database.Init(cfg); err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
			Handler:           server.NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			log.Info().Str("addr", srv.Addr).Msg("starting server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		if cfg.SLASweepInterval > 0 {
			sweeper := sla.NewSweeper(database.NewProjectStore(database.DB), sla.NewEngine(), cfg.SLASweepInterval)
			g.Go(func() error {
				sweeper.Run(gctx)
				return nil
			})
		}
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			log.Info().Msg("shutting down server")
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}
