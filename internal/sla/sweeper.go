package sla

import (
	"context"
	"fmt"
	"time"

	"rayenna-crm/internal/models"

	"github.com/rs/zerolog/log"
)

// Store is the persistence the sweeper needs. UpdateStatusIndicator writes a
// single column; concurrent writers are last-writer-wins.
type Store interface {
	ListInFlight(ctx context.Context) ([]models.Project, error)
	UpdateStatusIndicator(ctx context.Context, projectID uint, indicator models.StatusIndicator) error
}

type Sweeper struct {
	store    Store
	engine   *Engine
	interval time.Duration
}

func NewSweeper(store Store, engine *Engine, interval time.Duration) *Sweeper {
	return &Sweeper{store: store, engine: engine, interval: interval}
}

// SweepOnce recomputes every in-flight indicator and writes back the ones
// that changed. It returns the number of projects updated.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	projects, err := s.store.ListInFlight(ctx)
	if err != nil {
		return 0, fmt.Errorf("list in-flight projects: %w", err)
	}

	changed := 0
	for i := range projects {
		p := &projects[i]
		next := s.engine.Evaluate(p)
		if next == p.StatusIndicator {
			continue
		}
		if err := s.store.UpdateStatusIndicator(ctx, p.ID, next); err != nil {
			return changed, fmt.Errorf("update project %d indicator: %w", p.ID, err)
		}
		log.Debug().
			Uint("project_id", p.ID).
			Str("from", string(p.StatusIndicator)).
			Str("to", string(next)).
			Msg("SLA indicator changed")
		changed++
	}
	return changed, nil
}

// Run sweeps immediately and then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if n, err := s.SweepOnce(ctx); err != nil {
			log.Error().Err(err).Msg("SLA sweep failed")
		} else {
			log.Info().Int("changed", n).Msg("SLA sweep finished")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
