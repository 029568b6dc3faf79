package dashboard

import (
	"context"
	"fmt"

	"rayenna-crm/internal/filter"
	"rayenna-crm/internal/fiscal"
	"rayenna-crm/internal/models"

	"golang.org/x/sync/errgroup"
)

// ProjectSource lists projects matching a predicate. Implementations are
// read-only and safe for concurrent use.
type ProjectSource interface {
	ListProjects(ctx context.Context, pred filter.Predicate) ([]models.Project, error)
}

// Comparison is the prior-period view of a single-FY selection.
type Comparison struct {
	// PreviousFY is empty when no FY, several FYs, or an unrecognized label
	// was selected.
	PreviousFY string
	// FullYear covers the whole previous FY.
	FullYear *PeriodTotals
	// SamePeriod covers the previous FY with the same month/quarter
	// narrowing; nil unless narrowing is active.
	SamePeriod *PeriodTotals
}

// Comparator derives prior-period aggregates. Every role dashboard shares
// it, differing only in the base predicate.
type Comparator struct {
	source ProjectSource
}

func NewComparator(source ProjectSource) *Comparator {
	return &Comparator{source: source}
}

func (c *Comparator) Compare(ctx context.Context, base filter.Predicate, sel filter.Selection) (Comparison, error) {
	fy, ok := sel.SingleFY()
	if !ok {
		return Comparison{}, nil
	}
	prev := fiscal.Previous(fy)
	if prev == "" {
		return Comparison{}, nil
	}

	cmp := Comparison{PreviousFY: prev}
	sibling := sel.WithFiscalYear(prev)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := c.totals(gctx, filter.Compose(base, sibling.FullYear()))
		if err != nil {
			return fmt.Errorf("previous year %s: %w", prev, err)
		}
		cmp.FullYear = &t
		return nil
	})
	if sel.Narrowed() {
		g.Go(func() error {
			t, err := c.totals(gctx, filter.Compose(base, sibling))
			if err != nil {
				return fmt.Errorf("previous year %s same period: %w", prev, err)
			}
			cmp.SamePeriod = &t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}
	return cmp, nil
}

func (c *Comparator) totals(ctx context.Context, pred filter.Predicate) (PeriodTotals, error) {
	projects, err := c.source.ListProjects(ctx, pred)
	if err != nil {
		return PeriodTotals{}, err
	}
	return Aggregate(projects).PeriodTotals, nil
}
