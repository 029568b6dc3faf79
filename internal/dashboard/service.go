package dashboard

import (
	"context"
	"fmt"

	"rayenna-crm/internal/filter"
	"rayenna-crm/internal/models"
	"rayenna-crm/internal/sla"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// View selects which role-specific panels a dashboard carries on top of the
// shared totals and FY series.
type View string

const (
	ViewSales      View = "sales"
	ViewOperations View = "operations"
	ViewFinance    View = "finance"
	ViewManagement View = "management"
)

type Dashboard struct {
	Totals                 Totals        `json:"totals"`
	ProjectValueProfitByFY []FYRow       `json:"projectValueProfitByFY"`
	PreviousYearSamePeriod *PeriodTotals `json:"previousYearSamePeriod,omitempty"`
	StatusBreakdown        []StatusCount `json:"statusBreakdown,omitempty"`
	SLABoard               *SLABoard     `json:"slaBoard,omitempty"`
	RevenueByMonth         []MonthPoint  `json:"revenueByMonth,omitempty"`
}

type Service struct {
	source ProjectSource
	yoy    *Comparator
	engine *sla.Engine
}

func NewService(source ProjectSource, engine *sla.Engine) *Service {
	if engine == nil {
		engine = sla.NewEngine()
	}
	return &Service{
		source: source,
		yoy:    NewComparator(source),
		engine: engine,
	}
}

// Sales is scoped to one salesperson's projects.
func (s *Service) Sales(ctx context.Context, salespersonID uint, sel filter.Selection) (*Dashboard, error) {
	return s.Build(ctx, ViewSales, filter.All().And(filter.SalespersonIs(salespersonID)), sel)
}

func (s *Service) Operations(ctx context.Context, sel filter.Selection) (*Dashboard, error) {
	return s.Build(ctx, ViewOperations, filter.All(), sel)
}

func (s *Service) Finance(ctx context.Context, sel filter.Selection) (*Dashboard, error) {
	return s.Build(ctx, ViewFinance, filter.All(), sel)
}

func (s *Service) Management(ctx context.Context, sel filter.Selection) (*Dashboard, error) {
	return s.Build(ctx, ViewManagement, filter.All(), sel)
}

// Build runs the shared pipeline: compose the filter over base, aggregate
// the matching projects, and attach the previous-year comparison when
// exactly one FY is selected.
func (s *Service) Build(ctx context.Context, view View, base filter.Predicate, sel filter.Selection) (*Dashboard, error) {
	ctx, span := otel.Tracer("rayenna-crm/dashboard").Start(ctx, "dashboard.build")
	defer span.End()
	span.SetAttributes(
		attribute.String("dashboard.view", string(view)),
		attribute.StringSlice("dashboard.fy", sel.FiscalYears),
		attribute.Bool("dashboard.narrowed", sel.Narrowed()),
	)

	var (
		projects []models.Project
		cmp      Comparison
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.source.ListProjects(gctx, filter.Compose(base, sel))
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cmp, err = s.yoy.Compare(gctx, base, sel)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	d := &Dashboard{
		Totals:                 Aggregate(projects),
		ProjectValueProfitByFY: ByFiscalYear(projects),
		PreviousYearSamePeriod: cmp.SamePeriod,
	}
	if fy, ok := sel.SingleFY(); ok {
		d.ProjectValueProfitByFY = ensureRow(d.ProjectValueProfitByFY, fy)
	}
	if cmp.FullYear != nil {
		d.ProjectValueProfitByFY = upsertRow(d.ProjectValueProfitByFY, rowFrom(cmp.PreviousFY, *cmp.FullYear))
	}
	sortRows(d.ProjectValueProfitByFY)

	switch view {
	case ViewSales:
		d.StatusBreakdown = StatusBreakdown(projects)
	case ViewOperations:
		d.SLABoard = BuildSLABoard(projects, s.engine)
	case ViewFinance:
		d.RevenueByMonth = MonthlyRevenue(projects)
	case ViewManagement:
		d.StatusBreakdown = StatusBreakdown(projects)
		d.SLABoard = BuildSLABoard(projects, s.engine)
		d.RevenueByMonth = MonthlyRevenue(projects)
	}

	log.Debug().
		Str("view", string(view)).
		Strs("fy", sel.FiscalYears).
		Int("projects", len(projects)).
		Str("previous_fy", cmp.PreviousFY).
		Msg("dashboard built")

	return d, nil
}
