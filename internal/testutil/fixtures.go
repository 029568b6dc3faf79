package testutil

import (
	"time"

	"rayenna-crm/internal/models"

	"github.com/shopspring/decimal"
)

type ProjectOption func(*models.Project)

// NewTestProject builds a Lead owned by salesperson 1 for customer 1.
func NewTestProject(title string, opts ...ProjectOption) *models.Project {
	p := &models.Project{
		Title:           title,
		CustomerID:      1,
		SalespersonID:   1,
		Status:          models.StatusLead,
		StatusIndicator: models.IndicatorGreen,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func WithStatus(s models.ProjectStatus) ProjectOption {
	return func(p *models.Project) { p.Status = s }
}

func WithStage(s models.ProjectStage) ProjectOption {
	return func(p *models.Project) { p.Stage = &s }
}

func WithFiscalYear(fy string) ProjectOption {
	return func(p *models.Project) { p.FiscalYear = fy }
}

func WithOrderValue(v int64) ProjectOption {
	return func(p *models.Project) {
		d := decimal.NewFromInt(v)
		p.OrderValue = &d
	}
}

func WithGrossProfit(v int64) ProjectOption {
	return func(p *models.Project) {
		d := decimal.NewFromInt(v)
		p.GrossProfit = &d
	}
}

func WithConfirmationDate(y int, m time.Month, d int) ProjectOption {
	return func(p *models.Project) {
		at := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
		p.ConfirmationDate = &at
	}
}

func WithSalesperson(id uint) ProjectOption {
	return func(p *models.Project) { p.SalespersonID = id }
}

func WithCustomer(id uint) ProjectOption {
	return func(p *models.Project) { p.CustomerID = id }
}

func WithStageEntered(at time.Time, budgetDays int) ProjectOption {
	return func(p *models.Project) {
		p.StageEnteredAt = &at
		p.SLABudgetDays = &budgetDays
	}
}

func WithIndicator(ind models.StatusIndicator) ProjectOption {
	return func(p *models.Project) { p.StatusIndicator = ind }
}
