package sla

import (
	"time"

	"rayenna-crm/internal/models"
)

// Team owns a lifecycle stage.
type Team string

const (
	TeamSales Team = "SALES"
	TeamOps   Team = "OPS"
)

const (
	amberPct = 70
	redPct   = 90
)

var budgets = map[models.ProjectStage]int{
	models.StageSurvey:       7,
	models.StageProposal:     14,
	models.StageApproved:     5,
	models.StageInstallation: 30,
	models.StageBilling:      7,
	models.StageLive:         3,
	models.StageAMC:          365,
	models.StageLost:         0,
}

// BudgetDays is the number of days a project may stay in stage.
func BudgetDays(stage models.ProjectStage) int {
	return budgets[stage]
}

// Owner maps a stage to the team accountable for it. No stage defaults to
// sales.
func Owner(stage *models.ProjectStage) Team {
	if stage == nil {
		return TeamSales
	}
	switch *stage {
	case models.StageSurvey, models.StageProposal, models.StageApproved:
		return TeamSales
	}
	return TeamOps
}

// Indicator derives the traffic light from the time spent in the current
// stage. Missing inputs or a non-positive budget mean no SLA is tracked.
//
// daysInStage is floored to whole days and compared against the budget with
// integer arithmetic: below 70% GREEN, below 90% AMBER, otherwise RED.
func Indicator(enteredAt *time.Time, budgetDays *int, now time.Time) models.StatusIndicator {
	if enteredAt == nil || budgetDays == nil || *budgetDays <= 0 {
		return models.IndicatorGreen
	}
	days := floorDays(now.Sub(*enteredAt))
	budget := int64(*budgetDays)
	switch {
	case 100*days < amberPct*budget:
		return models.IndicatorGreen
	case 100*days < redPct*budget:
		return models.IndicatorAmber
	}
	return models.IndicatorRed
}

func floorDays(d time.Duration) int64 {
	const day = 24 * time.Hour
	n := int64(d / day)
	if d < 0 && d%day != 0 {
		n--
	}
	return n
}

// Engine evaluates indicators against a clock.
type Engine struct {
	Now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) Evaluate(p *models.Project) models.StatusIndicator {
	return Indicator(p.StageEnteredAt, p.SLABudgetDays, e.now())
}

// EnterStage records a stage transition on p: entry time, the stage budget
// and the recomputed indicator.
func (e *Engine) EnterStage(p *models.Project, stage models.ProjectStage) {
	at := e.now()
	budget := BudgetDays(stage)
	p.Stage = &stage
	p.StageEnteredAt = &at
	p.SLABudgetDays = &budget
	p.StatusIndicator = Indicator(p.StageEnteredAt, p.SLABudgetDays, at)
}
