// Package classify decides which projects count toward Revenue, Pipeline and
// Open Pipeline. The two sets overlap and together do not cover every
// project: a Lead without an order value is in neither.
package classify

import (
	"rayenna-crm/internal/filter"
	"rayenna-crm/internal/models"
)

var (
	revenueStatuses = []models.ProjectStatus{
		models.StatusConfirmed,
		models.StatusUnderInstallation,
		models.StatusCompleted,
		models.StatusCompletedSubsidyCredited,
	}

	// A project can reach Confirmed while still tagged with a stale pre-sale
	// stage; those never count as revenue.
	preSaleStages = []models.ProjectStage{
		models.StageSurvey,
		models.StageProposal,
	}

	openStatuses = []models.ProjectStatus{
		models.StatusLead,
		models.StatusSiteSurvey,
		models.StatusProposal,
	}
)

func RevenueStatuses() []models.ProjectStatus {
	return append([]models.ProjectStatus(nil), revenueStatuses...)
}

func IsRevenue(p *models.Project) bool {
	if !hasStatus(p, revenueStatuses) || p.OrderValue == nil {
		return false
	}
	switch {
	case p.Stage == nil:
		// no stage recorded
		return true
	case isPreSale(*p.Stage):
		return false
	default:
		return true
	}
}

// IsPipeline counts every non-lost deal with an order value. Lost deals keep
// their value for loss analysis, not pipeline sizing.
func IsPipeline(p *models.Project) bool {
	return p.Status != models.StatusLost && p.OrderValue != nil
}

func IsOpenPipeline(p *models.Project) bool {
	return IsPipeline(p) && hasStatus(p, openStatuses)
}

// Revenue narrows base to revenue projects.
func Revenue(base filter.Predicate) filter.Predicate {
	return base.And(
		filter.StatusIn(revenueStatuses...),
		filter.OrderValuePresent(),
		filter.StageNotIn(preSaleStages...),
	)
}

// Pipeline narrows base to pipeline projects.
func Pipeline(base filter.Predicate) filter.Predicate {
	return base.And(
		filter.StatusNotIn(models.StatusLost),
		filter.OrderValuePresent(),
	)
}

// OpenPipeline narrows base to pipeline projects not yet confirmed.
func OpenPipeline(base filter.Predicate) filter.Predicate {
	return Pipeline(base).And(filter.StatusIn(openStatuses...))
}

func hasStatus(p *models.Project, statuses []models.ProjectStatus) bool {
	for _, s := range statuses {
		if p.Status == s {
			return true
		}
	}
	return false
}

func isPreSale(stage models.ProjectStage) bool {
	for _, s := range preSaleStages {
		if stage == s {
			return true
		}
	}
	return false
}
