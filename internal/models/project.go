package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProjectStatus string
type ProjectStage string
type StatusIndicator string

const (
	StatusLead                     ProjectStatus = "LEAD"
	StatusSiteSurvey               ProjectStatus = "SITE_SURVEY"
	StatusProposal                 ProjectStatus = "PROPOSAL"
	StatusConfirmed                ProjectStatus = "CONFIRMED"
	StatusUnderInstallation        ProjectStatus = "UNDER_INSTALLATION"
	StatusSubmittedForSubsidy      ProjectStatus = "SUBMITTED_FOR_SUBSIDY"
	StatusCompleted                ProjectStatus = "COMPLETED"
	StatusCompletedSubsidyCredited ProjectStatus = "COMPLETED_SUBSIDY_CREDITED"
	StatusLost                     ProjectStatus = "LOST"

	StageSurvey       ProjectStage = "SURVEY"
	StageProposal     ProjectStage = "PROPOSAL"
	StageApproved     ProjectStage = "APPROVED"
	StageInstallation ProjectStage = "INSTALLATION"
	StageBilling      ProjectStage = "BILLING"
	StageLive         ProjectStage = "LIVE"
	StageAMC          ProjectStage = "AMC"
	StageLost         ProjectStage = "LOST"

	IndicatorGreen StatusIndicator = "GREEN"
	IndicatorAmber StatusIndicator = "AMBER"
	IndicatorRed   StatusIndicator = "RED"
)

// StatusProgression is the forward order of the project lifecycle. Lost sits
// outside it and is reachable from any non-terminal status.
var StatusProgression = []ProjectStatus{
	StatusLead,
	StatusSiteSurvey,
	StatusProposal,
	StatusConfirmed,
	StatusUnderInstallation,
	StatusSubmittedForSubsidy,
	StatusCompleted,
	StatusCompletedSubsidyCredited,
}

var AllStages = []ProjectStage{
	StageSurvey,
	StageProposal,
	StageApproved,
	StageInstallation,
	StageBilling,
	StageLive,
	StageAMC,
	StageLost,
}

type Project struct {
	gorm.Model
	CustomerID uint      `json:"customerId"`
	Customer   *Customer `json:"customer,omitempty"`

	SalespersonID uint   `gorm:"index" json:"salespersonId"`
	Title         string `gorm:"size:255;not null" json:"title"`

	Status ProjectStatus `gorm:"type:varchar(40);not null;index" json:"status"`
	// Stage is a legacy classification parallel to Status. nil means no stage
	// was ever recorded.
	Stage *ProjectStage `gorm:"type:varchar(20)" json:"stage"`

	// FiscalYear is stored once ("2024-25" or "2024-2025") and never
	// re-derived from ConfirmationDate on read.
	FiscalYear       string     `gorm:"size:9;index" json:"fiscalYear"`
	ConfirmationDate *time.Time `gorm:"index" json:"confirmationDate"`

	OrderValue       *decimal.Decimal `gorm:"type:numeric(14,2)" json:"orderValue"`
	GrossProfit      *decimal.Decimal `gorm:"type:numeric(14,2)" json:"grossProfit"`
	SystemCapacityKw *decimal.Decimal `gorm:"type:numeric(10,2)" json:"systemCapacityKw"`

	StageEnteredAt  *time.Time      `json:"stageEnteredAt"`
	SLABudgetDays   *int            `gorm:"column:sla_budget_days" json:"slaBudgetDays"`
	StatusIndicator StatusIndicator `gorm:"type:varchar(10);default:GREEN" json:"statusIndicator"`
}

func ParseStatus(s string) (ProjectStatus, bool) {
	st := ProjectStatus(s)
	if st == StatusLost {
		return st, true
	}
	for _, known := range StatusProgression {
		if st == known {
			return st, true
		}
	}
	return "", false
}

func ParseStage(s string) (ProjectStage, bool) {
	st := ProjectStage(s)
	for _, known := range AllStages {
		if st == known {
			return st, true
		}
	}
	return "", false
}

func (s ProjectStatus) IsTerminal() bool {
	return s == StatusLost || s == StatusCompletedSubsidyCredited
}

func (s ProjectStatus) rank() int {
	for i, known := range StatusProgression {
		if s == known {
			return i
		}
	}
	return -1
}

// CanAdvance reports whether the lifecycle allows moving from current to next:
// a single forward step, or Lost from any non-terminal status.
func CanAdvance(current, next ProjectStatus) bool {
	if current == next || current.IsTerminal() {
		return false
	}
	if next == StatusLost {
		return true
	}
	from, to := current.rank(), next.rank()
	return from >= 0 && to == from+1
}
