package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rayenna-crm/internal/classify"
	"rayenna-crm/internal/database"
	"rayenna-crm/internal/filter"
	"rayenna-crm/internal/fiscal"
	"rayenna-crm/internal/middleware"
	"rayenna-crm/internal/models"
	"rayenna-crm/internal/sla"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	slaEngine = sla.NewEngine()

	businessLocation = time.UTC
)

// SetBusinessLocation sets the zone whose calendar day a confirmation
// timestamp is stored as.
func SetBusinessLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	businessLocation = loc
}

// confirmationDay normalises a confirmation timestamp to its business-local
// calendar day.
func confirmationDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := fiscal.CalendarDate(*t, businessLocation)
	return &day
}

//
// LISTING
//

// ListProjects accepts the dashboard filters (fy, month, quarter) plus
// bucket, status and customer_id, so a tile and its drill-down list always
// agree.
func ListProjects(c *gin.Context) {
	uid, role, _ := middleware.SessionUser(c)

	bucket, ok := classify.ParseBucket(c.Query("bucket"))
	if !ok {
		renderError(c, http.StatusBadRequest, "invalid bucket")
		return
	}

	base := filter.All()
	if role == models.RoleSales {
		base = base.And(filter.SalespersonIs(uid))
	}

	if statusStr := c.Query("status"); statusStr != "" {
		st, ok := models.ParseStatus(strings.ToUpper(statusStr))
		if !ok {
			renderError(c, http.StatusBadRequest, "invalid status")
			return
		}
		base = base.And(filter.StatusIn(st))
	}

	if cidStr := c.Query("customer_id"); cidStr != "" {
		cid, err := strconv.ParseUint(cidStr, 10, 64)
		if err != nil || cid == 0 {
			renderError(c, http.StatusBadRequest, "invalid customer_id")
			return
		}
		base = base.And(filter.CustomerIs(uint(cid)))
	}

	sel := filter.ParseSelection(c.Request.URL.Query())
	pred := classify.ForBucket(filter.Compose(base, sel), bucket)

	projects, err := database.NewProjectStore(database.DB).ListProjects(c.Request.Context(), pred)
	if err != nil {
		log.Error().Err(err).Msg("failed to list projects")
		renderError(c, http.StatusInternalServerError, "failed to load projects")
		return
	}

	render(c, http.StatusOK, gin.H{
		"projects": projects,
		"count":    len(projects),
	})
}

//
// CREATE
//

type createProjectRequest struct {
	CustomerID       uint             `json:"customerId"`
	Title            string           `json:"title"`
	FiscalYear       string           `json:"fiscalYear"`
	ConfirmationDate *time.Time       `json:"confirmationDate"`
	OrderValue       *decimal.Decimal `json:"orderValue"`
	GrossProfit      *decimal.Decimal `json:"grossProfit"`
	SystemCapacityKw *decimal.Decimal `json:"systemCapacityKw"`
	SalespersonID    uint             `json:"salespersonId"`
}

func CreateProject(c *gin.Context) {
	uid, role, _ := middleware.SessionUser(c)

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	title := strings.TrimSpace(req.Title)
	if len(title) < 3 {
		renderError(c, http.StatusBadRequest, "project title must be at least 3 characters")
		return
	}

	for _, v := range []*decimal.Decimal{req.OrderValue, req.GrossProfit, req.SystemCapacityKw} {
		if v != nil && v.IsNegative() {
			renderError(c, http.StatusBadRequest, "amounts must not be negative")
			return
		}
	}

	var customer models.Customer
	if err := database.DB.First(&customer, req.CustomerID).Error; err != nil {
		renderError(c, http.StatusBadRequest, "customer not found")
		return
	}

	confirmed := confirmationDay(req.ConfirmationDate)
	fy, ok := projectFiscalYear(req.FiscalYear, confirmed)
	if !ok {
		renderError(c, http.StatusBadRequest, "invalid fiscal year")
		return
	}

	// only admins may book a project on someone else's name
	salesID := uid
	if role == models.RoleAdmin && req.SalespersonID != 0 {
		salesID = req.SalespersonID
	}

	project := models.Project{
		CustomerID:       customer.ID,
		SalespersonID:    salesID,
		Title:            title,
		Status:           models.StatusLead,
		FiscalYear:       fy,
		ConfirmationDate: confirmed,
		OrderValue:       req.OrderValue,
		GrossProfit:      req.GrossProfit,
		SystemCapacityKw: req.SystemCapacityKw,
	}
	slaEngine.EnterStage(&project, models.StageSurvey)

	if err := database.DB.Create(&project).Error; err != nil {
		log.Error().Err(err).Msg("failed to create project")
		renderError(c, http.StatusInternalServerError, "failed to save project")
		return
	}

	details := "created project " + project.Title
	if fy != "" {
		details += " for FY " + fy
	}
	database.CreateAuditLog(uid, "project", project.ID, "create", details)

	c.JSON(http.StatusCreated, project)
}

// projectFiscalYear picks the stored FY label: an explicit label must parse,
// otherwise it is derived from the confirmation date. A lead with neither
// stays unlabelled until it is confirmed.
func projectFiscalYear(explicit string, confirmed *time.Time) (string, bool) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if _, ok := fiscal.ParseLabel(explicit); !ok {
			return "", false
		}
		return explicit, true
	}
	if confirmed == nil {
		return "", true
	}
	return fiscal.ForDate(*confirmed)
}

// loadProject fetches the project at :id and enforces that sales users only
// touch their own deals.
func loadProject(c *gin.Context) (*models.Project, bool) {
	pid, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	var project models.Project
	if err := database.DB.WithContext(c.Request.Context()).First(&project, pid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			renderError(c, http.StatusNotFound, "project not found")
		} else {
			log.Error().Err(err).Uint("project_id", pid).Msg("failed to load project")
			renderError(c, http.StatusInternalServerError, "failed to load project")
		}
		return nil, false
	}

	uid, role, _ := middleware.SessionUser(c)
	if role == models.RoleSales && project.SalespersonID != uid {
		renderError(c, http.StatusForbidden, "access denied")
		return nil, false
	}
	return &project, true
}

//
// STATUS CHANGE
//

type statusRequest struct {
	Status string `json:"status" form:"status"`
	// ConfirmationDate is only accepted when confirming.
	ConfirmationDate *time.Time `json:"confirmationDate"`
}

func ChangeProjectStatus(c *gin.Context) {
	project, ok := loadProject(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBind(&req); err != nil {
		renderError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	next, ok := models.ParseStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !ok {
		renderError(c, http.StatusBadRequest, "invalid status")
		return
	}
	if req.ConfirmationDate != nil && next != models.StatusConfirmed {
		renderError(c, http.StatusBadRequest, "confirmationDate is only accepted when confirming")
		return
	}

	uid, role, _ := middleware.SessionUser(c)

	if !models.CanAdvance(project.Status, next) {
		renderError(c, http.StatusConflict, "cannot move from "+string(project.Status)+" to "+string(next))
		return
	}
	if !canChangeProjectStatus(role, project.Status, next) {
		renderError(c, http.StatusForbidden, "access denied")
		return
	}

	prev := project.Status
	project.Status = next

	if next == models.StatusConfirmed {
		switch {
		case req.ConfirmationDate != nil:
			project.ConfirmationDate = confirmationDay(req.ConfirmationDate)
		case project.ConfirmationDate == nil:
			now := time.Now()
			project.ConfirmationDate = confirmationDay(&now)
		}
	}
	// the FY is assigned once; a lead created without one gets it here
	if project.FiscalYear == "" && project.ConfirmationDate != nil {
		project.FiscalYear, _ = fiscal.ForDate(*project.ConfirmationDate)
	}
	if next == models.StatusLost {
		slaEngine.EnterStage(project, models.StageLost)
	}

	if err := database.DB.Save(project).Error; err != nil {
		log.Error().Err(err).Uint("project_id", project.ID).Msg("failed to update status")
		renderError(c, http.StatusInternalServerError, "failed to update status")
		return
	}

	database.CreateAuditLog(uid, "project", project.ID, "status_change",
		string(prev)+" -> "+string(next))

	c.JSON(http.StatusOK, project)
}

// canChangeProjectStatus applies role ownership on top of the lifecycle rule.
func canChangeProjectStatus(role models.UserRole, current, next models.ProjectStatus) bool {
	switch role {

	case models.RoleAdmin:
		return true

	case models.RoleSales:
		switch next {
		case models.StatusSiteSurvey, models.StatusProposal, models.StatusConfirmed, models.StatusLost:
			return true
		}
		return false

	case models.RoleOperations:
		switch current {
		case models.StatusConfirmed, models.StatusUnderInstallation, models.StatusSubmittedForSubsidy:
			return next != models.StatusLost
		}
		return false

	case models.RoleFinance:
		return current == models.StatusCompleted && next == models.StatusCompletedSubsidyCredited

	default:
		return false
	}
}

//
// STAGE CHANGE
//

type stageRequest struct {
	Stage string `json:"stage" form:"stage"`
}

func ChangeProjectStage(c *gin.Context) {
	project, ok := loadProject(c)
	if !ok {
		return
	}

	var req stageRequest
	if err := c.ShouldBind(&req); err != nil {
		renderError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	stage, ok := models.ParseStage(strings.ToUpper(strings.TrimSpace(req.Stage)))
	if !ok {
		renderError(c, http.StatusBadRequest, "invalid stage")
		return
	}

	if project.Status.IsTerminal() {
		renderError(c, http.StatusConflict, "project is closed")
		return
	}
	if project.Stage != nil && *project.Stage == stage {
		renderError(c, http.StatusConflict, "project is already in stage "+string(stage))
		return
	}

	prev := "none"
	if project.Stage != nil {
		prev = string(*project.Stage)
	}
	slaEngine.EnterStage(project, stage)

	if err := database.DB.Save(project).Error; err != nil {
		log.Error().Err(err).Uint("project_id", project.ID).Msg("failed to update stage")
		renderError(c, http.StatusInternalServerError, "failed to update stage")
		return
	}

	uid, _, _ := middleware.SessionUser(c)
	database.CreateAuditLog(uid, "project", project.ID, "stage_change", prev+" -> "+string(stage))

	c.JSON(http.StatusOK, project)
}

//
// HISTORY
//

func ProjectHistory(c *gin.Context) {
	project, ok := loadProject(c)
	if !ok {
		return
	}

	var logs []models.AuditLog
	err := database.DB.WithContext(c.Request.Context()).
		Preload("User").
		Where("entity = ? AND entity_id = ?", "project", project.ID).
		Order("created_at asc, id asc").
		Find(&logs).Error
	if err != nil {
		log.Error().Err(err).Uint("project_id", project.ID).Msg("failed to load history")
		renderError(c, http.StatusInternalServerError, "failed to load history")
		return
	}

	render(c, http.StatusOK, gin.H{
		"project": project,
		"history": logs,
	})
}
