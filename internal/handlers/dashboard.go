package handlers

import (
	"net/http"

	"rayenna-crm/internal/dashboard"
	"rayenna-crm/internal/database"
	"rayenna-crm/internal/filter"
	"rayenna-crm/internal/middleware"
	"rayenna-crm/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func dashboardService() *dashboard.Service {
	return dashboard.NewService(database.NewProjectStore(database.DB), slaEngine)
}

// SalesDashboard shows a sales user their own deals; admins and management
// see the whole book.
func SalesDashboard(c *gin.Context) {
	uid, role, _ := middleware.SessionUser(c)
	sel := filter.ParseSelection(c.Request.URL.Query())
	svc := dashboardService()

	var (
		d   *dashboard.Dashboard
		err error
	)
	if role == models.RoleSales {
		d, err = svc.Sales(c.Request.Context(), uid, sel)
	} else {
		d, err = svc.Build(c.Request.Context(), dashboard.ViewSales, filter.All(), sel)
	}
	renderDashboard(c, dashboard.ViewSales, d, err)
}

func OperationsDashboard(c *gin.Context) {
	sel := filter.ParseSelection(c.Request.URL.Query())
	d, err := dashboardService().Operations(c.Request.Context(), sel)
	renderDashboard(c, dashboard.ViewOperations, d, err)
}

func FinanceDashboard(c *gin.Context) {
	sel := filter.ParseSelection(c.Request.URL.Query())
	d, err := dashboardService().Finance(c.Request.Context(), sel)
	renderDashboard(c, dashboard.ViewFinance, d, err)
}

func ManagementDashboard(c *gin.Context) {
	sel := filter.ParseSelection(c.Request.URL.Query())
	d, err := dashboardService().Management(c.Request.Context(), sel)
	renderDashboard(c, dashboard.ViewManagement, d, err)
}

func renderDashboard(c *gin.Context, view dashboard.View, d *dashboard.Dashboard, err error) {
	if err != nil {
		log.Error().Err(err).Str("view", string(view)).Msg("failed to build dashboard")
		renderError(c, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, d)
}
