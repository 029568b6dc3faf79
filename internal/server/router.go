package server

import (
	"net/http"

	"rayenna-crm/internal/config"
	"rayenna-crm/internal/handlers"
	"rayenna-crm/internal/middleware"
	"rayenna-crm/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	handlers.SetBusinessLocation(cfg.BusinessLocation())

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   12 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("rayenna_session", store))

	r.Use(middleware.InjectUser())

	// AUTH
	r.GET("/me", handlers.Me)
	r.POST("/register", handlers.Register)
	r.POST("/login", handlers.Login)
	r.POST("/logout", handlers.Logout)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())

	// CUSTOMERS
	auth.GET("/customers", handlers.ListCustomers)
	auth.POST("/customers",
		middleware.RequireRole(models.RoleAdmin, models.RoleSales),
		handlers.CreateCustomer,
	)
	auth.GET("/customers/:id", handlers.ShowCustomer)

	// PROJECTS
	auth.GET("/projects", handlers.ListProjects)
	auth.POST("/projects",
		middleware.RequireRole(models.RoleAdmin, models.RoleSales),
		handlers.CreateProject,
	)
	// per-role transition rules are checked in the handler
	auth.POST("/projects/:id/status",
		middleware.RequireRole(models.RoleAdmin, models.RoleSales, models.RoleOperations, models.RoleFinance),
		handlers.ChangeProjectStatus,
	)
	auth.POST("/projects/:id/stage",
		middleware.RequireRole(models.RoleAdmin, models.RoleSales, models.RoleOperations),
		handlers.ChangeProjectStage,
	)
	auth.GET("/projects/:id/history", handlers.ProjectHistory)

	// DASHBOARDS
	dash := auth.Group("/dashboard")
	dash.GET("/sales",
		middleware.RequireRole(models.RoleAdmin, models.RoleSales, models.RoleManagement),
		handlers.SalesDashboard,
	)
	dash.GET("/operations",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperations, models.RoleManagement),
		handlers.OperationsDashboard,
	)
	dash.GET("/finance",
		middleware.RequireRole(models.RoleAdmin, models.RoleFinance, models.RoleManagement),
		handlers.FinanceDashboard,
	)
	dash.GET("/management",
		middleware.RequireRole(models.RoleAdmin, models.RoleManagement),
		handlers.ManagementDashboard,
	)

	// AUDIT
	auth.GET("/audit",
		middleware.RequireRole(models.RoleAdmin, models.RoleManagement),
		handlers.ListAuditLogs,
	)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
