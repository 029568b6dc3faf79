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

// ShowCustomer returns a customer with its projects and their totals.
func ShowCustomer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := database.DB.WithContext(c.Request.Context()).First(&customer, id).Error; err != nil {
		renderError(c, http.StatusNotFound, "customer not found")
		return
	}

	uid, role, _ := middleware.SessionUser(c)
	if !canSeeContacts(role) {
		maskCustomer(&customer)
	}

	pred := filter.All().And(filter.CustomerIs(customer.ID))
	if role == models.RoleSales {
		pred = pred.And(filter.SalespersonIs(uid))
	}

	projects, err := database.NewProjectStore(database.DB).ListProjects(c.Request.Context(), pred)
	if err != nil {
		log.Error().Err(err).Uint("customer_id", customer.ID).Msg("failed to load customer projects")
		renderError(c, http.StatusInternalServerError, "failed to load projects")
		return
	}

	render(c, http.StatusOK, gin.H{
		"customer": customer,
		"projects": projects,
		"totals":   dashboard.Aggregate(projects),
	})
}
