package handlers

import (
	"net/http"
	"strings"

	"rayenna-crm/internal/database"
	"rayenna-crm/internal/middleware"
	"rayenna-crm/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func ListCustomers(c *gin.Context) {
	var customers []models.Customer
	if err := database.DB.WithContext(c.Request.Context()).Order("name asc").Find(&customers).Error; err != nil {
		log.Error().Err(err).Msg("failed to list customers")
		renderError(c, http.StatusInternalServerError, "failed to load customers")
		return
	}
	if _, role, _ := middleware.SessionUser(c); !canSeeContacts(role) {
		for i := range customers {
			maskCustomer(&customers[i])
		}
	}
	render(c, http.StatusOK, gin.H{"customers": customers})
}

type customerRequest struct {
	Name         string `json:"name"`
	City         string `json:"city"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
	Notes        string `json:"notes"`
}

func CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	customer := models.Customer{
		Name:         strings.TrimSpace(req.Name),
		City:         strings.TrimSpace(req.City),
		ContactName:  strings.TrimSpace(req.ContactName),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		ContactPhone: strings.TrimSpace(req.ContactPhone),
		Notes:        strings.TrimSpace(req.Notes),
	}

	if len(customer.Name) < 3 {
		renderError(c, http.StatusBadRequest, "customer name must be at least 3 characters")
		return
	}

	if msg, taken := customerTaken(c, customer); taken {
		renderError(c, http.StatusConflict, msg)
		return
	}

	if err := database.DB.Create(&customer).Error; err != nil {
		log.Error().Err(err).Msg("failed to create customer")
		renderError(c, http.StatusInternalServerError, "failed to save customer")
		return
	}

	if uid, _, ok := middleware.SessionUser(c); ok {
		database.CreateAuditLog(uid, "customer", customer.ID, "create", "created customer "+customer.Name)
	}

	c.JSON(http.StatusCreated, customer)
}

// customerTaken checks name, e-mail and phone for duplicates.
func customerTaken(c *gin.Context, customer models.Customer) (string, bool) {
	checks := []struct {
		value string
		query string
		msg   string
	}{
		{customer.Name, "LOWER(name) = LOWER(?)", "customer with this name already exists"},
		{customer.ContactEmail, "LOWER(contact_email) = LOWER(?)", "customer with this e-mail already exists"},
		{customer.ContactPhone, "contact_phone = ?", "customer with this phone already exists"},
	}

	for _, chk := range checks {
		if chk.value == "" {
			continue
		}
		var count int64
		database.DB.WithContext(c.Request.Context()).
			Model(&models.Customer{}).
			Where(chk.query, chk.value).
			Count(&count)
		if count > 0 {
			return chk.msg, true
		}
	}
	return "", false
}
