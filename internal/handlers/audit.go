package handlers

import (
	"net/http"

	"rayenna-crm/internal/database"
	"rayenna-crm/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const auditPageSize = 200

func ListAuditLogs(c *gin.Context) {
	dbq := database.DB.WithContext(c.Request.Context()).
		Preload("User").
		Order("created_at desc, id desc").
		Limit(auditPageSize)

	if entity := c.Query("entity"); entity != "" {
		dbq = dbq.Where("entity = ?", entity)
	}

	var logs []models.AuditLog
	if err := dbq.Find(&logs).Error; err != nil {
		log.Error().Err(err).Msg("failed to list audit logs")
		renderError(c, http.StatusInternalServerError, "failed to load audit log")
		return
	}

	render(c, http.StatusOK, gin.H{"logs": logs})
}
