package database

import (
	"rayenna-crm/internal/models"

	"github.com/rs/zerolog/log"
)

// CreateAuditLog records an action in the audit journal. Failures are logged,
// never returned: the audited action has already happened.
func CreateAuditLog(userID uint, entity string, entityID uint, action, details string) {
	if DB == nil {
		return
	}
	record := models.AuditLog{
		UserID:   userID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	if err := DB.Create(&record).Error; err != nil {
		log.Error().Err(err).Str("entity", entity).Uint("entity_id", entityID).Msg("failed to write audit log")
	}
}
