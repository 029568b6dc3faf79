package database

import (
	"context"
	"fmt"

	"rayenna-crm/internal/filter"
	"rayenna-crm/internal/models"

	"gorm.io/gorm"
)

// ProjectStore is the read side used by dashboards and the SLA sweeper.
type ProjectStore struct {
	db *gorm.DB
}

func NewProjectStore(db *gorm.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) ListProjects(ctx context.Context, pred filter.Predicate) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.WithContext(ctx).
		Scopes(pred.Scope()).
		Order("id asc").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	return projects, nil
}

// ListInFlight returns projects whose lifecycle is not over.
func (s *ProjectStore) ListInFlight(ctx context.Context) ([]models.Project, error) {
	pred := filter.All().And(filter.StatusNotIn(models.StatusLost, models.StatusCompletedSubsidyCredited))
	return s.ListProjects(ctx, pred)
}

// UpdateStatusIndicator overwrites the cached indicator column only, without
// touching updated_at.
func (s *ProjectStore) UpdateStatusIndicator(ctx context.Context, projectID uint, indicator models.StatusIndicator) error {
	err := s.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", projectID).
		UpdateColumn("status_indicator", indicator).Error
	if err != nil {
		return fmt.Errorf("update status indicator: %w", err)
	}
	return nil
}
