package repository

import (
	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type VisitRepository interface {
	Create(visit *model.SiteVisit) error
	CountDistinctVisitors() (int64, error)
}

type visitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) Create(visit *model.SiteVisit) error {
	if err := r.db.Create(visit).Error; err != nil {
		logger.Error("Failed to record site visit", err, map[string]interface{}{
			"visitor_id": visit.VisitorID,
			"path":       visit.Path,
		})
		return err
	}
	return nil
}

func (r *visitRepository) CountDistinctVisitors() (int64, error) {
	var count int64
	if err := r.db.Model(&model.SiteVisit{}).Distinct("visitor_id").Count(&count).Error; err != nil {
		logger.Error("Failed to count visitors", err)
		return 0, err
	}
	return count, nil
}
