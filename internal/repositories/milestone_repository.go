package repositories

import (
	"context"

	"github.com/SAP-F-2025/course-service/internal/models"
	"gorm.io/gorm"
)

// MilestoneRepository interface for milestone operations
type MilestoneRepository interface {
	Create(ctx context.Context, tx *gorm.DB, milestone *models.Milestone) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Milestone, error)
	Update(ctx context.Context, tx *gorm.DB, milestone *models.Milestone) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Milestone, error)
}
