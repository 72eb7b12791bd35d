package repositories

import (
	"context"

	"github.com/SAP-F-2025/course-service/internal/models"
	"gorm.io/gorm"
)

// TemplateRepository interface for submission template operations
type TemplateRepository interface {
	Create(ctx context.Context, tx *gorm.DB, template *models.Template) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Template, error)
	Update(ctx context.Context, tx *gorm.DB, template *models.Template) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters TemplateFilters) ([]*models.Template, int64, error)

	// Validation helpers
	ExistsByName(ctx context.Context, tx *gorm.DB, courseID uint, name string, excludeID *uint) (bool, error)
}
