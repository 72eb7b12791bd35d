package postgres

import (
	"context"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"gorm.io/gorm"
)

type TemplatePostgreSQL struct {
	base
}

func NewTemplatePostgreSQL(db *gorm.DB) repositories.TemplateRepository {
	return &TemplatePostgreSQL{base{db: db}}
}

func (t *TemplatePostgreSQL) Create(ctx context.Context, tx *gorm.DB, template *models.Template) error {
	return t.getDB(ctx, tx).Create(template).Error
}

func (t *TemplatePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Template, error) {
	var template models.Template
	if err := t.getDB(ctx, tx).First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (t *TemplatePostgreSQL) Update(ctx context.Context, tx *gorm.DB, template *models.Template) error {
	return t.getDB(ctx, tx).Save(template).Error
}

func (t *TemplatePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return t.getDB(ctx, tx).Delete(&models.Template{}, id).Error
}

func (t *TemplatePostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters repositories.TemplateFilters) ([]*models.Template, int64, error) {
	query := t.getDB(ctx, tx).Model(&models.Template{}).Where("course_id = ?", courseID)
	if filters.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var templates []*models.Template
	err := paginate(query, filters.Limit, filters.Offset).
		Order("created_at DESC").
		Find(&templates).Error
	if err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

func (t *TemplatePostgreSQL) ExistsByName(ctx context.Context, tx *gorm.DB, courseID uint, name string, excludeID *uint) (bool, error) {
	query := t.getDB(ctx, tx).
		Model(&models.Template{}).
		Where("course_id = ? AND LOWER(name) = LOWER(?)", courseID, name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}
