package postgres

import (
	"context"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"gorm.io/gorm"
)

type MilestonePostgreSQL struct {
	base
}

func NewMilestonePostgreSQL(db *gorm.DB) repositories.MilestoneRepository {
	return &MilestonePostgreSQL{base{db: db}}
}

func (m *MilestonePostgreSQL) Create(ctx context.Context, tx *gorm.DB, milestone *models.Milestone) error {
	return m.getDB(ctx, tx).Create(milestone).Error
}

func (m *MilestonePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := m.getDB(ctx, tx).First(&milestone, id).Error; err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (m *MilestonePostgreSQL) Update(ctx context.Context, tx *gorm.DB, milestone *models.Milestone) error {
	return m.getDB(ctx, tx).Save(milestone).Error
}

func (m *MilestonePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return m.getDB(ctx, tx).Delete(&models.Milestone{}, id).Error
}

func (m *MilestonePostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Milestone, error) {
	var milestones []*models.Milestone
	err := m.getDB(ctx, tx).
		Where("course_id = ?", courseID).
		Order("start_date ASC NULLS LAST, id ASC").
		Find(&milestones).Error
	return milestones, err
}
