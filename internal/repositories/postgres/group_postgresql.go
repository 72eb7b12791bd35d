package postgres

import (
	"context"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupPostgreSQL struct {
	base
}

func NewGroupPostgreSQL(db *gorm.DB) repositories.GroupRepository {
	return &GroupPostgreSQL{base{db: db}}
}

func (g *GroupPostgreSQL) Create(ctx context.Context, tx *gorm.DB, group *models.Group) error {
	return g.getDB(ctx, tx).Omit(clause.Associations).Create(group).Error
}

func (g *GroupPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Group, error) {
	var group models.Group
	err := g.getDB(ctx, tx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		Preload("Members.User").
		First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (g *GroupPostgreSQL) Update(ctx context.Context, tx *gorm.DB, group *models.Group) error {
	return g.getDB(ctx, tx).Omit(clause.Associations).Save(group).Error
}

func (g *GroupPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := g.getDB(ctx, tx)
	if err := db.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Group{}, id).Error
}

func (g *GroupPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Group, error) {
	var groups []*models.Group
	err := g.getDB(ctx, tx).
		Preload("Members").
		Where("course_id = ?", courseID).
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}

func (g *GroupPostgreSQL) AddMember(ctx context.Context, tx *gorm.DB, member *models.GroupMember) error {
	return g.getDB(ctx, tx).Omit(clause.Associations).Create(member).Error
}

func (g *GroupPostgreSQL) RemoveMember(ctx context.Context, tx *gorm.DB, groupID uint, userID string) error {
	result := g.getDB(ctx, tx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (g *GroupPostgreSQL) IsMember(ctx context.Context, tx *gorm.DB, groupID uint, userID string) (bool, error) {
	var count int64
	err := g.getDB(ctx, tx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (g *GroupPostgreSQL) GetUserGroupIDs(ctx context.Context, tx *gorm.DB, courseID uint, userID string) ([]uint, error) {
	var ids []uint
	err := g.getDB(ctx, tx).
		Model(&models.GroupMember{}).
		Joins("JOIN groups ON groups.id = group_members.group_id AND groups.deleted_at IS NULL").
		Where("groups.course_id = ? AND group_members.user_id = ?", courseID, userID).
		Pluck("group_members.group_id", &ids).Error
	return ids, err
}
