package repositories

import (
	"context"

	"github.com/SAP-F-2025/course-service/internal/models"
	"gorm.io/gorm"
)

// GroupRepository interface for group and group membership operations
type GroupRepository interface {
	Create(ctx context.Context, tx *gorm.DB, group *models.Group) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Group, error) // Includes members
	Update(ctx context.Context, tx *gorm.DB, group *models.Group) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Group, error)

	// Membership
	AddMember(ctx context.Context, tx *gorm.DB, member *models.GroupMember) error
	RemoveMember(ctx context.Context, tx *gorm.DB, groupID uint, userID string) error
	IsMember(ctx context.Context, tx *gorm.DB, groupID uint, userID string) (bool, error)
	GetUserGroupIDs(ctx context.Context, tx *gorm.DB, courseID uint, userID string) ([]uint, error)
}
