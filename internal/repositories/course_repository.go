package repositories

import (
	"context"

	"github.com/SAP-F-2025/course-service/internal/models"
	"gorm.io/gorm"
)

// CourseRepository interface for course operations
type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error // Soft delete

	// ListForUser returns the courses the user is a member of
	ListForUser(ctx context.Context, tx *gorm.DB, userID string, filters CourseFilters) ([]*models.Course, int64, error)
	ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *uint) (bool, error)
}

// CourseMemberRepository interface for course membership operations
type CourseMemberRepository interface {
	Add(ctx context.Context, tx *gorm.DB, member *models.CourseMember) error
	Get(ctx context.Context, tx *gorm.DB, courseID uint, userID string) (*models.CourseMember, error)
	List(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.CourseMember, error)
	UpdateRole(ctx context.Context, tx *gorm.DB, courseID uint, userID string, role models.CourseRole) error
	Remove(ctx context.Context, tx *gorm.DB, courseID uint, userID string) error
}
