package repositories

import (
	"context"

	"github.com/SAP-F-2025/course-service/internal/models"
	"gorm.io/gorm"
)

// SubmissionRepository interface for submission operations
type SubmissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) // Includes group and authors
	Update(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error // Soft delete
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters SubmissionFilters) ([]*models.Submission, int64, error)
}

// CommentRepository interface for per-field submission comments
type CommentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, comment *models.Comment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Comment, error)
	Update(ctx context.Context, tx *gorm.DB, comment *models.Comment) error
	// SoftDelete keeps the row and marks it deleted
	SoftDelete(ctx context.Context, tx *gorm.DB, id uint) error
	ListBySubmission(ctx context.Context, tx *gorm.DB, submissionID uint) ([]*models.Comment, error)
	ListBySubmissions(ctx context.Context, tx *gorm.DB, submissionIDs []uint) (map[uint][]*models.Comment, error)
}
