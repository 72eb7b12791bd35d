package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository groups every repository and owns transactions. Repository
// methods take an optional tx; nil runs against the base connection.
type Repository interface {
	Course() CourseRepository
	CourseMember() CourseMemberRepository
	Milestone() MilestoneRepository
	Group() GroupRepository
	Template() TemplateRepository
	Submission() SubmissionRepository
	Comment() CommentRepository
	User() UserRepository

	// WithTransaction runs fn inside a database transaction; fn's error rolls it back.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
	Close() error
}
