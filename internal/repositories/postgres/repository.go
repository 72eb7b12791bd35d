package postgres

import (
	"context"

	"github.com/SAP-F-2025/course-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB

	course       repositories.CourseRepository
	courseMember repositories.CourseMemberRepository
	milestone    repositories.MilestoneRepository
	group        repositories.GroupRepository
	template     repositories.TemplateRepository
	submission   repositories.SubmissionRepository
	comment      repositories.CommentRepository
	user         repositories.UserRepository
}

// NewRepository wires every PostgreSQL repository over db
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:           db,
		course:       NewCoursePostgreSQL(db),
		courseMember: NewCourseMemberPostgreSQL(db),
		milestone:    NewMilestonePostgreSQL(db),
		group:        NewGroupPostgreSQL(db),
		template:     NewTemplatePostgreSQL(db),
		submission:   NewSubmissionPostgreSQL(db),
		comment:      NewCommentPostgreSQL(db),
		user:         NewUserPostgreSQL(db),
	}
}

func (r *repository) Course() repositories.CourseRepository             { return r.course }
func (r *repository) CourseMember() repositories.CourseMemberRepository { return r.courseMember }
func (r *repository) Milestone() repositories.MilestoneRepository       { return r.milestone }
func (r *repository) Group() repositories.GroupRepository               { return r.group }
func (r *repository) Template() repositories.TemplateRepository         { return r.template }
func (r *repository) Submission() repositories.SubmissionRepository     { return r.submission }
func (r *repository) Comment() repositories.CommentRepository           { return r.comment }
func (r *repository) User() repositories.UserRepository                 { return r.user }

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// base carries the connection shared by every repository
type base struct {
	db *gorm.DB
}

func (b base) getDB(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return b.db.WithContext(ctx)
}

func paginate(db *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	return db
}
