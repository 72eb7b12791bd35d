package postgres

import (
	"context"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CoursePostgreSQL struct {
	base
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{base{db: db}}
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return c.getDB(ctx, tx).Create(course).Error
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	if err := c.getDB(ctx, tx).Preload("Owner").First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return c.getDB(ctx, tx).Omit(clause.Associations).Save(course).Error
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return c.getDB(ctx, tx).Delete(&models.Course{}, id).Error
}

func (c *CoursePostgreSQL) ListForUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	query := c.getDB(ctx, tx).
		Model(&models.Course{}).
		Joins("JOIN course_members cm ON cm.course_id = courses.id").
		Where("cm.user_id = ?", userID)

	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("courses.name ILIKE ? OR courses.course_code ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []*models.Course
	err := paginate(query, filters.Limit, filters.Offset).
		Order("courses.created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (c *CoursePostgreSQL) ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *uint) (bool, error) {
	query := c.getDB(ctx, tx).Model(&models.Course{}).Where("course_code = ?", code)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

type CourseMemberPostgreSQL struct {
	base
}

func NewCourseMemberPostgreSQL(db *gorm.DB) repositories.CourseMemberRepository {
	return &CourseMemberPostgreSQL{base{db: db}}
}

func (c *CourseMemberPostgreSQL) Add(ctx context.Context, tx *gorm.DB, member *models.CourseMember) error {
	return c.getDB(ctx, tx).Omit(clause.Associations).Create(member).Error
}

func (c *CourseMemberPostgreSQL) Get(ctx context.Context, tx *gorm.DB, courseID uint, userID string) (*models.CourseMember, error) {
	var member models.CourseMember
	err := c.getDB(ctx, tx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *CourseMemberPostgreSQL) List(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.CourseMember, error) {
	var members []*models.CourseMember
	err := c.getDB(ctx, tx).
		Preload("User").
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (c *CourseMemberPostgreSQL) UpdateRole(ctx context.Context, tx *gorm.DB, courseID uint, userID string, role models.CourseRole) error {
	result := c.getDB(ctx, tx).
		Model(&models.CourseMember{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *CourseMemberPostgreSQL) Remove(ctx context.Context, tx *gorm.DB, courseID uint, userID string) error {
	result := c.getDB(ctx, tx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Delete(&models.CourseMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
