package postgres

import (
	"context"
	"strings"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionPostgreSQL struct {
	base
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{base{db: db}}
}

func (s *SubmissionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	return s.getDB(ctx, tx).Omit(clause.Associations).Create(submission).Error
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	var submission models.Submission
	err := s.withRelations(s.getDB(ctx, tx)).First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	return s.getDB(ctx, tx).Omit(clause.Associations).Save(submission).Error
}

func (s *SubmissionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return s.getDB(ctx, tx).Delete(&models.Submission{}, id).Error
}

func (s *SubmissionPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	query := s.getDB(ctx, tx).Model(&models.Submission{}).Where("course_id = ?", courseID)

	if filters.TemplateID != nil {
		query = query.Where("template_id = ?", *filters.TemplateID)
	}
	if filters.GroupID != nil {
		query = query.Where("group_id = ?", *filters.GroupID)
	}
	if filters.CreatedByID != "" {
		query = query.Where("created_by_id = ?", filters.CreatedByID)
	}
	if v := filters.VisibleTo; v != nil {
		if len(v.GroupIDs) > 0 {
			query = query.Where("(created_by_id = ? OR group_id IN ?)", v.UserID, v.GroupIDs)
		} else {
			query = query.Where("created_by_id = ?", v.UserID)
		}
	}
	if !filters.IncludeDraft {
		query = query.Where("is_draft = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		order = "created_at ASC"
	}

	var submissions []*models.Submission
	err := s.withRelations(paginate(query, filters.Limit, filters.Offset)).
		Order(order).
		Order("id ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

func (s *SubmissionPostgreSQL) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Group").Preload("CreatedBy").Preload("EditedBy")
}

type CommentPostgreSQL struct {
	base
}

func NewCommentPostgreSQL(db *gorm.DB) repositories.CommentRepository {
	return &CommentPostgreSQL{base{db: db}}
}

func (c *CommentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, comment *models.Comment) error {
	return c.getDB(ctx, tx).Omit(clause.Associations).Create(comment).Error
}

func (c *CommentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := c.getDB(ctx, tx).Preload("Commenter").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *CommentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, comment *models.Comment) error {
	return c.getDB(ctx, tx).Omit(clause.Associations).Save(comment).Error
}

func (c *CommentPostgreSQL) SoftDelete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := c.getDB(ctx, tx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *CommentPostgreSQL) ListBySubmission(ctx context.Context, tx *gorm.DB, submissionID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := c.getDB(ctx, tx).
		Preload("Commenter").
		Where("submission_id = ?", submissionID).
		Order("field_index ASC, created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (c *CommentPostgreSQL) ListBySubmissions(ctx context.Context, tx *gorm.DB, submissionIDs []uint) (map[uint][]*models.Comment, error) {
	result := make(map[uint][]*models.Comment, len(submissionIDs))
	if len(submissionIDs) == 0 {
		return result, nil
	}

	var comments []*models.Comment
	err := c.getDB(ctx, tx).
		Preload("Commenter").
		Where("submission_id IN ?", submissionIDs).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	for _, comment := range comments {
		result[comment.SubmissionID] = append(result[comment.SubmissionID], comment)
	}
	return result, nil
}
