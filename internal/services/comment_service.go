package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type commentService struct {
	base
	submissions *submissionService
}

func NewCommentService(repo repositories.Repository, tagCache *cache.TagCache, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) CommentService {
	b := newBase(repo, tagCache, publisher, logger, v, "comment")
	return &commentService{base: b, submissions: &submissionService{base: b}}
}

// Create attaches a comment to one field of a submission. Anyone who can view
// the submission may comment, on fields that have feedback enabled.
func (s *commentService) Create(ctx context.Context, submissionID uint, req *CreateCommentRequest, userID string) (comment *models.Comment, err error) {
	op := s.ops.WithOperation(ctx, "create_comment", userID)
	defer func() { op.LogResult(submissionID, "submission", err) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}
	sub, err := s.submissions.load(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	role, _, err := s.submissions.access(ctx, sub, userID, "comment")
	if err != nil {
		return nil, err
	}

	if req.FieldIndex >= len(sub.FormResponseData) {
		return nil, ValidationErrors{*NewValidationError("field_index",
			fmt.Sprintf("must be less than %d", len(sub.FormResponseData)), req.FieldIndex)}
	}
	if field := sub.FormResponseData[req.FieldIndex]; !field.Type.HasResponse() || !field.HasFeedback {
		return nil, NewBusinessRuleError("feedback_disabled", "comments are not enabled for this field",
			map[string]interface{}{"submission_id": submissionID, "field_index": req.FieldIndex})
	}

	comment = &models.Comment{
		SubmissionID:  submissionID,
		FieldIndex:    req.FieldIndex,
		CommenterID:   userID,
		CommenterRole: role,
		Content:       strings.TrimSpace(req.Content),
	}
	if err := s.repo.Comment().Create(ctx, nil, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.invalidate(ctx, cache.TypeComment, cache.OpCreate, submissionID, comment.ID)
	s.publish(ctx, events.NewCommentCreatedEvent(events.CommentCreatedEvent{
		CommentID:    comment.ID,
		SubmissionID: submissionID,
		CourseID:     sub.CourseID,
		FieldIndex:   comment.FieldIndex,
		CommenterID:  userID,
		OwnerID:      sub.CreatedByID,
	}))
	return comment, nil
}

// List returns every comment in field then creation order. Deleted comments
// keep their place with the content cleared.
func (s *commentService) List(ctx context.Context, submissionID uint, userID string) ([]*models.Comment, error) {
	sub, err := s.submissions.load(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.submissions.access(ctx, sub, userID, "read"); err != nil {
		return nil, err
	}

	comments, err := cache.Fetch(ctx, s.cache, fmt.Sprintf("submission:%d:comments", submissionID),
		func(items []*models.Comment) []cache.Tag {
			return cache.ListTags(cache.TypeComment, submissionID, ids(items, func(c *models.Comment) uint { return c.ID })...)
		},
		func(ctx context.Context) ([]*models.Comment, error) {
			items, err := s.repo.Comment().ListBySubmission(ctx, nil, submissionID)
			if err != nil {
				return nil, fmt.Errorf("failed to list comments: %w", err)
			}
			return items, nil
		})
	if err != nil {
		return nil, err
	}

	for _, c := range comments {
		if c.IsDeleted {
			c.Content = ""
		}
	}
	return comments, nil
}

func (s *commentService) Update(ctx context.Context, id uint, req *UpdateCommentRequest, userID string) (*models.Comment, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	comment, err := s.repo.Comment().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrCommentNotFound, "failed to get comment")
	}
	if comment.IsDeleted {
		return nil, ErrCommentDeleted
	}
	if comment.CommenterID != userID {
		return nil, NewPermissionError(userID, id, "comment", "update", "only the author can edit a comment")
	}

	comment.Content = strings.TrimSpace(req.Content)
	if err := s.repo.Comment().Update(ctx, nil, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	s.invalidate(ctx, cache.TypeComment, cache.OpUpdate, comment.SubmissionID, id)
	return comment, nil
}

// Delete soft deletes a comment; its author or course staff may do so.
func (s *commentService) Delete(ctx context.Context, id uint, userID string) error {
	comment, err := s.repo.Comment().GetByID(ctx, nil, id)
	if err != nil {
		return notFound(err, ErrCommentNotFound, "failed to get comment")
	}
	if comment.IsDeleted {
		return ErrCommentDeleted
	}

	if comment.CommenterID != userID {
		sub, err := s.submissions.load(ctx, comment.SubmissionID)
		if err != nil {
			return err
		}
		if _, err := s.requireStaff(ctx, sub.CourseID, userID, "delete_comment"); err != nil {
			return err
		}
	}

	if err := s.repo.Comment().SoftDelete(ctx, nil, id); err != nil {
		return notFound(err, ErrCommentNotFound, "failed to delete comment")
	}
	s.invalidate(ctx, cache.TypeComment, cache.OpDelete, comment.SubmissionID, id)
	return nil
}
