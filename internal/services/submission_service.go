package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/forms"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
	"gorm.io/datatypes"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type submissionService struct {
	base
}

func NewSubmissionService(repo repositories.Repository, tagCache *cache.TagCache, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) SubmissionService {
	return &submissionService{base: newBase(repo, tagCache, publisher, logger, v, "submission")}
}

// ===== CORE CRUD OPERATIONS =====

// Create builds a submission from a published template. Answers must follow the
// template's field sequence; drafts skip the required and shape checks.
func (s *submissionService) Create(ctx context.Context, courseID uint, req *CreateSubmissionRequest, userID string) (sub *models.Submission, err error) {
	op := s.ops.WithOperation(ctx, "create_submission", userID)
	defer func() { op.LogResult(submissionID(sub), "submission", err) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}
	role, err := s.role(ctx, courseID, userID, "create_submission")
	if err != nil {
		return nil, err
	}

	template, err := s.repo.Template().GetByID(ctx, nil, req.TemplateID)
	if err != nil {
		return nil, notFound(err, ErrTemplateNotFound, "failed to get template")
	}
	if template.CourseID != courseID {
		return nil, ErrTemplateNotFound
	}
	if !template.IsPublished {
		return nil, ErrTemplateNotPublished
	}
	if req.SubmissionType != nil && !template.SubmissionType.Allows(*req.SubmissionType) {
		return nil, ValidationErrors{*NewValidationError("submission_type",
			fmt.Sprintf("is not allowed by a %s template", template.SubmissionType), *req.SubmissionType)}
	}

	isDraft := req.IsDraft
	view := forms.TemplateToSubmissionView(template, forms.SubmissionOverrides{
		Name:           req.Name,
		Description:    req.Description,
		GroupID:        req.GroupID,
		IsDraft:        &isDraft,
		SubmissionType: req.SubmissionType,
	})

	if err := s.checkGroup(ctx, courseID, view.SubmissionType, view.GroupID, userID, role); err != nil {
		return nil, err
	}

	responses := view.FormResponseData
	if len(req.FormResponseData) > 0 {
		if errs := s.validator.FormField().ValidateAgainstTemplate(template.Fields(), req.FormResponseData); len(errs) > 0 {
			return nil, errs
		}
		responses = rebase(responses, req.FormResponseData)
	}
	if !view.IsDraft {
		if errs := s.validator.FormField().ValidateResponses(responses); len(errs) > 0 {
			return nil, errs
		}
	}

	sub = &models.Submission{
		CourseID:         courseID,
		TemplateID:       view.TemplateID,
		Name:             strings.TrimSpace(view.Name),
		Description:      view.Description,
		IsDraft:          view.IsDraft,
		SubmissionType:   view.SubmissionType,
		GroupID:          view.GroupID,
		CreatedByID:      userID,
		EditedByID:       userID,
		FormResponseData: datatypes.JSONSlice[models.FormResponseField](responses),
	}
	if err := s.repo.Submission().Create(ctx, nil, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.invalidate(ctx, cache.TypeSubmission, cache.OpCreate, courseID, sub.ID)
	s.publish(ctx, events.NewSubmissionEvent(events.EventSubmissionCreated, submissionEvent(sub, userID)))
	return sub, nil
}

// checkGroup enforces the submission type: group submissions need a group the
// author belongs to (staff may submit for any group), individual ones must not name one.
func (s *submissionService) checkGroup(ctx context.Context, courseID uint, t models.SubmissionType, groupID *uint, userID string, role models.CourseRole) error {
	switch t {
	case models.SubmissionIndividual:
		if groupID != nil {
			return ValidationErrors{*NewValidationError("group_id", "must be empty for individual submissions", *groupID)}
		}
		return nil
	case models.SubmissionGroup:
		if groupID == nil {
			return ValidationErrors{*NewValidationError("group_id", "is required for group submissions", nil)}
		}
		group, err := s.repo.Group().GetByID(ctx, nil, *groupID)
		if err != nil {
			return notFound(err, ErrGroupNotFound, "failed to get group")
		}
		if group.CourseID != courseID {
			return ErrGroupNotFound
		}
		if role.IsStaff() {
			return nil
		}
		isMember, err := s.repo.Group().IsMember(ctx, nil, *groupID, userID)
		if err != nil {
			return fmt.Errorf("failed to check group membership: %w", err)
		}
		if !isMember {
			return NewPermissionError(userID, *groupID, "group", "submit", "not a member of the group")
		}
		return nil
	default:
		return ValidationErrors{*NewValidationError("submission_type", "must be individual or group", t)}
	}
}

// rebase copies answers onto the authoritative field definitions, index by index.
func rebase(shell, given []models.FormResponseField) []models.FormResponseField {
	out := make([]models.FormResponseField, len(shell))
	for i, field := range shell {
		out[i] = models.NewResponseField(field.FormField)
		if field.Type.HasResponse() && i < len(given) && given[i].Response != nil {
			out[i].Response = given[i].Response.Clone()
		}
	}
	return out
}

func (s *submissionService) load(ctx context.Context, id uint) (*models.Submission, error) {
	return cache.Fetch(ctx, s.cache, fmt.Sprintf("submission:%d", id),
		func(*models.Submission) []cache.Tag { return []cache.Tag{cache.EntityTag(cache.TypeSubmission, id)} },
		func(ctx context.Context) (*models.Submission, error) {
			sub, err := s.repo.Submission().GetByID(ctx, nil, id)
			if err != nil {
				return nil, notFound(err, ErrSubmissionNotFound, "failed to get submission")
			}
			return sub, nil
		})
}

func (s *submissionService) GetByID(ctx context.Context, id uint, userID string) (*models.Submission, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.access(ctx, sub, userID, "read"); err != nil {
		return nil, err
	}
	return sub, nil
}

// access resolves the caller's role and whether they may edit the submission.
// Staff can read every submission; others only their own or their group's.
func (s *submissionService) access(ctx context.Context, sub *models.Submission, userID, action string) (models.CourseRole, bool, error) {
	role, err := s.role(ctx, sub.CourseID, userID, action)
	if err != nil {
		return "", false, err
	}

	canEdit := sub.CreatedByID == userID
	if !canEdit && sub.GroupID != nil {
		canEdit, err = s.repo.Group().IsMember(ctx, nil, *sub.GroupID, userID)
		if err != nil {
			return "", false, fmt.Errorf("failed to check group membership: %w", err)
		}
	}
	if !canEdit && !role.IsStaff() {
		return "", false, ErrSubmissionAccessDenied
	}
	return role, canEdit, nil
}

func (s *submissionService) List(ctx context.Context, courseID uint, req *ListSubmissionsRequest, userID string) (*SubmissionListResponse, error) {
	role, err := s.role(ctx, courseID, userID, "read")
	if err != nil {
		return nil, err
	}

	size := req.Size
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	page := req.Page
	if page < 1 {
		page = 1
	}

	filters := repositories.SubmissionFilters{
		TemplateID:   req.TemplateID,
		GroupID:      req.GroupID,
		IncludeDraft: req.IncludeDraft,
		Limit:        size,
		Offset:       (page - 1) * size,
	}
	if req.Mine {
		filters.CreatedByID = userID
	}
	if !role.IsStaff() {
		groupIDs, err := s.repo.Group().GetUserGroupIDs(ctx, nil, courseID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user groups: %w", err)
		}
		filters.VisibleTo = &repositories.Visibility{UserID: userID, GroupIDs: groupIDs}
	}

	key, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filters: %w", err)
	}
	return cache.Fetch(ctx, s.cache, fmt.Sprintf("course:%d:submissions:%s", courseID, key),
		func(resp *SubmissionListResponse) []cache.Tag {
			return cache.ListTags(cache.TypeSubmission, courseID, ids(resp.Submissions, func(item *models.Submission) uint { return item.ID })...)
		},
		func(ctx context.Context) (*SubmissionListResponse, error) {
			items, total, err := s.repo.Submission().ListByCourse(ctx, nil, courseID, filters)
			if err != nil {
				return nil, fmt.Errorf("failed to list submissions: %w", err)
			}
			return &SubmissionListResponse{Submissions: items, Total: total}, nil
		})
}

// Update edits a submission. Answers are checked against the submission's own
// field definitions so later template edits never invalidate it.
func (s *submissionService) Update(ctx context.Context, id uint, req *UpdateSubmissionRequest, userID string) (sub *models.Submission, err error) {
	op := s.ops.WithOperation(ctx, "update_submission", userID)
	defer func() { op.LogResult(id, "submission", err) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}

	sub, err = s.repo.Submission().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound, "failed to get submission")
	}
	if _, canEdit, err := s.access(ctx, sub, userID, "update"); err != nil {
		return nil, err
	} else if !canEdit {
		return nil, ErrSubmissionAccessDenied
	}

	if req.Name != nil {
		sub.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		sub.Description = *req.Description
	}
	if req.IsDraft != nil {
		sub.IsDraft = *req.IsDraft
	}

	responses := sub.Responses()
	if req.FormResponseData != nil {
		fields := make([]models.FormField, len(responses))
		for i, r := range responses {
			fields[i] = r.FormField
		}
		if errs := s.validator.FormField().ValidateAgainstTemplate(fields, req.FormResponseData); len(errs) > 0 {
			return nil, errs
		}
		responses = rebase(responses, req.FormResponseData)
	}
	if !sub.IsDraft {
		if errs := s.validator.FormField().ValidateResponses(responses); len(errs) > 0 {
			return nil, errs
		}
	}

	sub.FormResponseData = datatypes.JSONSlice[models.FormResponseField](responses)
	sub.EditedByID = userID
	sub.EditedBy = nil
	if err := s.repo.Submission().Update(ctx, nil, sub); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	s.invalidate(ctx, cache.TypeSubmission, cache.OpUpdate, sub.CourseID, id)
	s.publish(ctx, events.NewSubmissionEvent(events.EventSubmissionUpdated, submissionEvent(sub, userID)))
	return sub, nil
}

func (s *submissionService) Delete(ctx context.Context, id uint, userID string) (err error) {
	op := s.ops.WithOperation(ctx, "delete_submission", userID)
	defer func() { op.LogResult(id, "submission", err) }()

	sub, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	role, err := s.role(ctx, sub.CourseID, userID, "delete")
	if err != nil {
		return err
	}
	if sub.CreatedByID != userID && !role.IsStaff() {
		return ErrSubmissionAccessDenied
	}

	if err := s.repo.Submission().Delete(ctx, nil, id); err != nil {
		return notFound(err, ErrSubmissionNotFound, "failed to delete submission")
	}
	s.invalidate(ctx, cache.TypeSubmission, cache.OpDelete, sub.CourseID, id)
	s.publish(ctx, events.NewSubmissionEvent(events.EventSubmissionDeleted, submissionEvent(sub, userID)))
	return nil
}

// Form renders the submission as widgets. Widgets are read-only for viewers
// who cannot edit; outstanding answer errors are attached either way.
func (s *submissionService) Form(ctx context.Context, id uint, userID string) (*SubmissionForm, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	_, canEdit, err := s.access(ctx, sub, userID, "read")
	if err != nil {
		return nil, err
	}

	errs := s.validator.FormField().ValidateResponses(sub.Responses())
	widgets, err := forms.RenderSubmission(sub.Responses(), !canEdit, errs)
	if err != nil {
		return nil, fmt.Errorf("failed to render submission: %w", err)
	}
	return &SubmissionForm{Submission: sub, ReadOnly: !canEdit, Widgets: widgets, Errors: errs}, nil
}

func submissionEvent(sub *models.Submission, actorID string) events.SubmissionEvent {
	return events.SubmissionEvent{
		SubmissionID:   sub.ID,
		CourseID:       sub.CourseID,
		TemplateID:     sub.TemplateID,
		GroupID:        sub.GroupID,
		SubmissionName: sub.Name,
		IsDraft:        sub.IsDraft,
		ActorID:        actorID,
	}
}

func submissionID(s *models.Submission) uint {
	if s == nil {
		return 0
	}
	return s.ID
}
