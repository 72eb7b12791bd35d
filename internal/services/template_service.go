package services

import (
	"context"
	"errors"
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

type templateService struct {
	base
}

func NewTemplateService(repo repositories.Repository, tagCache *cache.TagCache, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) TemplateService {
	return &templateService{base: newBase(repo, tagCache, publisher, logger, v, "template")}
}

// ===== CORE CRUD OPERATIONS =====

func (s *templateService) Create(ctx context.Context, courseID uint, req *CreateTemplateRequest, userID string) (t *models.Template, err error) {
	op := s.ops.WithOperation(ctx, "create_template", userID)
	defer func() { op.LogResult(templateID(t), "template", err) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.FormField().ValidateFields(req.FormFields); len(errs) > 0 {
		return nil, errs
	}
	if _, err := s.requireStaff(ctx, courseID, userID, "create_template"); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkName(ctx, courseID, name, nil); err != nil {
		return nil, err
	}

	t = &models.Template{
		CourseID:       courseID,
		Name:           name,
		Description:    req.Description,
		SubmissionType: req.SubmissionType,
		IsPublished:    req.IsPublished,
		FormFields:     datatypes.JSONSlice[models.FormField](forms.NewBuilder(req.FormFields).Fields()),
		CreatedBy:      userID,
	}
	if err := s.repo.Template().Create(ctx, nil, t); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	s.invalidate(ctx, cache.TypeTemplate, cache.OpCreate, courseID, t.ID)

	if t.IsPublished {
		s.publish(ctx, events.NewTemplatePublishedEvent(t.ID, courseID, t.Name, len(t.FormFields), userID))
	}
	return t, nil
}

func (s *templateService) checkName(ctx context.Context, courseID uint, name string, excludeID *uint) error {
	exists, err := s.repo.Template().ExistsByName(ctx, nil, courseID, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check template name: %w", err)
	}
	if exists {
		return ErrTemplateDuplicateName
	}
	return nil
}

func (s *templateService) load(ctx context.Context, id uint) (*models.Template, error) {
	return cache.Fetch(ctx, s.cache, fmt.Sprintf("template:%d", id),
		func(*models.Template) []cache.Tag { return []cache.Tag{cache.EntityTag(cache.TypeTemplate, id)} },
		func(ctx context.Context) (*models.Template, error) {
			t, err := s.repo.Template().GetByID(ctx, nil, id)
			if err != nil {
				return nil, notFound(err, ErrTemplateNotFound, "failed to get template")
			}
			return t, nil
		})
}

// GetByID hides unpublished templates from students.
func (s *templateService) GetByID(ctx context.Context, id uint, userID string) (*models.Template, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := s.role(ctx, t.CourseID, userID, "read")
	if err != nil {
		return nil, err
	}
	if !t.IsPublished && !role.IsStaff() {
		return nil, ErrTemplateNotFound
	}
	return t, nil
}

func (s *templateService) List(ctx context.Context, courseID uint, userID string) ([]*models.Template, error) {
	role, err := s.role(ctx, courseID, userID, "read")
	if err != nil {
		return nil, err
	}

	all, err := cache.Fetch(ctx, s.cache, fmt.Sprintf("course:%d:templates", courseID),
		func(items []*models.Template) []cache.Tag {
			return cache.ListTags(cache.TypeTemplate, courseID, ids(items, func(t *models.Template) uint { return t.ID })...)
		},
		func(ctx context.Context) ([]*models.Template, error) {
			items, _, err := s.repo.Template().ListByCourse(ctx, nil, courseID, repositories.TemplateFilters{})
			if err != nil {
				return nil, fmt.Errorf("failed to list templates: %w", err)
			}
			return items, nil
		})
	if err != nil {
		return nil, err
	}
	if role.IsStaff() {
		return all, nil
	}

	published := make([]*models.Template, 0, len(all))
	for _, t := range all {
		if t.IsPublished {
			published = append(published, t)
		}
	}
	return published, nil
}

func (s *templateService) Update(ctx context.Context, id uint, req *UpdateTemplateRequest, userID string) (t *models.Template, err error) {
	op := s.ops.WithOperation(ctx, "update_template", userID)
	defer func() { op.LogResult(id, "template", err) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}
	if req.FormFields != nil {
		if errs := s.validator.FormField().ValidateFields(req.FormFields); len(errs) > 0 {
			return nil, errs
		}
	}

	t, err = s.editable(ctx, id, userID, "update_template")
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != t.Name {
			if err := s.checkName(ctx, t.CourseID, name, &id); err != nil {
				return nil, err
			}
		}
		t.Name = name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.SubmissionType != nil {
		t.SubmissionType = *req.SubmissionType
	}
	if req.FormFields != nil {
		t.FormFields = datatypes.JSONSlice[models.FormField](forms.NewBuilder(req.FormFields).Fields())
	}

	return t, s.save(ctx, t)
}

func (s *templateService) Delete(ctx context.Context, id uint, userID string) (err error) {
	op := s.ops.WithOperation(ctx, "delete_template", userID)
	defer func() { op.LogResult(id, "template", err) }()

	t, err := s.editable(ctx, id, userID, "delete_template")
	if err != nil {
		return err
	}
	if err := s.repo.Template().Delete(ctx, nil, id); err != nil {
		return notFound(err, ErrTemplateNotFound, "failed to delete template")
	}
	s.invalidate(ctx, cache.TypeTemplate, cache.OpDelete, t.CourseID, id)
	return nil
}

// Publish toggles visibility to students. Publishing re-validates the fields.
func (s *templateService) Publish(ctx context.Context, id uint, publish bool, userID string) (t *models.Template, err error) {
	op := s.ops.WithOperation(ctx, "publish_template", userID)
	defer func() { op.LogResult(id, "template", err) }()

	t, err = s.editable(ctx, id, userID, "publish_template")
	if err != nil {
		return nil, err
	}
	if publish {
		if errs := s.validator.FormField().ValidateFields(t.Fields()); len(errs) > 0 {
			return nil, errs
		}
	}
	if t.IsPublished == publish {
		return t, nil
	}

	t.IsPublished = publish
	if err := s.repo.Template().Update(ctx, nil, t); err != nil {
		return nil, fmt.Errorf("failed to publish template: %w", err)
	}
	s.invalidate(ctx, cache.TypeTemplate, cache.OpPublish, t.CourseID, id)

	if publish {
		s.publish(ctx, events.NewTemplatePublishedEvent(t.ID, t.CourseID, t.Name, len(t.FormFields), userID))
	}
	return t, nil
}

// ===== BUILDER OPERATIONS =====

func (s *templateService) AddField(ctx context.Context, id uint, req *AddFieldRequest, userID string) (*models.Template, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.edit(ctx, id, userID, func(b *forms.Builder) error {
		index := b.Len()
		if req.Index != nil {
			index = *req.Index
		}
		if errs := s.validator.FormField().ValidateField(fieldPath(index), req.Field); len(errs) > 0 {
			return errs
		}
		return b.Insert(index, req.Field)
	})
}

func (s *templateService) UpdateField(ctx context.Context, id uint, index int, patch *forms.FieldPatch, userID string) (*models.Template, error) {
	if err := s.validate(patch); err != nil {
		return nil, err
	}
	return s.edit(ctx, id, userID, func(b *forms.Builder) error {
		return b.Update(index, *patch)
	})
}

// RemoveField refuses to remove the last field since a template needs at least one.
func (s *templateService) RemoveField(ctx context.Context, id uint, index int, userID string) (*models.Template, error) {
	return s.edit(ctx, id, userID, func(b *forms.Builder) error {
		if b.Len() == 1 && index == 0 {
			return NewBusinessRuleError("min_fields", "a template must keep at least one field", map[string]interface{}{"template_id": id})
		}
		return b.Remove(index)
	})
}

func (s *templateService) ReorderFields(ctx context.Context, id uint, req *ReorderFieldsRequest, userID string) (*models.Template, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.edit(ctx, id, userID, func(b *forms.Builder) error {
		return b.Reorder(req.Order)
	})
}

func (s *templateService) MoveField(ctx context.Context, id uint, req *MoveFieldRequest, userID string) (*models.Template, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.edit(ctx, id, userID, func(b *forms.Builder) error {
		return b.Move(req.From, req.To)
	})
}

// edit applies fn to the template's fields and saves only a valid result.
func (s *templateService) edit(ctx context.Context, id uint, userID string, fn func(b *forms.Builder) error) (*models.Template, error) {
	t, err := s.editable(ctx, id, userID, "edit_template")
	if err != nil {
		return nil, err
	}

	b := forms.NewBuilder(t.Fields())
	if err := fn(b); err != nil {
		if errors.Is(err, forms.ErrFieldIndexOutOfRange) || errors.Is(err, forms.ErrInvalidFieldType) {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		return nil, err
	}
	if errs := b.Validate(); len(errs) > 0 {
		return nil, errs
	}

	t.FormFields = datatypes.JSONSlice[models.FormField](b.Fields())
	return t, s.save(ctx, t)
}

// editable loads a template fresh from the store for a staff member to modify.
func (s *templateService) editable(ctx context.Context, id uint, userID, action string) (*models.Template, error) {
	t, err := s.repo.Template().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrTemplateNotFound, "failed to get template")
	}
	if _, err := s.requireStaff(ctx, t.CourseID, userID, action); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *templateService) save(ctx context.Context, t *models.Template) error {
	if err := s.repo.Template().Update(ctx, nil, t); err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	s.invalidate(ctx, cache.TypeTemplate, cache.OpUpdate, t.CourseID, t.ID)
	return nil
}

// ===== SUBMISSION VIEW =====

func (s *templateService) SubmissionView(ctx context.Context, id uint, overrides forms.SubmissionOverrides, userID string) (*forms.SubmissionView, error) {
	t, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	view := forms.TemplateToSubmissionView(t, overrides)
	return &view, nil
}

func fieldPath(index int) string {
	return fmt.Sprintf("%s.%d", validator.FormFieldsPath, index)
}

func templateID(t *models.Template) uint {
	if t == nil {
		return 0
	}
	return t.ID
}
