package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type milestoneService struct {
	base
}

func NewMilestoneService(repo repositories.Repository, tagCache *cache.TagCache, logger *slog.Logger, v *validator.Validator) MilestoneService {
	return &milestoneService{base: newBase(repo, tagCache, nil, logger, v, "milestone")}
}

func (s *milestoneService) Create(ctx context.Context, courseID uint, req *CreateMilestoneRequest, userID string) (*models.Milestone, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if err := checkDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if _, err := s.requireStaff(ctx, courseID, userID, "create_milestone"); err != nil {
		return nil, err
	}

	m := &models.Milestone{
		CourseID:    courseID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := s.repo.Milestone().Create(ctx, nil, m); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}
	s.invalidate(ctx, cache.TypeMilestone, cache.OpCreate, courseID, m.ID)

	s.logger.Info("Milestone created", "milestone_id", m.ID, "course_id", courseID)
	return m, nil
}

func (s *milestoneService) GetByID(ctx context.Context, courseID, id uint, userID string) (*models.Milestone, error) {
	if _, err := s.role(ctx, courseID, userID, "read"); err != nil {
		return nil, err
	}
	return s.get(ctx, courseID, id)
}

func (s *milestoneService) get(ctx context.Context, courseID, id uint) (*models.Milestone, error) {
	m, err := cache.Fetch(ctx, s.cache, fmt.Sprintf("milestone:%d", id),
		func(*models.Milestone) []cache.Tag { return []cache.Tag{cache.EntityTag(cache.TypeMilestone, id)} },
		func(ctx context.Context) (*models.Milestone, error) {
			m, err := s.repo.Milestone().GetByID(ctx, nil, id)
			if err != nil {
				return nil, notFound(err, ErrMilestoneNotFound, "failed to get milestone")
			}
			return m, nil
		})
	if err != nil {
		return nil, err
	}
	// a milestone is only reachable through its own course
	if m.CourseID != courseID {
		return nil, ErrMilestoneNotFound
	}
	return m, nil
}

func (s *milestoneService) List(ctx context.Context, courseID uint, userID string) ([]*models.Milestone, error) {
	if _, err := s.role(ctx, courseID, userID, "read"); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, fmt.Sprintf("course:%d:milestones", courseID),
		func(items []*models.Milestone) []cache.Tag {
			return cache.ListTags(cache.TypeMilestone, courseID, ids(items, func(m *models.Milestone) uint { return m.ID })...)
		},
		func(ctx context.Context) ([]*models.Milestone, error) {
			items, err := s.repo.Milestone().ListByCourse(ctx, nil, courseID)
			if err != nil {
				return nil, fmt.Errorf("failed to list milestones: %w", err)
			}
			return items, nil
		})
}

func (s *milestoneService) Update(ctx context.Context, courseID, id uint, req *UpdateMilestoneRequest, userID string) (*models.Milestone, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if _, err := s.requireStaff(ctx, courseID, userID, "update_milestone"); err != nil {
		return nil, err
	}

	m, err := s.repo.Milestone().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrMilestoneNotFound, "failed to get milestone")
	}
	if m.CourseID != courseID {
		return nil, ErrMilestoneNotFound
	}

	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.StartDate != nil {
		m.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		m.EndDate = req.EndDate
	}
	if err := checkDates(m.StartDate, m.EndDate); err != nil {
		return nil, err
	}

	if err := s.repo.Milestone().Update(ctx, nil, m); err != nil {
		return nil, fmt.Errorf("failed to update milestone: %w", err)
	}
	s.invalidate(ctx, cache.TypeMilestone, cache.OpUpdate, courseID, id)
	return m, nil
}

func (s *milestoneService) Delete(ctx context.Context, courseID, id uint, userID string) error {
	if _, err := s.requireStaff(ctx, courseID, userID, "delete_milestone"); err != nil {
		return err
	}
	if _, err := s.get(ctx, courseID, id); err != nil {
		return err
	}
	if err := s.repo.Milestone().Delete(ctx, nil, id); err != nil {
		return notFound(err, ErrMilestoneNotFound, "failed to delete milestone")
	}
	s.invalidate(ctx, cache.TypeMilestone, cache.OpDelete, courseID, id)

	s.logger.Info("Milestone deleted", "milestone_id", id, "course_id", courseID)
	return nil
}
