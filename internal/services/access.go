package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

// base carries the dependencies every service shares.
type base struct {
	repo      repositories.Repository
	cache     *cache.TagCache
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	ops       *ServiceLogger
}

func newBase(repo repositories.Repository, tagCache *cache.TagCache, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator, component string) base {
	if logger == nil {
		logger = slog.Default()
	}
	if v == nil {
		v = validator.New()
	}
	return base{
		repo:      repo,
		cache:     tagCache,
		publisher: publisher,
		validator: v,
		logger:    logger,
		ops:       NewServiceLogger(logger, component),
	}
}

// ===== ACCESS CHECKS =====

// course loads a course through the cache.
func (b *base) course(ctx context.Context, id uint) (*models.Course, error) {
	return cache.Fetch(ctx, b.cache, fmt.Sprintf("course:%d", id),
		func(*models.Course) []cache.Tag { return []cache.Tag{cache.EntityTag(cache.TypeCourse, id)} },
		func(ctx context.Context) (*models.Course, error) {
			course, err := b.repo.Course().GetByID(ctx, nil, id)
			if err != nil {
				return nil, notFound(err, ErrCourseNotFound, "failed to get course")
			}
			return course, nil
		})
}

// role returns the user's role in the course. Non-members get a
// PermissionError for action; a missing course gives ErrCourseNotFound.
func (b *base) role(ctx context.Context, courseID uint, userID, action string) (models.CourseRole, error) {
	if _, err := b.course(ctx, courseID); err != nil {
		return "", err
	}

	member, err := cache.Fetch(ctx, b.cache, fmt.Sprintf("course:%d:member:%s", courseID, userID),
		func(*models.CourseMember) []cache.Tag {
			return []cache.Tag{cache.ListTag(cache.TypeCourseMember, courseID)}
		},
		func(ctx context.Context) (*models.CourseMember, error) {
			return b.repo.CourseMember().Get(ctx, nil, courseID, userID)
		})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", NewPermissionError(userID, courseID, "course", action, "not a course member")
		}
		return "", fmt.Errorf("failed to check membership: %w", err)
	}
	return member.Role, nil
}

// requireStaff allows owners and instructors only.
func (b *base) requireStaff(ctx context.Context, courseID uint, userID, action string) (models.CourseRole, error) {
	role, err := b.role(ctx, courseID, userID, action)
	if err != nil {
		return "", err
	}
	if !role.IsStaff() {
		return "", NewPermissionError(userID, courseID, "course", action, "requires owner or instructor role")
	}
	return role, nil
}

// ===== SHARED HELPERS =====

func (b *base) validate(req interface{}) error {
	return b.validator.Validate(req)
}

// publish sends an event after a successful commit. Failures are logged only.
func (b *base) publish(ctx context.Context, event *events.Event) {
	if b.publisher == nil || event == nil {
		return
	}
	if err := b.publisher.Publish(ctx, event); err != nil {
		b.logger.Warn("Failed to publish event", "event_type", event.Type, "event_id", event.ID, "error", err)
	}
}

func (b *base) invalidate(ctx context.Context, t cache.EntityType, op cache.Operation, scope, id uint) {
	b.cache.InvalidateMutation(ctx, cache.Mutation{Type: t, Op: op}, cache.Target{Scope: scope, ID: id})
}

// notFound maps a record-not-found repository error to sentinel and wraps anything else.
func notFound(err, sentinel error, msg string) error {
	if repositories.IsNotFoundError(err) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func checkDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ValidationErrors{*NewValidationError("end_date", "must be after start_date", end)}
	}
	return nil
}

func ids[T any](items []*T, id func(*T) uint) []uint {
	out := make([]uint, len(items))
	for i, item := range items {
		out[i] = id(item)
	}
	return out
}
