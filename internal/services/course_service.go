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
	"gorm.io/gorm"
)

type courseService struct {
	base
}

func NewCourseService(repo repositories.Repository, tagCache *cache.TagCache, logger *slog.Logger, v *validator.Validator) CourseService {
	return &courseService{base: newBase(repo, tagCache, nil, logger, v, "course")}
}

// ===== CORE CRUD OPERATIONS =====

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, userID string) (course *CourseResponse, err error) {
	op := s.ops.WithOperation(ctx, "create_course", userID)
	defer func() { op.LogResult(courseID(course), "course", err) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}
	if err := checkDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.CourseCode)
	if code != "" {
		exists, err := s.repo.Course().ExistsByCode(ctx, nil, code, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to check course code: %w", err)
		}
		if exists {
			return nil, ErrCourseDuplicateCode
		}
	}

	c := &models.Course{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CourseCode:  code,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		OwnerID:     userID,
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Course().Create(ctx, tx, c); err != nil {
			return fmt.Errorf("failed to create course: %w", err)
		}
		owner := &models.CourseMember{CourseID: c.ID, UserID: userID, Role: models.CourseRoleOwner}
		if err := s.repo.CourseMember().Add(ctx, tx, owner); err != nil {
			return fmt.Errorf("failed to add course owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.TypeCourse, cache.OpCreate, 0, c.ID)
	s.invalidate(ctx, cache.TypeCourseMember, cache.OpCreate, c.ID, 0)

	return &CourseResponse{Course: c, Role: models.CourseRoleOwner}, nil
}

func (s *courseService) GetByID(ctx context.Context, id uint, userID string) (*CourseResponse, error) {
	role, err := s.role(ctx, id, userID, "read")
	if err != nil {
		return nil, err
	}
	course, err := s.course(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CourseResponse{Course: course, Role: role}, nil
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters, userID string) (*CourseListResponse, error) {
	courses, total, err := s.repo.Course().ListForUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	resp := &CourseListResponse{Courses: make([]*CourseResponse, 0, len(courses)), Total: total}
	for _, c := range courses {
		role, err := s.role(ctx, c.ID, userID, "read")
		if err != nil {
			return nil, err
		}
		resp.Courses = append(resp.Courses, &CourseResponse{Course: c, Role: role})
	}
	return resp, nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *UpdateCourseRequest, userID string) (resp *CourseResponse, err error) {
	op := s.ops.WithOperation(ctx, "update_course", userID)
	defer func() { op.LogResult(id, "course", err) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}
	role, err := s.requireStaff(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound, "failed to get course")
	}

	if req.Name != nil {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.CourseCode != nil {
		code := strings.TrimSpace(*req.CourseCode)
		if code != "" && code != course.CourseCode {
			exists, err := s.repo.Course().ExistsByCode(ctx, nil, code, &id)
			if err != nil {
				return nil, fmt.Errorf("failed to check course code: %w", err)
			}
			if exists {
				return nil, ErrCourseDuplicateCode
			}
		}
		course.CourseCode = code
	}
	if req.StartDate != nil {
		course.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		course.EndDate = req.EndDate
	}
	if err := checkDates(course.StartDate, course.EndDate); err != nil {
		return nil, err
	}

	if err := s.repo.Course().Update(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	s.invalidate(ctx, cache.TypeCourse, cache.OpUpdate, 0, id)

	return &CourseResponse{Course: course, Role: role}, nil
}

func (s *courseService) Delete(ctx context.Context, id uint, userID string) (err error) {
	op := s.ops.WithOperation(ctx, "delete_course", userID)
	defer func() { op.LogResult(id, "course", err) }()

	role, err := s.role(ctx, id, userID, "delete")
	if err != nil {
		return err
	}
	if role != models.CourseRoleOwner {
		return NewPermissionError(userID, id, "course", "delete", "only the owner can delete a course")
	}

	if err := s.repo.Course().Delete(ctx, nil, id); err != nil {
		return notFound(err, ErrCourseNotFound, "failed to delete course")
	}
	s.invalidate(ctx, cache.TypeCourse, cache.OpDelete, 0, id)
	return nil
}

// ===== MEMBERSHIP =====

func (s *courseService) ListMembers(ctx context.Context, courseID uint, userID string) ([]*models.CourseMember, error) {
	if _, err := s.role(ctx, courseID, userID, "read"); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, fmt.Sprintf("course:%d:members", courseID),
		func([]*models.CourseMember) []cache.Tag {
			return []cache.Tag{cache.ListTag(cache.TypeCourseMember, courseID)}
		},
		func(ctx context.Context) ([]*models.CourseMember, error) {
			members, err := s.repo.CourseMember().List(ctx, nil, courseID)
			if err != nil {
				return nil, fmt.Errorf("failed to list members: %w", err)
			}
			return members, nil
		})
}

func (s *courseService) AddMember(ctx context.Context, courseID uint, req *AddMemberRequest, userID string) (member *models.CourseMember, err error) {
	op := s.ops.WithOperation(ctx, "add_member", userID)
	defer func() { op.LogResult(courseID, "course", err) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}
	if _, err := s.requireStaff(ctx, courseID, userID, "manage_members"); err != nil {
		return nil, err
	}
	if req.Role == models.CourseRoleOwner {
		return nil, NewBusinessRuleError("single_owner", "a course has exactly one owner", map[string]interface{}{"course_id": courseID})
	}

	if _, err := s.repo.User().GetByID(ctx, nil, req.UserID); err != nil {
		return nil, notFound(err, ErrUserNotFound, "failed to get user")
	}
	if _, err := s.repo.CourseMember().Get(ctx, nil, courseID, req.UserID); err == nil {
		return nil, ErrMemberExists
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	member = &models.CourseMember{CourseID: courseID, UserID: req.UserID, Role: req.Role}
	if err := s.repo.CourseMember().Add(ctx, nil, member); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrMemberExists
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	s.invalidate(ctx, cache.TypeCourseMember, cache.OpCreate, courseID, 0)
	return member, nil
}

func (s *courseService) UpdateMemberRole(ctx context.Context, courseID uint, memberID string, req *UpdateMemberRoleRequest, userID string) (err error) {
	op := s.ops.WithOperation(ctx, "update_member_role", userID)
	defer func() { op.LogResult(courseID, "course", err) }()

	if err := s.validate(req); err != nil {
		return err
	}
	if _, err := s.requireStaff(ctx, courseID, userID, "manage_members"); err != nil {
		return err
	}

	member, err := s.repo.CourseMember().Get(ctx, nil, courseID, memberID)
	if err != nil {
		return notFound(err, ErrMemberNotFound, "failed to get member")
	}
	if member.Role == models.CourseRoleOwner || req.Role == models.CourseRoleOwner {
		return NewBusinessRuleError("single_owner", "the owner role cannot be assigned or removed", map[string]interface{}{"course_id": courseID})
	}

	if err := s.repo.CourseMember().UpdateRole(ctx, nil, courseID, memberID, req.Role); err != nil {
		return notFound(err, ErrMemberNotFound, "failed to update member role")
	}
	s.invalidate(ctx, cache.TypeCourseMember, cache.OpUpdate, courseID, 0)
	return nil
}

// RemoveMember lets staff remove anyone but the owner; any member may remove themselves.
func (s *courseService) RemoveMember(ctx context.Context, courseID uint, memberID string, userID string) (err error) {
	op := s.ops.WithOperation(ctx, "remove_member", userID)
	defer func() { op.LogResult(courseID, "course", err) }()

	if memberID == userID {
		if _, err := s.role(ctx, courseID, userID, "leave"); err != nil {
			return err
		}
	} else if _, err := s.requireStaff(ctx, courseID, userID, "manage_members"); err != nil {
		return err
	}

	member, err := s.repo.CourseMember().Get(ctx, nil, courseID, memberID)
	if err != nil {
		return notFound(err, ErrMemberNotFound, "failed to get member")
	}
	if member.Role == models.CourseRoleOwner {
		return NewBusinessRuleError("single_owner", "the owner cannot leave the course", map[string]interface{}{"course_id": courseID})
	}

	if err := s.repo.CourseMember().Remove(ctx, nil, courseID, memberID); err != nil {
		return notFound(err, ErrMemberNotFound, "failed to remove member")
	}
	s.invalidate(ctx, cache.TypeCourseMember, cache.OpDelete, courseID, 0)
	return nil
}

func courseID(c *CourseResponse) uint {
	if c == nil || c.Course == nil {
		return 0
	}
	return c.ID
}
