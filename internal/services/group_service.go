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

type groupService struct {
	base
}

func NewGroupService(repo repositories.Repository, tagCache *cache.TagCache, logger *slog.Logger, v *validator.Validator) GroupService {
	return &groupService{base: newBase(repo, tagCache, nil, logger, v, "group")}
}

func (s *groupService) Create(ctx context.Context, courseID uint, req *CreateGroupRequest, userID string) (group *models.Group, err error) {
	op := s.ops.WithOperation(ctx, "create_group", userID)
	defer func() {
		var id uint
		if group != nil {
			id = group.ID
		}
		op.LogResult(id, "group", err)
	}()

	if err := s.validate(req); err != nil {
		return nil, err
	}
	if _, err := s.requireStaff(ctx, courseID, userID, "create_group"); err != nil {
		return nil, err
	}

	members, err := s.checkMembers(ctx, courseID, req.MemberIDs)
	if err != nil {
		return nil, err
	}

	g := &models.Group{CourseID: courseID, Name: strings.TrimSpace(req.Name), Description: req.Description}
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Group().Create(ctx, tx, g); err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		for _, id := range members {
			if err := s.repo.Group().AddMember(ctx, tx, &models.GroupMember{GroupID: g.ID, UserID: id}); err != nil {
				return fmt.Errorf("failed to add group member: %w", err)
			}
			g.Members = append(g.Members, models.GroupMember{GroupID: g.ID, UserID: id})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.TypeGroup, cache.OpCreate, courseID, g.ID)
	return g, nil
}

// checkMembers drops duplicates and ensures every user belongs to the course.
func (s *groupService) checkMembers(ctx context.Context, courseID uint, userIDs []string) ([]string, error) {
	seen := make(map[string]bool, len(userIDs))
	var out []string
	var errs ValidationErrors
	for i, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.repo.CourseMember().Get(ctx, nil, courseID, id); err != nil {
			if !repositories.IsNotFoundError(err) {
				return nil, fmt.Errorf("failed to check membership: %w", err)
			}
			errs = append(errs, *NewValidationError(fmt.Sprintf("member_ids.%d", i), "is not a course member", id))
			continue
		}
		out = append(out, id)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func (s *groupService) load(ctx context.Context, id uint) (*models.Group, error) {
	return cache.Fetch(ctx, s.cache, fmt.Sprintf("group:%d", id),
		func(*models.Group) []cache.Tag {
			return []cache.Tag{cache.EntityTag(cache.TypeGroup, id), cache.ListTag(cache.TypeGroupMember, id)}
		},
		func(ctx context.Context) (*models.Group, error) {
			g, err := s.repo.Group().GetByID(ctx, nil, id)
			if err != nil {
				return nil, notFound(err, ErrGroupNotFound, "failed to get group")
			}
			return g, nil
		})
}

func (s *groupService) GetByID(ctx context.Context, id uint, userID string) (*models.Group, error) {
	g, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.role(ctx, g.CourseID, userID, "read"); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *groupService) List(ctx context.Context, courseID uint, userID string) ([]*models.Group, error) {
	if _, err := s.role(ctx, courseID, userID, "read"); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, fmt.Sprintf("course:%d:groups", courseID),
		func(items []*models.Group) []cache.Tag {
			tags := cache.ListTags(cache.TypeGroup, courseID, ids(items, func(g *models.Group) uint { return g.ID })...)
			for _, g := range items {
				tags = append(tags, cache.ListTag(cache.TypeGroupMember, g.ID))
			}
			return tags
		},
		func(ctx context.Context) ([]*models.Group, error) {
			items, err := s.repo.Group().ListByCourse(ctx, nil, courseID)
			if err != nil {
				return nil, fmt.Errorf("failed to list groups: %w", err)
			}
			return items, nil
		})
}

func (s *groupService) Update(ctx context.Context, id uint, req *UpdateGroupRequest, userID string) (*models.Group, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	g, err := s.repo.Group().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrGroupNotFound, "failed to get group")
	}
	if _, err := s.requireStaff(ctx, g.CourseID, userID, "update_group"); err != nil {
		return nil, err
	}

	if req.Name != nil {
		g.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		g.Description = *req.Description
	}
	if err := s.repo.Group().Update(ctx, nil, g); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	s.invalidate(ctx, cache.TypeGroup, cache.OpUpdate, g.CourseID, id)
	return g, nil
}

func (s *groupService) Delete(ctx context.Context, id uint, userID string) error {
	g, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.requireStaff(ctx, g.CourseID, userID, "delete_group"); err != nil {
		return err
	}
	if err := s.repo.Group().Delete(ctx, nil, id); err != nil {
		return notFound(err, ErrGroupNotFound, "failed to delete group")
	}
	s.invalidate(ctx, cache.TypeGroup, cache.OpDelete, g.CourseID, id)
	return nil
}

// ===== MEMBERSHIP =====

// AddMember lets staff add any course member; students may only join themselves.
func (s *groupService) AddMember(ctx context.Context, groupID uint, req *AddGroupMemberRequest, userID string) (*models.Group, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	g, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.canManage(ctx, g, req.UserID, userID, "join_group"); err != nil {
		return nil, err
	}
	if _, err := s.checkMembers(ctx, g.CourseID, []string{req.UserID}); err != nil {
		return nil, err
	}

	isMember, err := s.repo.Group().IsMember(ctx, nil, groupID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check group membership: %w", err)
	}
	if isMember {
		return nil, ErrGroupMemberExists
	}

	if err := s.repo.Group().AddMember(ctx, nil, &models.GroupMember{GroupID: groupID, UserID: req.UserID}); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrGroupMemberExists
		}
		return nil, fmt.Errorf("failed to add group member: %w", err)
	}
	s.invalidate(ctx, cache.TypeGroupMember, cache.OpCreate, groupID, 0)

	return s.load(ctx, groupID)
}

func (s *groupService) RemoveMember(ctx context.Context, groupID uint, memberID string, userID string) error {
	g, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.canManage(ctx, g, memberID, userID, "leave_group"); err != nil {
		return err
	}
	if err := s.repo.Group().RemoveMember(ctx, nil, groupID, memberID); err != nil {
		return notFound(err, ErrGroupMemberNotFound, "failed to remove group member")
	}
	s.invalidate(ctx, cache.TypeGroupMember, cache.OpDelete, groupID, 0)
	return nil
}

func (s *groupService) canManage(ctx context.Context, g *models.Group, targetID, userID, action string) error {
	role, err := s.role(ctx, g.CourseID, userID, action)
	if err != nil {
		return err
	}
	if !role.IsStaff() && targetID != userID {
		return NewPermissionError(userID, g.ID, "group", action, "students can only change their own membership")
	}
	return nil
}
