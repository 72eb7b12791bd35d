package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/services"
)

// ===== COURSES =====

func (c *Client) CoursesQuery(q string, page, size int) Query[*services.CourseListResponse] {
	params := url.Values{}
	if q != "" {
		params.Set("q", q)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		params.Set("size", strconv.Itoa(size))
	}
	return Query[*services.CourseListResponse]{
		Key:  "courses?" + params.Encode(),
		Tags: []cache.Tag{cache.ListTag(cache.TypeCourse, 0)},
		Provides: func(r *services.CourseListResponse) []cache.Tag {
			ids := make([]uint, 0, len(r.Courses))
			for _, course := range r.Courses {
				ids = append(ids, course.ID)
			}
			return cache.ListTags(cache.TypeCourse, 0, ids...)
		},
		Load: load[*services.CourseListResponse](c, "/courses", params),
	}
}

func (c *Client) CourseQuery(id uint) Query[*services.CourseResponse] {
	path := fmt.Sprintf("/courses/%d", id)
	return Query[*services.CourseResponse]{
		Key:      path,
		Tags:     entity(cache.TypeCourse, id),
		Provides: func(*services.CourseResponse) []cache.Tag { return entity(cache.TypeCourse, id) },
		Load:     load[*services.CourseResponse](c, path, nil),
	}
}

func (c *Client) ListCourses(ctx context.Context, q string, page, size int) (*services.CourseListResponse, error) {
	return Get(ctx, c, c.CoursesQuery(q, page, size))
}

func (c *Client) GetCourse(ctx context.Context, id uint) (*services.CourseResponse, error) {
	return Get(ctx, c, c.CourseQuery(id))
}

func (c *Client) CreateCourse(ctx context.Context, req *services.CreateCourseRequest) (*services.CourseResponse, error) {
	var out services.CourseResponse
	if err := c.do(ctx, http.MethodPost, "/courses", nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeCourse, cache.OpCreate, 0, out.ID)
	return &out, nil
}

func (c *Client) UpdateCourse(ctx context.Context, id uint, req *services.UpdateCourseRequest) (*services.CourseResponse, error) {
	var out services.CourseResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/courses/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeCourse, cache.OpUpdate, 0, id)
	return &out, nil
}

func (c *Client) DeleteCourse(ctx context.Context, id uint) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/courses/%d", id), nil, nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, cache.TypeCourse, cache.OpDelete, 0, id)
	return nil
}

// ===== MEMBERS =====

func (c *Client) MembersQuery(courseID uint) Query[[]*models.CourseMember] {
	path := fmt.Sprintf("/courses/%d/members", courseID)
	return Query[[]*models.CourseMember]{
		Key:  path,
		Tags: []cache.Tag{cache.ListTag(cache.TypeCourseMember, courseID)},
		Provides: func([]*models.CourseMember) []cache.Tag {
			return []cache.Tag{cache.ListTag(cache.TypeCourseMember, courseID)}
		},
		Load: load[[]*models.CourseMember](c, path, nil),
	}
}

func (c *Client) ListMembers(ctx context.Context, courseID uint) ([]*models.CourseMember, error) {
	return Get(ctx, c, c.MembersQuery(courseID))
}

func (c *Client) AddMember(ctx context.Context, courseID uint, req *services.AddMemberRequest) (*models.CourseMember, error) {
	var out models.CourseMember
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/courses/%d/members", courseID), nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeCourseMember, cache.OpCreate, courseID, 0)
	return &out, nil
}

func (c *Client) UpdateMemberRole(ctx context.Context, courseID uint, userID string, role models.CourseRole) error {
	path := fmt.Sprintf("/courses/%d/members/%s", courseID, url.PathEscape(userID))
	if err := c.do(ctx, http.MethodPut, path, nil, &services.UpdateMemberRoleRequest{Role: role}, nil); err != nil {
		return err
	}
	c.invalidate(ctx, cache.TypeCourseMember, cache.OpUpdate, courseID, 0)
	return nil
}

func (c *Client) RemoveMember(ctx context.Context, courseID uint, userID string) error {
	path := fmt.Sprintf("/courses/%d/members/%s", courseID, url.PathEscape(userID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, cache.TypeCourseMember, cache.OpDelete, courseID, 0)
	return nil
}

// ===== MILESTONES =====

func (c *Client) MilestonesQuery(courseID uint) Query[[]*models.Milestone] {
	path := fmt.Sprintf("/courses/%d/milestones", courseID)
	return Query[[]*models.Milestone]{
		Key:  path,
		Tags: []cache.Tag{cache.ListTag(cache.TypeMilestone, courseID)},
		Provides: func(ms []*models.Milestone) []cache.Tag {
			ids := make([]uint, 0, len(ms))
			for _, m := range ms {
				ids = append(ids, m.ID)
			}
			return cache.ListTags(cache.TypeMilestone, courseID, ids...)
		},
		Load: load[[]*models.Milestone](c, path, nil),
	}
}

func (c *Client) ListMilestones(ctx context.Context, courseID uint) ([]*models.Milestone, error) {
	return Get(ctx, c, c.MilestonesQuery(courseID))
}

func (c *Client) GetMilestone(ctx context.Context, courseID, id uint) (*models.Milestone, error) {
	path := fmt.Sprintf("/courses/%d/milestones/%d", courseID, id)
	return Get(ctx, c, Query[*models.Milestone]{
		Key:      path,
		Tags:     entity(cache.TypeMilestone, id),
		Provides: func(*models.Milestone) []cache.Tag { return entity(cache.TypeMilestone, id) },
		Load:     load[*models.Milestone](c, path, nil),
	})
}

func (c *Client) CreateMilestone(ctx context.Context, courseID uint, req *services.CreateMilestoneRequest) (*models.Milestone, error) {
	var out models.Milestone
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/courses/%d/milestones", courseID), nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeMilestone, cache.OpCreate, courseID, out.ID)
	return &out, nil
}

func (c *Client) UpdateMilestone(ctx context.Context, courseID, id uint, req *services.UpdateMilestoneRequest) (*models.Milestone, error) {
	var out models.Milestone
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/courses/%d/milestones/%d", courseID, id), nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeMilestone, cache.OpUpdate, courseID, id)
	return &out, nil
}

func (c *Client) DeleteMilestone(ctx context.Context, courseID, id uint) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/courses/%d/milestones/%d", courseID, id), nil, nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, cache.TypeMilestone, cache.OpDelete, courseID, id)
	return nil
}

// ===== USERS =====

// Me returns the signed-in user as the server knows them.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
