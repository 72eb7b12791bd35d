package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/services"
)

func (c *Client) GroupsQuery(courseID uint) Query[[]*models.Group] {
	path := fmt.Sprintf("/courses/%d/groups", courseID)
	return Query[[]*models.Group]{
		Key:  path,
		Tags: []cache.Tag{cache.ListTag(cache.TypeGroup, courseID)},
		Provides: func(groups []*models.Group) []cache.Tag {
			ids := make([]uint, 0, len(groups))
			for _, g := range groups {
				ids = append(ids, g.ID)
			}
			tags := cache.ListTags(cache.TypeGroup, courseID, ids...)
			// listed groups embed their members
			for _, id := range ids {
				tags = append(tags, cache.ListTag(cache.TypeGroupMember, id))
			}
			return tags
		},
		Load: load[[]*models.Group](c, path, nil),
	}
}

func (c *Client) GroupQuery(id uint) Query[*models.Group] {
	path := fmt.Sprintf("/groups/%d", id)
	return Query[*models.Group]{
		Key:  path,
		Tags: []cache.Tag{cache.EntityTag(cache.TypeGroup, id), cache.ListTag(cache.TypeGroupMember, id)},
		Load: load[*models.Group](c, path, nil),
	}
}

func (c *Client) ListGroups(ctx context.Context, courseID uint) ([]*models.Group, error) {
	return Get(ctx, c, c.GroupsQuery(courseID))
}

func (c *Client) GetGroup(ctx context.Context, id uint) (*models.Group, error) {
	return Get(ctx, c, c.GroupQuery(id))
}

func (c *Client) CreateGroup(ctx context.Context, courseID uint, req *services.CreateGroupRequest) (*models.Group, error) {
	var out models.Group
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/courses/%d/groups", courseID), nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeGroup, cache.OpCreate, courseID, out.ID)
	return &out, nil
}

func (c *Client) UpdateGroup(ctx context.Context, id uint, req *services.UpdateGroupRequest) (*models.Group, error) {
	var out models.Group
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/groups/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeGroup, cache.OpUpdate, out.CourseID, id)
	return &out, nil
}

func (c *Client) DeleteGroup(ctx context.Context, courseID, id uint) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/groups/%d", id), nil, nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, cache.TypeGroup, cache.OpDelete, courseID, id)
	return nil
}

func (c *Client) AddGroupMember(ctx context.Context, groupID uint, userID string) (*models.Group, error) {
	var out models.Group
	req := &services.AddGroupMemberRequest{UserID: userID}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/groups/%d/members", groupID), nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeGroupMember, cache.OpCreate, groupID, 0)
	return &out, nil
}

func (c *Client) RemoveGroupMember(ctx context.Context, groupID uint, userID string) error {
	path := fmt.Sprintf("/groups/%d/members/%s", groupID, url.PathEscape(userID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, cache.TypeGroupMember, cache.OpDelete, groupID, 0)
	return nil
}
