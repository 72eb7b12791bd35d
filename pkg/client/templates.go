package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/forms"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/services"
)

func (c *Client) TemplatesQuery(courseID uint) Query[[]*models.Template] {
	path := fmt.Sprintf("/courses/%d/templates", courseID)
	return Query[[]*models.Template]{
		Key:  path,
		Tags: []cache.Tag{cache.ListTag(cache.TypeTemplate, courseID)},
		Provides: func(templates []*models.Template) []cache.Tag {
			ids := make([]uint, 0, len(templates))
			for _, t := range templates {
				ids = append(ids, t.ID)
			}
			return cache.ListTags(cache.TypeTemplate, courseID, ids...)
		},
		Load: load[[]*models.Template](c, path, nil),
	}
}

func (c *Client) TemplateQuery(id uint) Query[*models.Template] {
	path := fmt.Sprintf("/templates/%d", id)
	return Query[*models.Template]{
		Key:      path,
		Tags:     entity(cache.TypeTemplate, id),
		Provides: func(*models.Template) []cache.Tag { return entity(cache.TypeTemplate, id) },
		Load:     load[*models.Template](c, path, nil),
	}
}

// SubmissionViewQuery reads the blank submission for a template; it follows
// the template so edits to the template refresh it.
func (c *Client) SubmissionViewQuery(id uint, overrides forms.SubmissionOverrides) Query[*forms.SubmissionView] {
	path := fmt.Sprintf("/templates/%d/submission-view", id)
	params := overrideValues(overrides)
	return Query[*forms.SubmissionView]{
		Key:      path + "?" + params.Encode(),
		Tags:     entity(cache.TypeTemplate, id),
		Provides: func(*forms.SubmissionView) []cache.Tag { return entity(cache.TypeTemplate, id) },
		Load:     load[*forms.SubmissionView](c, path, params),
	}
}

func (c *Client) ListTemplates(ctx context.Context, courseID uint) ([]*models.Template, error) {
	return Get(ctx, c, c.TemplatesQuery(courseID))
}

func (c *Client) GetTemplate(ctx context.Context, id uint) (*models.Template, error) {
	return Get(ctx, c, c.TemplateQuery(id))
}

func (c *Client) SubmissionView(ctx context.Context, id uint, overrides forms.SubmissionOverrides) (*forms.SubmissionView, error) {
	return Get(ctx, c, c.SubmissionViewQuery(id, overrides))
}

func (c *Client) CreateTemplate(ctx context.Context, courseID uint, req *services.CreateTemplateRequest) (*models.Template, error) {
	var out models.Template
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/courses/%d/templates", courseID), nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeTemplate, cache.OpCreate, courseID, out.ID)
	return &out, nil
}

func (c *Client) UpdateTemplate(ctx context.Context, id uint, req *services.UpdateTemplateRequest) (*models.Template, error) {
	return c.mutateTemplate(ctx, http.MethodPut, fmt.Sprintf("/templates/%d", id), req, cache.OpUpdate)
}

func (c *Client) DeleteTemplate(ctx context.Context, courseID, id uint) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/templates/%d", id), nil, nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, cache.TypeTemplate, cache.OpDelete, courseID, id)
	return nil
}

// Publish makes the template available to students, or withdraws it.
func (c *Client) Publish(ctx context.Context, id uint, publish bool) (*models.Template, error) {
	action := "publish"
	if !publish {
		action = "unpublish"
	}
	return c.mutateTemplate(ctx, http.MethodPost, fmt.Sprintf("/templates/%d/%s", id, action), nil, cache.OpPublish)
}

// ===== BUILDER =====

func (c *Client) AddField(ctx context.Context, id uint, req *services.AddFieldRequest) (*models.Template, error) {
	return c.mutateTemplate(ctx, http.MethodPost, fmt.Sprintf("/templates/%d/fields", id), req, cache.OpUpdate)
}

func (c *Client) UpdateField(ctx context.Context, id uint, index int, patch *forms.FieldPatch) (*models.Template, error) {
	return c.mutateTemplate(ctx, http.MethodPut, fmt.Sprintf("/templates/%d/fields/%d", id, index), patch, cache.OpUpdate)
}

func (c *Client) RemoveField(ctx context.Context, id uint, index int) (*models.Template, error) {
	return c.mutateTemplate(ctx, http.MethodDelete, fmt.Sprintf("/templates/%d/fields/%d", id, index), nil, cache.OpUpdate)
}

func (c *Client) ReorderFields(ctx context.Context, id uint, order []int) (*models.Template, error) {
	req := &services.ReorderFieldsRequest{Order: order}
	return c.mutateTemplate(ctx, http.MethodPut, fmt.Sprintf("/templates/%d/fields/reorder", id), req, cache.OpUpdate)
}

// MoveField moves the field at from to position to.
func (c *Client) MoveField(ctx context.Context, id uint, from, to int) (*models.Template, error) {
	req := &services.MoveFieldRequest{From: from, To: to}
	return c.mutateTemplate(ctx, http.MethodPut, fmt.Sprintf("/templates/%d/fields/move", id), req, cache.OpUpdate)
}

func (c *Client) mutateTemplate(ctx context.Context, method, path string, body interface{}, op cache.Operation) (*models.Template, error) {
	var out models.Template
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeTemplate, op, out.CourseID, out.ID)
	return &out, nil
}

func overrideValues(o forms.SubmissionOverrides) url.Values {
	params := url.Values{}
	if o.Name != nil {
		params.Set("name", *o.Name)
	}
	if o.Description != nil {
		params.Set("description", *o.Description)
	}
	if o.GroupID != nil {
		params.Set("group_id", strconv.FormatUint(uint64(*o.GroupID), 10))
	}
	if o.IsDraft != nil {
		params.Set("is_draft", strconv.FormatBool(*o.IsDraft))
	}
	if o.SubmissionType != nil {
		params.Set("submission_type", string(*o.SubmissionType))
	}
	return params
}
