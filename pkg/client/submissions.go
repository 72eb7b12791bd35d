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

// ===== SUBMISSIONS =====

func (c *Client) SubmissionsQuery(courseID uint, req services.ListSubmissionsRequest) Query[*services.SubmissionListResponse] {
	path := fmt.Sprintf("/courses/%d/submissions", courseID)
	params := listValues(req)
	return Query[*services.SubmissionListResponse]{
		Key:  path + "?" + params.Encode(),
		Tags: []cache.Tag{cache.ListTag(cache.TypeSubmission, courseID)},
		Provides: func(r *services.SubmissionListResponse) []cache.Tag {
			ids := make([]uint, 0, len(r.Submissions))
			for _, s := range r.Submissions {
				ids = append(ids, s.ID)
			}
			return cache.ListTags(cache.TypeSubmission, courseID, ids...)
		},
		Load: load[*services.SubmissionListResponse](c, path, params),
	}
}

func (c *Client) SubmissionQuery(id uint) Query[*models.Submission] {
	path := fmt.Sprintf("/submissions/%d", id)
	return Query[*models.Submission]{
		Key:      path,
		Tags:     entity(cache.TypeSubmission, id),
		Provides: func(*models.Submission) []cache.Tag { return entity(cache.TypeSubmission, id) },
		Load:     load[*models.Submission](c, path, nil),
	}
}

// FormQuery reads the submission rendered as widgets.
func (c *Client) FormQuery(id uint) Query[*services.SubmissionForm] {
	path := fmt.Sprintf("/submissions/%d/form", id)
	return Query[*services.SubmissionForm]{
		Key:      path,
		Tags:     entity(cache.TypeSubmission, id),
		Provides: func(*services.SubmissionForm) []cache.Tag { return entity(cache.TypeSubmission, id) },
		Load:     load[*services.SubmissionForm](c, path, nil),
	}
}

func (c *Client) ListSubmissions(ctx context.Context, courseID uint, req services.ListSubmissionsRequest) (*services.SubmissionListResponse, error) {
	return Get(ctx, c, c.SubmissionsQuery(courseID, req))
}

func (c *Client) GetSubmission(ctx context.Context, id uint) (*models.Submission, error) {
	return Get(ctx, c, c.SubmissionQuery(id))
}

func (c *Client) GetForm(ctx context.Context, id uint) (*services.SubmissionForm, error) {
	return Get(ctx, c, c.FormQuery(id))
}

func (c *Client) CreateSubmission(ctx context.Context, courseID uint, req *services.CreateSubmissionRequest) (*models.Submission, error) {
	var out models.Submission
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/courses/%d/submissions", courseID), nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeSubmission, cache.OpCreate, courseID, out.ID)
	return &out, nil
}

// UpdateSubmission invalidates only that submission; lists holding it refetch
// through its entity tag.
func (c *Client) UpdateSubmission(ctx context.Context, id uint, req *services.UpdateSubmissionRequest) (*models.Submission, error) {
	var out models.Submission
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/submissions/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeSubmission, cache.OpUpdate, out.CourseID, id)
	return &out, nil
}

func (c *Client) DeleteSubmission(ctx context.Context, courseID, id uint) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/submissions/%d", id), nil, nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, cache.TypeSubmission, cache.OpDelete, courseID, id)
	return nil
}

// Export downloads the course's submissions as a ZIP of CSV files or a workbook.
func (c *Client) Export(ctx context.Context, courseID uint, req models.ExportRequest) (*Download, error) {
	params := url.Values{}
	if req.Format != "" {
		params.Set("format", string(req.Format))
	}
	if req.TemplateID != nil {
		params.Set("template_id", strconv.FormatUint(uint64(*req.TemplateID), 10))
	}
	if req.IncludeDraft {
		params.Set("include_draft", "true")
	}
	return c.download(ctx, fmt.Sprintf("/courses/%d/submissions/export", courseID), params)
}

// ===== COMMENTS =====

func (c *Client) CommentsQuery(submissionID uint) Query[[]*models.Comment] {
	path := fmt.Sprintf("/submissions/%d/comments", submissionID)
	return Query[[]*models.Comment]{
		Key:  path,
		Tags: []cache.Tag{cache.ListTag(cache.TypeComment, submissionID)},
		Provides: func(comments []*models.Comment) []cache.Tag {
			ids := make([]uint, 0, len(comments))
			for _, cm := range comments {
				ids = append(ids, cm.ID)
			}
			return cache.ListTags(cache.TypeComment, submissionID, ids...)
		},
		Load: load[[]*models.Comment](c, path, nil),
	}
}

func (c *Client) ListComments(ctx context.Context, submissionID uint) ([]*models.Comment, error) {
	return Get(ctx, c, c.CommentsQuery(submissionID))
}

func (c *Client) CreateComment(ctx context.Context, submissionID uint, req *services.CreateCommentRequest) (*models.Comment, error) {
	var out models.Comment
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/submissions/%d/comments", submissionID), nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeComment, cache.OpCreate, submissionID, out.ID)
	return &out, nil
}

func (c *Client) UpdateComment(ctx context.Context, submissionID, id uint, content string) (*models.Comment, error) {
	var out models.Comment
	path := fmt.Sprintf("/submissions/%d/comments/%d", submissionID, id)
	if err := c.do(ctx, http.MethodPut, path, nil, &services.UpdateCommentRequest{Content: content}, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.TypeComment, cache.OpUpdate, submissionID, id)
	return &out, nil
}

func (c *Client) DeleteComment(ctx context.Context, submissionID, id uint) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/submissions/%d/comments/%d", submissionID, id), nil, nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, cache.TypeComment, cache.OpDelete, submissionID, id)
	return nil
}

func listValues(req services.ListSubmissionsRequest) url.Values {
	params := url.Values{}
	if req.TemplateID != nil {
		params.Set("template_id", strconv.FormatUint(uint64(*req.TemplateID), 10))
	}
	if req.GroupID != nil {
		params.Set("group_id", strconv.FormatUint(uint64(*req.GroupID), 10))
	}
	if req.Mine {
		params.Set("mine", "true")
	}
	if req.IncludeDraft {
		params.Set("include_draft", "true")
	}
	if req.Page > 0 {
		params.Set("page", strconv.Itoa(req.Page))
	}
	if req.Size > 0 {
		params.Set("size", strconv.Itoa(req.Size))
	}
	return params
}
