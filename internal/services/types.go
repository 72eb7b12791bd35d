package services

import (
	"time"

	"github.com/SAP-F-2025/course-service/internal/forms"
	"github.com/SAP-F-2025/course-service/internal/models"
)

// ===== COURSE =====

type CreateCourseRequest struct {
	Name        string     `json:"name" validate:"required,not_blank,max=200"`
	Description string     `json:"description"`
	CourseCode  string     `json:"course_code" validate:"max=50"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type UpdateCourseRequest struct {
	Name        *string    `json:"name" validate:"omitempty,not_blank,max=200"`
	Description *string    `json:"description"`
	CourseCode  *string    `json:"course_code" validate:"omitempty,max=50"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// CourseResponse is a course together with the caller's role in it
type CourseResponse struct {
	*models.Course
	Role models.CourseRole `json:"role"`
}

type CourseListResponse struct {
	Courses []*CourseResponse `json:"courses"`
	Total   int64             `json:"total"`
}

type AddMemberRequest struct {
	UserID string            `json:"user_id" validate:"required,not_blank"`
	Role   models.CourseRole `json:"role" validate:"required,course_role"`
}

type UpdateMemberRoleRequest struct {
	Role models.CourseRole `json:"role" validate:"required,course_role"`
}

// ===== MILESTONE =====

type CreateMilestoneRequest struct {
	Name        string     `json:"name" validate:"required,not_blank,max=200"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type UpdateMilestoneRequest struct {
	Name        *string    `json:"name" validate:"omitempty,not_blank,max=200"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// ===== GROUP =====

type CreateGroupRequest struct {
	Name        string   `json:"name" validate:"required,not_blank,max=200"`
	Description string   `json:"description"`
	MemberIDs   []string `json:"member_ids" validate:"dive,not_blank"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name" validate:"omitempty,not_blank,max=200"`
	Description *string `json:"description"`
}

type AddGroupMemberRequest struct {
	UserID string `json:"user_id" validate:"required,not_blank"`
}

// ===== TEMPLATE =====

type CreateTemplateRequest struct {
	Name           string                `json:"name" validate:"required,not_blank,max=200"`
	Description    string                `json:"description"`
	SubmissionType models.SubmissionType `json:"submission_type" validate:"required,submission_type"`
	IsPublished    bool                  `json:"is_published"`
	FormFields     []models.FormField    `json:"form_fields"`
}

// UpdateTemplateRequest replaces the given attributes; nil FormFields keeps the current fields
type UpdateTemplateRequest struct {
	Name           *string                `json:"name" validate:"omitempty,not_blank,max=200"`
	Description    *string                `json:"description"`
	SubmissionType *models.SubmissionType `json:"submission_type" validate:"omitempty,submission_type"`
	FormFields     []models.FormField     `json:"form_fields"`
}

type AddFieldRequest struct {
	Field models.FormField `json:"field"`
	// Index inserts at the position; nil appends
	Index *int `json:"index" validate:"omitempty,min=0"`
}

type ReorderFieldsRequest struct {
	Order []int `json:"order" validate:"required,dive,min=0"`
}

// MoveFieldRequest moves one field; the others keep their relative order.
type MoveFieldRequest struct {
	From int `json:"from" validate:"min=0"`
	To   int `json:"to" validate:"min=0"`
}

// ===== SUBMISSION =====

type CreateSubmissionRequest struct {
	TemplateID       uint                       `json:"template_id" validate:"required"`
	Name             *string                    `json:"name" validate:"omitempty,not_blank,max=200"`
	Description      *string                    `json:"description"`
	SubmissionType   *models.SubmissionType     `json:"submission_type" validate:"omitempty,submission_type"`
	GroupID          *uint                      `json:"group_id"`
	IsDraft          bool                       `json:"is_draft"`
	FormResponseData []models.FormResponseField `json:"form_response_data"`
}

// UpdateSubmissionRequest edits a submission; nil FormResponseData keeps the current answers
type UpdateSubmissionRequest struct {
	Name             *string                    `json:"name" validate:"omitempty,not_blank,max=200"`
	Description      *string                    `json:"description"`
	IsDraft          *bool                      `json:"is_draft"`
	FormResponseData []models.FormResponseField `json:"form_response_data"`
}

type ListSubmissionsRequest struct {
	TemplateID   *uint `form:"template_id"`
	GroupID      *uint `form:"group_id"`
	Mine         bool  `form:"mine"`
	IncludeDraft bool  `form:"include_draft"`
	Page         int   `form:"page"`
	Size         int   `form:"size"`
}

type SubmissionListResponse struct {
	Submissions []*models.Submission `json:"submissions"`
	Total       int64                `json:"total"`
}

// SubmissionForm is a submission rendered for display or editing
type SubmissionForm struct {
	Submission *models.Submission `json:"submission"`
	ReadOnly   bool               `json:"read_only"`
	Widgets    []forms.Widget     `json:"widgets"`
	Errors     ValidationErrors   `json:"errors,omitempty"`
}

// ===== COMMENT =====

type CreateCommentRequest struct {
	FieldIndex int    `json:"field_index" validate:"min=0"`
	Content    string `json:"content" validate:"required,not_blank"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,not_blank"`
}

// ===== EXPORT =====

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ===== USER =====

// Identity is the authenticated caller as asserted by the identity provider
type Identity struct {
	UserID   string
	FullName string
	Email    string
	IsAdmin  bool
}
