package services

import (
	"context"

	"github.com/SAP-F-2025/course-service/internal/forms"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, userID string) (*CourseResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*CourseResponse, error)
	List(ctx context.Context, filters repositories.CourseFilters, userID string) (*CourseListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateCourseRequest, userID string) (*CourseResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// Membership
	ListMembers(ctx context.Context, courseID uint, userID string) ([]*models.CourseMember, error)
	AddMember(ctx context.Context, courseID uint, req *AddMemberRequest, userID string) (*models.CourseMember, error)
	UpdateMemberRole(ctx context.Context, courseID uint, memberID string, req *UpdateMemberRoleRequest, userID string) error
	RemoveMember(ctx context.Context, courseID uint, memberID string, userID string) error
}

type MilestoneService interface {
	Create(ctx context.Context, courseID uint, req *CreateMilestoneRequest, userID string) (*models.Milestone, error)
	GetByID(ctx context.Context, courseID, id uint, userID string) (*models.Milestone, error)
	List(ctx context.Context, courseID uint, userID string) ([]*models.Milestone, error)
	Update(ctx context.Context, courseID, id uint, req *UpdateMilestoneRequest, userID string) (*models.Milestone, error)
	Delete(ctx context.Context, courseID, id uint, userID string) error
}

type GroupService interface {
	Create(ctx context.Context, courseID uint, req *CreateGroupRequest, userID string) (*models.Group, error)
	GetByID(ctx context.Context, id uint, userID string) (*models.Group, error)
	List(ctx context.Context, courseID uint, userID string) ([]*models.Group, error)
	Update(ctx context.Context, id uint, req *UpdateGroupRequest, userID string) (*models.Group, error)
	Delete(ctx context.Context, id uint, userID string) error

	AddMember(ctx context.Context, groupID uint, req *AddGroupMemberRequest, userID string) (*models.Group, error)
	RemoveMember(ctx context.Context, groupID uint, memberID string, userID string) error
}

type TemplateService interface {
	Create(ctx context.Context, courseID uint, req *CreateTemplateRequest, userID string) (*models.Template, error)
	GetByID(ctx context.Context, id uint, userID string) (*models.Template, error)
	List(ctx context.Context, courseID uint, userID string) ([]*models.Template, error)
	Update(ctx context.Context, id uint, req *UpdateTemplateRequest, userID string) (*models.Template, error)
	Delete(ctx context.Context, id uint, userID string) error
	Publish(ctx context.Context, id uint, publish bool, userID string) (*models.Template, error)

	// Builder operations
	AddField(ctx context.Context, id uint, req *AddFieldRequest, userID string) (*models.Template, error)
	UpdateField(ctx context.Context, id uint, index int, patch *forms.FieldPatch, userID string) (*models.Template, error)
	RemoveField(ctx context.Context, id uint, index int, userID string) (*models.Template, error)
	ReorderFields(ctx context.Context, id uint, req *ReorderFieldsRequest, userID string) (*models.Template, error)
	MoveField(ctx context.Context, id uint, req *MoveFieldRequest, userID string) (*models.Template, error)

	// SubmissionView returns the blank submission a member fills in
	SubmissionView(ctx context.Context, id uint, overrides forms.SubmissionOverrides, userID string) (*forms.SubmissionView, error)
}

type SubmissionService interface {
	Create(ctx context.Context, courseID uint, req *CreateSubmissionRequest, userID string) (*models.Submission, error)
	GetByID(ctx context.Context, id uint, userID string) (*models.Submission, error)
	List(ctx context.Context, courseID uint, req *ListSubmissionsRequest, userID string) (*SubmissionListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateSubmissionRequest, userID string) (*models.Submission, error)
	Delete(ctx context.Context, id uint, userID string) error

	// Form renders the submission's fields as widgets with any outstanding validation errors
	Form(ctx context.Context, id uint, userID string) (*SubmissionForm, error)
}

type CommentService interface {
	Create(ctx context.Context, submissionID uint, req *CreateCommentRequest, userID string) (*models.Comment, error)
	List(ctx context.Context, submissionID uint, userID string) ([]*models.Comment, error)
	Update(ctx context.Context, id uint, req *UpdateCommentRequest, userID string) (*models.Comment, error)
	Delete(ctx context.Context, id uint, userID string) error
}

type ExportService interface {
	ExportSubmissions(ctx context.Context, courseID uint, req *models.ExportRequest, userID string) (*ExportResult, error)
}

type UserService interface {
	// Sync refreshes the local read model from a verified identity
	Sync(ctx context.Context, identity *Identity) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ServiceManager exposes every service to the transport layer
type ServiceManager interface {
	Course() CourseService
	Milestone() MilestoneService
	Group() GroupService
	Template() TemplateService
	Submission() SubmissionService
	Comment() CommentService
	Export() ExportService
	User() UserService
}
