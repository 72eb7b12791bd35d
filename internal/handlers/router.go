package handlers

import (
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	courseHandler     *CourseHandler
	milestoneHandler  *MilestoneHandler
	groupHandler      *GroupHandler
	templateHandler   *TemplateHandler
	submissionHandler *SubmissionHandler
	commentHandler    *CommentHandler
	userHandler       *UserHandler

	auth gin.HandlerFunc
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	verifier TokenVerifier,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		courseHandler:     NewCourseHandler(serviceManager.Course(), logger),
		milestoneHandler:  NewMilestoneHandler(serviceManager.Milestone(), logger),
		groupHandler:      NewGroupHandler(serviceManager.Group(), logger),
		templateHandler:   NewTemplateHandler(serviceManager.Template(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), serviceManager.Export(), logger),
		commentHandler:    NewCommentHandler(serviceManager.Comment(), logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		auth:              AuthMiddleware(verifier, serviceManager.User(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1", hm.auth)
	{
		v1.GET("/me", hm.userHandler.GetCurrentUser)
		v1.GET("/users/:user_id", hm.userHandler.GetUser)

		courses := v1.Group("/courses")
		{
			courses.POST("", hm.courseHandler.CreateCourse)
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:course_id", hm.courseHandler.GetCourse)
			courses.PUT("/:course_id", hm.courseHandler.UpdateCourse)
			courses.DELETE("/:course_id", hm.courseHandler.DeleteCourse)

			// Membership
			courses.GET("/:course_id/members", hm.courseHandler.ListMembers)
			courses.POST("/:course_id/members", hm.courseHandler.AddMember)
			courses.PUT("/:course_id/members/:user_id", hm.courseHandler.UpdateMemberRole)
			courses.DELETE("/:course_id/members/:user_id", hm.courseHandler.RemoveMember)

			// Milestones
			courses.POST("/:course_id/milestones", hm.milestoneHandler.CreateMilestone)
			courses.GET("/:course_id/milestones", hm.milestoneHandler.ListMilestones)
			courses.GET("/:course_id/milestones/:milestone_id", hm.milestoneHandler.GetMilestone)
			courses.PUT("/:course_id/milestones/:milestone_id", hm.milestoneHandler.UpdateMilestone)
			courses.DELETE("/:course_id/milestones/:milestone_id", hm.milestoneHandler.DeleteMilestone)

			// Course-scoped collections
			courses.POST("/:course_id/groups", hm.groupHandler.CreateGroup)
			courses.GET("/:course_id/groups", hm.groupHandler.ListGroups)
			courses.POST("/:course_id/templates", hm.templateHandler.CreateTemplate)
			courses.GET("/:course_id/templates", hm.templateHandler.ListTemplates)
			courses.POST("/:course_id/submissions", hm.submissionHandler.CreateSubmission)
			courses.GET("/:course_id/submissions", hm.submissionHandler.ListSubmissions)
			courses.GET("/:course_id/submissions/export", hm.submissionHandler.ExportSubmissions)
		}

		groups := v1.Group("/groups")
		{
			groups.GET("/:group_id", hm.groupHandler.GetGroup)
			groups.PUT("/:group_id", hm.groupHandler.UpdateGroup)
			groups.DELETE("/:group_id", hm.groupHandler.DeleteGroup)
			groups.POST("/:group_id/members", hm.groupHandler.AddMember)
			groups.DELETE("/:group_id/members/:user_id", hm.groupHandler.RemoveMember)
		}

		templates := v1.Group("/templates")
		{
			templates.GET("/:template_id", hm.templateHandler.GetTemplate)
			templates.PUT("/:template_id", hm.templateHandler.UpdateTemplate)
			templates.DELETE("/:template_id", hm.templateHandler.DeleteTemplate)
			templates.POST("/:template_id/publish", hm.templateHandler.PublishTemplate)
			templates.POST("/:template_id/unpublish", hm.templateHandler.UnpublishTemplate)
			templates.GET("/:template_id/submission-view", hm.templateHandler.SubmissionView)

			// Builder operations
			templates.POST("/:template_id/fields", hm.templateHandler.AddField)
			templates.PUT("/:template_id/fields/reorder", hm.templateHandler.ReorderFields)
			templates.PUT("/:template_id/fields/move", hm.templateHandler.MoveField)
			templates.PUT("/:template_id/fields/:index", hm.templateHandler.UpdateField)
			templates.DELETE("/:template_id/fields/:index", hm.templateHandler.RemoveField)
		}

		submissions := v1.Group("/submissions")
		{
			submissions.GET("/:submission_id", hm.submissionHandler.GetSubmission)
			submissions.PUT("/:submission_id", hm.submissionHandler.UpdateSubmission)
			submissions.DELETE("/:submission_id", hm.submissionHandler.DeleteSubmission)
			submissions.GET("/:submission_id/form", hm.submissionHandler.GetForm)

			// Comments
			submissions.GET("/:submission_id/comments", hm.commentHandler.ListComments)
			submissions.POST("/:submission_id/comments", hm.commentHandler.CreateComment)
			submissions.PUT("/:submission_id/comments/:comment_id", hm.commentHandler.UpdateComment)
			submissions.DELETE("/:submission_id/comments/:comment_id", hm.commentHandler.DeleteComment)
		}
	}
}
