package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type serviceManager struct {
	course     CourseService
	milestone  MilestoneService
	group      GroupService
	template   TemplateService
	submission SubmissionService
	comment    CommentService
	export     ExportService
	user       UserService
}

// Options configures the services built by NewServiceManager.
type Options struct {
	Cache          *cache.TagCache
	Publisher      events.EventPublisher
	Validator      *validator.Validator
	ExportLocation *time.Location
}

func NewServiceManager(repo repositories.Repository, logger *slog.Logger, opts Options) ServiceManager {
	v := opts.Validator
	if v == nil {
		v = validator.New()
	}
	return &serviceManager{
		course:     NewCourseService(repo, opts.Cache, logger, v),
		milestone:  NewMilestoneService(repo, opts.Cache, logger, v),
		group:      NewGroupService(repo, opts.Cache, logger, v),
		template:   NewTemplateService(repo, opts.Cache, opts.Publisher, logger, v),
		submission: NewSubmissionService(repo, opts.Cache, opts.Publisher, logger, v),
		comment:    NewCommentService(repo, opts.Cache, opts.Publisher, logger, v),
		export:     NewExportService(repo, opts.Cache, logger, v, opts.ExportLocation),
		user:       NewUserService(repo, logger),
	}
}

func (m *serviceManager) Course() CourseService         { return m.course }
func (m *serviceManager) Milestone() MilestoneService   { return m.milestone }
func (m *serviceManager) Group() GroupService           { return m.group }
func (m *serviceManager) Template() TemplateService     { return m.template }
func (m *serviceManager) Submission() SubmissionService { return m.submission }
func (m *serviceManager) Comment() CommentService       { return m.comment }
func (m *serviceManager) Export() ExportService         { return m.export }
func (m *serviceManager) User() UserService             { return m.user }
