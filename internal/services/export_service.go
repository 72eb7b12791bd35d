package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/export"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

const (
	ContentTypeZip  = "application/zip"
	ContentTypeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type exportService struct {
	base
	location *time.Location
}

// NewExportService renders timestamps in loc; nil means UTC.
func NewExportService(repo repositories.Repository, tagCache *cache.TagCache, logger *slog.Logger, v *validator.Validator, loc *time.Location) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{base: newBase(repo, tagCache, nil, logger, v, "export"), location: loc}
}

// ExportSubmissions writes every submission of the course, grouped by template
// shape, as a ZIP of CSV files or a single workbook.
func (s *exportService) ExportSubmissions(ctx context.Context, courseID uint, req *models.ExportRequest, userID string) (result *ExportResult, err error) {
	op := s.ops.WithOperation(ctx, "export_submissions", userID)
	defer func() { op.LogResult(courseID, "course", err) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}
	if _, err := s.requireStaff(ctx, courseID, userID, "export_submissions"); err != nil {
		return nil, err
	}
	course, err := s.course(ctx, courseID)
	if err != nil {
		return nil, err
	}

	submissions, _, err := s.repo.Submission().ListByCourse(ctx, nil, courseID, repositories.SubmissionFilters{
		TemplateID:   req.TemplateID,
		IncludeDraft: req.IncludeDraft,
		SortOrder:    "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}

	comments, err := s.repo.Comment().ListBySubmissions(ctx, nil, ids(submissions, func(sub *models.Submission) uint { return sub.ID }))
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	items := make([]models.SubmissionWithComments, len(submissions))
	for i, sub := range submissions {
		items[i] = models.SubmissionWithComments{Submission: sub, Comments: comments[sub.ID]}
	}
	groups := export.GroupSubmissions(items)

	name := export.SanitizeFilename(fmt.Sprintf("%s submissions %s", course.Name, time.Now().In(s.location).Format("2006-01-02")))
	var buf bytes.Buffer
	switch req.Format {
	case models.ExportXlsx:
		if err := export.WriteWorkbook(&buf, groups, s.location); err != nil {
			return nil, fmt.Errorf("failed to write workbook: %w", err)
		}
		result = &ExportResult{Filename: name + ".xlsx", ContentType: ContentTypeXlsx}
	case models.ExportZip, "":
		if err := export.WriteZip(&buf, groups, s.location); err != nil {
			return nil, fmt.Errorf("failed to write archive: %w", err)
		}
		result = &ExportResult{Filename: name + ".zip", ContentType: ContentTypeZip}
	default:
		return nil, ValidationErrors{*NewValidationError("format", "must be one of: zip xlsx", req.Format)}
	}
	result.Data = buf.Bytes()

	s.logger.Info("Submissions exported", "course_id", courseID, "submissions", len(items), "files", len(groups), "format", req.Format)
	return result, nil
}
