package handlers

import (
	"mime"
	"net/http"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	exportService     services.ExportService
}

func NewSubmissionHandler(submissionService services.SubmissionService, exportService services.ExportService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		exportService:     exportService,
	}
}

// CreateSubmission fills in a published template
// @Summary Create submission
// @Description Drafts skip required checks; answer errors carry paths like form_response_data.0.response
// @Tags submissions
// @Accept json
// @Produce json
// @Param course_id path uint true "Course ID"
// @Param submission body services.CreateSubmissionRequest true "Submission data"
// @Success 201 {object} models.Submission
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /courses/{course_id}/submissions [post]
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}
	var req services.CreateSubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	submission, err := h.submissionService.Create(c.Request.Context(), courseID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, submission)
}

// ListSubmissions lists the submissions visible to the caller
// @Summary List submissions
// @Tags submissions
// @Produce json
// @Param course_id path uint true "Course ID"
// @Param template_id query uint false "Template filter"
// @Param group_id query uint false "Group filter"
// @Param mine query bool false "Only the caller's submissions"
// @Param include_draft query bool false "Include drafts"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} services.SubmissionListResponse
// @Router /courses/{course_id}/submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}
	var req services.ListSubmissionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid query parameters", Details: err.Error(), Code: CodeBadRequest})
		return
	}

	submissions, err := h.submissionService.List(c.Request.Context(), courseID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submissions)
}

func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "submission_id")
	if id == 0 {
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

func (h *SubmissionHandler) UpdateSubmission(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "submission_id")
	if id == 0 {
		return
	}
	var req services.UpdateSubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	submission, err := h.submissionService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "submission_id")
	if id == 0 {
		return
	}

	if err := h.submissionService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetForm renders the submission as form widgets
func (h *SubmissionHandler) GetForm(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "submission_id")
	if id == 0 {
		return
	}

	form, err := h.submissionService.Form(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// ExportSubmissions downloads the course's submissions
// @Summary Export submissions
// @Description One CSV per template shape inside a ZIP, or one sheet per shape in an xlsx workbook
// @Tags submissions
// @Produce application/zip
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param course_id path uint true "Course ID"
// @Param format query string false "zip or xlsx" default(zip)
// @Param template_id query uint false "Template filter"
// @Param include_draft query bool false "Include drafts"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Router /courses/{course_id}/submissions/export [get]
func (h *SubmissionHandler) ExportSubmissions(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}
	var req models.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid query parameters", Details: err.Error(), Code: CodeBadRequest})
		return
	}

	result, err := h.exportService.ExportSubmissions(c.Request.Context(), courseID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename}))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
