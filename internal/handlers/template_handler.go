package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/course-service/internal/forms"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	BaseHandler
	templateService services.TemplateService
}

func NewTemplateHandler(templateService services.TemplateService, logger utils.Logger) *TemplateHandler {
	return &TemplateHandler{
		BaseHandler:     NewBaseHandler(logger),
		templateService: templateService,
	}
}

// CreateTemplate creates a submission template in a course
// @Summary Create template
// @Description Field definitions are validated per attribute; errors carry paths like form_fields.2.choices
// @Tags templates
// @Accept json
// @Produce json
// @Param course_id path uint true "Course ID"
// @Param template body services.CreateTemplateRequest true "Template data"
// @Success 201 {object} models.Template
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /courses/{course_id}/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}
	var req services.CreateTemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.Create(c.Request.Context(), courseID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	templates, err := h.templateService.List(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "template_id")
	if id == 0 {
		return
	}

	template, err := h.templateService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "template_id")
	if id == 0 {
		return
	}
	var req services.UpdateTemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "template_id")
	if id == 0 {
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TemplateHandler) PublishTemplate(c *gin.Context) {
	h.setPublished(c, true)
}

func (h *TemplateHandler) UnpublishTemplate(c *gin.Context) {
	h.setPublished(c, false)
}

func (h *TemplateHandler) setPublished(c *gin.Context, publish bool) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "template_id")
	if id == 0 {
		return
	}

	template, err := h.templateService.Publish(c.Request.Context(), id, publish, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// ===== BUILDER OPERATIONS =====

// AddField inserts a field, appending when no index is given
// @Summary Add template field
// @Tags templates
// @Accept json
// @Produce json
// @Param template_id path uint true "Template ID"
// @Param field body services.AddFieldRequest true "Field"
// @Success 200 {object} models.Template
// @Failure 400 {object} ErrorResponse
// @Router /templates/{template_id}/fields [post]
func (h *TemplateHandler) AddField(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "template_id")
	if id == 0 {
		return
	}
	var req services.AddFieldRequest
	if !h.bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.AddField(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) UpdateField(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "template_id")
	if id == 0 {
		return
	}
	index, ok := h.parseIndexParam(c, "index")
	if !ok {
		return
	}
	var patch forms.FieldPatch
	if !h.bindJSON(c, &patch) {
		return
	}

	template, err := h.templateService.UpdateField(c.Request.Context(), id, index, &patch, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) RemoveField(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "template_id")
	if id == 0 {
		return
	}
	index, ok := h.parseIndexParam(c, "index")
	if !ok {
		return
	}

	template, err := h.templateService.RemoveField(c.Request.Context(), id, index, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) ReorderFields(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "template_id")
	if id == 0 {
		return
	}
	var req services.ReorderFieldsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.ReorderFields(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) MoveField(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "template_id")
	if id == 0 {
		return
	}
	var req services.MoveFieldRequest
	if !h.bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.MoveField(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// SubmissionView returns the blank submission for a template. Query
// parameters override the name, description, group and type.
func (h *TemplateHandler) SubmissionView(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "template_id")
	if id == 0 {
		return
	}
	var overrides forms.SubmissionOverrides
	if err := c.ShouldBindQuery(&overrides); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid query parameters", Details: err.Error(), Code: CodeBadRequest})
		return
	}

	view, err := h.templateService.SubmissionView(c.Request.Context(), id, overrides, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
