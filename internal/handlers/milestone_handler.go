package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type MilestoneHandler struct {
	BaseHandler
	milestoneService services.MilestoneService
}

func NewMilestoneHandler(milestoneService services.MilestoneService, logger utils.Logger) *MilestoneHandler {
	return &MilestoneHandler{
		BaseHandler:      NewBaseHandler(logger),
		milestoneService: milestoneService,
	}
}

func (h *MilestoneHandler) CreateMilestone(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}
	var req services.CreateMilestoneRequest
	if !h.bindJSON(c, &req) {
		return
	}

	milestone, err := h.milestoneService.Create(c.Request.Context(), courseID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, milestone)
}

func (h *MilestoneHandler) GetMilestone(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}
	id := h.parseIDParam(c, "milestone_id")
	if id == 0 {
		return
	}

	milestone, err := h.milestoneService.GetByID(c.Request.Context(), courseID, id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}

func (h *MilestoneHandler) ListMilestones(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	milestones, err := h.milestoneService.List(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestones)
}

func (h *MilestoneHandler) UpdateMilestone(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}
	id := h.parseIDParam(c, "milestone_id")
	if id == 0 {
		return
	}
	var req services.UpdateMilestoneRequest
	if !h.bindJSON(c, &req) {
		return
	}

	milestone, err := h.milestoneService.Update(c.Request.Context(), courseID, id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}

func (h *MilestoneHandler) DeleteMilestone(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}
	id := h.parseIDParam(c, "milestone_id")
	if id == 0 {
		return
	}

	if err := h.milestoneService.Delete(c.Request.Context(), courseID, id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
