package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	BaseHandler
	groupService services.GroupService
}

func NewGroupHandler(groupService services.GroupService, logger utils.Logger) *GroupHandler {
	return &GroupHandler{
		BaseHandler:  NewBaseHandler(logger),
		groupService: groupService,
	}
}

// CreateGroup creates a group in a course with its initial members
// @Summary Create group
// @Tags groups
// @Accept json
// @Produce json
// @Param course_id path uint true "Course ID"
// @Param group body services.CreateGroupRequest true "Group data"
// @Success 201 {object} models.Group
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses/{course_id}/groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}
	var req services.CreateGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), courseID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	groups, err := h.groupService.List(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "group_id")
	if id == 0 {
		return
	}

	group, err := h.groupService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "group_id")
	if id == 0 {
		return
	}
	var req services.UpdateGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	group, err := h.groupService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "group_id")
	if id == 0 {
		return
	}

	if err := h.groupService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddMember adds a user to a group. Students may only add themselves.
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "group_id")
	if id == 0 {
		return
	}
	var req services.AddGroupMemberRequest
	if !h.bindJSON(c, &req) {
		return
	}

	group, err := h.groupService.AddMember(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "group_id")
	if id == 0 {
		return
	}

	if err := h.groupService.RemoveMember(c.Request.Context(), id, c.Param("user_id"), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
