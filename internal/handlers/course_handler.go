package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// CreateCourse creates a course owned by the caller
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CreateCourseRequest true "Course data"
// @Success 201 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req services.CreateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// GetCourse retrieves a course the caller is a member of
// @Summary Get course
// @Tags courses
// @Produce json
// @Param course_id path uint true "Course ID"
// @Success 200 {object} services.CourseResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{course_id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "course_id")
	if id == 0 {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// ListCourses lists the caller's courses
// @Summary List courses
// @Tags courses
// @Produce json
// @Param q query string false "Name or code filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} services.CourseListResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", 20)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	courses, err := h.courseService.List(c.Request.Context(), repositories.CourseFilters{
		Query:  c.Query("q"),
		Limit:  size,
		Offset: (page - 1) * size,
	}, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "course_id")
	if id == 0 {
		return
	}
	var req services.UpdateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "course_id")
	if id == 0 {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== MEMBERSHIP =====

func (h *CourseHandler) ListMembers(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "course_id")
	if id == 0 {
		return
	}

	members, err := h.courseService.ListMembers(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// AddMember enrols a user in the course
// @Summary Add course member
// @Tags courses
// @Accept json
// @Produce json
// @Param course_id path uint true "Course ID"
// @Param member body services.AddMemberRequest true "Member"
// @Success 201 {object} models.CourseMember
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /courses/{course_id}/members [post]
func (h *CourseHandler) AddMember(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "course_id")
	if id == 0 {
		return
	}
	var req services.AddMemberRequest
	if !h.bindJSON(c, &req) {
		return
	}

	member, err := h.courseService.AddMember(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.LogRequest(c, "Course member added", "course_id", id, "member_id", req.UserID)
	c.JSON(http.StatusCreated, member)
}

func (h *CourseHandler) UpdateMemberRole(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "course_id")
	if id == 0 {
		return
	}
	var req services.UpdateMemberRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.courseService.UpdateMemberRole(c.Request.Context(), id, c.Param("user_id"), &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CourseHandler) RemoveMember(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "course_id")
	if id == 0 {
		return
	}

	if err := h.courseService.RemoveMember(c.Request.Context(), id, c.Param("user_id"), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	value, err := strconv.Atoi(c.Query(param))
	if err != nil {
		return defaultValue
	}
	return value
}
