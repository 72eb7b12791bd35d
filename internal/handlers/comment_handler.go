package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	BaseHandler
	commentService services.CommentService
}

func NewCommentHandler(commentService services.CommentService, logger utils.Logger) *CommentHandler {
	return &CommentHandler{
		BaseHandler:    NewBaseHandler(logger),
		commentService: commentService,
	}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}
	var req services.CreateCommentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), submissionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}

	comments, err := h.commentService.List(c.Request.Context(), submissionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "comment_id")
	if id == 0 {
		return
	}
	var req services.UpdateCommentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment soft deletes; the comment keeps its place in the thread
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "comment_id")
	if id == 0 {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
