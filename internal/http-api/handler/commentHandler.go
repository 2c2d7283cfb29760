package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/middleware"
	"reviewdb/internal/http-api/service"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterRoutes registers comment routes nested under a review
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	comments := router.Group("/titles/:title_id/reviews/:review_id/comments")
	{
		comments.GET("", h.List)
		comments.GET("/:comment_id", h.Get)
		comments.POST("", auth, h.Create)
		comments.PATCH("/:comment_id", auth, h.Update)
		comments.DELETE("/:comment_id", auth, h.Delete)
	}
}

func (h *CommentHandler) parseNestedIDs(c *gin.Context) (titleID, reviewID int64, ok bool) {
	titleID, err := parseIDParam(c, "title_id")
	if err != nil {
		return 0, 0, false
	}
	reviewID, err = parseIDParam(c, "review_id")
	if err != nil {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

// List retrieves comments on a review, newest first
// GET /api/v1/titles/{title_id}/reviews/{review_id}/comments/?page=1&page_size=20
func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := h.parseNestedIDs(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)

	comments, err := h.commentService.GetReviewComments(titleID, reviewID, page, pageSize)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, comments)
	case errors.Is(err, service.ErrTitleNotFound), errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Get retrieves a single comment
// GET /api/v1/titles/{title_id}/reviews/{review_id}/comments/{comment_id}/
func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := h.parseNestedIDs(c)
	if !ok {
		return
	}
	commentID, err := parseIDParam(c, "comment_id")
	if err != nil {
		return
	}

	comment, err := h.commentService.GetComment(titleID, reviewID, commentID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, comment)
	case errors.Is(err, service.ErrTitleNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Create adds a comment to a review
// POST /api/v1/titles/{title_id}/reviews/{review_id}/comments/
func (h *CommentHandler) Create(c *gin.Context) {
	titleID, reviewID, ok := h.parseNestedIDs(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.ActorFromContext(c)
	comment, err := h.commentService.CreateComment(titleID, reviewID, actor.ID, req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, comment)
	case errors.Is(err, service.ErrTitleNotFound), errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Update partially updates a comment, author or moderator only
// PATCH /api/v1/titles/{title_id}/reviews/{review_id}/comments/{comment_id}/
func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := h.parseNestedIDs(c)
	if !ok {
		return
	}
	commentID, err := parseIDParam(c, "comment_id")
	if err != nil {
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.ActorFromContext(c)
	comment, err := h.commentService.UpdateComment(titleID, reviewID, commentID, actor, req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, comment)
	case errors.Is(err, service.ErrTitleNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Delete removes a comment, author or moderator only
// DELETE /api/v1/titles/{title_id}/reviews/{review_id}/comments/{comment_id}/
func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := h.parseNestedIDs(c)
	if !ok {
		return
	}
	commentID, err := parseIDParam(c, "comment_id")
	if err != nil {
		return
	}

	actor := middleware.ActorFromContext(c)
	err = h.commentService.DeleteComment(titleID, reviewID, commentID, actor)
	switch {
	case err == nil:
		c.JSON(http.StatusNoContent, nil)
	case errors.Is(err, service.ErrTitleNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
