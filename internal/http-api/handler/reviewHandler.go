package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/middleware"
	"reviewdb/internal/http-api/service"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// RegisterRoutes registers review routes nested under a title
func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	reviews := router.Group("/titles/:title_id/reviews")
	{
		reviews.GET("", h.List)
		reviews.GET("/:review_id", h.Get)
		reviews.POST("", auth, h.Create)
		reviews.PATCH("/:review_id", auth, h.Update)
		reviews.DELETE("/:review_id", auth, h.Delete)
	}
}

// List retrieves reviews for a title, newest first
// GET /api/v1/titles/{title_id}/reviews/?page=1&page_size=20
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, err := parseIDParam(c, "title_id")
	if err != nil {
		return
	}
	page, pageSize := parsePagination(c)

	reviews, err := h.reviewService.GetTitleReviews(titleID, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrTitleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// Get retrieves a single review
// GET /api/v1/titles/{title_id}/reviews/{review_id}/
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, err := parseIDParam(c, "title_id")
	if err != nil {
		return
	}
	reviewID, err := parseIDParam(c, "review_id")
	if err != nil {
		return
	}

	review, err := h.reviewService.GetReview(titleID, reviewID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, review)
	case errors.Is(err, service.ErrTitleNotFound), errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Create adds a review to a title, one per author
// POST /api/v1/titles/{title_id}/reviews/
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, err := parseIDParam(c, "title_id")
	if err != nil {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.ActorFromContext(c)
	review, err := h.reviewService.CreateReview(titleID, actor.ID, req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, review)
	case errors.Is(err, service.ErrTitleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateReview):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Update partially updates a review, author or moderator only
// PATCH /api/v1/titles/{title_id}/reviews/{review_id}/
func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, err := parseIDParam(c, "title_id")
	if err != nil {
		return
	}
	reviewID, err := parseIDParam(c, "review_id")
	if err != nil {
		return
	}

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.ActorFromContext(c)
	review, err := h.reviewService.UpdateReview(titleID, reviewID, actor, req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, review)
	case errors.Is(err, service.ErrTitleNotFound), errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Delete removes a review, author or moderator only
// DELETE /api/v1/titles/{title_id}/reviews/{review_id}/
func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, err := parseIDParam(c, "title_id")
	if err != nil {
		return
	}
	reviewID, err := parseIDParam(c, "review_id")
	if err != nil {
		return
	}

	actor := middleware.ActorFromContext(c)
	err = h.reviewService.DeleteReview(titleID, reviewID, actor)
	switch {
	case err == nil:
		c.JSON(http.StatusNoContent, nil)
	case errors.Is(err, service.ErrTitleNotFound), errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
