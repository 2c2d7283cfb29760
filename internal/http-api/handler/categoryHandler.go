package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/middleware"
	"reviewdb/internal/http-api/service"
)

type CategoryHandler struct {
	categoryService service.CategoryService
}

func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// RegisterRoutes registers category routes: public reads, privileged writes
func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.List)
		categories.POST("", auth, middleware.RequirePrivileged(), h.Create)
		categories.DELETE("/:slug", auth, middleware.RequirePrivileged(), h.Delete)
	}
}

// List retrieves all categories with pagination
// GET /api/v1/categories/?page=1&page_size=20
func (h *CategoryHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	categories, err := h.categoryService.GetCategories(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, categories)
}

// Create adds a new category
// POST /api/v1/categories/
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.categoryService.CreateCategory(req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, category)
	case errors.Is(err, service.ErrInvalidSlug):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSlugInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Delete removes a category by slug
// DELETE /api/v1/categories/{slug}/
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.DeleteCategory(c.Param("slug")); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
