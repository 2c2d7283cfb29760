package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/middleware"
	"reviewdb/internal/http-api/repository"
	"reviewdb/internal/http-api/service"
)

type TitleHandler struct {
	titleService service.TitleService
}

func NewTitleHandler(titleService service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

// RegisterRoutes registers title routes: public reads, privileged writes
func (h *TitleHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	titles := router.Group("/titles")
	{
		titles.GET("", h.List)
		titles.GET("/:title_id", h.Get)
		titles.POST("", auth, middleware.RequirePrivileged(), h.Create)
		titles.PATCH("/:title_id", auth, middleware.RequirePrivileged(), h.Update)
		titles.DELETE("/:title_id", auth, middleware.RequirePrivileged(), h.Delete)
	}
}

// List retrieves titles with optional filters
// GET /api/v1/titles/?category=&genre=&year=&name=&page=1&page_size=20
func (h *TitleHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	filter := repository.TitleFilter{
		CategorySlug: c.Query("category"),
		GenreSlug:    c.Query("genre"),
		Name:         c.Query("name"),
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year filter"})
			return
		}
		filter.Year = year
	}

	titles, err := h.titleService.ListTitles(filter, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, titles)
}

// Get retrieves a single title with its computed rating
// GET /api/v1/titles/{title_id}/
func (h *TitleHandler) Get(c *gin.Context) {
	titleID, err := parseIDParam(c, "title_id")
	if err != nil {
		return
	}

	title, err := h.titleService.GetTitle(titleID)
	if err != nil {
		if errors.Is(err, service.ErrTitleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, title)
}

// Create adds a new title
// POST /api/v1/titles/
func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.CreateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title, err := h.titleService.CreateTitle(req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, title)
	case errors.Is(err, service.ErrYearInFuture):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCategoryNotFound), errors.Is(err, service.ErrGenreNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Update partially updates a title
// PATCH /api/v1/titles/{title_id}/
func (h *TitleHandler) Update(c *gin.Context) {
	titleID, err := parseIDParam(c, "title_id")
	if err != nil {
		return
	}

	var req dto.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title, err := h.titleService.UpdateTitle(titleID, req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, title)
	case errors.Is(err, service.ErrTitleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrYearInFuture):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCategoryNotFound), errors.Is(err, service.ErrGenreNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Delete removes a title and its reviews
// DELETE /api/v1/titles/{title_id}/
func (h *TitleHandler) Delete(c *gin.Context) {
	titleID, err := parseIDParam(c, "title_id")
	if err != nil {
		return
	}

	if err := h.titleService.DeleteTitle(titleID); err != nil {
		if errors.Is(err, service.ErrTitleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// parseIDParam reads a numeric path parameter, writing a 400 response on failure.
func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, err
	}
	return id, nil
}
