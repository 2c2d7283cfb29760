package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/middleware"
	"reviewdb/internal/http-api/service"
)

type GenreHandler struct {
	genreService service.GenreService
}

func NewGenreHandler(genreService service.GenreService) *GenreHandler {
	return &GenreHandler{genreService: genreService}
}

// RegisterRoutes registers genre routes: public reads, privileged writes
func (h *GenreHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	genres := router.Group("/genres")
	{
		genres.GET("", h.List)
		genres.POST("", auth, middleware.RequirePrivileged(), h.Create)
		genres.DELETE("/:slug", auth, middleware.RequirePrivileged(), h.Delete)
	}
}

// List retrieves all genres with pagination
// GET /api/v1/genres/?page=1&page_size=20
func (h *GenreHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	genres, err := h.genreService.GetGenres(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, genres)
}

// Create adds a new genre
// POST /api/v1/genres/
func (h *GenreHandler) Create(c *gin.Context) {
	var req dto.CreateGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genre, err := h.genreService.CreateGenre(req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, genre)
	case errors.Is(err, service.ErrInvalidSlug):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSlugInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Delete removes a genre by slug
// DELETE /api/v1/genres/{slug}/
func (h *GenreHandler) Delete(c *gin.Context) {
	if err := h.genreService.DeleteGenre(c.Param("slug")); err != nil {
		if errors.Is(err, service.ErrGenreNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
