package dto

import "reviewdb/internal/http-api/models"

// CreateGenreRequest for creating a genre
type CreateGenreRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

// GenreResponse for returning genre information
type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// FromModelToGenreResponse converts a Genre model to GenreResponse DTO
func FromModelToGenreResponse(g *models.Genre) *GenreResponse {
	return &GenreResponse{
		Name: g.Name,
		Slug: g.Slug,
	}
}

// PaginatedGenreResponse for returning paginated genres
type PaginatedGenreResponse struct {
	Data       []GenreResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// NewPaginatedGenreResponse creates a paginated genre response
func NewPaginatedGenreResponse(data []GenreResponse, total, page, pageSize int) *PaginatedGenreResponse {
	return &PaginatedGenreResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: TotalPages(total, pageSize),
	}
}
