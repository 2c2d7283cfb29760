package dto

import "reviewdb/internal/http-api/models"

// CreateTitleRequest for creating a title; category and genres are slugs
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description *string  `json:"description,omitempty"`
	Category    string   `json:"category" binding:"omitempty,max=50"`
	Genres      []string `json:"genres" binding:"omitempty,dive,max=50"`
}

// UpdateTitleRequest for PATCH; nil fields stay untouched
type UpdateTitleRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=256"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Category    *string  `json:"category" binding:"omitempty,max=50"`
	Genres      []string `json:"genres" binding:"omitempty,dive,max=50"`
}

// TitleResponse for returning title information; Rating is the average
// review score, null while the title has no reviews
type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description *string           `json:"description,omitempty"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Genres      []GenreResponse   `json:"genres"`
}

// FromModelToTitleResponse converts a Title model to TitleResponse DTO
func FromModelToTitleResponse(t *models.Title, rating *float64) *TitleResponse {
	resp := &TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      rating,
		Description: t.Description,
		Genres:      make([]GenreResponse, 0, len(t.Genres)),
	}
	if t.Category != nil {
		resp.Category = FromModelToCategoryResponse(t.Category)
	}
	for i := range t.Genres {
		resp.Genres = append(resp.Genres, *FromModelToGenreResponse(&t.Genres[i]))
	}
	return resp
}

// PaginatedTitleResponse for returning paginated titles
type PaginatedTitleResponse struct {
	Data       []TitleResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// NewPaginatedTitleResponse creates a paginated title response
func NewPaginatedTitleResponse(data []TitleResponse, total, page, pageSize int) *PaginatedTitleResponse {
	return &PaginatedTitleResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: TotalPages(total, pageSize),
	}
}
