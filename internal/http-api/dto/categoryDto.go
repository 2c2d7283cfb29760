package dto

import "reviewdb/internal/http-api/models"

// CreateCategoryRequest for creating a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	Slug string `json:"slug" binding:"required,max=50"`
}

// CategoryResponse for returning category information
type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// FromModelToCategoryResponse converts a Category model to CategoryResponse DTO
func FromModelToCategoryResponse(c *models.Category) *CategoryResponse {
	return &CategoryResponse{
		Name: c.Name,
		Slug: c.Slug,
	}
}

// PaginatedCategoryResponse for returning paginated categories
type PaginatedCategoryResponse struct {
	Data       []CategoryResponse `json:"data"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
}

// NewPaginatedCategoryResponse creates a paginated category response
func NewPaginatedCategoryResponse(data []CategoryResponse, total, page, pageSize int) *PaginatedCategoryResponse {
	return &PaginatedCategoryResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: TotalPages(total, pageSize),
	}
}
