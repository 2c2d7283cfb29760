package service

import (
	"context"
	"regexp"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/models"
	"reviewdb/internal/http-api/repository"
)

var slugRe = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type CategoryService interface {
	GetCategories(page, pageSize int) (*dto.PaginatedCategoryResponse, error)
	CreateCategory(req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(slug string) error
}

type categoryService struct {
	categoryRepo *repository.CategoryRepo
}

func NewCategoryService(categoryRepo *repository.CategoryRepo) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) GetCategories(page, pageSize int) (*dto.PaginatedCategoryResponse, error) {
	ctx := context.Background()

	categories, total, err := s.categoryRepo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, *dto.FromModelToCategoryResponse(&categories[i]))
	}

	return dto.NewPaginatedCategoryResponse(responses, int(total), page, pageSize), nil
}

func (s *categoryService) CreateCategory(req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	ctx := context.Background()

	if !slugRe.MatchString(req.Slug) {
		return nil, ErrInvalidSlug
	}

	category := &models.Category{
		Name: req.Name,
		Slug: req.Slug,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, ErrSlugInUse
		}
		return nil, err
	}

	return dto.FromModelToCategoryResponse(category), nil
}

func (s *categoryService) DeleteCategory(slug string) error {
	ctx := context.Background()

	if err := s.categoryRepo.DeleteBySlug(ctx, slug); err != nil {
		if isNotFound(err) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}
