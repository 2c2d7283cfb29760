package service

import (
	"context"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/models"
	"reviewdb/internal/http-api/repository"
)

type GenreService interface {
	GetGenres(page, pageSize int) (*dto.PaginatedGenreResponse, error)
	CreateGenre(req dto.CreateGenreRequest) (*dto.GenreResponse, error)
	DeleteGenre(slug string) error
}

type genreService struct {
	genreRepo *repository.GenreRepo
}

func NewGenreService(genreRepo *repository.GenreRepo) GenreService {
	return &genreService{genreRepo: genreRepo}
}

func (s *genreService) GetGenres(page, pageSize int) (*dto.PaginatedGenreResponse, error) {
	ctx := context.Background()

	genres, total, err := s.genreRepo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GenreResponse, 0, len(genres))
	for i := range genres {
		responses = append(responses, *dto.FromModelToGenreResponse(&genres[i]))
	}

	return dto.NewPaginatedGenreResponse(responses, int(total), page, pageSize), nil
}

func (s *genreService) CreateGenre(req dto.CreateGenreRequest) (*dto.GenreResponse, error) {
	ctx := context.Background()

	if !slugRe.MatchString(req.Slug) {
		return nil, ErrInvalidSlug
	}

	genre := &models.Genre{
		Name: req.Name,
		Slug: req.Slug,
	}
	if err := s.genreRepo.Create(ctx, genre); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, ErrSlugInUse
		}
		return nil, err
	}

	return dto.FromModelToGenreResponse(genre), nil
}

func (s *genreService) DeleteGenre(slug string) error {
	ctx := context.Background()

	if err := s.genreRepo.DeleteBySlug(ctx, slug); err != nil {
		if isNotFound(err) {
			return ErrGenreNotFound
		}
		return err
	}
	return nil
}
