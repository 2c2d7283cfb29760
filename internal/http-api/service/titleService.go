package service

import (
	"context"
	"time"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/models"
	"reviewdb/internal/http-api/repository"
)

type TitleService interface {
	GetTitle(titleID int64) (*dto.TitleResponse, error)
	ListTitles(filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error)
	CreateTitle(req dto.CreateTitleRequest) (*dto.TitleResponse, error)
	UpdateTitle(titleID int64, req dto.UpdateTitleRequest) (*dto.TitleResponse, error)
	DeleteTitle(titleID int64) error
}

// titleStore is the slice of the title repository the service needs.
type titleStore interface {
	titleLookup
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	Create(ctx context.Context, t *models.Title, genres []models.Genre) error
	Update(ctx context.Context, t *models.Title, genres []models.Genre) error
	Delete(ctx context.Context, id int64) error
	AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error)
}

type categoryLookup interface {
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type genreLookup interface {
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
}

type titleService struct {
	titleRepo    titleStore
	categoryRepo categoryLookup
	genreRepo    genreLookup
	reviewRepo   repository.ReviewRepository
}

func NewTitleService(
	titleRepo titleStore,
	categoryRepo categoryLookup,
	genreRepo genreLookup,
	reviewRepo repository.ReviewRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
	}
}

func (s *titleService) GetTitle(titleID int64) (*dto.TitleResponse, error) {
	ctx := context.Background()

	title, err := s.titleRepo.GetByID(ctx, titleID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	return dto.FromModelToTitleResponse(title, s.titleRating(titleID)), nil
}

func (s *titleService) ListTitles(filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error) {
	ctx := context.Background()

	titles, total, err := s.titleRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	titleIDs := make([]int64, 0, len(titles))
	for i := range titles {
		titleIDs = append(titleIDs, titles[i].ID)
	}
	averages, err := s.titleRepo.AverageScores(ctx, titleIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		var rating *float64
		if avg, ok := averages[titles[i].ID]; ok {
			avg := avg
			rating = &avg
		}
		responses = append(responses, *dto.FromModelToTitleResponse(&titles[i], rating))
	}

	return dto.NewPaginatedTitleResponse(responses, int(total), page, pageSize), nil
}

func (s *titleService) CreateTitle(req dto.CreateTitleRequest) (*dto.TitleResponse, error) {
	ctx := context.Background()

	if req.Year > time.Now().Year() {
		return nil, ErrYearInFuture
	}

	title := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}

	if req.Category != "" {
		category, err := s.categoryRepo.GetBySlug(ctx, req.Category)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}

	genres, err := s.resolveGenres(ctx, req.Genres)
	if err != nil {
		return nil, err
	}

	if err := s.titleRepo.Create(ctx, title, genres); err != nil {
		return nil, err
	}
	title.Genres = genres

	return dto.FromModelToTitleResponse(title, nil), nil
}

func (s *titleService) UpdateTitle(titleID int64, req dto.UpdateTitleRequest) (*dto.TitleResponse, error) {
	ctx := context.Background()

	title, err := s.titleRepo.GetByID(ctx, titleID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		if *req.Year > time.Now().Year() {
			return nil, ErrYearInFuture
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = req.Description
	}
	if req.Category != nil {
		if *req.Category == "" {
			title.CategoryID = nil
			title.Category = nil
		} else {
			category, err := s.categoryRepo.GetBySlug(ctx, *req.Category)
			if err != nil {
				if isNotFound(err) {
					return nil, ErrCategoryNotFound
				}
				return nil, err
			}
			title.CategoryID = &category.ID
			title.Category = category
		}
	}

	var genres []models.Genre
	if req.Genres != nil {
		genres, err = s.resolveGenres(ctx, req.Genres)
		if err != nil {
			return nil, err
		}
		if genres == nil {
			// explicit empty list clears the associations
			genres = []models.Genre{}
		}
	}

	if err := s.titleRepo.Update(ctx, title, genres); err != nil {
		return nil, err
	}
	if genres != nil {
		title.Genres = genres
	}

	return dto.FromModelToTitleResponse(title, s.titleRating(titleID)), nil
}

func (s *titleService) DeleteTitle(titleID int64) error {
	ctx := context.Background()

	if err := s.titleRepo.Delete(ctx, titleID); err != nil {
		if isNotFound(err) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

// resolveGenres maps slugs to stored genres; an unknown slug fails the whole
// request.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	genres, err := s.genreRepo.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(slugs) {
		return nil, ErrGenreNotFound
	}
	return genres, nil
}

// titleRating computes the average score on read; nil while unreviewed.
func (s *titleService) titleRating(titleID int64) *float64 {
	avg, count, err := s.reviewRepo.CalculateAverageScore(titleID)
	if err != nil || count == 0 {
		return nil
	}
	return &avg
}
