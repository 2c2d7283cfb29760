package service

import (
	"context"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/models"
	"reviewdb/internal/http-api/permissions"
	"reviewdb/internal/http-api/repository"
)

type ReviewService interface {
	CreateReview(titleID int64, authorID string, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	UpdateReview(titleID, reviewID int64, actor permissions.Actor, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	DeleteReview(titleID, reviewID int64, actor permissions.Actor) error
	GetReview(titleID, reviewID int64) (*dto.ReviewResponse, error)
	GetTitleReviews(titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error)
}

// titleLookup is the slice of the title repository reviews need.
type titleLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Title, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  titleLookup
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo titleLookup) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

// CreateReview enforces at most one review per (author, title) pair.
func (s *reviewService) CreateReview(titleID int64, authorID string, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if err := s.checkTitleExists(titleID); err != nil {
		return nil, err
	}

	if _, err := s.reviewRepo.GetByAuthorAndTitle(authorID, titleID); err == nil {
		return nil, ErrDuplicateReview
	} else if !isNotFound(err) {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: authorID,
		Text:     req.Text,
		Score:    req.Score,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		// the unique index backs the same invariant under concurrency
		if repository.IsUniqueViolation(err, "uq_title_author") {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	// Reload with author data
	review, err := s.reviewRepo.GetByID(review.ID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) UpdateReview(titleID, reviewID int64, actor permissions.Actor, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.getTitleReview(titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if !permissions.CanMutateUserContent(actor, review.AuthorID) {
		return nil, ErrForbidden
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	review, err = s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) DeleteReview(titleID, reviewID int64, actor permissions.Actor) error {
	review, err := s.getTitleReview(titleID, reviewID)
	if err != nil {
		return err
	}

	if !permissions.CanMutateUserContent(actor, review.AuthorID) {
		return ErrForbidden
	}

	return s.reviewRepo.Delete(reviewID)
}

func (s *reviewService) GetReview(titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.getTitleReview(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) GetTitleReviews(titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if err := s.checkTitleExists(titleID); err != nil {
		return nil, err
	}

	reviews, total, err := s.reviewRepo.GetByTitle(titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	reviewResponses := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		reviewResponses = append(reviewResponses, *dto.FromModelToReviewResponse(&reviews[i]))
	}

	return dto.NewPaginatedReviewResponse(reviewResponses, int(total), page, pageSize), nil
}

func (s *reviewService) checkTitleExists(titleID int64) error {
	ctx := context.Background()

	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if isNotFound(err) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

// getTitleReview loads a review and verifies it belongs to the title from
// the route; a mismatch reads as not found.
func (s *reviewService) getTitleReview(titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.TitleID != titleID {
		return nil, ErrReviewNotFound
	}
	return review, nil
}
