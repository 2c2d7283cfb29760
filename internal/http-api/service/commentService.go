package service

import (
	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/models"
	"reviewdb/internal/http-api/permissions"
	"reviewdb/internal/http-api/repository"
)

type CommentService interface {
	CreateComment(titleID, reviewID int64, authorID string, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	UpdateComment(titleID, reviewID, commentID int64, actor permissions.Actor, req dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(titleID, reviewID, commentID int64, actor permissions.Actor) error
	GetComment(titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	GetReviewComments(titleID, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

func (s *commentService) CreateComment(titleID, reviewID int64, authorID string, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if err := s.checkReview(titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: authorID,
		Text:     req.Text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	// Reload with author data
	comment, err := s.commentRepo.GetByID(comment.ID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) UpdateComment(titleID, reviewID, commentID int64, actor permissions.Actor, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.getReviewComment(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if !permissions.CanMutateUserContent(actor, comment.AuthorID) {
		return nil, ErrForbidden
	}

	comment.Text = req.Text
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}

	comment, err = s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) DeleteComment(titleID, reviewID, commentID int64, actor permissions.Actor) error {
	comment, err := s.getReviewComment(titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if !permissions.CanMutateUserContent(actor, comment.AuthorID) {
		return ErrForbidden
	}

	return s.commentRepo.Delete(commentID)
}

func (s *commentService) GetComment(titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	comment, err := s.getReviewComment(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) GetReviewComments(titleID, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error) {
	if err := s.checkReview(titleID, reviewID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.GetByReview(reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}

	commentResponses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		commentResponses = append(commentResponses, *dto.FromModelToCommentResponse(&comments[i]))
	}

	return dto.NewPaginatedCommentResponse(commentResponses, int(total), page, pageSize), nil
}

// checkReview verifies the review exists and sits under the routed title.
func (s *commentService) checkReview(titleID, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if isNotFound(err) {
			return ErrReviewNotFound
		}
		return err
	}
	if review.TitleID != titleID {
		return ErrReviewNotFound
	}
	return nil
}

func (s *commentService) getReviewComment(titleID, reviewID, commentID int64) (*models.Comment, error) {
	if err := s.checkReview(titleID, reviewID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.ReviewID != reviewID {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}
