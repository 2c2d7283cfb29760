package service

import (
	"errors"

	"gorm.io/gorm"
)

// Errors shared across the resource services. Auth-specific ones live in
// auth_service.go.
var (
	ErrForbidden        = errors.New("you don't have permission to perform this action")
	ErrTitleNotFound    = errors.New("title not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrDuplicateReview  = errors.New("you have already reviewed this title")
	ErrYearInFuture     = errors.New("title year must not exceed the current year")
	ErrInvalidSlug      = errors.New("slug contains invalid characters")
	ErrSlugInUse        = errors.New("slug already in use")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
