package repository

import (
	"reviewdb/internal/http-api/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(review *models.Review) error
	Update(review *models.Review) error
	Delete(reviewID int64) error
	GetByID(reviewID int64) (*models.Review, error)
	GetByAuthorAndTitle(authorID string, titleID int64) (*models.Review, error)
	GetByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error)
	CalculateAverageScore(titleID int64) (float64, int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

func (r *reviewRepository) Update(review *models.Review) error {
	return r.db.Save(review).Error
}

// Delete removes a review; its comments go with it through the cascading FK.
func (r *reviewRepository) Delete(reviewID int64) error {
	result := r.db.Delete(&models.Review{}, "id = ?", reviewID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reviewRepository) GetByID(reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.Preload("Author").First(&review, "id = ?", reviewID).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByAuthorAndTitle(authorID string, titleID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("author_id = ? AND title_id = ?", authorID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByTitle retrieves reviews for a title newest-first with pagination.
func (r *reviewRepository) GetByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Where("title_id = ?", titleID).
		Preload("Author").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// CalculateAverageScore computes the mean review score and review count for
// a title at read time.
func (r *reviewRepository) CalculateAverageScore(titleID int64) (float64, int64, error) {
	var agg struct {
		Average float64
		Count   int64
	}

	err := r.db.Model(&models.Review{}).
		Select("COALESCE(AVG(score), 0) as average, COUNT(*) as count").
		Where("title_id = ?", titleID).
		Scan(&agg).Error
	if err != nil {
		return 0, 0, err
	}

	return agg.Average, agg.Count, nil
}
