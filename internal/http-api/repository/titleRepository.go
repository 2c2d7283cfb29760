package repository

import (
	"context"
	"fmt"

	"reviewdb/internal/http-api/models"

	"gorm.io/gorm"
)

// TitleFilter narrows List results; zero values mean "no filter".
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Year         int
	Name         string
}

type TitleRepo struct {
	db *gorm.DB
}

func NewTitleRepo(db *gorm.DB) *TitleRepo {
	return &TitleRepo{db: db}
}

func (r *TitleRepo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var title models.Title
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres").
		First(&title, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &title, nil
}

func (r *TitleRepo) List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Title{})

	if filter.CategorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.GenreSlug != "" {
		query = query.
			Joins("JOIN title_genres tg ON tg.title_id = titles.id").
			Joins("JOIN genres ON genres.id = tg.genre_id").
			Where("genres.slug = ?", filter.GenreSlug)
	}
	if filter.Year != 0 {
		query = query.Where("titles.year = ?", filter.Year)
	}
	if filter.Name != "" {
		query = query.Where("titles.name ILIKE ?", "%"+filter.Name+"%")
	}

	var total int64
	if err := query.Distinct("titles.id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	var list []models.Title
	offset := (page - 1) * pageSize
	if err := query.
		Distinct().
		Preload("Category").
		Preload("Genres").
		Order("titles.id asc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get titles: %w", err)
	}
	return list, total, nil
}

// Create stores the title and its genre associations in one transaction.
func (r *TitleRepo) Create(ctx context.Context, t *models.Title, genres []models.Genre) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Genres").Create(t).Error; err != nil {
			return err
		}
		if len(genres) > 0 {
			if err := tx.Model(t).Association("Genres").Append(genres); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

// Update saves scalar fields and, when genres is non-nil, replaces the
// genre associations.
func (r *TitleRepo) Update(ctx context.Context, t *models.Title, genres []models.Genre) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Genres", "Category").Save(t).Error; err != nil {
			return err
		}
		if genres != nil {
			if err := tx.Model(t).Association("Genres").Replace(genres); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	return nil
}

// Delete removes the title; reviews and their comments go with it through
// the cascading FKs.
func (r *TitleRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AverageScores returns the mean review score per title for the given ids.
// Titles without reviews are absent from the result.
func (r *TitleRepo) AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	if len(titleIDs) == 0 {
		return map[int64]float64{}, nil
	}

	var rows []struct {
		TitleID int64
		Average float64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, AVG(score) as average").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("average scores: %w", err)
	}

	averages := make(map[int64]float64, len(rows))
	for _, row := range rows {
		averages[row.TitleID] = row.Average
	}
	return averages, nil
}
