package repository

import (
	"context"

	"sitterhub/internal/httpapi/models"

	"gorm.io/gorm"
)

type SitterRepository interface {
	WithTx(tx *gorm.DB) SitterRepository

	Create(ctx context.Context, sitter *models.Sitter) error
	GetByUserID(ctx context.Context, userID string) (*models.Sitter, error)

	// UpdateAggregates persists the recomputed review statistics onto
	// the sitter profile row.
	UpdateAggregates(ctx context.Context, userID string, averageRating float64, totalReviews int64) error
}

type sitterRepository struct {
	db *gorm.DB
}

func NewSitterRepository(db *gorm.DB) SitterRepository {
	return &sitterRepository{db: db}
}

func (r *sitterRepository) WithTx(tx *gorm.DB) SitterRepository {
	return &sitterRepository{db: tx}
}

func (r *sitterRepository) Create(ctx context.Context, sitter *models.Sitter) error {
	return r.db.WithContext(ctx).Create(sitter).Error
}

func (r *sitterRepository) GetByUserID(ctx context.Context, userID string) (*models.Sitter, error) {
	var sitter models.Sitter
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sitter).Error; err != nil {
		return nil, err
	}
	return &sitter, nil
}

func (r *sitterRepository) UpdateAggregates(ctx context.Context, userID string, averageRating float64, totalReviews int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Sitter{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"average_rating": averageRating,
			"total_reviews":  totalReviews,
		}).Error
}
