package repository

import (
	"context"

	"sitterhub/internal/httpapi/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	// WithTx returns a copy of the repository bound to the given
	// transaction handle.
	WithTx(tx *gorm.DB) ReviewRepository

	Create(ctx context.Context, review *models.Review) error
	GetByTaskID(ctx context.Context, taskID string) (*models.Review, error)
	GetByOwner(ctx context.Context, ownerUserID string) ([]models.Review, error)
	GetBySitter(ctx context.Context, sitterUserID string) ([]models.Review, error)

	// UpdateOwnerFields overwrites the pet owner's half of the review
	// row keyed by task. Returns gorm.ErrRecordNotFound when no row
	// exists for the task.
	UpdateOwnerFields(ctx context.Context, taskID string, rating int, content string) error

	// UpdateSitterFields is the sitter-side counterpart; setAuthoredAt
	// stamps sitter_user_created_at (first submission only).
	UpdateSitterFields(ctx context.Context, taskID string, rating int, content string, setAuthoredAt bool) error

	// SitterAggregate computes the mean and count of pet-owner ratings
	// across all reviews targeting the sitter. Mean is 0 when no rated
	// rows exist.
	SitterAggregate(ctx context.Context, sitterUserID string) (float64, int64, error)

	// OwnerAggregate is the symmetric computation over sitter ratings
	// for reviews where the user is the pet owner.
	OwnerAggregate(ctx context.Context, ownerUserID string) (float64, int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	return &reviewRepository{db: tx}
}

// Create a new review row
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// GetByTaskID retrieves the review for a specific task
func (r *reviewRepository) GetByTaskID(ctx context.Context, taskID string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByOwner retrieves all reviews where the user is the pet owner
func (r *reviewRepository) GetByOwner(ctx context.Context, ownerUserID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("pet_owner_user_id = ?", ownerUserID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// GetBySitter retrieves all reviews where the user is the sitter
func (r *reviewRepository) GetBySitter(ctx context.Context, sitterUserID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("sitter_user_id = ?", sitterUserID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) UpdateOwnerFields(ctx context.Context, taskID string, rating int, content string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("task_id = ?", taskID).
		Updates(map[string]any{
			"pet_owner_rating":  rating,
			"pet_owner_content": content,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reviewRepository) UpdateSitterFields(ctx context.Context, taskID string, rating int, content string, setAuthoredAt bool) error {
	fields := map[string]any{
		"sitter_rating":  rating,
		"sitter_content": content,
	}
	if setAuthoredAt {
		fields["sitter_user_created_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	}

	result := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("task_id = ?", taskID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SitterAggregate calculates the average pet-owner rating and the
// number of rated reviews targeting the given sitter
func (r *reviewRepository) SitterAggregate(ctx context.Context, sitterUserID string) (float64, int64, error) {
	var agg struct {
		Average float64
		Total   int64
	}

	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(pet_owner_rating), 0) as average, COUNT(pet_owner_rating) as total").
		Where("sitter_user_id = ?", sitterUserID).
		Scan(&agg).Error
	if err != nil {
		return 0, 0, err
	}

	return agg.Average, agg.Total, nil
}

// OwnerAggregate calculates the average sitter rating and the number
// of rated reviews targeting the given pet owner
func (r *reviewRepository) OwnerAggregate(ctx context.Context, ownerUserID string) (float64, int64, error) {
	var agg struct {
		Average float64
		Total   int64
	}

	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(sitter_rating), 0) as average, COUNT(sitter_rating) as total").
		Where("pet_owner_user_id = ?", ownerUserID).
		Scan(&agg).Error
	if err != nil {
		return 0, 0, err
	}

	return agg.Average, agg.Total, nil
}
