package repository

import (
	"context"

	"sitterhub/internal/httpapi/models"

	"gorm.io/gorm"
)

type TaskRepository interface {
	WithTx(tx *gorm.DB) TaskRepository

	GetByID(ctx context.Context, taskID string) (*models.Task, error)
	SetReviewID(ctx context.Context, taskID string, reviewID int64) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) WithTx(tx *gorm.DB) TaskRepository {
	return &taskRepository{db: tx}
}

// GetByID retrieves a task by its ID
func (r *taskRepository) GetByID(ctx context.Context, taskID string) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Where("id = ?", taskID).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// SetReviewID hangs the review off the task once the owner submits
func (r *taskRepository) SetReviewID(ctx context.Context, taskID string, reviewID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", taskID).
		Update("review_id", reviewID).Error
}
