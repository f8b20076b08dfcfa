package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sitterhub/internal/httpapi/cache"
	"sitterhub/internal/httpapi/models"
	"sitterhub/internal/httpapi/repository"

	"gorm.io/gorm"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrReviewNotFound = errors.New("review not found")
	ErrNotParticipant = errors.New("user is not a participant of this task")
)

type ReviewService interface {
	CreateReview(ctx context.Context, taskID, actorUserID string, rating int, content string) error
	UpdateReview(ctx context.Context, taskID, actorUserID string, rating int, content string) error
	GetReviewByTask(ctx context.Context, taskID string) (*models.Review, error)
	GetOwnerReviews(ctx context.Context, ownerUserID string) ([]models.Review, error)
	GetSitterReviews(ctx context.Context, sitterUserID string) ([]models.Review, error)
}

type reviewService struct {
	reviewRepo       repository.ReviewRepository
	taskRepo         repository.TaskRepository
	sitterRepo       repository.SitterRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	reviewCache      *cache.ReviewCache
	logger           *slog.Logger

	// runInTx wraps gorm's Transaction so tests can substitute a
	// pass-through runner.
	runInTx func(fc func(tx *gorm.DB) error) error
}

func NewReviewService(
	db *gorm.DB,
	reviewRepo repository.ReviewRepository,
	taskRepo repository.TaskRepository,
	sitterRepo repository.SitterRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	reviewCache *cache.ReviewCache,
	logger *slog.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:       reviewRepo,
		taskRepo:         taskRepo,
		sitterRepo:       sitterRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		reviewCache:      reviewCache,
		logger:           logger,
		runInTx: func(fc func(tx *gorm.DB) error) error {
			return db.Transaction(fc)
		},
	}
}

// CreateReview records a party's review of a completed task. The owner
// path inserts the review row, hangs it off the task and recomputes the
// sitter's aggregates; the sitter path fills the sitter half of the
// existing row and recomputes the owner's aggregates. Each path runs as
// one transaction whose error reaches the caller - nothing is
// fire-and-forget.
func (s *reviewService) CreateReview(ctx context.Context, taskID, actorUserID string, rating int, content string) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	// An actor matching neither party is rejected outright rather than
	// being assumed to be the sitter.
	switch actorUserID {
	case task.PetOwnerUserID:
		err = s.createOwnerReview(ctx, task, rating, content)
	case task.SitterUserID:
		err = s.createSitterReview(ctx, task, rating, content)
	default:
		return ErrNotParticipant
	}
	if err != nil {
		return err
	}

	s.invalidateCache(ctx, taskID)
	s.notifyCounterpart(ctx, task, actorUserID)
	return nil
}

// createOwnerReview is the owner path: one transaction covering the
// review insert, the task's review pointer and the sitter aggregates.
func (s *reviewService) createOwnerReview(ctx context.Context, task *models.Task, rating int, content string) error {
	return s.runInTx(func(tx *gorm.DB) error {
		reviews := s.reviewRepo.WithTx(tx)

		review := &models.Review{
			TaskID:          task.ID,
			PetOwnerUserID:  task.PetOwnerUserID,
			PetOwnerRating:  &rating,
			PetOwnerContent: &content,
			SitterUserID:    task.SitterUserID,
		}
		if err := reviews.Create(ctx, review); err != nil {
			return err
		}

		if err := s.taskRepo.WithTx(tx).SetReviewID(ctx, task.ID, review.ID); err != nil {
			return err
		}

		avg, total, err := reviews.SitterAggregate(ctx, task.SitterUserID)
		if err != nil {
			return err
		}
		return s.sitterRepo.WithTx(tx).UpdateAggregates(ctx, task.SitterUserID, avg, total)
	})
}

// createSitterReview is the symmetric sitter path. The row must already
// exist from the owner's submission; only its sitter half is written.
func (s *reviewService) createSitterReview(ctx context.Context, task *models.Task, rating int, content string) error {
	return s.runInTx(func(tx *gorm.DB) error {
		reviews := s.reviewRepo.WithTx(tx)

		if err := reviews.UpdateSitterFields(ctx, task.ID, rating, content, true); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		avg, total, err := reviews.OwnerAggregate(ctx, task.PetOwnerUserID)
		if err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).UpdateAggregates(ctx, task.PetOwnerUserID, avg, total)
	})
}

// UpdateReview overwrites the acting party's rating/content on the
// existing review. Aggregates are creation-time snapshots and are not
// recomputed here, so this is a single-statement update.
func (s *reviewService) UpdateReview(ctx context.Context, taskID, actorUserID string, rating int, content string) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	switch actorUserID {
	case task.PetOwnerUserID:
		err = s.reviewRepo.UpdateOwnerFields(ctx, task.ID, rating, content)
	case task.SitterUserID:
		err = s.reviewRepo.UpdateSitterFields(ctx, task.ID, rating, content, false)
	default:
		return ErrNotParticipant
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	s.invalidateCache(ctx, taskID)
	return nil
}

// GetReviewByTask returns the review for a task, going through the
// redis cache when one is configured.
func (s *reviewService) GetReviewByTask(ctx context.Context, taskID string) (*models.Review, error) {
	if cached, err := s.reviewCache.Get(ctx, taskID); err != nil {
		s.logger.Warn("review cache read failed", "task_id", taskID, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	review, err := s.reviewRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if err := s.reviewCache.Set(ctx, review); err != nil {
		s.logger.Warn("review cache write failed", "task_id", taskID, "error", err)
	}
	return review, nil
}

// GetOwnerReviews lists all reviews where the user is the pet owner.
// An empty slice is a valid result, not an error.
func (s *reviewService) GetOwnerReviews(ctx context.Context, ownerUserID string) ([]models.Review, error) {
	return s.reviewRepo.GetByOwner(ctx, ownerUserID)
}

// GetSitterReviews lists all reviews where the user is the sitter.
func (s *reviewService) GetSitterReviews(ctx context.Context, sitterUserID string) ([]models.Review, error) {
	return s.reviewRepo.GetBySitter(ctx, sitterUserID)
}

func (s *reviewService) invalidateCache(ctx context.Context, taskID string) {
	if err := s.reviewCache.Invalidate(ctx, taskID); err != nil {
		s.logger.Warn("review cache invalidation failed", "task_id", taskID, "error", err)
	}
}

// notifyCounterpart writes a best-effort notification for the reviewed
// party after the transaction committed. Failure here never fails the
// request.
func (s *reviewService) notifyCounterpart(ctx context.Context, task *models.Task, actorUserID string) {
	recipient := task.SitterUserID
	if actorUserID == task.SitterUserID {
		recipient = task.PetOwnerUserID
	}

	notification := &models.Notification{
		UserID:  recipient,
		Type:    "REVIEW_RECEIVED",
		TaskID:  task.ID,
		Title:   "You received a new review",
		Message: fmt.Sprintf("A review was posted for task %s", task.ID),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create review notification", "task_id", task.ID, "user_id", recipient, "error", err)
	}
}
