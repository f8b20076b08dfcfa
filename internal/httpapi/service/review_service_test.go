package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"sitterhub/internal/httpapi/models"
	"sitterhub/internal/httpapi/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory fakes for the repository interfaces. WithTx returns the
// fake itself since the fake has no real transaction handle.

type fakeReviewRepo struct {
	reviews map[string]*models.Review // keyed by task ID
	nextID  int64
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*models.Review), nextID: 1}
}

func (f *fakeReviewRepo) WithTx(tx *gorm.DB) repository.ReviewRepository { return f }

func (f *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	if _, ok := f.reviews[review.TaskID]; ok {
		return gorm.ErrDuplicatedKey
	}
	review.ID = f.nextID
	f.nextID++
	review.CreatedAt = time.Now()
	f.reviews[review.TaskID] = review
	return nil
}

func (f *fakeReviewRepo) GetByTaskID(ctx context.Context, taskID string) (*models.Review, error) {
	review, ok := f.reviews[taskID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return review, nil
}

func (f *fakeReviewRepo) GetByOwner(ctx context.Context, ownerUserID string) ([]models.Review, error) {
	result := []models.Review{}
	for _, r := range f.reviews {
		if r.PetOwnerUserID == ownerUserID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReviewRepo) GetBySitter(ctx context.Context, sitterUserID string) ([]models.Review, error) {
	result := []models.Review{}
	for _, r := range f.reviews {
		if r.SitterUserID == sitterUserID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReviewRepo) UpdateOwnerFields(ctx context.Context, taskID string, rating int, content string) error {
	review, ok := f.reviews[taskID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	review.PetOwnerRating = &rating
	review.PetOwnerContent = &content
	return nil
}

func (f *fakeReviewRepo) UpdateSitterFields(ctx context.Context, taskID string, rating int, content string, setAuthoredAt bool) error {
	review, ok := f.reviews[taskID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	review.SitterRating = &rating
	review.SitterContent = &content
	if setAuthoredAt {
		now := time.Now()
		review.SitterUserCreatedAt = &now
	}
	return nil
}

func (f *fakeReviewRepo) SitterAggregate(ctx context.Context, sitterUserID string) (float64, int64, error) {
	var sum, count int64
	for _, r := range f.reviews {
		if r.SitterUserID == sitterUserID && r.PetOwnerRating != nil {
			sum += int64(*r.PetOwnerRating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (f *fakeReviewRepo) OwnerAggregate(ctx context.Context, ownerUserID string) (float64, int64, error) {
	var sum, count int64
	for _, r := range f.reviews {
		if r.PetOwnerUserID == ownerUserID && r.SitterRating != nil {
			sum += int64(*r.SitterRating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

type fakeTaskRepo struct {
	tasks map[string]*models.Task
}

func (f *fakeTaskRepo) WithTx(tx *gorm.DB) repository.TaskRepository { return f }

func (f *fakeTaskRepo) GetByID(ctx context.Context, taskID string) (*models.Task, error) {
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return task, nil
}

func (f *fakeTaskRepo) SetReviewID(ctx context.Context, taskID string, reviewID int64) error {
	task, ok := f.tasks[taskID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	task.ReviewID = &reviewID
	return nil
}

type fakeSitterRepo struct {
	sitters map[string]*models.Sitter
}

func (f *fakeSitterRepo) WithTx(tx *gorm.DB) repository.SitterRepository { return f }

func (f *fakeSitterRepo) Create(ctx context.Context, sitter *models.Sitter) error {
	f.sitters[sitter.UserID] = sitter
	return nil
}

func (f *fakeSitterRepo) GetByUserID(ctx context.Context, userID string) (*models.Sitter, error) {
	sitter, ok := f.sitters[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sitter, nil
}

func (f *fakeSitterRepo) UpdateAggregates(ctx context.Context, userID string, averageRating float64, totalReviews int64) error {
	sitter, ok := f.sitters[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sitter.AverageRating = averageRating
	sitter.TotalReviews = totalReviews
	return nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) WithTx(tx *gorm.DB) repository.UserRepository { return f }

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateAggregates(ctx context.Context, userID string, averageRating float64, totalReviews int64) error {
	user, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.AverageRating = averageRating
	user.TotalReviews = totalReviews
	return nil
}

type fakeNotificationRepo struct {
	notifications []*models.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeNotificationRepo) GetUnreadByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	result := []models.Notification{}
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			result = append(result, *n)
		}
	}
	return result, nil
}

func (f *fakeNotificationRepo) MarkAsRead(ctx context.Context, notificationID int64) error {
	for _, n := range f.notifications {
		if n.ID == notificationID {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID string) error {
	for _, n := range f.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

type reviewFixture struct {
	svc      *reviewService
	reviews  *fakeReviewRepo
	tasks    *fakeTaskRepo
	sitters  *fakeSitterRepo
	users    *fakeUserRepo
	notifs   *fakeNotificationRepo
	ownerID  string
	sitterID string
	taskID   string
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		reviews:  newFakeReviewRepo(),
		tasks:    &fakeTaskRepo{tasks: make(map[string]*models.Task)},
		sitters:  &fakeSitterRepo{sitters: make(map[string]*models.Sitter)},
		users:    &fakeUserRepo{users: make(map[string]*models.User)},
		notifs:   &fakeNotificationRepo{},
		ownerID:  "11111111-1111-1111-1111-111111111111",
		sitterID: "22222222-2222-2222-2222-222222222222",
		taskID:   "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
	}

	f.users.users[f.ownerID] = &models.User{ID: f.ownerID, Username: "owner", Role: "pet_owner"}
	f.sitters.sitters[f.sitterID] = &models.Sitter{UserID: f.sitterID}
	f.tasks.tasks[f.taskID] = &models.Task{
		ID:             f.taskID,
		PetOwnerUserID: f.ownerID,
		SitterUserID:   f.sitterID,
	}

	f.svc = &reviewService{
		reviewRepo:       f.reviews,
		taskRepo:         f.tasks,
		sitterRepo:       f.sitters,
		userRepo:         f.users,
		notificationRepo: f.notifs,
		reviewCache:      nil, // nil cache is a no-op
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		runInTx: func(fc func(tx *gorm.DB) error) error {
			return fc(nil)
		},
	}
	return f
}

func TestCreateReviewOwnerPath(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	err := f.svc.CreateReview(ctx, f.taskID, f.ownerID, 5, "great")
	require.NoError(t, err)

	review, err := f.reviews.GetByTaskID(ctx, f.taskID)
	require.NoError(t, err)
	require.NotNil(t, review.PetOwnerRating)
	assert.Equal(t, 5, *review.PetOwnerRating)
	assert.Equal(t, "great", *review.PetOwnerContent)
	assert.Equal(t, f.sitterID, review.SitterUserID)
	assert.Nil(t, review.SitterRating)

	// Task now points at the review
	require.NotNil(t, f.tasks.tasks[f.taskID].ReviewID)
	assert.Equal(t, review.ID, *f.tasks.tasks[f.taskID].ReviewID)

	// Sitter aggregates reflect the new review
	sitter := f.sitters.sitters[f.sitterID]
	assert.Equal(t, 5.0, sitter.AverageRating)
	assert.Equal(t, int64(1), sitter.TotalReviews)

	// Counterpart was notified
	require.Len(t, f.notifs.notifications, 1)
	assert.Equal(t, f.sitterID, f.notifs.notifications[0].UserID)
}

func TestCreateReviewSitterPathUpdatesSameRow(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.CreateReview(ctx, f.taskID, f.ownerID, 5, "great"))
	require.NoError(t, f.svc.CreateReview(ctx, f.taskID, f.sitterID, 4, "thanks"))

	// Still exactly one row, owner half untouched
	assert.Len(t, f.reviews.reviews, 1)
	review := f.reviews.reviews[f.taskID]
	assert.Equal(t, 5, *review.PetOwnerRating)
	assert.Equal(t, "great", *review.PetOwnerContent)
	require.NotNil(t, review.SitterRating)
	assert.Equal(t, 4, *review.SitterRating)
	assert.NotNil(t, review.SitterUserCreatedAt)

	// Owner aggregates reflect the sitter's rating
	owner := f.users.users[f.ownerID]
	assert.Equal(t, 4.0, owner.AverageRating)
	assert.Equal(t, int64(1), owner.TotalReviews)

	// Sitter aggregates are unchanged by the sitter's own submission
	sitter := f.sitters.sitters[f.sitterID]
	assert.Equal(t, 5.0, sitter.AverageRating)
	assert.Equal(t, int64(1), sitter.TotalReviews)
}

func TestCreateReviewAverageOverSeveralTasks(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	secondTask := "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	f.tasks.tasks[secondTask] = &models.Task{
		ID:             secondTask,
		PetOwnerUserID: f.ownerID,
		SitterUserID:   f.sitterID,
	}

	require.NoError(t, f.svc.CreateReview(ctx, f.taskID, f.ownerID, 5, "great"))
	require.NoError(t, f.svc.CreateReview(ctx, secondTask, f.ownerID, 4, "good"))

	sitter := f.sitters.sitters[f.sitterID]
	assert.Equal(t, 4.5, sitter.AverageRating)
	assert.Equal(t, int64(2), sitter.TotalReviews)
}

func TestCreateReviewTaskNotFound(t *testing.T) {
	f := newReviewFixture()

	err := f.svc.CreateReview(context.Background(), "cccccccc-cccc-cccc-cccc-cccccccccccc", f.ownerID, 5, "great")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Empty(t, f.reviews.reviews)
}

func TestCreateReviewRejectsNonParticipant(t *testing.T) {
	f := newReviewFixture()

	err := f.svc.CreateReview(context.Background(), f.taskID, "99999999-9999-9999-9999-999999999999", 5, "great")
	assert.ErrorIs(t, err, ErrNotParticipant)

	// No mutation happened
	assert.Empty(t, f.reviews.reviews)
	assert.Nil(t, f.tasks.tasks[f.taskID].ReviewID)
	assert.Equal(t, float64(0), f.sitters.sitters[f.sitterID].AverageRating)
}

func TestCreateReviewSitterBeforeOwner(t *testing.T) {
	f := newReviewFixture()

	// The sitter path updates an existing row; without the owner's
	// submission there is nothing to update.
	err := f.svc.CreateReview(context.Background(), f.taskID, f.sitterID, 4, "thanks")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestUpdateReviewDoesNotTouchAggregates(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.CreateReview(ctx, f.taskID, f.ownerID, 5, "great"))

	err := f.svc.UpdateReview(ctx, f.taskID, f.ownerID, 3, "revised")
	require.NoError(t, err)

	review := f.reviews.reviews[f.taskID]
	assert.Equal(t, 3, *review.PetOwnerRating)
	assert.Equal(t, "revised", *review.PetOwnerContent)

	// Aggregates are creation-time snapshots
	sitter := f.sitters.sitters[f.sitterID]
	assert.Equal(t, 5.0, sitter.AverageRating)
	assert.Equal(t, int64(1), sitter.TotalReviews)
}

func TestUpdateReviewSitterHalf(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.CreateReview(ctx, f.taskID, f.ownerID, 5, "great"))
	require.NoError(t, f.svc.CreateReview(ctx, f.taskID, f.sitterID, 4, "thanks"))

	require.NoError(t, f.svc.UpdateReview(ctx, f.taskID, f.sitterID, 2, "second thoughts"))

	review := f.reviews.reviews[f.taskID]
	assert.Equal(t, 2, *review.SitterRating)
	// Owner half untouched
	assert.Equal(t, 5, *review.PetOwnerRating)
	// Owner aggregates untouched by the amend
	assert.Equal(t, 4.0, f.users.users[f.ownerID].AverageRating)
}

func TestUpdateReviewMissing(t *testing.T) {
	f := newReviewFixture()

	err := f.svc.UpdateReview(context.Background(), f.taskID, f.ownerID, 3, "revised")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestUpdateReviewTaskNotFound(t *testing.T) {
	f := newReviewFixture()

	err := f.svc.UpdateReview(context.Background(), "cccccccc-cccc-cccc-cccc-cccccccccccc", f.ownerID, 3, "revised")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestGetReviewByTaskNotFound(t *testing.T) {
	f := newReviewFixture()

	_, err := f.svc.GetReviewByTask(context.Background(), f.taskID)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestGetOwnerReviewsEmpty(t *testing.T) {
	f := newReviewFixture()

	reviews, err := f.svc.GetOwnerReviews(context.Background(), f.ownerID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestGetSitterReviews(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.CreateReview(ctx, f.taskID, f.ownerID, 5, "great"))

	reviews, err := f.svc.GetSitterReviews(ctx, f.sitterID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, f.taskID, reviews[0].TaskID)
}
