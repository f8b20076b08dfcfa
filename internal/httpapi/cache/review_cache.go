package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sitterhub/internal/httpapi/models"
)

// ReviewCache is a redis-backed read cache for the fetch-by-task path.
// A nil *ReviewCache is valid and degrades every operation to a no-op,
// so the service works without redis configured.
type ReviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReviewCache(redisAddr, redisPassword string, ttl time.Duration) (*ReviewCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     redisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ReviewCache{client: rdb, ttl: ttl}, nil
}

func reviewKey(taskID string) string {
	return fmt.Sprintf("review:task:%s", taskID)
}

// Get returns the cached review for a task, or nil on miss.
func (c *ReviewCache) Get(ctx context.Context, taskID string) (*models.Review, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	raw, err := c.client.Get(ctx, reviewKey(taskID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var review models.Review
	if err := json.Unmarshal(raw, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// Set stores the review under its task key with the configured TTL.
func (c *ReviewCache) Set(ctx context.Context, review *models.Review) error {
	if c == nil || c.client == nil {
		return nil
	}

	raw, err := json.Marshal(review)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, reviewKey(review.TaskID), raw, c.ttl).Err()
}

// Invalidate drops the cached review for a task after a write.
func (c *ReviewCache) Invalidate(ctx context.Context, taskID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, reviewKey(taskID)).Err()
}
