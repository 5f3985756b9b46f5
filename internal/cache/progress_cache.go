package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"feedbackquest/internal/model"

	"github.com/redis/go-redis/v9"
)

// ProgressCache holds one serialized UserProgress slot per participant
type ProgressCache interface {
	// Get returns the raw slot contents, nil when the slot is absent
	Get(ctx context.Context, userID string) ([]byte, error)
	Set(ctx context.Context, userID string, progress *model.UserProgress) error
}

type progressCache struct {
	client *redis.Client
}

// NewProgressCache creates a new progress cache
func NewProgressCache(client *redis.Client) ProgressCache {
	return &progressCache{
		client: client,
	}
}

func (c *progressCache) key(userID string) string {
	return fmt.Sprintf("progress:%s", userID)
}

func (c *progressCache) Get(ctx context.Context, userID string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set overwrites the slot; no expiry, last write wins
func (c *progressCache) Set(ctx context.Context, userID string, progress *model.UserProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(userID), data, 0).Err()
}
