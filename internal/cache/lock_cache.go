package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if the caller still owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// KeypointLock is a per-question advisory lock around keypoint regeneration
type KeypointLock interface {
	// Acquire returns an owner token, or "" when another holder has the lock
	Acquire(ctx context.Context, questionID string) (string, error)
	Release(ctx context.Context, questionID, token string) error
}

type keypointLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewKeypointLock creates a lock whose entries expire after ttl
func NewKeypointLock(client *redis.Client, ttl time.Duration) KeypointLock {
	return &keypointLock{
		client: client,
		ttl:    ttl,
	}
}

func (c *keypointLock) key(questionID string) string {
	return fmt.Sprintf("lock:keypoints:%s", questionID)
}

func (c *keypointLock) Acquire(ctx context.Context, questionID string) (string, error) {
	token := uuid.New().String()
	ok, err := c.client.SetNX(ctx, c.key(questionID), token, c.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

func (c *keypointLock) Release(ctx context.Context, questionID, token string) error {
	return releaseScript.Run(ctx, c.client, []string{c.key(questionID)}, token).Err()
}
