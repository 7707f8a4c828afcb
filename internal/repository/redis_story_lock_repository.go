package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check
var _ StoryLockRepository = (*redisStoryLockRepository)(nil)

type redisStoryLockRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStoryLockRepository создает Redis-реализацию лизы рестайла.
// Лиза - обычный SET NX с TTL: TTL страхует от вечно висящей блокировки,
// если процесс умер посреди рестайла.
func NewRedisStoryLockRepository(client *redis.Client, logger *zap.Logger) StoryLockRepository {
	return &redisStoryLockRepository{
		client: client,
		logger: logger.Named("RedisStoryLockRepo"),
	}
}

func lockKey(storyID string) string {
	return fmt.Sprintf("restyle_lock:%s", storyID)
}

func (r *redisStoryLockRepository) AcquireRestyleLock(ctx context.Context, storyID string, ttl time.Duration) (bool, error) {
	key := lockKey(storyID)
	ok, err := r.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		r.logger.Error("Failed to acquire restyle lock", zap.String("story_id", storyID), zap.Error(err))
		return false, fmt.Errorf("failed to acquire restyle lock for story %s: %w", storyID, err)
	}
	if !ok {
		r.logger.Debug("Restyle lock already held", zap.String("story_id", storyID))
		return false, nil
	}
	r.logger.Debug("Restyle lock acquired", zap.String("story_id", storyID), zap.Duration("ttl", ttl))
	return true, nil
}

func (r *redisStoryLockRepository) ReleaseRestyleLock(ctx context.Context, storyID string) error {
	key := lockKey(storyID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to release restyle lock", zap.String("story_id", storyID), zap.Error(err))
		return fmt.Errorf("failed to release restyle lock for story %s: %w", storyID, err)
	}
	r.logger.Debug("Restyle lock released", zap.String("story_id", storyID))
	return nil
}
