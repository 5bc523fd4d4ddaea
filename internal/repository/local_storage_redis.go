package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/reviewdesk/internal/infrastructure/redis"
)

const redisNamespace = "reviewdesk:storage"

// RedisLocalStorage implements domain.LocalStorage using Redis
type RedisLocalStorage struct {
	redis  *redis.Client
	logger *slog.Logger
}

// NewRedisLocalStorage creates a Redis-backed storage scoped under
// reviewdesk:storage, plus namespace when one is given.
func NewRedisLocalStorage(redisClient *redis.Client, namespace string, logger *slog.Logger) *RedisLocalStorage {
	return &RedisLocalStorage{
		redis:  redisClient.Namespace(redisNamespace, namespace),
		logger: defaultLogger(logger),
	}
}

func (r *RedisLocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := r.redis.Lookup(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, ok, nil
}

func (r *RedisLocalStorage) SetItem(ctx context.Context, key, value string) error {
	if err := r.redis.Store(ctx, key, value); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	r.logger.Debug("storage item set", slog.String("key", r.redis.Key(key)))
	return nil
}

func (r *RedisLocalStorage) RemoveItem(ctx context.Context, key string) error {
	existed, err := r.redis.Remove(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	if existed {
		r.logger.Debug("storage item removed", slog.String("key", r.redis.Key(key)))
	}
	return nil
}
