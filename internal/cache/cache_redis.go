package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

type RedisCachedStorage struct {
	Logger *zap.SugaredLogger
	Client *redis.Client
}

func NewRedisCache(client *redis.Client, logger *zap.SugaredLogger) *RedisCachedStorage {
	return &RedisCachedStorage{
		Client: client,
		Logger: logger,
	}
}

func (c *RedisCachedStorage) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCachedStorage) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}

	return val, err
}

func (c *RedisCachedStorage) Stop(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- c.Client.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
