package cache

import (
	"context"
	"errors"
	"time"
)

const BaseTTL = 24 * time.Hour

var (
	ErrCacheMiss = errors.New("cache miss")
)

type CachedStorage interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Stop(ctx context.Context) error
}
