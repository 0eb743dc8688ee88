package networker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"photo-loader/internal/cache"

	"go.uber.org/zap"
)

const bodyKeyPrefix = "body:"

// CachedNetworker keeps successful responses in a CachedStorage for ttl.
type CachedNetworker struct {
	Logger *zap.SugaredLogger
	Next   Networker
	Cache  cache.CachedStorage
	TTL    time.Duration
}

func NewCachedNetworker(logger *zap.SugaredLogger, next Networker, storage cache.CachedStorage, ttl time.Duration) *CachedNetworker {
	return &CachedNetworker{
		Logger: logger,
		Next:   next,
		Cache:  storage,
		TTL:    ttl,
	}
}

func (n *CachedNetworker) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	key := bodyKeyPrefix + url

	raw, err := n.Cache.Get(ctx, key)
	if err == nil {
		cached := new(FetchResult)
		errUnmarshal := json.Unmarshal([]byte(raw), cached)
		if errUnmarshal == nil {
			n.Logger.Debugw("body cache hit", "url", url)
			return cached, nil
		}

		n.Logger.Warnw("dropping malformed cache entry", "url", url, "err", errUnmarshal)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		n.Logger.Warnw("body cache unavailable", "url", url, "err", err)
	}

	res, err := n.Next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if res.Status >= http.StatusBadRequest {
		return res, nil
	}

	if errSet := n.Cache.Set(ctx, key, res, n.TTL); errSet != nil {
		n.Logger.Warnw("failed to save body cache", "url", url, "err", errSet)
	}

	return res, nil
}
