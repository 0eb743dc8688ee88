package cache

import (
	"context"
	"encoding"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCachedStorage is a process-local CachedStorage, used when no redis is
// configured.
type MemoryCachedStorage struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCachedStorage {
	return &MemoryCachedStorage{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCachedStorage) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := toString(value)
	if err != nil {
		return err
	}

	entry := memoryEntry{value: raw}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	return nil
}

func (c *MemoryCachedStorage) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", ErrCacheMiss
	}

	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return "", ErrCacheMiss
	}

	return entry.value, nil
}

func (c *MemoryCachedStorage) Stop(context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()

	return nil
}

// toString mirrors how go-redis serialises values.
func toString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case encoding.BinaryMarshaler:
		b, err := v.MarshalBinary()
		if err != nil {
			return "", fmt.Errorf("failed to marshal cache value: %w", err)
		}
		return string(b), nil
	default:
		return fmt.Sprint(v), nil
	}
}
