package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL is the table snapshot validity window when none is configured.
const DefaultTTL = 5 * time.Minute

// TableCache is a read-through TTL cache for one loaded table. Within the
// TTL window repeated loads return the cached snapshot; after expiry or
// explicit invalidation the loader runs again and its result replaces the
// snapshot wholesale. A loader error propagates and never overwrites an
// existing snapshot.
//
// There is no mutual exclusion across callers: concurrent misses may each
// run the loader, which is an idempotent read of the source.
type TableCache[T any] struct {
	client Client
	key    string
	ttl    time.Duration
}

// NewTableCache creates a table cache for the given key.
func NewTableCache[T any](client Client, key string, ttl time.Duration) *TableCache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TableCache[T]{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// GetOrLoad returns the cached snapshot, loading it through load on a miss.
func (c *TableCache[T]) GetOrLoad(ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	var zero T

	data, err := c.client.Get(ctx, c.key)
	if err == nil {
		var cached T
		if uerr := json.Unmarshal(data, &cached); uerr == nil {
			return cached, nil
		}
		// Unreadable snapshot: fall through and reload.
	} else if !errors.Is(err, ErrCacheMiss) {
		// Cache backend failure degrades to a direct load.
		loaded, lerr := load(ctx)
		if lerr != nil {
			return zero, lerr
		}
		return loaded, nil
	}

	loaded, err := load(ctx)
	if err != nil {
		return zero, err
	}

	if data, merr := json.Marshal(loaded); merr == nil {
		_ = c.client.Set(ctx, c.key, data, c.ttl)
	}
	return loaded, nil
}

// Invalidate forces the next GetOrLoad to reload regardless of TTL.
func (c *TableCache[T]) Invalidate(ctx context.Context) error {
	if err := c.client.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("invalidate %s: %w", c.key, err)
	}
	return nil
}
