package cache

import (
	"context"
	"encoding/json"
	"time"
)

type Repository interface {
	// Put stores value under key. An empty tag means DefaultTag.
	Put(ctx context.Context, key string, value any, tag string) error

	// Get returns nil when key is not cached.
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// EvictOlderThan removes entries written at or before now-maxAge and
	// reports how many went.
	EvictOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
}
