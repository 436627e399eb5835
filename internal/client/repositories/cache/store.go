package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
)

const (
	Collection = "cache"
	DefaultTag = "cache"

	// DefaultMaxAge is the eviction age used when callers have no opinion.
	DefaultMaxAge = 24 * time.Hour
)

type StoreRepository struct {
	st *store.Store
}

func NewStoreRepository(st *store.Store) *StoreRepository {
	return &StoreRepository{st: st}
}

func (r *StoreRepository) Put(ctx context.Context, key string, value any, tag string) error {
	raw, err := models.Payload(value)
	if err != nil {
		return fmt.Errorf("cache %q: %w", key, err)
	}
	if tag == "" {
		tag = DefaultTag
	}

	item := models.StoredItem{
		ID:        key,
		Data:      raw,
		Timestamp: r.st.NowMillis(),
		Type:      models.RecordType(tag),
		Synced:    true,
	}
	if err := r.st.Put(ctx, Collection, item); err != nil {
		return fmt.Errorf("cache %q: %w", key, err)
	}
	return nil
}

func (r *StoreRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	item, err := store.Get[models.StoredItem](ctx, r.st, Collection, key)
	if err != nil || item == nil {
		return nil, err
	}
	return item.Data, nil
}

func (r *StoreRepository) EvictOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := r.st.NowMillis() - maxAge.Milliseconds()
	n, err := r.st.DeleteRange(ctx, Collection, "timestamp", cutoff, store.AtOrBelow)
	if err != nil {
		return 0, fmt.Errorf("evict cache: %w", err)
	}
	return n, nil
}
