package userdata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
)

const Collection = "user_data"

type StoreRepository struct {
	st *store.Store
}

func NewStoreRepository(st *store.Store) *StoreRepository {
	return &StoreRepository{st: st}
}

func (r *StoreRepository) Save(ctx context.Context, key string, value any) error {
	raw, err := models.Payload(value)
	if err != nil {
		return fmt.Errorf("save user data %q: %w", key, err)
	}
	item := models.StoredItem{
		ID:        key,
		Data:      raw,
		Timestamp: r.st.NowMillis(),
		Type:      models.RecordTypeUserData,
	}
	if err := r.st.Put(ctx, Collection, item); err != nil {
		return fmt.Errorf("save user data %q: %w", key, err)
	}
	return nil
}

// Get returns nil for unknown keys.
func (r *StoreRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	item, err := store.Get[models.StoredItem](ctx, r.st, Collection, key)
	if err != nil || item == nil {
		return nil, err
	}
	return item.Data, nil
}
