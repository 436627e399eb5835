package analytics

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/google/uuid"
)

const Collection = "analytics"

type StoreRepository struct {
	st *store.Store
}

func NewStoreRepository(st *store.Store) *StoreRepository {
	return &StoreRepository{st: st}
}

func (r *StoreRepository) Record(ctx context.Context, event any) (*models.StoredItem, error) {
	raw, err := models.Payload(event)
	if err != nil {
		return nil, fmt.Errorf("record event: %w", err)
	}

	item := &models.StoredItem{
		ID:        uuid.NewString(),
		Data:      raw,
		Timestamp: r.st.NowMillis(),
		Type:      models.RecordTypeAnalytics,
	}
	if err := r.st.Put(ctx, Collection, item); err != nil {
		return nil, fmt.Errorf("record event: %w", err)
	}
	return item, nil
}

func (r *StoreRepository) ListAll(ctx context.Context) ([]models.StoredItem, error) {
	return store.GetAll[models.StoredItem](ctx, r.st, Collection, 0)
}

func (r *StoreRepository) ListUnsynced(ctx context.Context) ([]models.StoredItem, error) {
	return store.Find[models.StoredItem](ctx, r.st, Collection, "synced", false, 0)
}

// MarkSynced only flips events still stored as pushed.
func (r *StoreRepository) MarkSynced(ctx context.Context, pushed models.StoredItem) (bool, error) {
	marked := false
	_, err := store.Update(ctx, r.st, Collection, pushed.ID, func(item *models.StoredItem) error {
		if !item.SameVersion(pushed) {
			return nil
		}
		item.Synced = true
		marked = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("mark event %s synced: %w", pushed.ID, err)
	}
	return marked, nil
}
