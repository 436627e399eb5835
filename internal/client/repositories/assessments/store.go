package assessments

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/google/uuid"
)

const (
	Collection = "assessments"

	// DefaultListLimit applies when List is called with limit <= 0.
	DefaultListLimit = 50
)

// StoreRepository implements Repository on the local Record Store.
type StoreRepository struct {
	st *store.Store
}

func NewStoreRepository(st *store.Store) *StoreRepository {
	return &StoreRepository{st: st}
}

func (r *StoreRepository) Save(ctx context.Context, data any) (*models.StoredItem, error) {
	raw, err := models.Payload(data)
	if err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}

	id := models.PayloadID(raw)
	if id == "" {
		id = uuid.NewString()
	}

	item := &models.StoredItem{
		ID:        id,
		Data:      raw,
		Timestamp: r.st.NowMillis(),
		Type:      models.RecordTypeAssessment,
		Synced:    false,
	}
	if err := r.st.Put(ctx, Collection, item); err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}
	return item, nil
}

func (r *StoreRepository) List(ctx context.Context, limit int) ([]models.StoredItem, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return store.GetAll[models.StoredItem](ctx, r.st, Collection, limit)
}

func (r *StoreRepository) GetByID(ctx context.Context, id string) (*models.StoredItem, error) {
	return store.Get[models.StoredItem](ctx, r.st, Collection, id)
}

func (r *StoreRepository) DeleteByID(ctx context.Context, id string) error {
	return r.st.Delete(ctx, Collection, id)
}

func (r *StoreRepository) ListUnsynced(ctx context.Context) ([]models.StoredItem, error) {
	return store.Find[models.StoredItem](ctx, r.st, Collection, "synced", false, 0)
}

// MarkSynced flips pushed to synced, provided the stored record is still
// the version that was pushed. It reports false when the record changed
// or no longer exists; the record then stays for the next pass.
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
		return false, fmt.Errorf("mark assessment %s synced: %w", pushed.ID, err)
	}
	return marked, nil
}
