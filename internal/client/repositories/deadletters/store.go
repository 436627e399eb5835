package deadletters

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
)

const Collection = "dead_letter"

type StoreRepository struct {
	st *store.Store
}

func NewStoreRepository(st *store.Store) *StoreRepository {
	return &StoreRepository{st: st}
}

// Bury keeps the queue item's id, so burying the same item twice leaves a
// single record.
func (r *StoreRepository) Bury(ctx context.Context, item models.QueueItem, reason error) (*models.DeadLetter, error) {
	dl := &models.DeadLetter{
		QueueItem: item,
		FailedAt:  r.st.NowMillis(),
	}
	if reason != nil {
		dl.LastError = reason.Error()
	}
	if err := r.st.Put(ctx, Collection, dl); err != nil {
		return nil, fmt.Errorf("bury %s: %w", item.ID, err)
	}
	return dl, nil
}

func (r *StoreRepository) List(ctx context.Context) ([]models.DeadLetter, error) {
	return store.GetAll[models.DeadLetter](ctx, r.st, Collection, 0)
}

func (r *StoreRepository) Remove(ctx context.Context, id string) error {
	return r.st.Delete(ctx, Collection, id)
}
