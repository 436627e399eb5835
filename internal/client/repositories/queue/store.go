package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/google/uuid"
)

const Collection = "sync_queue"

var (
	ErrInvalidAction = errors.New("invalid queue action")
	ErrNotQueued     = errors.New("queue item not found")
)

type StoreRepository struct {
	st *store.Store
}

func NewStoreRepository(st *store.Store) *StoreRepository {
	return &StoreRepository{st: st}
}

func (r *StoreRepository) Enqueue(ctx context.Context, action models.Action, endpoint string, payload any) (*models.QueueItem, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	raw, err := models.Payload(payload)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s %s: %w", action, endpoint, err)
	}

	item := &models.QueueItem{
		ID:        uuid.NewString(),
		Action:    action,
		Endpoint:  endpoint,
		Data:      raw,
		Timestamp: r.st.NowMillis(),
	}
	if err := r.st.Put(ctx, Collection, item); err != nil {
		return nil, fmt.Errorf("enqueue %s %s: %w", action, endpoint, err)
	}
	return item, nil
}

func (r *StoreRepository) ListPending(ctx context.Context) ([]models.QueueItem, error) {
	return store.GetAll[models.QueueItem](ctx, r.st, Collection, 0)
}

func (r *StoreRepository) Remove(ctx context.Context, id string) error {
	return r.st.Delete(ctx, Collection, id)
}

func (r *StoreRepository) BumpRetry(ctx context.Context, id string) (int, error) {
	var retries int
	found, err := store.Update(ctx, r.st, Collection, id, func(item *models.QueueItem) error {
		item.Retries++
		retries = item.Retries
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bump retry %s: %w", id, err)
	}
	if !found {
		return 0, fmt.Errorf("bump retry: %w: %s", ErrNotQueued, id)
	}
	return retries, nil
}
