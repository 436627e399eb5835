package queue

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/client/models"
)

type Repository interface {
	Enqueue(ctx context.Context, action models.Action, endpoint string, payload any) (*models.QueueItem, error)
	ListPending(ctx context.Context) ([]models.QueueItem, error)
	Remove(ctx context.Context, id string) error

	// BumpRetry increments the retry counter and returns the new value.
	BumpRetry(ctx context.Context, id string) (int, error)
}
