package deadletters

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/client/models"
)

type Repository interface {
	// Bury records item as permanently failed. reason may be nil.
	Bury(ctx context.Context, item models.QueueItem, reason error) (*models.DeadLetter, error)
	List(ctx context.Context) ([]models.DeadLetter, error)
	Remove(ctx context.Context, id string) error
}
