package analytics

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/client/models"
)

type Repository interface {
	// Record stores event under a fresh id, unsynced.
	Record(ctx context.Context, event any) (*models.StoredItem, error)
	ListAll(ctx context.Context) ([]models.StoredItem, error)
	ListUnsynced(ctx context.Context) ([]models.StoredItem, error)
	MarkSynced(ctx context.Context, pushed models.StoredItem) (bool, error)
}
