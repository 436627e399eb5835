package assessments

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/client/models"
)

// Repository describes how callers read and write locally stored assessments.
type Repository interface {
	// Save stores data as an unsynced assessment. The id is taken from the
	// payload's "id" field when present, otherwise generated.
	Save(ctx context.Context, data any) (*models.StoredItem, error)

	// List returns up to limit assessments in insertion order.
	List(ctx context.Context, limit int) ([]models.StoredItem, error)

	// GetByID returns nil when there is no such assessment.
	GetByID(ctx context.Context, id string) (*models.StoredItem, error)

	DeleteByID(ctx context.Context, id string) error

	// ListUnsynced returns assessments the remote has not accepted yet.
	ListUnsynced(ctx context.Context) ([]models.StoredItem, error)

	// MarkSynced records that the remote accepted pushed. A record re-saved
	// since it was listed is left unsynced and false is returned.
	MarkSynced(ctx context.Context, pushed models.StoredItem) (bool, error)
}
