package userdata

import (
	"context"
	"encoding/json"
)

// Repository is a flat key/value layer over the user_data collection.
type Repository interface {
	Save(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string) (json.RawMessage, error)
}
