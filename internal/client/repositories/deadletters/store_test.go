package deadletters

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuryListRemove(t *testing.T) {
	now := time.UnixMilli(42_000)
	st := store.New(filepath.Join(t.TempDir(), "offline.db"), store.WithClock(func() time.Time { return now }))
	t.Cleanup(func() { _ = st.Close() })
	r := NewStoreRepository(st)
	ctx := context.Background()

	item := models.QueueItem{ID: "q1", Action: models.ActionCreate, Endpoint: "/api/assessment", Timestamp: 1, Retries: 3}

	_, err := r.Bury(ctx, item, errors.New("remote returned 500"))
	require.NoError(t, err)
	_, err = r.Bury(ctx, item, nil)
	require.NoError(t, err)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, item, list[0].QueueItem)
	assert.EqualValues(t, 42_000, list[0].FailedAt)
	assert.Empty(t, list[0].LastError)

	require.NoError(t, r.Remove(ctx, "q1"))
	list, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
