package userdata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveGet(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "offline.db"))
	t.Cleanup(func() { _ = st.Close() })
	r := NewStoreRepository(st)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, "prefs", map[string]string{"theme": "dark"}))
	require.NoError(t, r.Save(ctx, "prefs", map[string]string{"theme": "light"}))

	got, err := r.Get(ctx, "prefs")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light"}`, string(got))

	none, err := r.Get(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSave_MissingKey(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "offline.db"))
	t.Cleanup(func() { _ = st.Close() })

	err := NewStoreRepository(st).Save(context.Background(), "", "x")
	require.ErrorIs(t, err, store.ErrMissingID)
}
