package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewStore(context.Background(), "redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	return store
}

func TestStoreCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := Record{ID: "sess-1", UserID: "user-1", DisplayName: "Alex"}
	require.NoError(t, store.Create(ctx, rec))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "user-1", got.UserID)
	require.Equal(t, StateAuthenticated, got.State, "Create marks the session authenticated")
	require.False(t, got.CreatedAt.IsZero())
}

func TestStoreGetMissingSession(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestStoreLiveLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, Record{ID: "sess-1", UserID: "user-1"}))

	live, err := store.Live(ctx, "sess-1")
	require.NoError(t, err)
	require.True(t, live)

	require.NoError(t, store.Revoke(ctx, "sess-1"))

	live, err = store.Live(ctx, "sess-1")
	require.NoError(t, err)
	require.False(t, live, "a revoked session must stop passing the liveness check")

	// The record stays around with a definitive state rather than vanishing.
	rec, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, StateUnauthenticated, rec.State)
}

func TestStoreLiveAbsentSession(t *testing.T) {
	store := newTestStore(t)

	live, err := store.Live(context.Background(), "never-created")
	require.NoError(t, err)
	require.False(t, live)
}

func TestStoreRevokeMissingSessionIsNoop(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Revoke(context.Background(), "absent"))
}
