package authclient_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryDSN(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := authclient.NewMemoryStore()

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	user := testUser()
	require.NoError(t, store.Save(ctx, user))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, *user, *loaded)

	require.NoError(t, store.Clear(ctx))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestCacheStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := authclient.OpenCacheStore(ctx, memoryDSN(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	user := testUser()
	user.CreatedAt = &created
	require.NoError(t, store.Save(ctx, user))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, user.ID, loaded.ID)
	assert.Equal(t, user.Username, loaded.Username)
	require.NotNil(t, loaded.CreatedAt)
	assert.True(t, created.Equal(*loaded.CreatedAt))
}

func TestCacheStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store, err := authclient.OpenCacheStore(ctx, memoryDSN(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	first := testUser()
	require.NoError(t, store.Save(ctx, first))

	second := testUser()
	second.ID = "2"
	second.Username = "bob"
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, authclient.UserID("2"), loaded.ID)
	assert.Equal(t, "bob", loaded.Username)
}

func TestCacheStoreClear(t *testing.T) {
	ctx := context.Background()
	store, err := authclient.OpenCacheStore(ctx, memoryDSN(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Save(ctx, testUser()))
	require.NoError(t, store.Clear(ctx))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// clearing an empty cache is fine
	require.NoError(t, store.Clear(ctx))
}

func TestSaveNilClearsBlob(t *testing.T) {
	ctx := context.Background()
	store := authclient.NewMemoryStore()
	require.NoError(t, store.Save(ctx, testUser()))
	require.NoError(t, store.Save(ctx, nil))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
