//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/marketplace-monitor/internal/store"
)

func setupRedis(t *testing.T, prefix string) *store.RedisStore {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	s, err := store.NewRedisStoreFromURL(ctx, uri, store.WithKeyPrefix(prefix))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	s := setupRedis(t, "mm-test")

	require.NoError(t, s.Ping(ctx))

	key := store.NewKey(store.UserNotified, "facebook", "123", "alice")
	_, err := s.Get(ctx, key)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, key, []byte("v1")))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	ok, err := s.Contains(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	for i := range 1200 {
		k := store.NewKey(store.ListingDetails, "https://example.com/item/"+string(rune('a'+i%26))+string(rune('0'+i/26)))
		require.NoError(t, s.Set(ctx, k, []byte("x")))
	}

	n, err := s.Count(ctx, store.ListingDetails)
	require.NoError(t, err)
	assert.Positive(t, n)

	removed, err := s.DeleteCategory(ctx, store.ListingDetails)
	require.NoError(t, err)
	assert.Equal(t, n, removed)

	n, err = s.Count(ctx, store.ListingDetails)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Other categories are untouched.
	ok, err = s.Contains(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Clear(ctx))
	ok, err = s.Contains(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ListingRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupRedis(t, "mm-listing")
	l := testListing()

	require.NoError(t, store.SaveListing(ctx, s, l))
	got, err := store.LoadListing(ctx, s, l.PostURL)
	require.NoError(t, err)
	assert.Equal(t, *l, *got)
}
