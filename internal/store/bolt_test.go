package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/marketplace-monitor/internal/store"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

func newBoltStore(t *testing.T) *store.BoltStore {
	t.Helper()
	s, err := store.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testListing() *domain.Listing {
	return &domain.Listing{
		Marketplace: domain.MarketplaceFacebook,
		Name:        "gopro",
		ID:          "1234567890",
		Title:       "GoPro Hero 9",
		Image:       "https://scontent.example/img.jpg",
		Price:       "$150",
		PostURL:     "https://www.facebook.com/marketplace/item/1234567890",
		Location:    "Houston, TX",
		Seller:      "Jane",
		Condition:   "Used - Good",
		Description: "Works great, two batteries",
	}
}

func TestBoltStore_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newBoltStore(t)
	key := store.NewKey(store.UserNotified, "facebook", "123", "alice")

	_, err := s.Get(ctx, key)
	require.ErrorIs(t, err, store.ErrNotFound)

	ok, err := s.Contains(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, key, []byte("v1")))
	require.NoError(t, s.Set(ctx, key, []byte("v2")))

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	ok, err = s.Contains(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, s.Delete(ctx, key), "deleting a missing key is not an error")
}

func TestBoltStore_CategoriesAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newBoltStore(t)

	a := store.NewKey(store.ListingDetails, "same")
	b := store.NewKey(store.UserNotified, "same")
	c := store.NewKey(store.SearchedListings, "same")
	for _, k := range []store.Key{a, b, c} {
		require.NoError(t, s.Set(ctx, k, []byte(k.Category)))
	}

	n, err := s.DeleteCategory(ctx, store.ListingDetails)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Get(ctx, a)
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Get(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []byte(store.UserNotified), got)

	count, err := s.Count(ctx, store.SearchedListings)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.Clear(ctx))
	for _, cat := range store.Categories {
		count, err := s.Count(ctx, cat)
		require.NoError(t, err)
		assert.Zero(t, count, cat)
	}

	// Buckets are recreated after clearing.
	require.NoError(t, s.Set(ctx, a, []byte("again")))
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	key := store.NewKey(store.UserNotified, "facebook", "1", "bob")

	s, err := store.NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, key, []byte("persisted")))
	require.NoError(t, s.Close())

	reopened, err := store.NewBoltStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}

func TestBoltStore_ExclusiveLock(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := store.NewBoltStore(dir)
	require.NoError(t, err)
	defer s.Close()

	_, err = store.NewBoltStore(dir, store.WithOpenTimeout(50*time.Millisecond))
	require.ErrorIs(t, err, store.ErrLocked)
	assert.Contains(t, err.Error(), "redis")
}

func TestListing_CacheRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newBoltStore(t)
	l := testListing()

	require.NoError(t, store.SaveListing(ctx, s, l))

	got, err := store.LoadListing(ctx, s, l.PostURL+"?ref=search")
	require.NoError(t, err)
	assert.Equal(t, *l, *got)

	_, err = store.LoadListing(ctx, s, "https://www.facebook.com/marketplace/item/999")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSeen_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newBoltStore(t)
	l := testListing()

	_, err := store.LoadSeen(ctx, s, "gopro", l)
	require.ErrorIs(t, err, store.ErrNotFound)

	rec := &store.SeenRecord{
		FirstSeen: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Hash:      l.Hash(),
		Confirmed: true,
		Rating:    domain.NewRating(4, "good price"),
	}
	require.NoError(t, store.MarkSeen(ctx, s, "gopro", l, rec))

	got, err := store.LoadSeen(ctx, s, "gopro", l)
	require.NoError(t, err)
	assert.Equal(t, rec.Hash, got.Hash)
	assert.True(t, got.FirstSeen.Equal(rec.FirstSeen))
	assert.True(t, got.Confirmed)
	assert.Equal(t, rec.Rating, got.Rating)

	_, err = store.LoadSeen(ctx, s, "other-item", l)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	c, err := store.ParseCategory("USER-NOTIFIED")
	require.NoError(t, err)
	assert.Equal(t, store.UserNotified, c)

	_, err = store.ParseCategory("everything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing-details")
}

func TestStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newBoltStore(t)
	require.NoError(t, store.SaveListing(ctx, s, testListing()))
	require.NoError(t, s.Set(ctx, store.NewKey(store.UserNotified, "facebook", "1", "alice"), []byte("{}")))
	require.NoError(t, s.Set(ctx, store.NewKey(store.UserNotified, "facebook", "1", "bob"), []byte("{}")))

	stats, err := store.Stats(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, map[store.Category]int{
		store.ListingDetails:   1,
		store.UserNotified:     2,
		store.SearchedListings: 0,
	}, stats)
}
