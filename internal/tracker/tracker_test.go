package tracker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/marketplace-monitor/internal/store"
	storeMocks "github.com/donaldgifford/marketplace-monitor/internal/store/mocks"
	"github.com/donaldgifford/marketplace-monitor/internal/tracker"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTracker(t *testing.T) (*tracker.Tracker, *fakeClock, store.Store) {
	t.Helper()
	s, err := store.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return tracker.New(s, tracker.WithClock(clock.Now), tracker.WithLogger(quietLogger())), clock, s
}

func testListing() *domain.Listing {
	return &domain.Listing{
		Marketplace: domain.MarketplaceFacebook,
		Name:        "drone",
		ID:          "555",
		Title:       "DJI Mini 3",
		Price:       "$300",
		PostURL:     "https://www.facebook.com/marketplace/item/555",
		Location:    "Austin, TX",
	}
}

func TestTracker_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, clock, _ := newTracker(t)
	user := &domain.User{Name: "alice", Remind: domain.RemindInterval(time.Second)}
	l := testListing()

	assert.Equal(t, domain.NotNotified, tr.Status(ctx, user, l))
	assert.Equal(t, time.Duration(-1), tr.TimeSince(ctx, user, l))

	require.NoError(t, tr.Record(ctx, user, l))
	assert.Equal(t, domain.Notified, tr.Status(ctx, user, l))

	clock.Advance(2 * time.Second)
	assert.Equal(t, domain.Expired, tr.Status(ctx, user, l))
	assert.Equal(t, 2*time.Second, tr.TimeSince(ctx, user, l))

	// A changed listing wins over expiry and over recency.
	changed := *l
	changed.Price = "$250"
	assert.Equal(t, domain.ListingChanged, tr.Status(ctx, user, &changed))

	require.NoError(t, tr.Record(ctx, user, &changed))
	assert.Equal(t, domain.Notified, tr.Status(ctx, user, &changed))
	assert.Equal(t, domain.ListingChanged, tr.Status(ctx, user, l))
}

func TestTracker_RecordIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, clock, _ := newTracker(t)
	user := &domain.User{Name: "bob", Remind: domain.RemindInterval(time.Hour)}
	l := testListing()

	require.NoError(t, tr.Record(ctx, user, l))
	clock.Advance(30 * time.Minute)
	require.NoError(t, tr.Record(ctx, user, l))

	assert.Equal(t, time.Duration(0), tr.TimeSince(ctx, user, l))

	clock.Advance(59 * time.Minute)
	assert.Equal(t, domain.Notified, tr.Status(ctx, user, l), "second record refreshed the timestamp")
}

func TestTracker_NoRemindNeverRenotifies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, clock, _ := newTracker(t)
	user := &domain.User{Name: "carol"}
	l := testListing()

	require.NoError(t, tr.Record(ctx, user, l))
	for range 50 {
		clock.Advance(24 * time.Hour)
		assert.Equal(t, domain.Notified, tr.Status(ctx, user, l))
	}
}

func TestTracker_UsersAreIndependent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, _, _ := newTracker(t)
	alice := &domain.User{Name: "alice"}
	bob := &domain.User{Name: "bob"}
	l := testListing()

	require.NoError(t, tr.Record(ctx, alice, l))
	assert.Equal(t, domain.Notified, tr.Status(ctx, alice, l))
	assert.Equal(t, domain.NotNotified, tr.Status(ctx, bob, l))
}

func TestTracker_CorruptRecordFailsOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, _, s := newTracker(t)
	user := &domain.User{Name: "dave"}
	l := testListing()

	require.NoError(t, s.Set(ctx, tracker.Key(user, l), []byte("{not json")))
	assert.Equal(t, domain.NotNotified, tr.Status(ctx, user, l))
	assert.Equal(t, time.Duration(-1), tr.TimeSince(ctx, user, l))
}

func TestTracker_StoreErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ms := storeMocks.NewMockStore(t)
	tr := tracker.New(ms, tracker.WithLogger(quietLogger()))
	user := &domain.User{Name: "erin"}
	l := testListing()

	ms.EXPECT().
		Get(mock.Anything, tracker.Key(user, l)).
		Return(nil, errors.New("disk on fire")).
		Once()

	assert.Equal(t, domain.NotNotified, tr.Status(ctx, user, l))

	ms.EXPECT().
		Set(mock.Anything, tracker.Key(user, l), mock.Anything).
		Return(errors.New("read-only filesystem")).
		Once()

	err := tr.Record(ctx, user, l)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only filesystem")
}
