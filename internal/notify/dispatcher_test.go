package notify_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/marketplace-monitor/internal/notify"
	"github.com/donaldgifford/marketplace-monitor/internal/notify/mocks"
	"github.com/donaldgifford/marketplace-monitor/internal/store"
	"github.com/donaldgifford/marketplace-monitor/internal/tracker"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTracker(t *testing.T) (*tracker.Tracker, *clock) {
	t.Helper()
	s, err := store.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	c := &clock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	return tracker.New(s, tracker.WithClock(c.Now), tracker.WithLogger(quietLogger())), c
}

func newChannel(t *testing.T, name string, policy notify.RetryPolicy) *mocks.MockChannel {
	t.Helper()
	ch := mocks.NewMockChannel(t)
	ch.EXPECT().Name().Return(name).Maybe()
	ch.EXPECT().Type().Return("mock").Maybe()
	ch.EXPECT().Policy().Return(policy).Maybe()
	ch.EXPECT().HasRequiredFields().Return(true).Maybe()
	return ch
}

func listing(id string) *domain.Listing {
	return &domain.Listing{
		Marketplace: domain.MarketplaceFacebook,
		Name:        "gopro",
		ID:          id,
		Title:       "GoPro Hero " + id,
		Price:       "$100",
		PostURL:     "https://www.facebook.com/marketplace/item/" + id + "/",
		Location:    "Houston, TX",
	}
}

var fastPolicy = notify.RetryPolicy{MaxRetries: 2, RetryDelay: time.Millisecond}

func TestDispatcher_GroupsByStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, c := newTracker(t)
	user := &domain.User{Name: "alice", Remind: domain.RemindInterval(time.Hour)}

	listings := []*domain.Listing{listing("1"), listing("2"), listing("3"), listing("4"), listing("5")}

	// 3 and 4 were sent long ago, 5 was sent and has since dropped its price.
	for _, l := range listings[2:] {
		require.NoError(t, tr.Record(ctx, user, l))
	}
	c.now = c.now.Add(2 * time.Hour)
	listings[4].Price = "$80"

	require.Equal(t, domain.NotNotified, tr.Status(ctx, user, listings[0]))
	require.Equal(t, domain.Expired, tr.Status(ctx, user, listings[2]))
	require.Equal(t, domain.ListingChanged, tr.Status(ctx, user, listings[4]))

	ch := newChannel(t, "push", fastPolicy)
	var titles, messages []string
	ch.EXPECT().
		Send(mock.Anything, user, mock.Anything, mock.Anything).
		Run(func(_ context.Context, _ *domain.User, title, message string) {
			titles = append(titles, title)
			messages = append(messages, message)
		}).
		Return(nil).
		Times(3)

	d := notify.NewDispatcher(tr, map[string]notify.Channel{"push": ch}, notify.WithDispatcherLogger(quietLogger()))
	ok := d.Notify(ctx, []*domain.User{user}, listings, nil, false)
	require.True(t, ok)

	assert.Equal(t, []string{
		"Found 2 new gopros from facebook",
		"Another look at 2 gopros from facebook",
		"Found 1 updated gopro from facebook",
	}, titles)
	assert.Contains(t, messages[0], "GoPro Hero 1")
	assert.Contains(t, messages[0], "GoPro Hero 2")
	assert.Contains(t, messages[1], "[REMINDER] GoPro Hero 3")
	assert.Contains(t, messages[2], "[LISTING UPDATED] GoPro Hero 5\n$80, Houston, TX")

	for _, l := range listings {
		assert.Equal(t, domain.Notified, tr.Status(ctx, user, l), l.ID)
	}
}

func TestDispatcher_FailedDeliveryIsNotRecorded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, _ := newTracker(t)
	user := &domain.User{Name: "bob"}
	l := listing("7")

	ch := newChannel(t, "push", fastPolicy)
	ch.EXPECT().
		Send(mock.Anything, user, mock.Anything, mock.Anything).
		Return(errors.New("service unavailable")).
		Times(fastPolicy.MaxRetries)

	d := notify.NewDispatcher(tr, map[string]notify.Channel{"push": ch}, notify.WithDispatcherLogger(quietLogger()))
	assert.False(t, d.Notify(ctx, []*domain.User{user}, []*domain.Listing{l}, nil, false))
	assert.Equal(t, domain.NotNotified, tr.Status(ctx, user, l))
}

func TestDispatcher_OneChannelSucceedingIsEnough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, _ := newTracker(t)
	user := &domain.User{Name: "carol"}
	l := listing("8")

	broken := newChannel(t, "a-broken", fastPolicy)
	broken.EXPECT().
		Send(mock.Anything, user, mock.Anything, mock.Anything).
		Return(errors.New("timeout")).
		Times(fastPolicy.MaxRetries)

	working := newChannel(t, "b-working", fastPolicy)
	working.EXPECT().
		Send(mock.Anything, user, mock.Anything, mock.Anything).
		Return(nil).
		Once()

	d := notify.NewDispatcher(tr, map[string]notify.Channel{
		"a-broken":  broken,
		"b-working": working,
	}, notify.WithDispatcherLogger(quietLogger()))

	assert.True(t, d.Notify(ctx, []*domain.User{user}, []*domain.Listing{l}, nil, false))
	assert.Equal(t, domain.Notified, tr.Status(ctx, user, l))
}

func TestDispatcher_SkipsNotifiedUnlessForced(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, _ := newTracker(t)
	user := &domain.User{Name: "dave"}
	l := listing("9")
	require.NoError(t, tr.Record(ctx, user, l))

	ch := newChannel(t, "push", fastPolicy)
	d := notify.NewDispatcher(tr, map[string]notify.Channel{"push": ch}, notify.WithDispatcherLogger(quietLogger()))

	assert.False(t, d.Notify(ctx, []*domain.User{user}, []*domain.Listing{l}, nil, false))

	ch.EXPECT().
		Send(mock.Anything, user, "Resend 1 gopro from facebook", mock.Anything).
		Return(nil).
		Once()
	assert.True(t, d.Notify(ctx, []*domain.User{user}, []*domain.Listing{l}, nil, true))
}

func TestDispatcher_ChannelSelection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr, _ := newTracker(t)

	unconfigured := mocks.NewMockChannel(t)
	unconfigured.EXPECT().HasRequiredFields().Return(false).Maybe()

	email := newChannel(t, "email", fastPolicy)
	push := newChannel(t, "push", fastPolicy)

	d := notify.NewDispatcher(tr, map[string]notify.Channel{
		"email":        email,
		"push":         push,
		"unconfigured": unconfigured,
	}, notify.WithDispatcherLogger(quietLogger()))

	t.Run("notify_with limits channels", func(t *testing.T) {
		user := &domain.User{Name: "erin", NotifyWith: domain.StringList{"email", "missing"}}
		email.EXPECT().Send(mock.Anything, user, mock.Anything, mock.Anything).Return(nil).Once()
		assert.True(t, d.Notify(ctx, []*domain.User{user}, []*domain.Listing{listing("10")}, nil, false))
	})

	t.Run("no eligible channel fails", func(t *testing.T) {
		user := &domain.User{Name: "frank", NotifyWith: domain.StringList{"unconfigured"}}
		l := listing("11")
		assert.False(t, d.Notify(ctx, []*domain.User{user}, []*domain.Listing{l}, nil, false))
		assert.Equal(t, domain.NotNotified, tr.Status(ctx, user, l))
	})
}

func TestDispatcher_CancelledContextStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	tr, _ := newTracker(t)
	user := &domain.User{Name: "gina"}
	l := listing("12")

	ch := newChannel(t, "push", notify.RetryPolicy{MaxRetries: 5, RetryDelay: time.Hour})
	ch.EXPECT().
		Send(mock.Anything, user, mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, *domain.User, string, string) error {
			cancel()
			return errors.New("connection reset")
		}).
		Once()

	d := notify.NewDispatcher(tr, map[string]notify.Channel{"push": ch}, notify.WithDispatcherLogger(quietLogger()))
	assert.False(t, d.Notify(ctx, []*domain.User{user}, []*domain.Listing{l}, nil, false))
	assert.Equal(t, domain.NotNotified, tr.Status(context.Background(), user, l))
}

func TestDispatcher_Title(t *testing.T) {
	t.Parallel()

	tr, _ := newTracker(t)
	d := notify.NewDispatcher(tr, nil)

	tests := []struct {
		status domain.NotificationStatus
		item   string
		n      int
		want   string
	}{
		{domain.NotNotified, "gopro", 1, "Found 1 new gopro from facebook"},
		{domain.NotNotified, "gopro", 3, "Found 3 new gopros from facebook"},
		{domain.Expired, "standing desk", 2, "Another look at 2 standing desks from facebook"},
		{domain.ListingChanged, "bookshelf", 2, "Found 2 updated bookshelves from facebook"},
		{domain.Notified, "", 4, "Resend 4 listings from facebook"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s/%d", tt.status, tt.item, tt.n), func(t *testing.T) {
			t.Parallel()
			l := &domain.Listing{Marketplace: domain.MarketplaceFacebook, Name: tt.item}
			assert.Equal(t, tt.want, d.Title(tt.status, l, tt.n))
		})
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	rated := listing("20")
	plain := listing("21")
	plain.Location = ""

	got := notify.Message(domain.NotNotified, []notify.Entry{
		{Listing: rated, Rating: domain.NewRating(5, "Half the usual price.")},
		{Listing: plain},
	})

	want := "[Great deal (5)] GoPro Hero 20\n" +
		"$100, Houston, TX\n" +
		"https://www.facebook.com/marketplace/item/20/\n" +
		"AI: Half the usual price.\n" +
		"\n" +
		"GoPro Hero 21\n" +
		"$100\n" +
		"https://www.facebook.com/marketplace/item/21/"
	assert.Equal(t, want, got)
}
