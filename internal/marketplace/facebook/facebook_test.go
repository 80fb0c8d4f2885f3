package facebook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/marketplace-monitor/internal/marketplace"
	"github.com/donaldgifford/marketplace-monitor/internal/marketplace/facebook"
	"github.com/donaldgifford/marketplace-monitor/internal/marketplace/mocks"
	"github.com/donaldgifford/marketplace-monitor/internal/store"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func isSearch(u string) bool { return strings.Contains(u, "/search?") }

func oneCityItem() *domain.Item {
	return &domain.Item{
		Name:          "drone",
		Marketplace:   domain.MarketplaceFacebook,
		SearchPhrases: domain.StringList{"dji"},
		SearchOptions: domain.SearchOptions{SearchCity: domain.StringList{"houston"}},
	}
}

func TestMarketplace_Search(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := mocks.NewMockBrowser(t)
	s := newStore(t)
	m := facebook.New(b, s, facebook.WithPageInterval(0), facebook.WithLogger(quietLogger()))

	b.EXPECT().Fetch(mock.Anything, mock.MatchedBy(isSearch)).
		Return(fixture(t, "search.html"), nil).Once()
	b.EXPECT().Fetch(mock.Anything, "https://www.facebook.com/marketplace/item/1001/").
		Return(fixture(t, "regular.html"), nil).Once()

	item := oneCityItem()
	var offered []string
	pre := func(l *domain.Listing) bool {
		offered = append(offered, l.ID)
		// Only the first card is worth a detail page.
		return l.ID == "1001"
	}

	got, err := m.Search(ctx, item, pre)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, []string{"1001", "1002", "1003"}, offered)
	assert.Equal(t, 1, item.SearchedCount)

	l := got[0]
	assert.Equal(t, "drone", l.Name)
	assert.Equal(t, "Jane Doe", l.Seller)
	assert.Equal(t, "Used - Like New", l.Condition)
	assert.Contains(t, l.Description, "three batteries")
	assert.Equal(t, "https://scontent.example/1001.jpg", l.Image, "card fields win over details")

	cached, err := store.LoadListing(ctx, s, l.PostURL)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", cached.Seller)
	assert.Equal(t, l.Hash(), cached.Hash(), "the merged listing is cached")
}

func TestMarketplace_SearchReusesCachedDetails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := mocks.NewMockBrowser(t)
	s := newStore(t)
	m := facebook.New(b, s, facebook.WithPageInterval(0), facebook.WithLogger(quietLogger()))

	require.NoError(t, store.SaveListing(ctx, s, &domain.Listing{
		Marketplace: domain.MarketplaceFacebook,
		ID:          "1001",
		Title:       "DJI Mini 3 Pro with RC",
		Price:       "$420",
		PostURL:     "https://www.facebook.com/marketplace/item/1001/",
		Seller:      "Cached Seller",
		Description: "cached",
	}))

	b.EXPECT().Fetch(mock.Anything, mock.MatchedBy(isSearch)).
		Return(fixture(t, "search.html"), nil).Once()

	got, err := m.Search(ctx, oneCityItem(), func(l *domain.Listing) bool { return l.ID == "1001" })
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cached Seller", got[0].Seller)
}

func TestMarketplace_SearchChangedPriceReloads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := mocks.NewMockBrowser(t)
	s := newStore(t)
	m := facebook.New(b, s, facebook.WithPageInterval(0), facebook.WithLogger(quietLogger()))

	require.NoError(t, store.SaveListing(ctx, s, &domain.Listing{
		Marketplace: domain.MarketplaceFacebook,
		ID:          "1001",
		Title:       "DJI Mini 3 Pro with RC",
		Price:       "$500",
		PostURL:     "https://www.facebook.com/marketplace/item/1001/",
		Seller:      "Cached Seller",
	}))

	b.EXPECT().Fetch(mock.Anything, mock.MatchedBy(isSearch)).
		Return(fixture(t, "search.html"), nil).Once()
	b.EXPECT().Fetch(mock.Anything, "https://www.facebook.com/marketplace/item/1001/").
		Return(fixture(t, "regular.html"), nil).Once()

	got, err := m.Search(ctx, oneCityItem(), func(l *domain.Listing) bool { return l.ID == "1001" })
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Jane Doe", got[0].Seller)
}

func TestMarketplace_SearchErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := mocks.NewMockBrowser(t)
	m := facebook.New(b, newStore(t), facebook.WithPageInterval(0), facebook.WithLogger(quietLogger()))

	item := oneCityItem()
	item.SearchPhrases = domain.StringList{"dji", "mavic"}

	b.EXPECT().Fetch(mock.Anything, mock.MatchedBy(func(u string) bool {
		return strings.Contains(u, "query=dji")
	})).Return("", errors.New("net::ERR_TIMED_OUT")).Once()
	b.EXPECT().Fetch(mock.Anything, mock.MatchedBy(func(u string) bool {
		return strings.Contains(u, "query=mavic")
	})).Return(fixture(t, "search.html"), nil).Once()
	b.EXPECT().Fetch(mock.Anything, "https://www.facebook.com/marketplace/item/1002/").
		Return(fixture(t, "unknown.html"), nil).Once()

	got, err := m.Search(ctx, item, func(l *domain.Listing) bool { return l.ID == "1002" })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_TIMED_OUT")
	assert.Empty(t, got, "a listing whose details cannot be read is skipped")
}

func TestMarketplace_SearchNeedsCity(t *testing.T) {
	t.Parallel()

	m := facebook.New(mocks.NewMockBrowser(t), newStore(t), facebook.WithLogger(quietLogger()))
	item := oneCityItem()
	item.SearchCity = nil

	_, err := m.Search(context.Background(), item, nil)
	require.ErrorIs(t, err, facebook.ErrNoSearchCity)
	assert.Zero(t, item.SearchedCount)
}

func TestMarketplace_SearchCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := facebook.New(mocks.NewMockBrowser(t), newStore(t), facebook.WithLogger(quietLogger()))
	_, err := m.Search(ctx, oneCityItem(), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMarketplace_Details(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := mocks.NewMockBrowser(t)
	m := facebook.New(b, newStore(t), facebook.WithPageInterval(0), facebook.WithLogger(quietLogger()))

	b.EXPECT().Fetch(mock.Anything, "https://www.facebook.com/marketplace/item/1001/").
		Return(fixture(t, "regular.html"), nil).Once()

	first, err := m.Details(ctx, "https://www.facebook.com/marketplace/item/1001/?ref=share")
	require.NoError(t, err)
	assert.Equal(t, "1001", first.ID)

	// Second call is served from the cache.
	second, err := m.Details(ctx, "https://www.facebook.com/marketplace/item/1001/")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	b.EXPECT().Close().Return(nil).Once()
	require.NoError(t, m.Close())
}

func TestMarketplace_SignsInBeforeFirstSearch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := mocks.NewMockBrowser(t)
	creds := marketplace.Credentials{Username: "me@example.com", Password: "hunter2", Wait: 10 * time.Second}
	m := facebook.New(b, newStore(t),
		facebook.WithBaseURL("http://127.0.0.1:8080"),
		facebook.WithPageInterval(0),
		facebook.WithLogin(creds),
		facebook.WithLogger(quietLogger()),
	)

	var order []string
	b.EXPECT().Login(mock.Anything, mock.Anything, creds).
		Run(func(_ context.Context, form marketplace.LoginForm, _ marketplace.Credentials) {
			order = append(order, "login")
			assert.Equal(t, "http://127.0.0.1:8080"+facebook.LoginPath, form.URL)
			assert.Equal(t, `input[name="email"]`, form.UsernameField)
			assert.Equal(t, `input[name="pass"]`, form.PasswordField)
			assert.Equal(t, `button[name="login"]`, form.Submit)
		}).
		Return(nil).Once()
	b.EXPECT().Fetch(mock.Anything, mock.MatchedBy(isSearch)).
		Run(func(context.Context, string) { order = append(order, "search") }).
		Return(fixture(t, "search.html"), nil).Twice()

	skipAll := func(*domain.Listing) bool { return false }
	_, err := m.Search(ctx, oneCityItem(), skipAll)
	require.NoError(t, err)
	_, err = m.Search(ctx, oneCityItem(), skipAll)
	require.NoError(t, err)

	assert.Equal(t, []string{"login", "search", "search"}, order, "sign-in happens once")
}

func TestMarketplace_FailedSignInSearchesAnonymously(t *testing.T) {
	t.Parallel()

	b := mocks.NewMockBrowser(t)
	m := facebook.New(b, newStore(t),
		facebook.WithPageInterval(0),
		facebook.WithLogin(marketplace.Credentials{Username: "me@example.com"}),
		facebook.WithLogger(quietLogger()),
	)

	b.EXPECT().Login(mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("timeout waiting for input[name=\"email\"]")).Once()
	b.EXPECT().Fetch(mock.Anything, mock.MatchedBy(isSearch)).
		Return(fixture(t, "search.html"), nil).Once()

	_, err := m.Search(context.Background(), oneCityItem(), func(*domain.Listing) bool { return false })
	require.NoError(t, err)
}

func TestMarketplace_NoCredentialsNoSignIn(t *testing.T) {
	t.Parallel()

	// MockBrowser fails the test on an unexpected Login call.
	b := mocks.NewMockBrowser(t)
	m := facebook.New(b, newStore(t), facebook.WithPageInterval(0), facebook.WithLogger(quietLogger()))
	b.EXPECT().Fetch(mock.Anything, mock.MatchedBy(isSearch)).
		Return(fixture(t, "search.html"), nil).Once()

	_, err := m.Search(context.Background(), oneCityItem(), func(*domain.Listing) bool { return false })
	require.NoError(t, err)
}
