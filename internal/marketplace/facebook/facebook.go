// Package facebook searches Facebook Marketplace through a headless
// browser and parses the result and listing pages.
package facebook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/donaldgifford/marketplace-monitor/internal/marketplace"
	"github.com/donaldgifford/marketplace-monitor/internal/metrics"
	"github.com/donaldgifford/marketplace-monitor/internal/store"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// ErrNoSearchCity is returned for items that name no city to search.
var ErrNoSearchCity = errors.New("no search_city configured")

// LoginPath is the sign-in page, relative to the base URL.
const LoginPath = "/login/device-based/regular/login/"

// LoginFields locate the sign-in form fields.
var LoginFields = marketplace.LoginForm{
	UsernameField: `input[name="email"]`,
	PasswordField: `input[name="pass"]`,
	Submit:        `button[name="login"]`,
}

// Page kinds for the page load metric.
const (
	pageSearch = "search"
	pageDetail = "detail"
)

// Marketplace is the facebook Scraper.
type Marketplace struct {
	browser marketplace.Browser
	store   store.Store
	pacer   *pacer
	baseURL string
	log     *slog.Logger

	creds      marketplace.Credentials
	loginTried bool
}

// Option configures a Marketplace.
type Option func(*Marketplace)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Marketplace) {
		m.log = l
	}
}

// WithBaseURL points searches at another origin.
func WithBaseURL(u string) Option {
	return func(m *Marketplace) {
		m.baseURL = u
	}
}

// WithLogin signs in with creds before the first search. Empty
// credentials search anonymously.
func WithLogin(creds marketplace.Credentials) Option {
	return func(m *Marketplace) {
		m.creds = creds
	}
}

// WithPageInterval sets the minimum spacing between page loads. Zero
// disables pacing.
func WithPageInterval(d time.Duration) Option {
	return func(m *Marketplace) {
		m.pacer = newPacer(d)
	}
}

// New creates a facebook scraper that loads pages with b and caches
// listing details in s.
func New(b marketplace.Browser, s store.Store, opts ...Option) *Marketplace {
	m := &Marketplace{
		browser: b,
		store:   s,
		pacer:   newPacer(DefaultPageInterval),
		baseURL: DefaultBaseURL,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("marketplace", domain.MarketplaceFacebook)
	return m
}

// Name implements marketplace.Scraper.
func (m *Marketplace) Name() string {
	return domain.MarketplaceFacebook
}

// Search implements marketplace.Scraper. Cards already seen under another
// phrase or city in the same search are skipped. A failing search page is
// logged and the remaining ones still run.
func (m *Marketplace) Search(
	ctx context.Context,
	item *domain.Item,
	pre marketplace.Prefilter,
) ([]*domain.Listing, error) {
	if len(item.SearchCity) == 0 {
		return nil, fmt.Errorf("item %s: %w", item.Name, ErrNoSearchCity)
	}

	if err := m.login(ctx); err != nil {
		return nil, err
	}

	reqs := SearchRequests(m.baseURL, item)
	item.SearchedCount++

	var (
		found []*domain.Listing
		seen  = make(map[string]bool)
		errs  []error
	)
	for _, req := range reqs {
		m.log.Info("searching",
			"item", item.Name,
			"phrase", req.Phrase,
			"city", req.CityName,
			"radius", req.Radius,
		)

		listings, err := m.searchPage(ctx, item, req, seen, pre)
		found = append(found, listings...)
		if err != nil {
			if ctx.Err() != nil {
				return found, ctx.Err()
			}
			m.log.Error("search failed", "item", item.Name, "phrase", req.Phrase, "error", err)
			errs = append(errs, err)
		}
	}
	return found, errors.Join(errs...)
}

func (m *Marketplace) searchPage(
	ctx context.Context,
	item *domain.Item,
	req SearchRequest,
	seen map[string]bool,
	pre marketplace.Prefilter,
) ([]*domain.Listing, error) {
	html, err := m.load(ctx, req.URL, pageSearch)
	if err != nil {
		return nil, err
	}
	cards, err := ParseSearch(html)
	if err != nil {
		return nil, err
	}
	m.log.Debug("search page parsed", "item", item.Name, "cards", len(cards))

	var out []*domain.Listing
	for _, raw := range cards {
		raw.Name = item.Name
		card := domain.NewListing(raw)
		if seen[card.PostURL] {
			continue
		}
		seen[card.PostURL] = true
		metrics.ListingsExaminedTotal.WithLabelValues(item.Name).Inc()

		if pre != nil && !pre(&card) {
			continue
		}

		details, err := m.details(ctx, card.PostURL, card.Price, card.Title)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			m.log.Warn("loading listing details failed", "item", item.Name, "listing", card.ID, "error", err)
			continue
		}

		// Card fields are fresher than cached ones; details fill the rest.
		// The merged listing replaces the cached one.
		card.Seller = details.Seller
		card.Condition = details.Condition
		card.Description = details.Description
		if err := store.SaveListing(ctx, m.store, &card); err != nil {
			m.log.Warn("caching listing failed", "listing", card.ID, "error", err)
		}
		out = append(out, &card)
	}
	return out, nil
}

// login signs in once per scraper. A failed sign-in is logged and the
// searches run anonymously; only cancellation is returned.
func (m *Marketplace) login(ctx context.Context) error {
	if !m.creds.IsSet() || m.loginTried {
		return nil
	}
	m.loginTried = true

	form := LoginFields
	form.URL = m.baseURL + LoginPath
	m.log.Info("signing in", "username", m.creds.Username)
	if err := m.browser.Login(ctx, form, m.creds); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.log.Error("sign-in failed, searching anonymously", "username", m.creds.Username, "error", err)
	}
	return nil
}

// Details implements marketplace.Scraper.
func (m *Marketplace) Details(ctx context.Context, postURL string) (*domain.Listing, error) {
	return m.details(ctx, postURL, "", "")
}

// details returns the cached listing when its price and title still match
// the card, and loads the detail page otherwise. Empty price and title
// accept any cached copy.
func (m *Marketplace) details(ctx context.Context, postURL, price, title string) (*domain.Listing, error) {
	postURL = domain.CanonicalURL(postURL)
	cached, err := store.LoadListing(ctx, m.store, postURL)
	switch {
	case err == nil:
		if (price == "" || cached.Price == price) && (title == "" || cached.Title == title) {
			return cached, nil
		}
	case !errors.Is(err, store.ErrNotFound):
		m.log.Warn("reading listing cache failed", "url", postURL, "error", err)
	}

	html, err := m.load(ctx, postURL, pageDetail)
	if err != nil {
		return nil, err
	}
	raw, err := ParseDetail(html, postURL)
	if err != nil {
		return nil, err
	}
	l := domain.NewListing(raw)
	if err := store.SaveListing(ctx, m.store, &l); err != nil {
		m.log.Warn("caching listing details failed", "listing", l.ID, "error", err)
	}
	return &l, nil
}

func (m *Marketplace) load(ctx context.Context, url, kind string) (string, error) {
	if err := m.pacer.Wait(ctx); err != nil {
		return "", err
	}
	metrics.PageLoadsTotal.WithLabelValues(domain.MarketplaceFacebook, kind).Inc()
	return m.browser.Fetch(ctx, url)
}

// Close implements marketplace.Scraper.
func (m *Marketplace) Close() error {
	return m.browser.Close()
}
