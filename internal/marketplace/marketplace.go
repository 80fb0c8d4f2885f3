// Package marketplace defines the boundary between the monitor and the
// sites it searches.
package marketplace

import (
	"context"
	"time"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// Prefilter decides from a search result card whether a listing is worth
// loading in full. A nil Prefilter accepts everything.
type Prefilter func(l *domain.Listing) bool

// Scraper searches one marketplace.
type Scraper interface {
	Name() string
	// Search runs every search phrase of item and returns the listings
	// found, with details loaded. It may return listings together with an
	// error when only some searches failed.
	Search(ctx context.Context, item *domain.Item, pre Prefilter) ([]*domain.Listing, error)
	// Details returns the full listing behind a post URL, from the cache
	// when possible.
	Details(ctx context.Context, postURL string) (*domain.Listing, error)
	Close() error
}

// DefaultLoginWait is how long a browser stays on the sign-in page after
// submitting it, leaving time for checkpoints such as two-factor prompts.
const DefaultLoginWait = time.Minute

// Credentials sign a browser in before its first search.
type Credentials struct {
	Username string
	Password string
	Wait     time.Duration
}

// IsSet reports whether there is anyone to sign in as.
func (c Credentials) IsSet() bool {
	return c.Username != ""
}

// LoginForm locates the parts of a sign-in page by CSS selector.
type LoginForm struct {
	URL           string
	UsernameField string
	PasswordField string
	Submit        string
}

// Browser loads a page and returns its rendered HTML.
type Browser interface {
	Fetch(ctx context.Context, url string) (string, error)
	// Login fills in and submits form, then waits creds.Wait on the page.
	// The session it creates is kept for later fetches.
	Login(ctx context.Context, form LoginForm, creds Credentials) error
	Close() error
}
