package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/donaldgifford/marketplace-monitor/internal/config"
	"github.com/donaldgifford/marketplace-monitor/internal/filter"
	"github.com/donaldgifford/marketplace-monitor/internal/store"
	"github.com/donaldgifford/marketplace-monitor/pkg/ai"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// ErrNotCached is returned by Check for listings that were never scraped
// when fetching is off.
var ErrNotCached = errors.New("listing is not in the cache")

// CheckOptions controls a dry run.
type CheckOptions struct {
	// AI rates passing listings with the item's backends.
	AI bool
	// Fetch loads listings missing from the cache from the marketplace.
	Fetch bool
}

// UserStatus is what one user has been told about a listing.
type UserStatus struct {
	User   string
	Status domain.NotificationStatus
}

// CheckResult explains what the monitor would do with one listing.
type CheckResult struct {
	Ref       string
	Listing   *domain.Listing
	Filter    filter.Result
	Rating    domain.Rating
	Rated     bool
	Confirmed bool
	Users     []UserStatus
	Err       error
}

// Check explains, without notifying anyone or recording anything, how
// the listings named by refs (ids or post URLs) fare against item. Each
// result carries its own error; Check itself fails only when the dry run
// cannot start.
func (eng *Engine) Check(
	ctx context.Context,
	cfg *config.Config,
	itemName string,
	refs []string,
	opts CheckOptions,
) ([]CheckResult, error) {
	item, ok := cfg.Item[itemName]
	if !ok {
		return nil, fmt.Errorf("unknown item %q", itemName)
	}
	eng.cfg = cfg

	var backends []ai.Evaluator
	if opts.AI {
		for _, a := range cfg.AIFor(item) {
			ev, err := eng.newEvaluator(a)
			if err != nil {
				return nil, err
			}
			backends = append(backends, ev)
		}
	}

	f := filter.New(item, filter.WithoutMetrics())
	users := cfg.UsersFor(item)
	results := make([]CheckResult, 0, len(refs))
	for _, ref := range refs {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		res := CheckResult{Ref: ref}
		l, err := eng.lookup(ctx, item, ref, opts.Fetch)
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		l.Name = item.Name
		res.Listing = l
		res.Filter = f.Check(l)
		res.Confirmed = res.Filter.Pass()

		if res.Filter.Pass() && len(backends) > 0 {
			rating, rated := eng.evaluate(ctx, eng.log, backends, item, l)
			if !rated && ctx.Err() == nil {
				res.Err = errors.New("every ai backend failed")
			}
			res.Rating, res.Rated = rating, rated
			res.Confirmed = ai.Confirm(item, rating)
		}

		for _, u := range users {
			res.Users = append(res.Users, UserStatus{User: u.Name, Status: eng.tracker.Status(ctx, u, l)})
		}
		results = append(results, res)
	}
	return results, nil
}

// lookup resolves ref to a listing, from the cache or, with fetch, from
// the marketplace.
func (eng *Engine) lookup(ctx context.Context, item *domain.Item, ref string, fetch bool) (*domain.Listing, error) {
	postURL := PostURL(item.Marketplace, ref)
	l, err := store.LoadListing(ctx, eng.store, postURL)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if !fetch {
		return nil, fmt.Errorf("%s: %w (use --fetch)", ref, ErrNotCached)
	}
	s, err := eng.scraper(item.Marketplace)
	if err != nil {
		return nil, err
	}
	return s.Details(ctx, postURL)
}

// PostURL turns a listing id or URL into the post URL listings are
// cached under.
func PostURL(marketplace, ref string) string {
	ref = strings.TrimSpace(ref)
	switch marketplace {
	case domain.MarketplaceFacebook:
		return "https://www.facebook.com/marketplace/item/" + domain.ListingID(ref) + "/"
	default:
		return domain.CanonicalURL(ref)
	}
}
