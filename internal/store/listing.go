package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// ListingKey is the cache key of a listing's detail page.
func ListingKey(postURL string) Key {
	return NewKey(ListingDetails, domain.CanonicalURL(postURL))
}

// SaveListing caches every field of l under its canonical post URL.
func SaveListing(ctx context.Context, s Store, l *domain.Listing) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encoding listing %s: %w", l.ID, err)
	}
	return s.Set(ctx, ListingKey(l.PostURL), data)
}

// LoadListing reads a cached listing by post URL. It returns ErrNotFound
// when the listing was never cached.
func LoadListing(ctx context.Context, s Store, postURL string) (*domain.Listing, error) {
	data, err := s.Get(ctx, ListingKey(postURL))
	if err != nil {
		return nil, err
	}
	var l domain.Listing
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decoding cached listing %s: %w", postURL, err)
	}
	return &l, nil
}

// SeenRecord remembers the verdict for a listing found by an item search,
// so an unchanged listing is not sent to the AI backend again.
type SeenRecord struct {
	FirstSeen time.Time     `json:"first_seen"`
	Hash      string        `json:"hash"`
	Confirmed bool          `json:"confirmed"`
	Rating    domain.Rating `json:"rating"`
}

// SeenKey is the cache key of an item's verdict on a listing.
func SeenKey(item string, l *domain.Listing) Key {
	return NewKey(SearchedListings, l.Marketplace, item, l.ID)
}

// LoadSeen returns the stored verdict for l under item, or ErrNotFound.
func LoadSeen(ctx context.Context, s Store, item string, l *domain.Listing) (*SeenRecord, error) {
	data, err := s.Get(ctx, SeenKey(item, l))
	if err != nil {
		return nil, err
	}
	var rec SeenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding seen record for %s: %w", l.ID, err)
	}
	return &rec, nil
}

// MarkSeen stores the verdict for l under item.
func MarkSeen(ctx context.Context, s Store, item string, l *domain.Listing, rec *SeenRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding seen record for %s: %w", l.ID, err)
	}
	return s.Set(ctx, SeenKey(item, l), data)
}
