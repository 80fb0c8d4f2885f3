// Package store defines the persistent cache behind the monitor. Every
// component that reads or writes cached state receives a Store; nothing
// reaches for a global instance. Entries are partitioned by Category so
// one kind of state can be evicted without touching the others.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/donaldgifford/marketplace-monitor/internal/metrics"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("cache entry not found")

// Category partitions the cache for bulk eviction.
type Category string

// Cache categories.
const (
	// ListingDetails holds scraped listing detail pages keyed by post URL.
	ListingDetails Category = "listing-details"
	// UserNotified holds per user notification records.
	UserNotified Category = "user-notified"
	// SearchedListings remembers listings already examined by a search,
	// together with their AI verdict.
	SearchedListings Category = "searched-listings"
)

// Categories lists every cache category.
var Categories = []Category{ListingDetails, UserNotified, SearchedListings}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return "", fmt.Errorf("unknown cache type %q (want one of: %s)", s, strings.Join(names, ", "))
}

// keySep separates key parts. URLs and names never contain it.
const keySep = "\x1f"

// Key is a composite cache key. The category is always its first element.
type Key struct {
	Category Category
	Parts    []string
}

// NewKey builds a Key.
func NewKey(c Category, parts ...string) Key {
	return Key{Category: c, Parts: parts}
}

func (k Key) encode() []byte {
	return []byte(strings.Join(k.Parts, keySep))
}

func (k Key) String() string {
	return string(k.Category) + ":" + strings.Join(k.Parts, ":")
}

// Store is a category-partitioned key-value cache. A single Set is atomic
// with respect to reads of the same key; there are no multi-key
// transactions.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, key Key) error
	Contains(ctx context.Context, key Key) (bool, error)
	DeleteCategory(ctx context.Context, c Category) (int, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context, c Category) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// Stats counts the entries of every category and publishes the counts as
// the cache_entries gauge.
func Stats(ctx context.Context, s Store) (map[Category]int, error) {
	out := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		n, err := s.Count(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", c, err)
		}
		out[c] = n
		metrics.CacheEntries.WithLabelValues(string(c)).Set(float64(n))
	}
	return out, nil
}
