// Package domain defines the core business types for the marketplace monitor.
package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Marketplace identifiers.
const (
	MarketplaceFacebook = "facebook"
)

// marketplaceOrigins maps a marketplace to the origin used to absolutize
// relative post and image URLs.
var marketplaceOrigins = map[string]string{
	MarketplaceFacebook: "https://www.facebook.com",
}

// Listing is an immutable snapshot of a single marketplace item.
type Listing struct {
	Marketplace string `json:"marketplace"`
	Name        string `json:"name"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	PostURL     string `json:"post_url"`
	Location    string `json:"location"`
	Seller      string `json:"seller"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
}

// RawListing holds the fields scraped from a page before normalization.
type RawListing struct {
	Marketplace string
	Name        string
	Title       string
	Image       string
	Price       string
	PostURL     string
	Location    string
	Seller      string
	Condition   string
	Description string
}

// NewListing normalizes raw scraped fields into a Listing. The post URL
// loses its query string and fragment, and the ID is taken from the last
// non-empty path segment of the canonical URL.
func NewListing(raw RawListing) Listing {
	origin := marketplaceOrigins[raw.Marketplace]
	postURL := CanonicalURL(absolute(origin, raw.PostURL))

	return Listing{
		Marketplace: raw.Marketplace,
		Name:        raw.Name,
		ID:          ListingID(postURL),
		Title:       strings.TrimSpace(raw.Title),
		Image:       absolute(origin, raw.Image),
		Price:       strings.TrimSpace(raw.Price),
		PostURL:     postURL,
		Location:    strings.TrimSpace(raw.Location),
		Seller:      strings.TrimSpace(raw.Seller),
		Condition:   strings.TrimSpace(raw.Condition),
		Description: strings.TrimSpace(raw.Description),
	}
}

// CanonicalURL strips the query string and fragment from a post URL.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

// ListingID returns the last non-empty path segment of a post URL.
func ListingID(raw string) string {
	path := CanonicalURL(raw)
	if u, err := url.Parse(path); err == nil && u.Path != "" {
		path = u.Path
	}
	segments := strings.Split(strings.TrimRight(path, "/"), "/")
	return segments[len(segments)-1]
}

func absolute(origin, raw string) string {
	raw = strings.TrimSpace(raw)
	if origin != "" && strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return origin + raw
	}
	return raw
}

// Hash returns a stable digest over every field of the listing. Two
// snapshots of the same listing ID with different hashes mean the listing
// changed between scrapes.
func (l *Listing) Hash() string {
	d := xxhash.New()
	for _, field := range l.fields() {
		// Length prefix keeps ("ab","c") and ("a","bc") apart.
		_, _ = d.WriteString(strconv.Itoa(len(field)))
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(field)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

func (l *Listing) fields() []string {
	return []string{
		l.Marketplace,
		l.Name,
		l.ID,
		l.Title,
		l.Image,
		l.Price,
		l.PostURL,
		l.Location,
		l.Seller,
		l.Condition,
		l.Description,
	}
}

// Text returns the title and description joined for keyword matching.
func (l *Listing) Text() string {
	return l.Title + " " + l.Description
}

// ParsePrice extracts a numeric amount from a display price such as
// "$1,200" or "CA$45.50". It returns false when no number is present.
func ParsePrice(price string) (float64, bool) {
	var b strings.Builder
	seenDigit := false
	for _, r := range price {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			seenDigit = true
		case r == '.' && seenDigit:
			b.WriteRune(r)
		case r == ',':
			continue
		case seenDigit:
			// First non-numeric rune after the amount ends it.
			v, err := strconv.ParseFloat(b.String(), 64)
			return v, err == nil
		}
	}
	if !seenDigit {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	return v, err == nil
}
