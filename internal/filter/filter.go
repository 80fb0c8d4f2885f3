// Package filter decides whether a scraped listing is worth evaluating for
// an item, and says why when it is not.
package filter

import (
	"fmt"

	"github.com/donaldgifford/marketplace-monitor/internal/metrics"
	"github.com/donaldgifford/marketplace-monitor/pkg/keyword"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// Reason identifies the rule that excluded a listing.
type Reason string

// Exclusion reasons. They double as the "reason" metric label.
const (
	ReasonNone            Reason = ""
	ReasonExcludedKeyword Reason = "exclude_keywords"
	ReasonMissingKeyword  Reason = "keywords"
	ReasonExcludedByDesc  Reason = "exclude_by_description"
	ReasonBelowMinPrice   Reason = "min_price"
	ReasonAboveMaxPrice   Reason = "max_price"
	ReasonSellerLocation  Reason = "seller_locations"
	ReasonExcludedSeller  Reason = "exclude_sellers"
)

// Result is the outcome of checking one listing.
type Result struct {
	Reason Reason
	Detail string
}

// Pass reports whether the listing survived every rule.
func (r Result) Pass() bool {
	return r.Reason == ReasonNone
}

func (r Result) String() string {
	if r.Pass() {
		return "pass"
	}
	if r.Detail == "" {
		return string(r.Reason)
	}
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

// Filter holds the compiled rules of one item. It is safe for concurrent
// use once built.
type Filter struct {
	item        string
	keywords    *keyword.Matcher
	exclude     *keyword.Matcher
	excludeDesc *keyword.Matcher
	locations   *keyword.Matcher
	sellers     *keyword.Matcher

	hasKeywords, hasExclude, hasExcludeDesc, hasLocations, hasSellers bool

	// Rules as written in configuration, for Result.Detail.
	keywordsText, excludeText, excludeDescText string

	minPrice, maxPrice float64

	uncounted bool
}

// Option configures a Filter.
type Option func(*Filter)

// WithoutMetrics keeps exclusions out of the listings excluded counter,
// for checks that do not search.
func WithoutMetrics() Option {
	return func(f *Filter) {
		f.uncounted = true
	}
}

// New compiles the rules of item.
func New(item *domain.Item, opts ...Option) *Filter {
	locations := keyword.List(item.SellerLocations...)
	sellers := keyword.List(item.ExcludeSellers...)

	f := &Filter{
		item:           item.Name,
		keywords:       item.Keywords.Compile(),
		exclude:        item.ExcludeKeywords.Compile(),
		excludeDesc:    item.ExcludeByDescription.Compile(),
		locations:      locations.Compile(),
		sellers:        sellers.Compile(),
		hasKeywords:    !item.Keywords.IsEmpty(),
		hasExclude:     !item.ExcludeKeywords.IsEmpty(),
		hasExcludeDesc: !item.ExcludeByDescription.IsEmpty(),
		hasLocations:   !locations.IsEmpty(),
		hasSellers:     !sellers.IsEmpty(),
		minPrice:       item.MinPrice,
		maxPrice:       item.MaxPrice,

		keywordsText:    item.Keywords.String(),
		excludeText:     item.ExcludeKeywords.String(),
		excludeDescText: item.ExcludeByDescription.String(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Check runs the rules in order and stops at the first one that excludes
// l. Exclusions are counted per item and reason.
func (f *Filter) Check(l *domain.Listing) Result {
	return f.count(f.check(l))
}

// Precheck runs the rules that a search result card can already decide:
// excluded keywords in the title, price bounds and seller location. A
// listing that passes still needs Check once its details are loaded.
func (f *Filter) Precheck(l *domain.Listing) Result {
	return f.count(f.precheck(l))
}

func (f *Filter) count(res Result) Result {
	if !res.Pass() && !f.uncounted {
		metrics.ListingsExcludedTotal.WithLabelValues(f.item, string(res.Reason)).Inc()
	}
	return res
}

func (f *Filter) precheck(l *domain.Listing) Result {
	if f.hasExclude && f.exclude.Match(l.Title) {
		return Result{Reason: ReasonExcludedKeyword, Detail: f.excludeText}
	}
	if res := f.checkPrice(l); !res.Pass() {
		return res
	}
	if f.hasLocations && l.Location != "" && !f.locations.Match(l.Location) {
		return Result{Reason: ReasonSellerLocation, Detail: l.Location}
	}
	return Result{}
}

func (f *Filter) check(l *domain.Listing) Result {
	text := l.Text()

	if f.hasExclude && f.exclude.Match(text) {
		return Result{Reason: ReasonExcludedKeyword, Detail: f.excludeText}
	}
	if f.hasKeywords && !f.keywords.Match(text) {
		return Result{Reason: ReasonMissingKeyword, Detail: f.keywordsText}
	}
	if f.hasExcludeDesc && l.Description != "" && f.excludeDesc.Match(l.Description) {
		return Result{Reason: ReasonExcludedByDesc, Detail: f.excludeDescText}
	}
	if res := f.checkPrice(l); !res.Pass() {
		return res
	}
	if f.hasLocations && !f.locations.Match(l.Location) {
		return Result{Reason: ReasonSellerLocation, Detail: l.Location}
	}
	if f.hasSellers && l.Seller != "" && f.sellers.Match(l.Seller) {
		return Result{Reason: ReasonExcludedSeller, Detail: l.Seller}
	}
	return Result{}
}

// checkPrice passes listings whose price cannot be read, such as "Free"
// or an empty price, since the marketplace already applied the bounds to
// the search.
func (f *Filter) checkPrice(l *domain.Listing) Result {
	if f.minPrice <= 0 && f.maxPrice <= 0 {
		return Result{}
	}
	price, ok := domain.ParsePrice(l.Price)
	if !ok {
		return Result{}
	}
	if f.minPrice > 0 && price < f.minPrice {
		return Result{Reason: ReasonBelowMinPrice, Detail: fmt.Sprintf("%s < %g", l.Price, f.minPrice)}
	}
	if f.maxPrice > 0 && price > f.maxPrice {
		return Result{Reason: ReasonAboveMaxPrice, Detail: fmt.Sprintf("%s > %g", l.Price, f.maxPrice)}
	}
	return Result{}
}
