package domain

import (
	"time"

	"github.com/donaldgifford/marketplace-monitor/pkg/keyword"
)

// Defaults applied to items that do not set them.
const (
	DefaultSearchInterval    = 30 * time.Minute
	DefaultMaxSearchInterval = time.Hour
	DefaultMinRating         = 3
)

// SearchOptions are item options that can also be set once for a whole
// marketplace. Item values take precedence.
type SearchOptions struct {
	SearchRegion      StringList `yaml:"search_region"       json:"search_region,omitempty"`
	SearchCity        StringList `yaml:"search_city"         json:"search_city,omitempty"`
	CityName          StringList `yaml:"city_name"           json:"city_name,omitempty"`
	Radius            IntList    `yaml:"radius"              json:"radius,omitempty"`
	SellerLocations   StringList `yaml:"seller_locations"    json:"seller_locations,omitempty"`
	ExcludeSellers    StringList `yaml:"exclude_sellers"     json:"exclude_sellers,omitempty"`
	MinPrice          float64    `yaml:"min_price"           json:"min_price,omitempty"`
	MaxPrice          float64    `yaml:"max_price"           json:"max_price,omitempty"`
	Condition         StringList `yaml:"condition"           json:"condition,omitempty"`
	DateListed        []int      `yaml:"date_listed"         json:"date_listed,omitempty"`
	DeliveryMethod    StringList `yaml:"delivery_method"     json:"delivery_method,omitempty"`
	Availability      StringList `yaml:"availability"        json:"availability,omitempty"`
	SearchInterval    Duration   `yaml:"search_interval"     json:"search_interval,omitempty"`
	MaxSearchInterval Duration   `yaml:"max_search_interval" json:"max_search_interval,omitempty"`
	Notify            StringList `yaml:"notify"              json:"notify,omitempty"`
	AI                StringList `yaml:"ai"                  json:"ai,omitempty"`
	Rating            int        `yaml:"rating"              json:"rating,omitempty"`
}

// Item is a named set of search criteria and filter rules. Items are
// rebuilt on every configuration reload and read-only during a cycle,
// except for SearchedCount.
type Item struct {
	Name                 string       `yaml:"-"                      json:"name"`
	Marketplace          string       `yaml:"marketplace"            json:"marketplace"`
	Enabled              *bool        `yaml:"enabled"                json:"enabled,omitempty"`
	SearchPhrases        StringList   `yaml:"search_phrases"         json:"search_phrases"`
	Description          string       `yaml:"description"            json:"description,omitempty"`
	Keywords             keyword.Spec `yaml:"keywords"               json:"-"`
	ExcludeKeywords      keyword.Spec `yaml:"exclude_keywords"       json:"-"`
	ExcludeByDescription keyword.Spec `yaml:"exclude_by_description" json:"-"`
	Schedule             string       `yaml:"schedule"               json:"schedule,omitempty"`

	SearchOptions `yaml:",inline"`

	// SearchedCount counts searches of this item since the process started.
	// Marketplaces use it to pick first-run versus follow-up parameters.
	SearchedCount int `yaml:"-" json:"-"`
}

// IsEnabled reports whether the item should be searched. Items are enabled
// unless explicitly disabled.
func (i *Item) IsEnabled() bool {
	return i.Enabled == nil || *i.Enabled
}

// MinRating returns the lowest AI score that still notifies.
func (i *Item) MinRating() int {
	if i.Rating == 0 {
		return DefaultMinRating
	}
	return i.Rating
}

// Pick returns the first value on the first search and the last value
// afterwards, so a wide first sweep can be followed by narrower ones.
func Pick[T any](values []T, searchedCount int) (T, bool) {
	var zero T
	if len(values) == 0 {
		return zero, false
	}
	if searchedCount == 0 {
		return values[0], true
	}
	return values[len(values)-1], true
}

// User is a notification recipient.
type User struct {
	Name       string         `yaml:"-"           json:"name"`
	Email      StringList     `yaml:"email"       json:"email,omitempty"`
	Remind     RemindInterval `yaml:"remind"      json:"remind,omitempty"`
	NotifyWith StringList     `yaml:"notify_with" json:"notify_with,omitempty"`
}

// RemindEnabled reports whether the user wants reminders for listings they
// have already been told about.
func (u *User) RemindEnabled() bool {
	return u.Remind > 0
}
