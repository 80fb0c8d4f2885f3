package facebook

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// DefaultBaseURL is the origin searches are sent to.
const DefaultBaseURL = "https://www.facebook.com"

// Accepted option values. The first entry of each "any" list means no
// restriction and is left out of the query.
var (
	Conditions      = []string{"new", "used_like_new", "used_good", "used_fair"}
	DateListed      = []int{0, 1, 7, 30}
	DeliveryMethods = []string{"all", "local_pick_up", "shipping"}
	Availabilities  = []string{"all", "in", "out"}
)

// SearchRequest is one page load of a search.
type SearchRequest struct {
	City     string
	CityName string
	Radius   int
	Phrase   string
	URL      string
}

// SearchRequests expands item into one request per city and search
// phrase. Date, delivery and availability use the first configured value
// on the first search of the item and the last value afterwards.
func SearchRequests(baseURL string, item *domain.Item) []SearchRequest {
	base := url.Values{}
	if item.MaxPrice > 0 {
		base.Set("maxPrice", formatPrice(item.MaxPrice))
	}
	if item.MinPrice > 0 {
		base.Set("minPrice", formatPrice(item.MinPrice))
	}
	if len(item.Condition) > 0 {
		base.Set("itemCondition", strings.Join(item.Condition, ","))
	}
	if days, ok := domain.Pick(item.DateListed, item.SearchedCount); ok && days != 0 {
		base.Set("daysSinceListed", strconv.Itoa(days))
	}
	if method, ok := domain.Pick(item.DeliveryMethod, item.SearchedCount); ok && method != "all" {
		base.Set("deliveryMethod", method)
	}
	if avail, ok := domain.Pick(item.Availability, item.SearchedCount); ok && avail != "all" {
		base.Set("availability", avail)
	}

	var reqs []SearchRequest
	for i, city := range item.SearchCity {
		radius := cityValue([]int(item.Radius), i)
		name := city
		if n := cityValue([]string(item.CityName), i); n != "" {
			name = n
		}

		for _, phrase := range item.SearchPhrases {
			q := url.Values{}
			for k, v := range base {
				q[k] = v
			}
			q.Set("query", phrase)
			if radius > 0 {
				q.Set("radius", strconv.Itoa(radius))
			}
			reqs = append(reqs, SearchRequest{
				City:     city,
				CityName: name,
				Radius:   radius,
				Phrase:   phrase,
				URL:      fmt.Sprintf("%s/marketplace/%s/search?%s", baseURL, url.PathEscape(city), q.Encode()),
			})
		}
	}
	return reqs
}

// cityValue returns the per-city value at i. A single value applies to
// every city.
func cityValue[T any](values []T, i int) T {
	var zero T
	switch {
	case len(values) == 1:
		return values[0]
	case i < len(values):
		return values[i]
	default:
		return zero
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Validate checks the facebook-specific search options.
func Validate(opts *domain.SearchOptions) error {
	var errs []error
	for _, c := range opts.Condition {
		if !slices.Contains(Conditions, c) {
			errs = append(errs, fmt.Errorf("condition %q must be one of %s", c, strings.Join(Conditions, ", ")))
		}
	}
	for _, d := range opts.DateListed {
		if !slices.Contains(DateListed, d) {
			errs = append(errs, fmt.Errorf("date_listed %d must be one of 0, 1, 7, 30", d))
		}
	}
	for _, m := range opts.DeliveryMethod {
		if !slices.Contains(DeliveryMethods, m) {
			errs = append(errs, fmt.Errorf("delivery_method %q must be one of %s", m, strings.Join(DeliveryMethods, ", ")))
		}
	}
	for _, a := range opts.Availability {
		if !slices.Contains(Availabilities, a) {
			errs = append(errs, fmt.Errorf("availability %q must be one of %s", a, strings.Join(Availabilities, ", ")))
		}
	}
	if n := len(opts.Radius); n > 1 && n != len(opts.SearchCity) {
		errs = append(errs, fmt.Errorf("radius needs one value or one per search_city (%d), got %d", len(opts.SearchCity), n))
	}
	if n := len(opts.CityName); n > 0 && n != len(opts.SearchCity) {
		errs = append(errs, fmt.Errorf("city_name needs one value per search_city (%d), got %d", len(opts.SearchCity), n))
	}
	return errors.Join(errs...)
}
