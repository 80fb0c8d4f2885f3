package filter_test

import (
	"testing"

	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/marketplace-monitor/internal/filter"
	"github.com/donaldgifford/marketplace-monitor/internal/metrics"
	"github.com/donaldgifford/marketplace-monitor/pkg/keyword"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

func listing() *domain.Listing {
	return &domain.Listing{
		Marketplace: domain.MarketplaceFacebook,
		Name:        "drone",
		ID:          "42",
		Title:       "DJI Mini 3 Pro drone",
		Price:       "$420",
		PostURL:     "https://www.facebook.com/marketplace/item/42",
		Location:    "Houston, TX",
		Seller:      "Jane Doe",
		Description: "Barely used, comes with case and three batteries",
	}
}

func TestFilter_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		item   domain.Item
		modify func(l *domain.Listing)
		want   filter.Reason
	}{
		{
			name: "empty rules pass",
			item: domain.Item{},
			want: filter.ReasonNone,
		},
		{
			name: "keyword expression matches title",
			item: domain.Item{Keywords: keyword.Expr(`DJI AND (mini OR air) AND NOT broken`)},
			want: filter.ReasonNone,
		},
		{
			name: "keyword found only in description",
			item: domain.Item{Keywords: keyword.List("batteries")},
			want: filter.ReasonNone,
		},
		{
			name: "missing keyword",
			item: domain.Item{Keywords: keyword.List("mavic", "avata")},
			want: filter.ReasonMissingKeyword,
		},
		{
			name: "exclude keyword wins over keywords",
			item: domain.Item{
				Keywords:        keyword.List("dji"),
				ExcludeKeywords: keyword.List("case"),
			},
			want: filter.ReasonExcludedKeyword,
		},
		{
			name: "exclude by description ignores title",
			item: domain.Item{ExcludeByDescription: keyword.List("drone")},
			want: filter.ReasonNone,
		},
		{
			name: "exclude by description",
			item: domain.Item{ExcludeByDescription: keyword.Expr(`"barely used"`)},
			want: filter.ReasonExcludedByDesc,
		},
		{
			name: "below min price",
			item: domain.Item{SearchOptions: domain.SearchOptions{MinPrice: 500}},
			want: filter.ReasonBelowMinPrice,
		},
		{
			name: "above max price",
			item: domain.Item{SearchOptions: domain.SearchOptions{MaxPrice: 400}},
			want: filter.ReasonAboveMaxPrice,
		},
		{
			name:   "unreadable price passes",
			item:   domain.Item{SearchOptions: domain.SearchOptions{MaxPrice: 400}},
			modify: func(l *domain.Listing) { l.Price = "Free" },
			want:   filter.ReasonNone,
		},
		{
			name: "seller location matches",
			item: domain.Item{SearchOptions: domain.SearchOptions{SellerLocations: domain.StringList{"katy", "houston"}}},
			want: filter.ReasonNone,
		},
		{
			name: "seller location outside",
			item: domain.Item{SearchOptions: domain.SearchOptions{SellerLocations: domain.StringList{"austin"}}},
			want: filter.ReasonSellerLocation,
		},
		{
			name: "excluded seller",
			item: domain.Item{SearchOptions: domain.SearchOptions{ExcludeSellers: domain.StringList{"jane"}}},
			want: filter.ReasonExcludedSeller,
		},
		{
			name:   "unknown seller is not excluded",
			item:   domain.Item{SearchOptions: domain.SearchOptions{ExcludeSellers: domain.StringList{"jane"}}},
			modify: func(l *domain.Listing) { l.Seller = "" },
			want:   filter.ReasonNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := listing()
			if tt.modify != nil {
				tt.modify(l)
			}
			item := tt.item
			item.Name = "drone"

			got := filter.New(&item).Check(l)
			assert.Equal(t, tt.want, got.Reason, got.String())
			assert.Equal(t, tt.want == filter.ReasonNone, got.Pass())
		})
	}
}

func TestResult_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pass", filter.Result{}.String())
	assert.Equal(t, "keywords", filter.Result{Reason: filter.ReasonMissingKeyword}.String())
	assert.Equal(t, "exclude_sellers: Jane",
		filter.Result{Reason: filter.ReasonExcludedSeller, Detail: "Jane"}.String())
}

func TestFilter_DetailNamesRule(t *testing.T) {
	t.Parallel()

	item := &domain.Item{Name: "drone", Keywords: keyword.List("mavic", "avata")}
	got := filter.New(item).Check(listing())
	assert.Equal(t, "keywords: mavic, avata", got.String())
}

func TestFilter_Precheck(t *testing.T) {
	t.Parallel()

	item := &domain.Item{
		Name:            "drone",
		Keywords:        keyword.List("batteries"),
		ExcludeKeywords: keyword.List("broken"),
		SearchOptions: domain.SearchOptions{
			MaxPrice:        500,
			SellerLocations: domain.StringList{"houston"},
		},
	}
	f := filter.New(item)

	// A search card has no description yet, so required keywords wait.
	card := &domain.Listing{Title: "DJI Mini 3", Price: "$420", Location: "Houston, TX"}
	assert.True(t, f.Precheck(card).Pass())
	assert.Equal(t, filter.ReasonMissingKeyword, f.Check(card).Reason)

	card.Title = "DJI Mini 3 broken gimbal"
	assert.Equal(t, filter.ReasonExcludedKeyword, f.Precheck(card).Reason)

	card.Title = "DJI Mini 3"
	card.Price = "$900"
	assert.Equal(t, filter.ReasonAboveMaxPrice, f.Precheck(card).Reason)

	card.Price = "$420"
	card.Location = "Dallas, TX"
	assert.Equal(t, filter.ReasonSellerLocation, f.Precheck(card).Reason)

	card.Location = ""
	assert.True(t, f.Precheck(card).Pass(), "cards without a location wait for details")
}

func TestFilter_CountsExclusions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      []filter.Option
		wantDelta float64
	}{
		{name: "search", wantDelta: 2},
		{name: "dry run", opts: []filter.Option{filter.WithoutMetrics()}, wantDelta: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Each case counts under its own item label.
			item := &domain.Item{Name: "count-" + tt.name, ExcludeKeywords: keyword.List("broken")}
			excluded := metrics.ListingsExcludedTotal.WithLabelValues(item.Name, string(filter.ReasonExcludedKeyword))
			before := ptestutil.ToFloat64(excluded)

			f := filter.New(item, tt.opts...)
			l := listing()
			l.Title = "DJI Mini 3 broken"
			assert.False(t, f.Precheck(l).Pass())
			assert.False(t, f.Check(l).Pass())

			assert.InDelta(t, tt.wantDelta, ptestutil.ToFloat64(excluded)-before, 0.001)
		})
	}
}
