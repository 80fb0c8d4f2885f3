package facebook_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/marketplace-monitor/internal/marketplace/facebook"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestParseSearch(t *testing.T) {
	t.Parallel()

	cards, err := facebook.ParseSearch(fixture(t, "search.html"))
	require.NoError(t, err)
	require.Len(t, cards, 3, "the repeated card is dropped")

	first := domain.NewListing(cards[0])
	assert.Equal(t, "1001", first.ID)
	assert.Equal(t, "https://www.facebook.com/marketplace/item/1001/", first.PostURL)
	assert.Equal(t, "DJI Mini 3 Pro with RC", first.Title)
	assert.Equal(t, "$420", first.Price)
	assert.Equal(t, "Houston, TX", first.Location)
	assert.Equal(t, "https://scontent.example/1001.jpg", first.Image)
	assert.Empty(t, first.Seller)

	assert.Equal(t, "$650", cards[1].Price, "the crossed-out price is dropped")
	assert.Equal(t, "Free", cards[2].Price)
	assert.Empty(t, cards[2].Location)
}

func TestParseDetail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file string
		want domain.RawListing
	}{
		{
			file: "regular.html",
			want: domain.RawListing{
				Marketplace: domain.MarketplaceFacebook,
				PostURL:     "https://www.facebook.com/marketplace/item/1001/",
				Title:       "DJI Mini 3 Pro with RC",
				Price:       "$420",
				Image:       "https://scontent.example/1001-large.jpg",
				Seller:      "Jane Doe",
				Location:    "Houston, TX",
				Condition:   "Used - Like New",
				Description: "Flown twice. Comes with three batteries and a hard case.",
			},
		},
		{
			file: "rental.html",
			want: domain.RawListing{
				Marketplace: domain.MarketplaceFacebook,
				PostURL:     "https://www.facebook.com/marketplace/item/1001/",
				Title:       "Room for rent near downtown",
				Price:       "$150 / Month",
				Image:       "https://scontent.example/2001.jpg",
				Seller:      "Perry Burton",
				Location:    "Houston, TX",
				Description: "Furnished room, utilities included.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()

			got, err := facebook.ParseDetail(fixture(t, tt.file), "https://www.facebook.com/marketplace/item/1001/")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDetail_UnknownLayout(t *testing.T) {
	t.Parallel()

	_, err := facebook.ParseDetail(fixture(t, "unknown.html"), "https://www.facebook.com/marketplace/item/1/")
	require.ErrorIs(t, err, facebook.ErrUnknownLayout)
}
