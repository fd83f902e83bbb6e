// internal/services/aliexpress_service_test.go
package services

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryID(t *testing.T) {
	assert.Equal(t, "1", CategoryID("Electronics"))
	assert.Equal(t, "66", CategoryID("Beauty & Health"))
	assert.Equal(t, defaultCategoryID, CategoryID("Unknown"))
	assert.Equal(t, defaultCategoryID, CategoryID(""))
}

func TestBuildSearchURL(t *testing.T) {
	raw := BuildSearchURL("https://www.aliexpress.com", SearchParams{
		Keyword:   "phone case",
		Category:  "Electronics",
		MinOrders: 100,
		MaxPrice:  12.5,
	})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/wholesale", u.Path)

	q := u.Query()
	assert.Equal(t, "phone case", q.Get("SearchText"))
	assert.Equal(t, "1", q.Get("catId"))
	assert.Equal(t, "100", q.Get("minOrder"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "12.5", q.Get("maxPrice"))

	raw = BuildSearchURL("https://www.aliexpress.com", SearchParams{Keyword: "x", Page: 3})
	u, err = url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "3", u.Query().Get("page"))
	assert.Empty(t, u.Query().Get("maxPrice"))
}

func TestBuildTrendingAndProductURL(t *testing.T) {
	trending := BuildTrendingURL("https://www.aliexpress.com", "Fashion")
	assert.True(t, strings.HasPrefix(trending, "https://www.aliexpress.com/wholesale?"))
	assert.Contains(t, trending, "catId=3")
	assert.Contains(t, trending, "sortType=total_tranpro_desc")

	assert.Equal(t, "https://www.aliexpress.com/item/1005006.html", BuildProductURL("https://www.aliexpress.com", "1005006"))
}

func TestExtractNumber(t *testing.T) {
	assert.Equal(t, 1234, ExtractNumber("1234 sold"))
	assert.Equal(t, 5, ExtractNumber("5,000+ orders"))
	assert.Zero(t, ExtractNumber("no orders yet"))
}

func TestExtractRating(t *testing.T) {
	assert.InDelta(t, 4.7, ExtractRating("4.7"), 0.0001)
	assert.InDelta(t, 4.6, ExtractRating("46 points"), 0.0001)
	assert.InDelta(t, 5.0, ExtractRating("5 stars"), 0.0001)
	assert.Zero(t, ExtractRating(""))
}

func TestHasUSShipping(t *testing.T) {
	assert.True(t, HasUSShipping("Free Shipping to US"))
	assert.True(t, HasUSShipping("Ships from China to United States"))
	assert.False(t, HasUSShipping("Ships to Korea"))
	assert.False(t, HasUSShipping(""))
}

func TestAnalyzeDetail(t *testing.T) {
	a := AnalyzeDetail("9", &RawDetail{
		Orders:       "300 sold",
		Rating:       "4.5",
		ReviewsCount: "120 Reviews",
		Shipping:     "Free shipping to US",
	})

	assert.Equal(t, "9", a.ProductID)
	assert.Equal(t, 300, a.Orders)
	assert.InDelta(t, 4.5, a.Rating, 0.0001)
	assert.Equal(t, 120, a.ReviewsCount)
	assert.InDelta(t, 1350, a.PopularityScore, 0.0001)
	assert.True(t, a.HasUSShipping)

	unrated := AnalyzeDetail("10", &RawDetail{Orders: "50"})
	assert.Zero(t, unrated.PopularityScore)
	assert.False(t, unrated.HasUSShipping)
}

func TestListingScriptCarriesLimit(t *testing.T) {
	script := listingScript(7, true)
	assert.Contains(t, script, "index >= 7")
	assert.Contains(t, script, "is_trending: true")
}
