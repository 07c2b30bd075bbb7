package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNormalizePrecedence(t *testing.T) {
	tests := []struct {
		name        string
		in          Result
		icon        *string
		screenshots []string
		title       string
		price       string
	}{
		{
			name:        "512 wins, iphone screenshots",
			in:          Result{ArtworkURL512: "512", ArtworkURL100: "100", ScreenshotURLs: []string{"s1"}, IPadScreenshotURLs: []string{"p1"}, TrackName: "App", Price: ptr(0.0)},
			icon:        ptr("512"),
			screenshots: []string{"s1"},
			title:       "App",
			price:       "Free",
		},
		{
			name:        "100 then ipad screenshots",
			in:          Result{ArtworkURL100: "100", ArtworkURL60: "60", IPadScreenshotURLs: []string{"p1"}, Price: ptr(2.99)},
			icon:        ptr("100"),
			screenshots: []string{"p1"},
			title:       "Fallback",
			price:       "Paid",
		},
		{
			name:        "60 and formatted price",
			in:          Result{ArtworkURL60: "60", FormattedPrice: "₺49,99", Price: ptr(49.99)},
			icon:        ptr("60"),
			screenshots: []string{},
			title:       "Fallback",
			price:       "₺49,99",
		},
		{
			name:        "nothing at all",
			in:          Result{},
			icon:        nil,
			screenshots: []string{},
			title:       "Fallback",
			price:       "Free",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(tt.in, "Fallback")
			assert.Equal(t, tt.icon, rec.IconURL)
			assert.Equal(t, tt.screenshots, rec.ScreenshotURLs)
			assert.Equal(t, tt.title, rec.DisplayName)
			assert.Equal(t, tt.price, rec.PriceLabel)
		})
	}
}

func TestNormalizeDefaultsAreRenderSafe(t *testing.T) {
	rec := Normalize(Result{}, "")
	require.NotNil(t, rec.ScreenshotURLs)
	assert.Zero(t, rec.AverageRating)
	assert.Zero(t, rec.RatingCount)
	assert.Empty(t, rec.Genre)
	assert.Empty(t, rec.ContentRating)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"screenshotUrls":[]`)
}

func TestNormalizeContentRatingFallsBackToAdvisory(t *testing.T) {
	rec := Normalize(Result{ContentAdvisoryRating: "9+"}, "")
	assert.Equal(t, "9+", rec.ContentRating)
}

func TestEndToEndFreeAppWithoutScreenshots(t *testing.T) {
	body := `{"resultCount":1,"results":[{"trackName":"Kid Tales","artworkUrl512":"https://icon/512","artworkUrl100":"https://icon/100","price":0}]}`
	resp, err := Decode([]byte(body))
	require.NoError(t, err)
	r, err := resp.First()
	require.NoError(t, err)

	rec := Normalize(r, "Kid Tales")
	require.NotNil(t, rec.IconURL)
	assert.Equal(t, "https://icon/512", *rec.IconURL)
	assert.Empty(t, rec.ScreenshotURLs)
	assert.Equal(t, "Free", rec.PriceLabel)
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest(" 6745828686 ", "")
	require.NoError(t, err)
	assert.Equal(t, Request{ID: "6745828686", Country: DefaultCountry}, req)

	req, err = NewRequest("1", "US")
	require.NoError(t, err)
	assert.Equal(t, "us", req.Country)

	for _, bad := range []string{"", "abc", "12a", "-1"} {
		_, err := NewRequest(bad, "tr")
		assert.ErrorIs(t, err, ErrInvalidID)
	}
}
