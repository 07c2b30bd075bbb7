// Package catalog decodes and normalizes App Store lookup responses into
// render-safe records.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultHost is the public catalog lookup host.
	DefaultHost = "https://itunes.apple.com"
	// DefaultCountry is the preset market used when a request names none.
	DefaultCountry = "tr"
	// FallbackCountry is tried once when the requested market has no result.
	FallbackCountry = "us"
)

var (
	// ErrNotFound is a well-formed response with zero results.
	ErrNotFound = errors.New("catalog: no results")
	// ErrParse is returned for bodies that are not a known lookup shape.
	ErrParse = errors.New("catalog: unrecognized response")
	// ErrInvalidID is returned for empty or non-numeric catalog ids.
	ErrInvalidID = errors.New("catalog: id must be a numeric string")
)

var idPattern = regexp.MustCompile(`^\d+$`)

// Request identifies one lookup. ID is immutable once issued.
type Request struct {
	ID      string
	Country string
}

// NewRequest validates id and applies the default market.
func NewRequest(id, country string) (Request, error) {
	id = strings.TrimSpace(id)
	if !idPattern.MatchString(id) {
		return Request{}, ErrInvalidID
	}
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		country = DefaultCountry
	}
	return Request{ID: id, Country: country}, nil
}

// WithCountry returns a copy of r targeting another market.
func (r Request) WithCountry(country string) Request {
	r.Country = country
	return r
}

func (r Request) String() string {
	return r.ID + "@" + r.Country
}

// Result mirrors one entry of the lookup "results" array. Optional numeric
// fields are pointers so absence can be told apart from zero.
type Result struct {
	TrackID               int64
	TrackName             string
	BundleID              string
	Description           string
	TrackViewURL          string
	ArtworkURL512         string
	ArtworkURL100         string
	ArtworkURL60          string
	ScreenshotURLs        []string
	IPadScreenshotURLs    []string
	FormattedPrice        string
	Price                 *float64
	PrimaryGenreName      string
	AverageUserRating     *float64
	UserRatingCount       *int64
	TrackContentRating    string
	ContentAdvisoryRating string
}

// Response is the canonical {resultCount, results} lookup envelope.
type Response struct {
	ResultCount int
	Results     []Result
}

// First returns the first result or ErrNotFound.
func (r Response) First() (Result, error) {
	if r.ResultCount == 0 || len(r.Results) == 0 {
		return Result{}, ErrNotFound
	}
	return r.Results[0], nil
}

// Record is the normalized metadata handed to the presentation layer.
// Every field has a usable zero value; ScreenshotURLs is never nil.
type Record struct {
	IconURL        *string  `json:"iconUrl"`
	ScreenshotURLs []string `json:"screenshotUrls"`
	DisplayName    string   `json:"displayName"`
	PriceLabel     string   `json:"priceLabel"`
	Genre          string   `json:"genre"`
	AverageRating  float64  `json:"averageRating"`
	RatingCount    int64    `json:"ratingCount"`
	ContentRating  string   `json:"contentRating"`
	Description    string   `json:"description"`
	BundleID       string   `json:"bundleId"`
	TrackViewURL   string   `json:"trackViewUrl"`
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}
