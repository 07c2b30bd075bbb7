package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpstream(t *testing.T, byCountry map[string]string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		if r.URL.Path != "/lookup" {
			http.NotFound(w, r)
			return
		}
		body, ok := byCountry[r.URL.Query().Get("country")]
		if !ok {
			body = `{"resultCount":0,"results":[]}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookupFallsBackToUS(t *testing.T) {
	var calls int32
	srv := newUpstream(t, map[string]string{
		"us": `{"resultCount":1,"results":[{"trackName":"US Build","price":0}]}`,
	}, &calls)
	c := New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))

	req, _ := NewRequest("6745828686", "tr")
	res, used, err := c.Lookup(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "US Build", res.TrackName)
	assert.Equal(t, "us", used.Country)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLookupNoFallbackWhenAlreadyUS(t *testing.T) {
	var calls int32
	srv := newUpstream(t, nil, &calls)
	c := New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))

	req, _ := NewRequest("1", "us")
	_, _, err := c.Lookup(context.Background(), req)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := c.Fetch(context.Background(), Request{ID: "1", Country: "tr"})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
}

func TestLookupURL(t *testing.T) {
	c := New(WithBaseURL("https://example.test/itunes-api"))
	got := LookupURL(c.baseURL, Request{ID: "42", Country: "tr"})
	assert.Equal(t, "https://example.test/itunes-api/lookup?country=tr&id=42", got)
}
