package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"
)

// Client queries the catalog host directly. It is used server side, where
// cross-origin restrictions do not apply.
type Client struct {
	http            *http.Client
	baseURL         *url.URL
	fallbackCountry string
	logger          zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

// WithFallbackCountry sets the market retried once on an empty result.
// An empty value disables the retry.
func WithFallbackCountry(cc string) Option {
	return func(c *Client) { c.fallbackCountry = cc }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a client whose default transport honours upstream cache headers.
func New(opts ...Option) *Client {
	u, _ := url.Parse(DefaultHost)
	c := &Client{
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: httpcache.NewMemoryCacheTransport(),
		},
		baseURL:         u,
		fallbackCountry: FallbackCountry,
		logger:          zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// LookupURL builds <base>/lookup?id=<id>&country=<cc>.
func LookupURL(base *url.URL, req Request) string {
	u := *base
	u.Path = path.Join("/", u.Path, "lookup")
	q := url.Values{}
	q.Set("id", req.ID)
	q.Set("country", req.Country)
	u.RawQuery = q.Encode()
	return u.String()
}

// Fetch performs a single lookup without any fallback.
func (c *Client) Fetch(ctx context.Context, req Request) (Response, error) {
	target := LookupURL(c.baseURL, req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("lookup %s: %w", req, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Response{}, &StatusError{Code: resp.StatusCode, URL: target}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read lookup %s: %w", req, err)
	}
	return Decode(body)
}

// Lookup returns the first result for req, retrying once against the
// fallback market when the requested one is empty. The returned request is
// the one that produced the result.
func (c *Client) Lookup(ctx context.Context, req Request) (Result, Request, error) {
	resp, err := c.Fetch(ctx, req)
	if err != nil {
		return Result{}, req, err
	}
	first, err := resp.First()
	if err == nil {
		return first, req, nil
	}
	if !errors.Is(err, ErrNotFound) || c.fallbackCountry == "" || req.Country == c.fallbackCountry {
		return Result{}, req, err
	}

	fb := req.WithCountry(c.fallbackCountry)
	c.logger.Debug().Str("id", req.ID).Str("country", req.Country).Str("fallback", fb.Country).Msg("empty result, retrying fallback market")
	resp, err = c.Fetch(ctx, fb)
	if err != nil {
		return Result{}, fb, err
	}
	first, err = resp.First()
	return first, fb, err
}
