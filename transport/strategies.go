package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"golang.org/x/time/rate"

	"github.com/devfolio/portfolio/catalog"
)

// DevProxyPrefix is the path the local dev server forwards to the catalog
// host after stripping it.
const DevProxyPrefix = "/itunes-api"

// DefaultRelayURL is a public CORS relay that wraps the upstream body in
// a {"contents": "..."} envelope. The target URL is appended escaped.
const DefaultRelayURL = "https://api.allorigins.win/get?url="

// emptyLookup is what a first-party 404 means: the app exists in no market.
var emptyLookup = []byte(`{"resultCount":0,"results":[]}`)

func get(ctx context.Context, client *http.Client, target string) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, fmt.Errorf("read %s: %w", target, err)
	}
	return body, resp, nil
}

func getOK(ctx context.Context, client *http.Client, target string) ([]byte, error) {
	body, resp, err := get(ctx, client, target)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &catalog.StatusError{Code: resp.StatusCode, URL: target}
	}
	return body, nil
}

func mustParse(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}

// Direct calls the catalog host itself.
type Direct struct {
	base   *url.URL
	client *http.Client
}

func NewDirect(host string, client *http.Client) *Direct {
	if host == "" {
		host = catalog.DefaultHost
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Direct{base: mustParse(host), client: client}
}

func (d *Direct) Kind() Kind { return KindDirect }
func (d *Direct) Applicable(env Env) bool { return env.CrossOriginFree }
func (d *Direct) Attempt(ctx context.Context, req catalog.Request) ([]byte, error) {
	return getOK(ctx, d.client, catalog.LookupURL(d.base, req))
}

// DevProxy goes through the development server's reverse proxy, which
// strips DevProxyPrefix and forwards to the catalog host.
type DevProxy struct {
	base   *url.URL
	client *http.Client
}

// NewDevProxy takes the dev server origin, e.g. http://localhost:3000.
func NewDevProxy(origin string, client *http.Client) *DevProxy {
	u := mustParse(origin)
	u.Path = path.Join("/", u.Path, DevProxyPrefix)
	if client == nil {
		client = http.DefaultClient
	}
	return &DevProxy{base: u, client: client}
}

func (d *DevProxy) Kind() Kind { return KindDevProxy }
func (d *DevProxy) Applicable(env Env) bool { return env.Development && d.base.Host != "" }
func (d *DevProxy) Attempt(ctx context.Context, req catalog.Request) ([]byte, error) {
	return getOK(ctx, d.client, catalog.LookupURL(d.base, req))
}

// Relay fetches through a public CORS relay. Requests are paced so a page
// full of items does not trip the relay's abuse limits.
type Relay struct {
	prefix  string
	host    *url.URL
	client  *http.Client
	limiter *rate.Limiter
}

// NewRelay takes the relay prefix the escaped target URL is appended to.
// rps <= 0 disables pacing.
func NewRelay(prefix, catalogHost string, rps float64, client *http.Client) *Relay {
	if catalogHost == "" {
		catalogHost = catalog.DefaultHost
	}
	if client == nil {
		client = http.DefaultClient
	}
	r := &Relay{prefix: prefix, host: mustParse(catalogHost), client: client}
	if rps > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return r
}

func (r *Relay) Kind() Kind { return KindRelay }
func (r *Relay) Applicable(env Env) bool { return strings.TrimSpace(r.prefix) != "" }
func (r *Relay) Attempt(ctx context.Context, req catalog.Request) ([]byte, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// the next token is due after the attempt deadline
			return nil, fmt.Errorf("relay rate limit: %w", context.DeadlineExceeded)
		}
	}
	target := r.prefix + url.QueryEscape(catalog.LookupURL(r.host, req))
	return getOK(ctx, r.client, target)
}

// FirstParty calls our own /api/catalog-lookup endpoint.
type FirstParty struct {
	base   *url.URL
	client *http.Client
}

// NewFirstParty takes the API base, e.g. https://example.dev/api.
// An empty base makes the strategy inapplicable.
func NewFirstParty(apiBase string, client *http.Client) *FirstParty {
	if client == nil {
		client = http.DefaultClient
	}
	var u *url.URL
	if strings.TrimSpace(apiBase) != "" {
		u = mustParse(apiBase)
	}
	return &FirstParty{base: u, client: client}
}

func (f *FirstParty) Kind() Kind { return KindFirstParty }
func (f *FirstParty) Applicable(env Env) bool { return f.base != nil && f.base.Host != "" }
func (f *FirstParty) Attempt(ctx context.Context, req catalog.Request) ([]byte, error) {
	u := *f.base
	u.Path = path.Join("/", u.Path, "catalog-lookup")
	q := url.Values{}
	q.Set("appId", req.ID)
	q.Set("country", req.Country)
	u.RawQuery = q.Encode()
	target := u.String()

	body, resp, err := get(ctx, f.client, target)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return emptyLookup, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &catalog.StatusError{Code: resp.StatusCode, URL: target}
	}
	return body, nil
}

var (
	_ Strategy = (*Direct)(nil)
	_ Strategy = (*DevProxy)(nil)
	_ Strategy = (*Relay)(nil)
	_ Strategy = (*FirstParty)(nil)
)
