package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/devfolio/portfolio/catalog"
	"github.com/devfolio/portfolio/transport"
)

// Store is the local record cache.
type Store interface {
	Get(catalogID string) (catalog.Record, bool)
	Put(catalogID string, rec catalog.Record) error
}

// Resolver produces a decoded lookup response for a request.
type Resolver interface {
	Resolve(ctx context.Context, req catalog.Request) (catalog.Response, []transport.Attempt, error)
}

// Observer is told how each load ended.
type Observer interface {
	ObserveLookup(state, source string)
}

// Result is the outcome of one load. Err is informational only; callers
// render Record regardless.
type Result struct {
	State   State
	Record  catalog.Record
	Source  string
	Country string
	Err     error
}

// Loader runs the cache → resolver → fallback market → cache pipeline.
// Concurrent loads of the same request share one network fetch.
type Loader struct {
	store           Store
	resolver        Resolver
	fallbackCountry string
	observer        Observer
	logger          zerolog.Logger
	group           singleflight.Group
}

type LoaderOption func(*Loader)

// WithFallbackCountry sets the market retried once on an empty result;
// empty disables the retry.
func WithFallbackCountry(cc string) LoaderOption {
	return func(l *Loader) { l.fallbackCountry = cc }
}

func WithObserver(o Observer) LoaderOption {
	return func(l *Loader) { l.observer = o }
}

func WithLogger(lg zerolog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = lg }
}

func NewLoader(store Store, resolver Resolver, opts ...LoaderOption) *Loader {
	l := &Loader{
		store:           store,
		resolver:        resolver,
		fallbackCountry: catalog.FallbackCountry,
		logger:          zerolog.Nop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load never fails outright: every path ends in Success, NotFound or Failed.
// When ctx is cancelled the caller gets Failed immediately, while a shared
// fetch already in flight is left to finish and populate the cache.
func (l *Loader) Load(ctx context.Context, req catalog.Request, fallbackTitle string) Result {
	if rec, ok := l.store.Get(req.ID); ok {
		l.observe(Success, "cache")
		return Result{State: Success, Record: withTitle(rec, fallbackTitle), Source: "cache", Country: req.Country}
	}

	detached := context.WithoutCancel(ctx)
	ch := l.group.DoChan(req.String(), func() (any, error) {
		return l.fetch(detached, req), nil
	})

	select {
	case <-ctx.Done():
		return Result{State: Failed, Record: catalog.Placeholder(fallbackTitle), Err: ctx.Err()}
	case res := <-ch:
		r := res.Val.(Result)
		if r.State != Success {
			r.Record = catalog.Placeholder(fallbackTitle)
		} else {
			r.Record = withTitle(r.Record, fallbackTitle)
		}
		return r
	}
}

// fetch is shared by coalesced callers, so nothing caller-specific goes into
// the record it returns or caches.
func (l *Loader) fetch(ctx context.Context, req catalog.Request) Result {
	res := l.fetchMarket(ctx, req)
	if res.State == NotFound && l.fallbackCountry != "" && req.Country != l.fallbackCountry {
		fb := req.WithCountry(l.fallbackCountry)
		l.logger.Debug().Str("id", req.ID).Str("country", req.Country).Str("fallback", fb.Country).Msg("no result in market, trying fallback")
		res = l.fetchMarket(ctx, fb)
	}

	l.observe(res.State, "network")
	if res.State != Success {
		l.logger.Info().Err(res.Err).Str("id", req.ID).Str("state", res.State.String()).Msg("catalog enrichment degraded to fallback")
		return res
	}

	if err := l.store.Put(req.ID, res.Record); err != nil {
		l.logger.Warn().Err(err).Str("id", req.ID).Msg("cache write failed")
	}
	return res
}

func (l *Loader) fetchMarket(ctx context.Context, req catalog.Request) Result {
	resp, _, err := l.resolver.Resolve(ctx, req)
	if err != nil {
		return Result{State: Failed, Country: req.Country, Source: "network", Err: err}
	}
	first, err := resp.First()
	if errors.Is(err, catalog.ErrNotFound) {
		return Result{State: NotFound, Country: req.Country, Source: "network", Err: fmt.Errorf("%s: %w", req, err)}
	}
	return Result{
		State:   Success,
		Record:  catalog.Normalize(first, ""),
		Country: req.Country,
		Source:  "network",
	}
}

// withTitle fills in the caller's title when the catalog had no name.
func withTitle(rec catalog.Record, title string) catalog.Record {
	if rec.DisplayName == "" {
		rec.DisplayName = title
	}
	return rec
}

func (l *Loader) observe(s State, source string) {
	if l.observer != nil {
		l.observer.ObserveLookup(s.String(), source)
	}
}
