// Package app assembles the catalog stack from configuration.
package app

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/devfolio/portfolio/cache"
	"github.com/devfolio/portfolio/catalog"
	"github.com/devfolio/portfolio/internal/config"
	"github.com/devfolio/portfolio/internal/enrich"
	"github.com/devfolio/portfolio/internal/metrics"
	"github.com/devfolio/portfolio/transport"
)

// NewLogger returns the process logger at the configured level.
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

// HTTPClient is shared by every outbound catalog request. Responses are kept
// in memory and revalidated per upstream cache headers.
func HTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: httpcache.NewMemoryCacheTransport(),
	}
}

// Store opens the configured record cache. The returned close func is never nil.
func Store(cfg *config.Config) (*cache.CatalogStore, func() error, error) {
	switch cfg.Cache.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		return cache.NewCatalogStore(cache.NewRedisCache(rdb), cfg.Cache.TTL), rdb.Close, nil
	default:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file cache: %w", err)
		}
		return cache.NewCatalogStore(fc, cfg.Cache.TTL), func() error { return nil }, nil
	}
}

// Registry registers every strategy kind with its configured endpoint.
func Registry(cfg *config.Config, client *http.Client) *transport.Registry {
	reg := transport.NewRegistry()
	reg.Register(transport.NewFirstParty(cfg.Catalog.FirstPartyURL, client))
	reg.Register(transport.NewDirect(cfg.Catalog.Host, client))
	reg.Register(transport.NewDevProxy(cfg.Catalog.DevProxyURL, client))
	reg.Register(transport.NewRelay(cfg.Catalog.RelayURL, cfg.Catalog.Host, cfg.Catalog.RelayRPS, client))
	return reg
}

// Resolver builds the ordered, environment-filtered transport chain.
func Resolver(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) (*transport.Resolver, error) {
	client := HTTPClient(0)
	strategies, err := Registry(cfg, client).Order(cfg.Catalog.StrategyOrder)
	if err != nil {
		return nil, err
	}
	opts := []transport.ResolverOption{
		transport.WithAttemptTimeout(cfg.Catalog.AttemptTimeout),
		transport.WithLogger(logger.With().Str("component", "resolver").Logger()),
	}
	if m != nil {
		opts = append(opts, transport.WithObserver(m))
	}
	return transport.NewResolver(strategies, cfg.Env(), opts...), nil
}

// CatalogClient talks to the catalog host directly; used server side.
func CatalogClient(cfg *config.Config, logger zerolog.Logger) *catalog.Client {
	return catalog.New(
		catalog.WithHTTPClient(HTTPClient(cfg.Catalog.AttemptTimeout)),
		catalog.WithBaseURL(cfg.Catalog.Host),
		catalog.WithFallbackCountry(cfg.Catalog.FallbackCountry),
		catalog.WithLogger(logger.With().Str("component", "catalog").Logger()),
	)
}

// Loader wires store and resolver into the enrichment pipeline.
func Loader(cfg *config.Config, store enrich.Store, resolver enrich.Resolver, m *metrics.Metrics, logger zerolog.Logger) *enrich.Loader {
	opts := []enrich.LoaderOption{
		enrich.WithFallbackCountry(cfg.Catalog.FallbackCountry),
		enrich.WithLogger(logger.With().Str("component", "enrich").Logger()),
	}
	if m != nil {
		opts = append(opts, enrich.WithObserver(m))
	}
	return enrich.NewLoader(store, resolver, opts...)
}
