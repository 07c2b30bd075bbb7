// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/devfolio/portfolio/transport"
)

// Config holds all application configuration
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	Catalog CatalogConfig
	Cache   CacheConfig
	SMTP    SMTPConfig

	DatabaseURL     string        `env:"DATABASE_URL"`
	ContentDir      string        `env:"CONTENT_DIR" envDefault:"content"`
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"720h"`
	ContactRPS      float64       `env:"CONTACT_RPS" envDefault:"0.2"`
	ContactBurst    int           `env:"CONTACT_BURST" envDefault:"3"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

// CatalogConfig drives the lookup transports.
type CatalogConfig struct {
	Country         string        `env:"CATALOG_COUNTRY" envDefault:"tr"`
	FallbackCountry string        `env:"CATALOG_FALLBACK_COUNTRY" envDefault:"us"`
	Host            string        `env:"CATALOG_HOST" envDefault:"https://itunes.apple.com"`
	DevProxyURL     string        `env:"CATALOG_DEV_PROXY_URL"`
	RelayURL        string        `env:"CATALOG_RELAY_URL" envDefault:"https://api.allorigins.win/get?url="`
	FirstPartyURL   string        `env:"CATALOG_FIRST_PARTY_URL"`
	Development     bool          `env:"CATALOG_DEVELOPMENT"`
	CrossOriginFree bool          `env:"CATALOG_CROSS_ORIGIN_FREE" envDefault:"true"`
	StrategyOrder   []string      `env:"CATALOG_STRATEGIES" envSeparator:","`
	AttemptTimeout  time.Duration `env:"CATALOG_ATTEMPT_TIMEOUT" envDefault:"8s"`
	RelayRPS        float64       `env:"CATALOG_RELAY_RPS" envDefault:"2"`
}

// CacheConfig selects where enriched records persist.
type CacheConfig struct {
	Backend   string        `env:"CACHE_BACKEND" envDefault:"file"`
	Dir       string        `env:"CACHE_DIR"`
	TTL       time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	RedisAddr string        `env:"REDIS_ADDR"`
}

// SMTPConfig holds the contact relay credentials. User falls back to From.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" envDefault:"smtp-mail.outlook.com"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	To       string `env:"SMTP_TO"`
	Secure   bool   `env:"SMTP_SECURE"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Catalog.Country = strings.ToLower(strings.TrimSpace(c.Catalog.Country))
	c.Catalog.FallbackCountry = strings.ToLower(strings.TrimSpace(c.Catalog.FallbackCountry))
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if len(c.Catalog.StrategyOrder) == 0 {
		c.Catalog.StrategyOrder = transport.KindNames(transport.DefaultOrder)
	}
	if c.SMTP.User == "" {
		c.SMTP.User = c.SMTP.From
	}
	if c.SMTP.From == "" {
		c.SMTP.From = c.SMTP.User
	}
	if c.SMTP.To == "" {
		c.SMTP.To = c.SMTP.User
	}
}

// HasSMTP returns true if the contact relay can authenticate
func (c *Config) HasSMTP() bool {
	return c.SMTP.Password != ""
}

// HasRedis returns true if a Redis server is configured
func (c *Config) HasRedis() bool {
	return c.Cache.RedisAddr != ""
}

// Env is the transport environment derived from the catalog settings.
func (c *Config) Env() transport.Env {
	return transport.Env{Development: c.Catalog.Development, CrossOriginFree: c.Catalog.CrossOriginFree}
}

// Validate checks the values that would otherwise fail late at request time
func (c *Config) Validate() error {
	if len(c.Catalog.Country) != 2 {
		return fmt.Errorf("CATALOG_COUNTRY must be a two-letter code, got %q", c.Catalog.Country)
	}
	if c.Catalog.FallbackCountry != "" && len(c.Catalog.FallbackCountry) != 2 {
		return fmt.Errorf("CATALOG_FALLBACK_COUNTRY must be a two-letter code, got %q", c.Catalog.FallbackCountry)
	}
	if _, err := url.Parse(c.Catalog.Host); err != nil {
		return fmt.Errorf("invalid CATALOG_HOST: %w", err)
	}
	if c.Catalog.AttemptTimeout <= 0 {
		return fmt.Errorf("CATALOG_ATTEMPT_TIMEOUT must be positive, got %s", c.Catalog.AttemptTimeout)
	}
	for _, name := range c.Catalog.StrategyOrder {
		switch transport.Kind(strings.ToLower(strings.TrimSpace(name))) {
		case transport.KindDirect, transport.KindDevProxy, transport.KindRelay, transport.KindFirstParty, "":
		default:
			return fmt.Errorf("unknown strategy %q in CATALOG_STRATEGIES", name)
		}
	}
	switch c.Cache.Backend {
	case "file":
	case "redis":
		if !c.HasRedis() {
			return fmt.Errorf("CACHE_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be file or redis, got %q", c.Cache.Backend)
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("SMTP_PORT out of range: %d", c.SMTP.Port)
	}
	return nil
}
