package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio/transport"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "tr", cfg.Catalog.Country)
	assert.Equal(t, "us", cfg.Catalog.FallbackCountry)
	assert.Equal(t, "https://itunes.apple.com", cfg.Catalog.Host)
	assert.Equal(t, 8*time.Second, cfg.Catalog.AttemptTimeout)
	assert.Equal(t, []string{"firstparty", "direct", "devproxy", "relay"}, cfg.Catalog.StrategyOrder)
	assert.Equal(t, transport.KindNames(transport.DefaultOrder), cfg.Catalog.StrategyOrder)
	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.HasSMTP())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CATALOG_COUNTRY", " DE ")
	t.Setenv("CATALOG_STRATEGIES", "relay,direct")
	t.Setenv("CATALOG_ATTEMPT_TIMEOUT", "250ms")
	t.Setenv("CATALOG_DEVELOPMENT", "true")
	t.Setenv("CATALOG_CROSS_ORIGIN_FREE", "false")
	t.Setenv("SMTP_FROM", "me@example.com")
	t.Setenv("SMTP_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "de", cfg.Catalog.Country)
	assert.Equal(t, []string{"relay", "direct"}, cfg.Catalog.StrategyOrder)
	assert.Equal(t, 250*time.Millisecond, cfg.Catalog.AttemptTimeout)
	assert.Equal(t, transport.Env{Development: true, CrossOriginFree: false}, cfg.Env())

	// user and recipient fall back to the sender address
	assert.Equal(t, "me@example.com", cfg.SMTP.User)
	assert.Equal(t, "me@example.com", cfg.SMTP.To)
	assert.True(t, cfg.HasSMTP())
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("CATALOG_ATTEMPT_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		t.Helper()
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad country", func(c *Config) { c.Catalog.Country = "tur" }, "CATALOG_COUNTRY"},
		{"unknown strategy", func(c *Config) { c.Catalog.StrategyOrder = []string{"carrier-pigeon"} }, "unknown strategy"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }, "REDIS_ADDR"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, "CACHE_BACKEND"},
		{"zero timeout", func(c *Config) { c.Catalog.AttemptTimeout = 0 }, "CATALOG_ATTEMPT_TIMEOUT"},
		{"smtp port", func(c *Config) { c.SMTP.Port = 70000 }, "SMTP_PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	cfg := base()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = "localhost:6379"
	assert.NoError(t, cfg.Validate())
}
