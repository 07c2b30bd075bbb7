// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/devfolio/portfolio/internal/app"
	"github.com/devfolio/portfolio/internal/config"
	"github.com/devfolio/portfolio/internal/content"
	"github.com/devfolio/portfolio/internal/email"
	appmw "github.com/devfolio/portfolio/internal/http/middleware"
	"github.com/devfolio/portfolio/internal/http/routes"
	"github.com/devfolio/portfolio/internal/inbox"
	"github.com/devfolio/portfolio/internal/jobs"
	"github.com/devfolio/portfolio/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("load config")
	}
	logger := app.NewLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	store, closeStore, err := app.Store(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("cache")
	}
	defer func() { _ = closeStore() }()

	resolver, err := app.Resolver(cfg, m, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("resolver")
	}
	loader := app.Loader(cfg, store, resolver, m, logger)

	// Site content
	fsys := os.DirFS(cfg.ContentDir)
	site, err := content.LoadSite(fsys)
	if err != nil {
		logger.Warn().Err(err).Str("dir", cfg.ContentDir).Msg("no site content, /api/projects disabled")
	}

	// Contact inbox (optional)
	var box inbox.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("db")
		}
		defer pool.Close()
		pg := inbox.NewPG(pool)
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("migrate inbox")
		}
		box = pg
	}

	// Sessions
	sess := scs.New()
	sess.Lifetime = cfg.SessionLifetime
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Secure = false

	sender := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	sender.Secure = cfg.SMTP.Secure

	limiter := appmw.NewRateLimit(cfg.ContactRPS, cfg.ContactBurst)
	go limiter.Run(ctx)

	if cfg.HasRedis() && site != nil {
		enqueueWarmups(cfg, site, logger)
	}

	s := routes.New(routes.ServerOptions{
		Sess:      sess,
		Catalog:   app.CatalogClient(cfg, logger),
		Loader:    loader,
		Site:      site,
		Pages:     content.NewPages(fsys),
		Email:     sender,
		Inbox:     box,
		Metrics:   m,
		RateLimit: limiter,
		Logger:    logger,
		Cfg:       *cfg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("port", cfg.Port).Msg("starting app")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server")
	}
}

// enqueueWarmups asks the worker to refresh every project's record.
func enqueueWarmups(cfg *config.Config, site *content.Site, logger zerolog.Logger) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Cache.RedisAddr})
	defer func() { _ = client.Close() }()

	for _, ic := range site.CatalogItems(cfg.Catalog.Country) {
		task, err := jobs.NewWarmCatalogTask(jobs.WarmCatalogPayload{CatalogID: ic.CatalogID, Country: ic.Country, Title: ic.Title}, time.Hour)
		if err != nil {
			logger.Warn().Err(err).Msg("build warm task")
			continue
		}
		if _, err := client.Enqueue(task); err != nil && !errors.Is(err, asynq.ErrDuplicateTask) && !errors.Is(err, asynq.ErrTaskIDConflict) {
			logger.Warn().Err(err).Str("id", ic.CatalogID).Msg("enqueue warm task")
		}
	}
}
