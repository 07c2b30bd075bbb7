package main

import (
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/devfolio/portfolio/internal/app"
	"github.com/devfolio/portfolio/internal/config"
	"github.com/devfolio/portfolio/internal/content"
	"github.com/devfolio/portfolio/internal/jobs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("load config")
	}
	logger := app.NewLogger(cfg.LogLevel).With().Str("component", "worker").Logger()
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	if !cfg.HasRedis() {
		logger.Fatal().Msg("REDIS_ADDR is required for the worker")
	}

	store, closeStore, err := app.Store(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("cache")
	}
	defer func() { _ = closeStore() }()

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Cache.RedisAddr}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		Queues: map[string]int{
			jobs.QueueWarm: 5,
			"default":      1,
		},
	})

	warmer := &jobs.Warmer{Catalog: app.CatalogClient(cfg, logger), Store: store, Logger: logger}
	mux := asynq.NewServeMux()
	mux.HandleFunc(jobs.TaskWarmCatalog, warmer.HandleWarmCatalog)

	scheduler := asynq.NewScheduler(redisOpt, nil)
	if site, err := content.LoadSite(os.DirFS(cfg.ContentDir)); err == nil {
		for _, ic := range site.CatalogItems(cfg.Catalog.Country) {
			task, err := jobs.NewWarmCatalogTask(jobs.WarmCatalogPayload{CatalogID: ic.CatalogID, Country: ic.Country, Title: ic.Title}, time.Hour)
			if err != nil {
				logger.Warn().Err(err).Msg("build warm task")
				continue
			}
			// refresh well inside the cache TTL
			if _, err := scheduler.Register("@every 12h", task); err != nil {
				logger.Warn().Err(err).Str("id", ic.CatalogID).Msg("schedule warm task")
			}
		}
	} else {
		logger.Warn().Err(err).Msg("no site content, periodic warmups disabled")
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("scheduler")
	}
	defer scheduler.Shutdown()

	logger.Info().Msg("worker running")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker")
	}
}
