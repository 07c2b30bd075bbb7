package routes

import (
	"context"
	"net/http"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/devfolio/portfolio/catalog"
	"github.com/devfolio/portfolio/internal/config"
	"github.com/devfolio/portfolio/internal/content"
	"github.com/devfolio/portfolio/internal/email"
	"github.com/devfolio/portfolio/internal/enrich"
	appmw "github.com/devfolio/portfolio/internal/http/middleware"
	"github.com/devfolio/portfolio/internal/inbox"
	"github.com/devfolio/portfolio/internal/metrics"
	"github.com/devfolio/portfolio/internal/settings"
)

// Lookuper resolves a catalog id server side, including the market fallback.
type Lookuper interface {
	Lookup(ctx context.Context, req catalog.Request) (catalog.Result, catalog.Request, error)
}

type Server struct {
	Router   *chi.Mux
	Sess     *scs.SessionManager
	Catalog  Lookuper
	Loader   *enrich.Loader
	Site     *content.Site
	Pages    *content.Pages
	Settings *settings.Store
	Email    email.Sender
	Contact  email.ContactRenderer
	Inbox    inbox.Store // optional
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger

	country         string
	placeholderIcon string
	projectsTimeout time.Duration
}

type ServerOptions struct {
	Sess      *scs.SessionManager
	Catalog   Lookuper
	Loader    *enrich.Loader
	Site      *content.Site
	Pages     *content.Pages
	Email     email.Sender
	Inbox     inbox.Store
	Metrics   *metrics.Metrics
	RateLimit *appmw.RateLimit
	Logger    zerolog.Logger
	Cfg       config.Config
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	s := &Server{
		Router:          r,
		Sess:            opts.Sess,
		Catalog:         opts.Catalog,
		Loader:          opts.Loader,
		Site:            opts.Site,
		Pages:           opts.Pages,
		Email:           opts.Email,
		Contact:         email.NewContactRenderer("", opts.Cfg.SMTP.To),
		Inbox:           opts.Inbox,
		Metrics:         opts.Metrics,
		Logger:          opts.Logger,
		country:         opts.Cfg.Catalog.Country,
		placeholderIcon: enrich.DefaultPlaceholderIcon,
		projectsTimeout: 4 * opts.Cfg.Catalog.AttemptTimeout,
	}
	if s.country == "" {
		s.country = catalog.DefaultCountry
	}
	if s.projectsTimeout <= 0 {
		s.projectsTimeout = 30 * time.Second
	}
	if s.Sess != nil {
		s.Settings = settings.NewStore(s.Sess)
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(s.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)
	if s.Metrics != nil {
		r.Use(s.Metrics.Middleware)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found", "")
	})
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("write health check response")
		}
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Route("/api/catalog-lookup", func(r chi.Router) {
		r.Use(appmw.PublicCORS(http.MethodGet))
		r.MethodNotAllowed(methodNotAllowed)
		r.Get("/", s.handleCatalogLookup)
	})

	for _, path := range []string{"/api/send-message", "/api/send-email"} {
		r.Route(path, func(r chi.Router) {
			r.Use(appmw.PublicCORS(http.MethodPost))
			if opts.RateLimit != nil {
				r.Use(opts.RateLimit.Middleware)
			}
			r.MethodNotAllowed(methodNotAllowed)
			r.Post("/", s.handleSendMessage)
		})
	}

	r.Get("/api/projects", s.handleProjects)
	r.Get("/api/settings", s.handleGetSettings)
	r.Put("/api/settings", s.handlePutSettings)
	r.Get("/privacy/{slug}", s.handlePrivacy)

	return s
}

// Handler wraps the router with session loading when sessions are enabled.
func (s *Server) Handler() http.Handler {
	if s.Sess == nil {
		return s.Router
	}
	return s.Sess.LoadAndSave(s.Router)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
}
