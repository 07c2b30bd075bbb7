package routes

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/devfolio/portfolio/internal/content"
	"github.com/devfolio/portfolio/internal/enrich"
	"github.com/devfolio/portfolio/internal/settings"
)

type projectView struct {
	content.Project
	State enrich.State `json:"state"`
	View  enrich.View  `json:"view"`
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	if s.Site == nil {
		writeError(w, http.StatusNotFound, "Not found", "no site content configured")
		return
	}
	out := make([]projectView, len(s.Site.Projects))
	for i, p := range s.Site.Projects {
		out[i] = projectView{Project: p, State: enrich.Idle}
	}

	if s.Loader != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.projectsTimeout)
		defer cancel()
		views := enrich.RenderAll(ctx, s.Loader, s.Site.ItemConfigs(s.country, s.placeholderIcon))
		for i := range out {
			out[i].State = views[i].State
			out[i].View = views[i]
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"title": s.Site.Title, "projects": out})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	if s.Settings == nil {
		writeJSON(w, http.StatusOK, settings.Defaults())
		return
	}
	writeJSON(w, http.StatusOK, s.Settings.Load(r.Context()))
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	if s.Settings == nil {
		writeError(w, http.StatusServiceUnavailable, "Sessions disabled", "")
		return
	}
	var patch settings.Settings
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err.Error())
		return
	}
	merged := s.Settings.Load(r.Context()).Merge(patch)
	s.Settings.Save(r.Context(), merged)
	writeJSON(w, http.StatusOK, merged)
}

var privacyTmpl = template.Must(template.New("privacy").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}" data-theme="{{.Theme}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Page.Title}}</title>
</head>
<body>
  <main class="privacy">
    <h1>{{.Page.Title}}</h1>
    {{if not .Page.EffectiveDate.IsZero}}<p class="effective">Effective {{.Page.EffectiveDate.Format "2 January 2006"}}</p>{{end}}
    {{.Page.Body}}
  </main>
</body>
</html>`))

func (s *Server) handlePrivacy(w http.ResponseWriter, r *http.Request) {
	if s.Pages == nil {
		writeError(w, http.StatusNotFound, "Not found", "")
		return
	}
	page, err := s.Pages.Get(chi.URLParam(r, "slug"))
	if errors.Is(err, content.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not found", "no privacy policy for this app")
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render privacy page")
		writeError(w, http.StatusInternalServerError, "Failed to render page", "")
		return
	}

	prefs := settings.Defaults()
	if s.Settings != nil {
		prefs = s.Settings.Load(r.Context())
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = privacyTmpl.Execute(w, map[string]any{"Page": page, "Theme": prefs.Theme, "Lang": prefs.Language})
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("execute privacy template")
	}
}
