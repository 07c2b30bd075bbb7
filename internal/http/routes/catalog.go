package routes

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/devfolio/portfolio/catalog"
)

const lookupCacheControl = "public, s-maxage=3600, stale-while-revalidate=86400"

var numericID = regexp.MustCompile(`^\d+$`)

type lookupResponse struct {
	Success            bool     `json:"success"`
	ScreenshotURLs     []string `json:"screenshotUrls"`
	IPadScreenshotURLs []string `json:"ipadScreenshotUrls"`
	IconURL            *string  `json:"iconUrl"`
	Description        *string  `json:"description"`
	DisplayName        *string  `json:"displayName"`
}

func (s *Server) handleCatalogLookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	appID := strings.TrimSpace(q.Get("appId"))
	if appID == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameter", "appId query parameter is required")
		return
	}
	if !numericID.MatchString(appID) {
		writeError(w, http.StatusBadRequest, "Invalid appId format", "appId must be a numeric string")
		return
	}
	country := q.Get("country")
	if strings.TrimSpace(country) == "" {
		country = s.country
	}
	req, err := catalog.NewRequest(appID, country)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	res, served, err := s.Catalog.Lookup(r.Context(), req)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "App not found",
			fmt.Sprintf("No app found with id %s in country %s", req.ID, req.Country))
		return
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Str("id", req.ID).Str("country", req.Country).Msg("catalog lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch App Store data", err.Error())
		return
	}
	if served.Country != req.Country {
		hlog.FromRequest(r).Debug().Str("id", req.ID).Str("country", served.Country).Msg("served from fallback market")
	}

	w.Header().Set("Cache-Control", lookupCacheControl)
	writeJSON(w, http.StatusOK, toLookupResponse(res))
}

func toLookupResponse(res catalog.Result) lookupResponse {
	rec := catalog.Normalize(res, "")
	ipad := res.IPadScreenshotURLs
	if ipad == nil {
		ipad = []string{}
	}
	return lookupResponse{
		Success:            true,
		ScreenshotURLs:     rec.ScreenshotURLs,
		IPadScreenshotURLs: ipad,
		IconURL:            nonEmpty(firstOf(res.ArtworkURL512, res.ArtworkURL100)),
		Description:        nonEmpty(res.Description),
		DisplayName:        nonEmpty(res.TrackName),
	}
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
