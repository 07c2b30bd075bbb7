// Package content loads the site's editable data: projects, privacy pages
// and the static asset manifest.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/devfolio/portfolio/internal/enrich"
)

var ErrNotFound = errors.New("content not found")

// SiteFile is the projects document inside the content directory.
const SiteFile = "content.json"

type Project struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Tech         []string `json:"tech"`
	ImageURL     string   `json:"imageUrl"`
	Link         string   `json:"link"`
	AppStoreURL  string   `json:"appStoreUrl,omitempty"`
	PlayStoreURL string   `json:"playStoreUrl,omitempty"`
	// AppStoreID enables catalog enrichment when set.
	AppStoreID string `json:"appStoreId,omitempty"`
	Country    string `json:"country,omitempty"`
}

type Site struct {
	Title    string    `json:"title"`
	Projects []Project `json:"projects"`
}

// LoadSite reads and decodes SiteFile from fsys.
func LoadSite(fsys fs.FS) (*Site, error) {
	b, err := fs.ReadFile(fsys, SiteFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", SiteFile, ErrNotFound)
		}
		return nil, err
	}
	var s Site
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", SiteFile, err)
	}
	for i := range s.Projects {
		if s.Projects[i].Tech == nil {
			s.Projects[i].Tech = []string{}
		}
	}
	return &s, nil
}

// ItemConfig maps a project onto an enrichable item. A project without an
// App Store id yields a config that stays idle.
func (p Project) ItemConfig(defaultCountry, placeholderIcon string) enrich.ItemConfig {
	country := strings.TrimSpace(p.Country)
	if country == "" {
		country = defaultCountry
	}
	icon := placeholderIcon
	if p.ImageURL != "" {
		icon = p.ImageURL
	}
	return enrich.ItemConfig{
		CatalogID:       strings.TrimSpace(p.AppStoreID),
		Country:         country,
		Title:           p.Title,
		PlaceholderIcon: icon,
	}
}

func (s *Site) ItemConfigs(defaultCountry, placeholderIcon string) []enrich.ItemConfig {
	out := make([]enrich.ItemConfig, len(s.Projects))
	for i, p := range s.Projects {
		out[i] = p.ItemConfig(defaultCountry, placeholderIcon)
	}
	return out
}

// CatalogItems lists the projects that reference an App Store id, once per
// id and storefront.
func (s *Site) CatalogItems(defaultCountry string) []enrich.ItemConfig {
	seen := map[string]bool{}
	var out []enrich.ItemConfig
	for _, ic := range s.ItemConfigs(defaultCountry, "") {
		key := ic.CatalogID + "@" + ic.Country
		if ic.CatalogID == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ic)
	}
	return out
}
