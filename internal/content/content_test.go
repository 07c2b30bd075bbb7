package content

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteJSON = `{
  "title": "Dev",
  "projects": [
    {"id": "kid-tales", "title": "Kid Tales", "appStoreId": "6745828686", "tech": ["Swift"]},
    {"id": "site", "title": "Website", "imageUrl": "/img/site.png"},
    {"id": "kid-tales-us", "title": "Kid Tales US", "appStoreId": "6745828686", "country": "us"}
  ]
}`

func TestLoadSite(t *testing.T) {
	site, err := LoadSite(fstest.MapFS{SiteFile: {Data: []byte(siteJSON)}})
	require.NoError(t, err)
	require.Len(t, site.Projects, 3)
	assert.Equal(t, []string{}, site.Projects[1].Tech)
	items := site.CatalogItems("tr")
	require.Len(t, items, 2)
	assert.Equal(t, "6745828686", items[0].CatalogID)
	assert.Equal(t, "tr", items[0].Country)
	assert.Equal(t, "us", items[1].Country)
	assert.Equal(t, "Kid Tales US", items[1].Title)

	cfgs := site.ItemConfigs("tr", "/img/placeholder.svg")
	assert.Equal(t, "6745828686", cfgs[0].CatalogID)
	assert.Equal(t, "tr", cfgs[0].Country)
	assert.Equal(t, "/img/placeholder.svg", cfgs[0].PlaceholderIcon)
	assert.Empty(t, cfgs[1].CatalogID)
	assert.Equal(t, "/img/site.png", cfgs[1].PlaceholderIcon)
	assert.Equal(t, "us", cfgs[2].Country)
}

func TestCatalogItemsDeduplicates(t *testing.T) {
	site := &Site{Projects: []Project{
		{ID: "a", Title: "A", AppStoreID: "1"},
		{ID: "b", Title: "B", AppStoreID: " 1 "},
		{ID: "c", Title: "C"},
		{ID: "d", Title: "D", AppStoreID: "2", Country: "de"},
	}}
	items := site.CatalogItems("tr")
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Title)
	assert.Equal(t, "2", items[1].CatalogID)
	assert.Equal(t, "de", items[1].Country)
}

func TestLoadSiteMissing(t *testing.T) {
	_, err := LoadSite(fstest.MapFS{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrivacyPageRendersAndSanitizes(t *testing.T) {
	fsys := fstest.MapFS{
		"privacy/kid-tales.md": {Data: []byte(`---
title: Kid Tales Privacy Policy
app: Kid Tales
effective_date: 2025-01-15
---
# Data we collect

We collect **nothing**. <script>alert(1)</script>

[Contact](https://example.com)
`)},
	}
	page, err := NewPages(fsys).Get("Kid-Tales")
	require.NoError(t, err)

	assert.Equal(t, "kid-tales", page.Slug)
	assert.Equal(t, "Kid Tales Privacy Policy", page.Title)
	assert.Equal(t, "Kid Tales", page.App)
	assert.Equal(t, 2025, page.EffectiveDate.Year())

	body := string(page.Body)
	assert.Contains(t, body, "<h1")
	assert.Contains(t, body, "<strong>nothing</strong>")
	assert.NotContains(t, body, "<script")
	assert.True(t, strings.Contains(body, `rel="nofollow"`))
}

func TestPrivacyPageWithoutFrontMatter(t *testing.T) {
	fsys := fstest.MapFS{"privacy/my-app.md": {Data: []byte("Plain text.")}}
	page, err := NewPages(fsys).Get("my-app")
	require.NoError(t, err)
	assert.Equal(t, "My App Privacy Policy", page.Title)
	assert.True(t, page.EffectiveDate.IsZero())
}

func TestPrivacyPageRejectsTraversal(t *testing.T) {
	pages := NewPages(fstest.MapFS{"secret.md": {Data: []byte("x")}})
	for _, slug := range []string{"", "../secret", "a/b", "missing"} {
		_, err := pages.Get(slug)
		assert.ErrorIs(t, err, ErrNotFound, slug)
	}
}

func TestCheckAssets(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, p := range RequiredAssets {
		fsys[p] = &fstest.MapFile{Data: []byte("x")}
	}
	for _, p := range LibraryAssets {
		fsys[p] = &fstest.MapFile{Data: []byte("x")}
	}

	rep, err := CheckAssets(fsys)
	require.NoError(t, err)
	assert.True(t, rep.OK(), "optional assets never fail the check")

	delete(fsys, "robots.txt")
	rep, err = CheckAssets(fsys)
	require.NoError(t, err)
	assert.False(t, rep.OK())
	assert.Equal(t, []string{"robots.txt"}, rep.MissingRequired())
}
