package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio/catalog"
)

func TestCatalogStoreRoundTrip(t *testing.T) {
	fc, clk, _ := newTestCache(t)
	store := NewCatalogStore(fc, 0)

	icon := "https://icon/512"
	rec := catalog.Record{IconURL: &icon, ScreenshotURLs: []string{}, DisplayName: "Kid Tales", PriceLabel: "Free"}
	require.NoError(t, store.Put("6745828686", rec))

	got, ok := store.Get("6745828686")
	require.True(t, ok)
	assert.Equal(t, rec, got)

	clk.Advance(25 * time.Hour)
	_, ok = store.Get("6745828686")
	assert.False(t, ok)
}

func TestCatalogStoreUndecodableIsMiss(t *testing.T) {
	fc, _, dir := newTestCache(t)
	store := NewCatalogStore(fc, time.Hour)
	body := `{"key":"catalog_9","data":"just a string","timestamp":"2025-03-01T12:00:00Z"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog_9.json"), []byte(body), 0o600))

	_, ok := store.Get("9")
	assert.False(t, ok)
}

func TestCatalogStoreFillsNilScreenshots(t *testing.T) {
	fc, _, _ := newTestCache(t)
	store := NewCatalogStore(fc, time.Hour)
	require.NoError(t, fc.Write(KeyFor("3"), &Entry{Data: []byte(`{"displayName":"x"}`)}))

	got, ok := store.Get("3")
	require.True(t, ok)
	assert.NotNil(t, got.ScreenshotURLs)
}
