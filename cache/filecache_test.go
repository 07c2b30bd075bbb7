package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(t *testing.T) (*FileCache, *fakeClock, string) {
	t.Helper()
	dir := t.TempDir()
	clk := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	fc, err := NewFileCache(dir, WithClock(clk.Now))
	require.NoError(t, err)
	return fc, clk, dir
}

func TestFileCacheTTLBoundary(t *testing.T) {
	fc, clk, _ := newTestCache(t)
	key := fc.KeyFor("6745828686")
	require.NoError(t, fc.Write(key, &Entry{Data: []byte(`{"displayName":"Kid Tales"}`)}))

	clk.Advance(23*time.Hour + 59*time.Minute)
	_, ok := fc.Read(key, DefaultTTL)
	assert.True(t, ok, "entry should be valid at T+23h59m")

	clk.Advance(2 * time.Minute)
	_, ok = fc.Read(key, DefaultTTL)
	assert.False(t, ok, "entry should be expired at T+24h01m")
}

func TestFileCacheExpiredIsNotDeleted(t *testing.T) {
	fc, clk, dir := newTestCache(t)
	key := fc.KeyFor("1")
	require.NoError(t, fc.Write(key, &Entry{Data: []byte(`{}`)}))

	clk.Advance(48 * time.Hour)
	_, ok := fc.Read(key, DefaultTTL)
	require.False(t, ok)

	_, err := os.Stat(filepath.Join(dir, "catalog_1.json"))
	assert.NoError(t, err, "expired entry should stay on disk")

	e, ok := fc.Read(key, 0)
	require.True(t, ok)
	assert.Equal(t, key, e.Key)
}

func TestFileCacheMalformedIsMiss(t *testing.T) {
	fc, _, dir := newTestCache(t)
	bodies := map[string]string{
		"garbage":   "{{{not json",
		"empty":     "",
		"null data": `{"data":null,"timestamp":"2025-03-01T12:00:00Z"}`,
		"no stamp":  `{"data":{"a":1}}`,
		"array":     `[1,2]`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog_bad.json"), []byte(body), 0o600))
			assert.NotPanics(t, func() {
				_, ok := fc.Read("catalog_bad", DefaultTTL)
				assert.False(t, ok)
			})
		})
	}
}

func TestFileCacheMissingIsMiss(t *testing.T) {
	fc, _, _ := newTestCache(t)
	_, ok := fc.Read(fc.KeyFor("404"), DefaultTTL)
	assert.False(t, ok)
}

func TestFileCacheOverwriteRestampsTime(t *testing.T) {
	fc, clk, _ := newTestCache(t)
	key := fc.KeyFor("7")
	require.NoError(t, fc.Write(key, &Entry{Data: []byte(`{"v":1}`)}))
	clk.Advance(20 * time.Hour)
	require.NoError(t, fc.Write(key, &Entry{Data: []byte(`{"v":2}`)}))
	clk.Advance(20 * time.Hour)

	e, ok := fc.Read(key, DefaultTTL)
	require.True(t, ok)
	assert.JSONEq(t, `{"v":2}`, string(e.Data))
}

func TestFileNameSanitizes(t *testing.T) {
	assert.Equal(t, "catalog_1.json", fileName("catalog_1"))
	assert.Equal(t, "a_b_c.json", fileName("a/b:c"))
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	assert.Contains(t, fileName(string(long)), "hash_")
}
