package cache

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// FileCache implements the Cache interface using filesystem storage, one
// JSON document per key.
type FileCache struct {
	dir string
	now Clock
}

// FileOption configures a FileCache.
type FileOption func(*FileCache)

// WithClock overrides the time source used for stamping and expiry.
func WithClock(c Clock) FileOption {
	return func(fc *FileCache) { fc.now = c }
}

// NewFileCache creates a file-based cache rooted at dir.
// If dir is empty, uses ~/.portfolio_cache/catalog.
func NewFileCache(dir string, opts ...FileOption) (*FileCache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".portfolio_cache", "catalog")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	fc := &FileCache{dir: dir, now: time.Now}
	for _, o := range opts {
		o(fc)
	}
	return fc, nil
}

// Read implements Reader interface
func (fc *FileCache) Read(key string, maxAge time.Duration) (*Entry, bool) {
	data, err := os.ReadFile(fc.path(key))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if !entry.hasData() {
		return nil, false
	}

	if !entry.Fresh(fc.now(), maxAge) {
		return nil, false
	}

	return &entry, true
}

// Write implements Writer interface
func (fc *FileCache) Write(key string, entry *Entry) error {
	path := fc.path(key)
	entry.Key = key
	entry.FetchedAt = fc.now()

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	// Write to temporary file first, then rename (atomic operation)
	tmpPath := path + fmt.Sprintf(".tmp.%d", rand.Int())
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// KeyFor implements KeyGenerator interface
func (fc *FileCache) KeyFor(catalogID string) string {
	return KeyFor(catalogID)
}

// path generates the full filesystem path for a cache key
func (fc *FileCache) path(key string) string {
	return filepath.Join(fc.dir, fileName(key))
}

var _ Cache = (*FileCache)(nil)
