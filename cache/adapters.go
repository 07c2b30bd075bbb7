package cache

import (
	"encoding/json"
	"time"

	"github.com/devfolio/portfolio/catalog"
)

// CatalogStore adapts a Cache to typed catalog records.
type CatalogStore struct {
	cache Cache
	ttl   time.Duration
}

// NewCatalogStore creates a store with the given TTL (DefaultTTL when <= 0).
func NewCatalogStore(c Cache, ttl time.Duration) *CatalogStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CatalogStore{cache: c, ttl: ttl}
}

// Get returns the cached record for id. Missing, expired and undecodable
// entries are all reported as a miss.
func (s *CatalogStore) Get(catalogID string) (catalog.Record, bool) {
	entry, ok := s.cache.Read(s.cache.KeyFor(catalogID), s.ttl)
	if !ok || entry == nil {
		return catalog.Record{}, false
	}
	var rec catalog.Record
	if err := json.Unmarshal(entry.Data, &rec); err != nil {
		return catalog.Record{}, false
	}
	if rec.ScreenshotURLs == nil {
		rec.ScreenshotURLs = []string{}
	}
	return rec, true
}

// Put overwrites the entry for id, stamping the current time.
func (s *CatalogStore) Put(catalogID string, rec catalog.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.cache.Write(s.cache.KeyFor(catalogID), &Entry{Data: data})
}
