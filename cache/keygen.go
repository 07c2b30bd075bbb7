package cache

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// KeyPrefix namespaces catalog entries in shared storage.
const KeyPrefix = "catalog_"

// KeyFor returns the storage key for a catalog id.
func KeyFor(catalogID string) string {
	return KeyPrefix + strings.TrimSpace(catalogID)
}

// fileName makes a key safe for use as a filename
func fileName(key string) string {
	// For very long keys, use hash to avoid filesystem limits
	if len(key) > 200 {
		hash := md5.Sum([]byte(key))
		return fmt.Sprintf("hash_%x.json", hash)
	}

	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "?", "_", "&", "_", "=", "_",
		"#", "_", "<", "_", ">", "_", "|", "_", "*", "_", "\"", "_", " ", "_",
	)
	return replacer.Replace(key) + ".json"
}
