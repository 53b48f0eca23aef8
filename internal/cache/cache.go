package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const keyPrefix = "lightship:v1:"

// FetchKey generates the cache key for a remote export URL
func FetchKey(url string) string {
	return keyPrefix + "fetch:" + digest(url)
}

// DocumentKey generates the cache key for a parsed document. The catalog
// version is part of the key so a refreshed catalog never serves stale matches.
func DocumentKey(content []byte, catalogVersion string) string {
	return keyPrefix + "doc:" + catalogVersion + ":" + digest(string(content))
}

func digest(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// fileName maps a key to a file name that is valid on every platform
func fileName(key string) string {
	return strings.ReplaceAll(key, ":", "_") + ".cache"
}
