package memory

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// DocumentCache keeps extracted patient document text keyed by path and
// modification time, so a rewritten record is a cache miss.
type DocumentCache struct {
	cache *cache.Cache
}

func NewDocumentCache(ttl time.Duration) *DocumentCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &DocumentCache{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func documentKey(path string, modTime time.Time) string {
	return fmt.Sprintf("%s@%d", path, modTime.UnixNano())
}

func (c *DocumentCache) Save(path string, modTime time.Time, text string) {
	c.cache.Set(documentKey(path, modTime), text, cache.DefaultExpiration)
}

func (c *DocumentCache) Get(path string, modTime time.Time) (string, bool) {
	if x, found := c.cache.Get(documentKey(path, modTime)); found {
		return x.(string), true
	}
	return "", false
}

func (c *DocumentCache) Len() int {
	return c.cache.ItemCount()
}
