package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultCatalogCacheSizeMB = 8
	DefaultCatalogCacheTTL    = 30 * time.Second
)

// CatalogCache keeps database and collection name lists for a short while.
// Keys are derived from a hash of the connection URI so credentials are never stored.
type CatalogCache struct {
	cache *freecache.Cache
	ttl   time.Duration
}

func NewCatalogCache(sizeMB int, ttl time.Duration) *CatalogCache {
	if sizeMB <= 0 {
		sizeMB = DefaultCatalogCacheSizeMB
	}
	if ttl <= 0 {
		ttl = DefaultCatalogCacheTTL
	}
	return &CatalogCache{
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   ttl,
	}
}

func uriHash(uri string) string {
	sum := sha256.Sum256([]byte(uri))
	return hex.EncodeToString(sum[:])
}

func databasesKey(uri string) []byte {
	return []byte("dbs:" + uriHash(uri))
}

func collectionsKey(uri, database string) []byte {
	return []byte("colls:" + uriHash(uri) + ":" + database)
}

func (c *CatalogCache) get(key []byte) ([]string, bool) {
	raw, err := c.cache.Get(key)
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Warnf("catalog cache get: %s", err)
		}
		return nil, false
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		log.Warnf("catalog cache unmarshal: %s", err)
		return nil, false
	}
	return names, true
}

func (c *CatalogCache) set(key []byte, names []string) error {
	raw, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("marshal names: %w", err)
	}
	if err := c.cache.Set(key, raw, int(c.ttl/time.Second)); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *CatalogCache) Databases(uri string) ([]string, bool) {
	return c.get(databasesKey(uri))
}

func (c *CatalogCache) SetDatabases(uri string, names []string) error {
	return c.set(databasesKey(uri), names)
}

func (c *CatalogCache) Collections(uri, database string) ([]string, bool) {
	return c.get(collectionsKey(uri, database))
}

func (c *CatalogCache) SetCollections(uri, database string, names []string) error {
	return c.set(collectionsKey(uri, database), names)
}

// InvalidateCollections drops the cached collection list; an insert may have created a collection.
func (c *CatalogCache) InvalidateCollections(uri, database string) {
	c.cache.Del(collectionsKey(uri, database))
	c.cache.Del(databasesKey(uri))
}

func (c *CatalogCache) EntryCount() int64 {
	return c.cache.EntryCount()
}
