// Package cache provides the bounded, TTL-expiring, LRU-evicting store the
// tool surface uses to serve repeated identical requests without
// re-running the aggregation pipeline.
//
// It wraps hashicorp/golang-lru/v2's expirable LRU, which natively
// combines the two eviction policies §4.C asks for (capacity-bounded LRU
// plus uniform TTL) in one data structure; see DESIGN.md for why this
// library was chosen.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultTTL and DefaultCapacity match the environment defaults in §6.
const (
	DefaultTTL      = 300 * time.Second
	DefaultCapacity = 1000
)

// Cache is a process-wide singleton; all methods are safe for concurrent
// use (the underlying expirable.LRU serializes access internally).
type Cache struct {
	store *lru.LRU[string, []byte]
}

// New builds a Cache with the given TTL and capacity.
func New(ttl time.Duration, capacity int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{store: lru.NewLRU[string, []byte](capacity, nil, ttl)}
}

// Key hashes an operation name and its normalized parameters into a stable
// cache key: hash of (operation, domain-or-TOP, normalized filters).
func Key(operation string, domainOrTop string, filters map[string]any) string {
	payload := struct {
		Op      string         `json:"op"`
		Domain  string         `json:"domain"`
		Filters map[string]any `json:"filters"`
	}{operation, domainOrTop, filters}
	b, _ := json.Marshal(payload)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached value and true on a hit. expirable.LRU already
// evicts on TTL expiry and promotes to MRU on access internally.
func (c *Cache) Get(key string) ([]byte, bool) {
	return c.store.Get(key)
}

// Put inserts or overwrites a value at key, moving it to the MRU end; if
// the store is over capacity the LRU entry is evicted.
func (c *Cache) Put(key string, value []byte) {
	c.store.Add(key, value)
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	return c.store.Len()
}
