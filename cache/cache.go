package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/use-agent/harvest/models"
)

// entry holds a cached result with its creation timestamp.
type entry struct {
	result    *models.ExtractionResult
	createdAt time.Time
}

// Cache is a simple in-memory cache for extraction results.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	stop       chan struct{}
	once       sync.Once
}

// New creates a new Cache with the given maximum number of entries.
// A background goroutine evicts entries older than ttl every ttl/12, but
// no more often than once a second.
func New(maxEntries int, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		stop:       make(chan struct{}),
	}

	go c.cleanupLoop()
	return c
}

// Key derives a cache key from the URL and every extraction switch, so
// two requests share an entry only when they would extract the same data.
func Key(url string, cfg models.ExtractionConfig) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte("|"))
	b, _ := json.Marshal(cfg)
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached result if it exists and is younger than maxAge.
// maxAge is in milliseconds. If maxAge <= 0, no cache lookup is performed.
func (c *Cache) Get(key string, maxAgeMs int) (*models.ExtractionResult, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	maxAge := time.Duration(maxAgeMs) * time.Millisecond
	if time.Since(e.createdAt) > maxAge {
		return nil, false
	}

	return e.result, true
}

// Set stores a result. If the cache is at capacity, an arbitrary entry is
// evicted to make room.
func (c *Cache) Set(key string, result *models.ExtractionResult) {
	if c.maxEntries <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		result:    result,
		createdAt: time.Now(),
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(max(c.ttl/12, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictBefore(time.Now().Add(-c.ttl))
		}
	}
}

func (c *Cache) evictBefore(cutoff time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
}
