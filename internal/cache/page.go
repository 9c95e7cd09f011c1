// Package cache provides the process-local, time-bounded caches used by
// the checker: extracted pages by URL, search hits by phrase and finished
// reports by document digest.
package cache

import "time"

// Defaults for the page cache.
const (
	DefaultPageTTL  = 30 * time.Minute
	DefaultPageSize = 500
)

// CachedPage is the extracted text of one URL.
type CachedPage struct {
	URL       string
	Text      string
	FetchedAt time.Time
}

// PageCache maps URLs to extracted text.
type PageCache struct {
	*Store[CachedPage]
}

// NewPageCache returns a page cache. Non-positive arguments use defaults.
func NewPageCache(size int, ttl time.Duration, onGet func(string, bool)) *PageCache {
	if size <= 0 {
		size = DefaultPageSize
	}
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{Store: NewStore[CachedPage]("page", size, ttl, onGet)}
}

// Lookup returns the cached text for url.
func (c *PageCache) Lookup(url string) (CachedPage, bool) {
	return c.Get(url)
}

// Put caches text for url stamped with now.
func (c *PageCache) Put(url, text string, now time.Time) {
	c.Set(url, CachedPage{URL: url, Text: text, FetchedAt: now})
}
