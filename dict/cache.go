package dict

import (
	"sync"
	"time"
)

// CacheTTL is how long a fetched dictionary page stays usable.
const CacheTTL = 24 * time.Hour

type cacheKey struct {
	term       string
	languageID int
	url        string
}

type cacheEntry struct {
	content   string
	fetchedAt time.Time
}

// DictionaryCacheManager keeps sanitized dictionary pages in memory. One
// instance is created at start-up and shared by every dictionary view.
type DictionaryCacheManager struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type CacheOption func(*DictionaryCacheManager)

func WithClock(now func() time.Time) CacheOption {
	return func(c *DictionaryCacheManager) { c.now = now }
}

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *DictionaryCacheManager) { c.ttl = ttl }
}

func NewDictionaryCacheManager(opts ...CacheOption) *DictionaryCacheManager {
	c := &DictionaryCacheManager{
		entries: map[cacheKey]cacheEntry{},
		ttl:     CacheTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CachedContent returns the entry for the key. Expired entries are removed
// and reported as absent.
func (c *DictionaryCacheManager) CachedContent(term string, languageID int, sourceURL string) (string, bool) {
	key := cacheKey{term: term, languageID: languageID, url: sourceURL}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.fetchedAt) > c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return e.content, true
}

func (c *DictionaryCacheManager) CacheContent(term string, languageID int, sourceURL, content string) {
	key := cacheKey{term: term, languageID: languageID, url: sourceURL}

	c.mu.Lock()
	c.entries[key] = cacheEntry{content: content, fetchedAt: c.now()}
	c.mu.Unlock()
}

func (c *DictionaryCacheManager) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *DictionaryCacheManager) Clear() {
	c.mu.Lock()
	c.entries = map[cacheKey]cacheEntry{}
	c.mu.Unlock()
}

// CachedEntry is an exported view of one cache entry.
type CachedEntry struct {
	Term       string    `json:"term"`
	LanguageID int       `json:"languageId"`
	URL        string    `json:"url"`
	Content    string    `json:"content"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

// Entries returns the entries that have not expired.
func (c *DictionaryCacheManager) Entries() []CachedEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	var out []CachedEntry
	for k, e := range c.entries {
		if now.Sub(e.fetchedAt) > c.ttl {
			continue
		}
		out = append(out, CachedEntry{Term: k.term, LanguageID: k.languageID, URL: k.url, Content: e.content, FetchedAt: e.fetchedAt})
	}
	return out
}

// Restore inserts an entry keeping its original fetch time. It reports
// false for an entry that has already expired.
func (c *DictionaryCacheManager) Restore(e CachedEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.now().Sub(e.FetchedAt) > c.ttl {
		return false
	}
	key := cacheKey{term: e.Term, languageID: e.LanguageID, url: e.URL}
	if cur, ok := c.entries[key]; ok && cur.fetchedAt.After(e.FetchedAt) {
		return true
	}
	c.entries[key] = cacheEntry{content: e.Content, fetchedAt: e.FetchedAt}
	return true
}
