// Package dict looks terms up in a language's configured dictionaries,
// keeping sanitized pages in a shared cache.
package dict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/lai323/lutego/model"
	"golang.org/x/sync/singleflight"
)

var ErrNoDictionaries = errors.New("dict: no active term dictionaries")

// DefaultFetchTimeout bounds a shared dictionary fetch.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher loads a page by absolute URL.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

type Service struct {
	fetcher   Fetcher
	cache     *DictionaryCacheManager
	sanitizer *Sanitizer
	serverURL string
	group     singleflight.Group
	timeout   time.Duration
	log       *slog.Logger
}

type ServiceOption func(*Service)

func WithFetchTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewService(fetcher Fetcher, cache *DictionaryCacheManager, serverURL string, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		fetcher:   fetcher,
		cache:     cache,
		sanitizer: NewSanitizer(),
		serverURL: serverURL,
		timeout:   DefaultFetchTimeout,
		log:       logger.With("component", "dict"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns the sanitized page of d for term, from the cache when a
// fresh entry exists. Concurrent lookups of the same page share one fetch.
// The shared fetch outlives any single caller: cancelling ctx only stops
// this caller from waiting.
func (s *Service) Lookup(ctx context.Context, term string, languageID int, d model.DictionaryInfo) (string, error) {
	lookupURL, err := d.LookupURL(term, s.serverURL)
	if err != nil {
		return "", fmt.Errorf("dict: build url for %s: %w", d.DisplayName(), err)
	}

	if content, ok := s.cache.CachedContent(term, languageID, d.URL); ok {
		s.log.DebugContext(ctx, "dictionary cache hit", "term", term, "dictionary", d.DisplayName())
		return content, nil
	}

	key := strconv.Itoa(languageID) + "\x00" + term + "\x00" + d.URL
	ch := s.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		raw, err := s.fetcher.FetchPage(fetchCtx, lookupURL)
		if err != nil {
			return "", err
		}
		content := s.sanitizer.Sanitize(raw)
		s.cache.CacheContent(term, languageID, d.URL, content)
		return content, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.log.WarnContext(ctx, "dictionary fetch failed", "term", term, "dictionary", d.DisplayName(), "error", res.Err)
			return "", fmt.Errorf("dict: lookup %q in %s: %w", term, d.DisplayName(), res.Err)
		}
		return res.Val.(string), nil
	}
}

func (s *Service) Cache() *DictionaryCacheManager {
	return s.cache
}
