package httpapi

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
	"github.com/serviciospe/discovery-assistant/internal/core/ports"
)

// NearbyCache fronts a GeoSearcher with a short-lived in-memory cache.
// Coordinates are rounded to ~10 m before keying, so repeated searches
// from the same spot reuse the previous response.
type NearbyCache struct {
	next ports.GeoSearcher
	ttl  time.Duration

	// OnLookup, when set, is invoked with true on a cache hit.
	OnLookup func(hit bool)

	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	storedAt time.Time
	results  []domain.SearchResultItem
}

func NewNearbyCache(next ports.GeoSearcher, ttl time.Duration) *NearbyCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &NearbyCache{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *NearbyCache) Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResultItem, error) {
	key := cacheKey(req)

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && c.now().Sub(entry.storedAt) < c.ttl {
		results := append([]domain.SearchResultItem(nil), entry.results...)
		c.mu.Unlock()
		c.lookup(true)
		return results, nil
	}
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	c.lookup(false)

	results, err := c.next.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{
		storedAt: c.now(),
		results:  append([]domain.SearchResultItem(nil), results...),
	}
	c.mu.Unlock()

	return append([]domain.SearchResultItem(nil), results...), nil
}

func (c *NearbyCache) lookup(hit bool) {
	if c.OnLookup != nil {
		c.OnLookup(hit)
	}
}

func cacheKey(req domain.SearchRequest) string {
	return fmt.Sprintf("%s,%s|r=%d|c=%s|o=%t|q=%s|p=%d|l=%d",
		roundCoord(req.Lat),
		roundCoord(req.Lng),
		req.Radius,
		req.Category,
		req.OpenNow,
		req.Query,
		req.Page,
		req.Limit,
	)
}

func roundCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
