package httpapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
)

type countingSearcher struct {
	calls   int
	results []domain.SearchResultItem
	err     error
}

func (s *countingSearcher) Search(_ context.Context, _ domain.SearchRequest) ([]domain.SearchResultItem, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.SearchResultItem(nil), s.results...), nil
}

func sampleItem(id string) domain.SearchResultItem {
	return domain.SearchResultItem{
		Source:         domain.SourceID{Provider: "serviciospe", ExternalID: id},
		Name:           id,
		DistanceMeters: 100,
	}
}

func TestNearbyCacheReusesFreshEntries(t *testing.T) {
	inner := &countingSearcher{results: []domain.SearchResultItem{sampleItem("a")}}
	cache := NewNearbyCache(inner, time.Minute)

	var hits, misses int
	cache.OnLookup = func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}

	req := domain.SearchRequest{Lat: -12.05, Lng: -77.03, Radius: 500, Limit: 5}
	for i := 0; i < 3; i++ {
		items, err := cache.Search(context.Background(), req)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(items) != 1 || items[0].Source.ExternalID != "a" {
			t.Fatalf("unexpected results: %+v", items)
		}
	}

	if inner.calls != 1 {
		t.Fatalf("expected single upstream call, got %d", inner.calls)
	}
	if hits != 2 || misses != 1 {
		t.Fatalf("hits=%d misses=%d", hits, misses)
	}
}

func TestNearbyCacheKeysOnParams(t *testing.T) {
	inner := &countingSearcher{results: []domain.SearchResultItem{sampleItem("a")}}
	cache := NewNearbyCache(inner, time.Minute)

	base := domain.SearchRequest{Lat: -12.05, Lng: -77.03, Radius: 500}
	if _, err := cache.Search(context.Background(), base); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	other := base
	other.Category = "farmacia"
	if _, err := cache.Search(context.Background(), other); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if inner.calls != 2 {
		t.Fatalf("different params must miss, got %d upstream calls", inner.calls)
	}
}

func TestNearbyCacheIgnoresTinyCoordinateJitter(t *testing.T) {
	inner := &countingSearcher{results: []domain.SearchResultItem{sampleItem("a")}}
	cache := NewNearbyCache(inner, time.Minute)

	first := domain.SearchRequest{Lat: -12.050001, Lng: -77.030001, Radius: 500}
	second := domain.SearchRequest{Lat: -12.050002, Lng: -77.030002, Radius: 500}

	if _, err := cache.Search(context.Background(), first); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if _, err := cache.Search(context.Background(), second); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if inner.calls != 1 {
		t.Fatalf("sub-10m jitter must share an entry, got %d upstream calls", inner.calls)
	}
}

func TestNearbyCacheExpiresEntries(t *testing.T) {
	inner := &countingSearcher{results: []domain.SearchResultItem{sampleItem("a")}}
	cache := NewNearbyCache(inner, time.Minute)

	current := time.Now()
	cache.now = func() time.Time { return current }

	req := domain.SearchRequest{Lat: -12.05, Lng: -77.03}
	if _, err := cache.Search(context.Background(), req); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := cache.Search(context.Background(), req); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if inner.calls != 2 {
		t.Fatalf("expired entry must refetch, got %d upstream calls", inner.calls)
	}
}

func TestNearbyCacheDoesNotCacheErrors(t *testing.T) {
	inner := &countingSearcher{err: errors.New("down")}
	cache := NewNearbyCache(inner, time.Minute)

	req := domain.SearchRequest{Lat: -12.05, Lng: -77.03}
	for i := 0; i < 2; i++ {
		if _, err := cache.Search(context.Background(), req); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Fatalf("errors must not be cached, got %d upstream calls", inner.calls)
	}
}
