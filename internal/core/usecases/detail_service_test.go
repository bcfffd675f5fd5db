package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/dandedj/csp-client/internal/core/domain"
	"github.com/dandedj/csp-client/internal/core/ports"
)

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

type countingSource struct {
	scriptSource
	mu    sync.Mutex
	byID  map[string]*domain.PlaqueRecord
	calls int
	err   error
}

func (s *countingSource) FetchByID(_ context.Context, id string) (*domain.PlaqueRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.byID[id], nil
}

func TestDetailService_CachesLookups(t *testing.T) {
	rec := &domain.PlaqueRecord{ID: "plaque-42", Text: "Reedy River falls"}
	src := &countingSource{byID: map[string]*domain.PlaqueRecord{"plaque-42": rec}}
	cache := newMemCache()
	svc := NewDetailService(src, cache, slog.Default())

	for i := 0; i < 3; i++ {
		got, err := svc.Get(context.Background(), "plaque-42")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Text != rec.Text {
			t.Fatalf("Text = %q, want %q", got.Text, rec.Text)
		}
	}

	if src.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", src.calls)
	}
	if cache.sets != 1 {
		t.Errorf("cache writes = %d, want 1", cache.sets)
	}
}

func TestDetailService_NotFound(t *testing.T) {
	src := &countingSource{byID: map[string]*domain.PlaqueRecord{}}
	svc := NewDetailService(src, nil, slog.Default())

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrPlaqueNotFound) {
		t.Fatalf("err = %v, want ErrPlaqueNotFound", err)
	}
}

func TestDetailService_UpstreamErrorPassesThrough(t *testing.T) {
	upstream := errors.New("gateway timeout")
	src := &countingSource{err: upstream}
	svc := NewDetailService(src, newMemCache(), slog.Default())

	_, err := svc.Get(context.Background(), "plaque-42")
	if !errors.Is(err, upstream) {
		t.Fatalf("err = %v, want upstream error", err)
	}
}

func TestDetailService_CorruptCacheEntryFallsThrough(t *testing.T) {
	rec := &domain.PlaqueRecord{ID: "plaque-42", Text: "Old mill"}
	src := &countingSource{byID: map[string]*domain.PlaqueRecord{"plaque-42": rec}}
	cache := newMemCache()
	cache.entries[detailCacheKey("plaque-42")] = []byte("{not json")

	svc := NewDetailService(src, cache, slog.Default())
	got, err := svc.Get(context.Background(), "plaque-42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Text != "Old mill" {
		t.Fatalf("Text = %q", got.Text)
	}
	if src.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", src.calls)
	}

	// The bad entry was replaced with a good one.
	raw := cache.entries[detailCacheKey("plaque-42")]
	var cached domain.PlaqueRecord
	if err := json.Unmarshal(raw, &cached); err != nil {
		t.Fatalf("cache entry still corrupt: %v", err)
	}
}

var _ ports.CacheService = (*memCache)(nil)
