package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dandedj/csp-client/internal/core/domain"
	"github.com/dandedj/csp-client/internal/core/ports"
	"github.com/dandedj/csp-client/internal/pkg/metrics"
)

const detailCacheTTLSeconds = 600

// DetailService resolves a single plaque for the detail view, with a
// read-through cache in front of the upstream lookup. The cache is
// optional: with a nil CacheService every lookup goes upstream.
type DetailService struct {
	source ports.PlaqueSource
	cache  ports.CacheService
	log    *slog.Logger
}

func NewDetailService(source ports.PlaqueSource, cache ports.CacheService, log *slog.Logger) *DetailService {
	return &DetailService{source: source, cache: cache, log: log}
}

// Get returns the plaque with the given id, or domain.ErrPlaqueNotFound
// when neither lookup strategy upstream could locate it.
func (s *DetailService) Get(ctx context.Context, id string) (*domain.PlaqueRecord, error) {
	key := detailCacheKey(id)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != nil {
			var rec domain.PlaqueRecord
			if err := json.Unmarshal(raw, &rec); err == nil {
				metrics.CacheHits.WithLabelValues("detail").Inc()
				return &rec, nil
			}
			// Corrupt entry, fall through to the source.
			_ = s.cache.Delete(ctx, key)
		}
		metrics.CacheMisses.WithLabelValues("detail").Inc()
	}

	rec, err := s.source.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrPlaqueNotFound
	}

	if s.cache != nil {
		if raw, err := json.Marshal(rec); err == nil {
			if err := s.cache.Set(ctx, key, raw, detailCacheTTLSeconds); err != nil {
				s.log.Warn("detail cache write failed", "id", id, "error", err)
			}
		}
	}
	return rec, nil
}

func detailCacheKey(id string) string {
	return fmt.Sprintf("plaque:detail:%s", id)
}
