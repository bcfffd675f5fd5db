package ports

import (
	"context"

	"github.com/dandedj/csp-client/internal/core/domain"
)

// MapController is the narrow capability surface of the host map widget.
// The usecases depend on this interface, never on the concrete widget:
// in production it is a WebSocket session driving a browser map, in
// tests a fake.
type MapController interface {
	Pan(lat, lng float64)
	SetZoom(zoom int)
	FitToBounds(b domain.ViewportBounds)
	// OnViewportSettled registers a callback fired on settled move/zoom
	// states only, never on intermediate drag frames.
	OnViewportSettled(fn func(v domain.Viewport))
}

// URLState mirrors the browser URL's single optional "query" parameter.
type URLState interface {
	// SetQuery sets the query parameter; an empty value removes it.
	SetQuery(q string)
}

// BoundaryProvider supplies the static park boundary used by the
// fit-to-park command. Envelope returns false when the boundary resource
// failed to load, in which case the command degrades to a no-op.
type BoundaryProvider interface {
	Envelope() (domain.ViewportBounds, bool)
	GeoJSON() ([]byte, bool)
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
