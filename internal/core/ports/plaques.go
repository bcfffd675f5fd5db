package ports

import (
	"context"

	"github.com/dandedj/csp-client/internal/core/domain"
)

// FetchOptions parameterize a listing fetch.
type FetchOptions struct {
	ConfidenceThreshold int
	Grouped             bool
	Limit               int
	Offset              int
	// Bounds restricts results spatially. Applied only when valid; the
	// client never sends a partial box.
	Bounds *domain.ViewportBounds
}

// SearchOptions parameterize a free-text search.
type SearchOptions struct {
	ConfidenceThreshold int
	Limit               int
	Offset              int
}

// PlaqueSource fetches plaque records from the remote catalog API.
//
// FetchAll and Search fail soft: on transport errors, non-2xx responses,
// or malformed JSON they return an empty (never nil) batch alongside the
// typed error, so callers can always render something.
type PlaqueSource interface {
	FetchAll(ctx context.Context, opts FetchOptions) (*domain.PlaqueBatch, error)
	Search(ctx context.Context, query string, opts SearchOptions) (*domain.PlaqueBatch, error)
	// FetchByID returns (nil, nil) when the record does not exist under
	// either endpoint form.
	FetchByID(ctx context.Context, id string) (*domain.PlaqueRecord, error)
	FetchByPhotoID(ctx context.Context, photoID string, confidenceThreshold int) ([]domain.PlaqueRecord, error)
}
