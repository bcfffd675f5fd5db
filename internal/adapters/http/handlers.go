package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dandedj/csp-client/internal/core/domain"
	"github.com/dandedj/csp-client/internal/core/ports"
	"github.com/dandedj/csp-client/internal/core/usecases"
)

const maxListLimit = 800

// parseBounds reads the four bound query parameters. They are
// all-or-nothing: none present returns (nil, true), all four present
// and forming a valid box returns the box, anything else is a caller
// error.
func parseBounds(c *fiber.Ctx) (*domain.ViewportBounds, bool) {
	names := []string{"north", "south", "east", "west"}
	present := 0
	for _, n := range names {
		if c.Query(n) != "" {
			present++
		}
	}
	if present == 0 {
		return nil, true
	}
	if present != len(names) {
		return nil, false
	}

	b := domain.ViewportBounds{
		North: c.QueryFloat("north"),
		South: c.QueryFloat("south"),
		East:  c.QueryFloat("east"),
		West:  c.QueryFloat("west"),
	}
	if !b.Valid() {
		return nil, false
	}
	return &b, true
}

func parseConfidence(c *fiber.Ctx, fallback int) (int, bool) {
	threshold := c.QueryInt("confidence_threshold", fallback)
	if threshold < 0 || threshold > 100 {
		return 0, false
	}
	return threshold, true
}

// ListPlaquesHandler proxies the catalog listing with spatial and
// confidence filtering.
func ListPlaquesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		threshold, ok := parseConfidence(c, deps.Cfg.API.ConfidenceThreshold)
		if !ok {
			return errBadRequest(c, "confidence_threshold must be 0-100")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > maxListLimit {
			limit = 100
		}

		bounds, ok := parseBounds(c)
		if !ok {
			return errBadRequest(c, "bounds require all of north, south, east, west forming a valid box")
		}

		batch, err := deps.Source.FetchAll(c.UserContext(), ports.FetchOptions{
			ConfidenceThreshold: threshold,
			Grouped:             c.QueryBool("grouped", false),
			Limit:               limit,
			Offset:              offset,
			Bounds:              bounds,
		})
		if err != nil {
			return upstreamError(c, err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: batch.TotalCount}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: batch.Records, Pagination: pg})
	}
}

// SearchPlaquesHandler performs free-text search against the catalog.
func SearchPlaquesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		threshold, ok := parseConfidence(c, deps.Cfg.API.ConfidenceThreshold)
		if !ok {
			return errBadRequest(c, "confidence_threshold must be 0-100")
		}
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > maxListLimit {
			limit = 100
		}
		offset := c.QueryInt("offset", 0)
		if offset < 0 {
			offset = 0
		}

		batch, err := deps.Source.Search(c.UserContext(), query, ports.SearchOptions{
			ConfidenceThreshold: threshold,
			Limit:               limit,
			Offset:              offset,
		})
		if err != nil {
			return upstreamError(c, err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: batch.TotalCount, Filtered: batch.FilteredCount}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: batch.Records, Pagination: pg})
	}
}

// GetPlaqueHandler returns a single plaque by id, through the detail
// cache.
func GetPlaqueHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "plaque id is required")
		}

		rec, err := deps.Detail.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, domain.ErrPlaqueNotFound) {
				return errNotFound(c, "plaque not found")
			}
			return upstreamError(c, err)
		}
		return c.JSON(rec)
	}
}

// LegacyPlaqueHandler serves the old ?id= detail form. Kept for
// clients that predate the path-parameter route; carries deprecation
// headers via the router.
func LegacyPlaqueHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Query("id")
		if id == "" {
			return errBadRequest(c, "id query parameter is required")
		}

		rec, err := deps.Detail.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, domain.ErrPlaqueNotFound) {
				return errNotFound(c, "plaque not found")
			}
			return upstreamError(c, err)
		}
		return c.JSON(rec)
	}
}

// PhotoPlaquesHandler lists every plaque extracted from one source
// photo.
func PhotoPlaquesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		photoID := c.Params("id")
		if photoID == "" {
			return errBadRequest(c, "photo id is required")
		}
		threshold, ok := parseConfidence(c, deps.Cfg.API.ConfidenceThreshold)
		if !ok {
			return errBadRequest(c, "confidence_threshold must be 0-100")
		}

		records, err := deps.Source.FetchByPhotoID(c.UserContext(), photoID, threshold)
		if err != nil {
			return upstreamError(c, err)
		}
		return c.JSON(records)
	}
}

// MarkersHandler returns the density-managed render list for a
// viewport: the same zoom-driven limits and clustering the map
// sessions use, exposed for stateless clients.
func MarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zoom := c.QueryInt("zoom", -1)
		if zoom < 0 || zoom > 22 {
			return errBadRequest(c, "zoom is required and must be 0-22")
		}

		bounds, ok := parseBounds(c)
		if !ok {
			return errBadRequest(c, "bounds require all of north, south, east, west forming a valid box")
		}
		if deps.Policy.UseBoundsFilter(zoom) && bounds == nil {
			return errBadRequest(c, "bounds are required at this zoom level")
		}

		threshold, ok := parseConfidence(c, deps.Cfg.API.ConfidenceThreshold)
		if !ok {
			return errBadRequest(c, "confidence_threshold must be 0-100")
		}

		fetchBounds := bounds
		if !deps.Policy.UseBoundsFilter(zoom) {
			fetchBounds = nil
		}
		batch, err := deps.Source.FetchAll(c.UserContext(), ports.FetchOptions{
			ConfidenceThreshold: threshold,
			Limit:               deps.Policy.MarkerLimit(zoom),
			Bounds:              fetchBounds,
		})
		if err != nil {
			return upstreamError(c, err)
		}

		markers := usecases.BuildMarkers(batch.Records, zoom, deps.Policy)
		return c.JSON(fiber.Map{
			"zoom":    zoom,
			"total":   batch.TotalCount,
			"markers": markers,
		})
	}
}

// BoundaryHandler serves the park outline GeoJSON.
func BoundaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := deps.Boundary.GeoJSON()
		if !ok {
			return errNotFound(c, "no boundary configured")
		}
		c.Set("Content-Type", "application/geo+json")
		return c.Send(raw)
	}
}

// CatalogStats summarizes the upstream catalog and this gateway's map
// configuration.
type CatalogStats struct {
	TotalPlaques        int     `json:"total_plaques"`
	ConfidenceThreshold int     `json:"confidence_threshold"`
	CenterLat           float64 `json:"center_lat"`
	CenterLng           float64 `json:"center_lng"`
	InitialZoom         int     `json:"initial_zoom"`
	BoundaryLoaded      bool    `json:"boundary_loaded"`
}

// StatsHandler reports catalog totals and the configured initial view.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		batch, err := deps.Source.FetchAll(c.UserContext(), ports.FetchOptions{
			ConfidenceThreshold: deps.Cfg.API.ConfidenceThreshold,
			Limit:               1,
		})
		if err != nil {
			return upstreamError(c, err)
		}

		_, boundaryLoaded := deps.Boundary.Envelope()
		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(CatalogStats{
			TotalPlaques:        batch.TotalCount,
			ConfidenceThreshold: deps.Cfg.API.ConfidenceThreshold,
			CenterLat:           deps.Cfg.Map.CenterLat,
			CenterLng:           deps.Cfg.Map.CenterLng,
			InitialZoom:         deps.Cfg.Map.InitialZoom,
			BoundaryLoaded:      boundaryLoaded,
		})
	}
}
