package geojson

import (
	"encoding/json"
	"log/slog"
	"math"
	"os"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/dandedj/csp-client/internal/core/domain"
	"github.com/dandedj/csp-client/internal/core/ports"
)

// Boundary serves the static park outline backing the fit-to-park
// command. It is loaded once at startup; a missing or malformed file
// leaves the provider in a degraded state where Envelope reports false
// and the command becomes a no-op, never an error.
type Boundary struct {
	raw      []byte
	envelope domain.ViewportBounds
	loaded   bool
}

var _ ports.BoundaryProvider = (*Boundary)(nil)

// Load reads a GeoJSON document (geometry, feature, or feature
// collection) from path and computes its bounding box.
func Load(path string, log *slog.Logger) *Boundary {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("boundary file unavailable, fit-to-park disabled", "path", path, "error", err)
		return &Boundary{}
	}

	env, ok := envelopeOf(raw)
	if !ok {
		log.Warn("boundary file has no usable geometry, fit-to-park disabled", "path", path)
		return &Boundary{}
	}

	log.Info("boundary loaded", "path", path,
		"north", env.North, "south", env.South, "east", env.East, "west", env.West)
	return &Boundary{raw: raw, envelope: env, loaded: true}
}

// Envelope returns the boundary's bounding box, or false when the
// document never loaded.
func (b *Boundary) Envelope() (domain.ViewportBounds, bool) {
	return b.envelope, b.loaded
}

// GeoJSON returns the raw document for clients that render the outline.
func (b *Boundary) GeoJSON() ([]byte, bool) {
	return b.raw, b.loaded
}

func envelopeOf(raw []byte) (domain.ViewportBounds, bool) {
	if g, err := geom.UnmarshalGeoJSON(raw); err == nil {
		return boundsFromEnvelopes(g.Envelope())
	}

	var fc geom.GeoJSONFeatureCollection
	if err := json.Unmarshal(raw, &fc); err == nil {
		envs := make([]geom.Envelope, 0, len(fc))
		for _, f := range fc {
			envs = append(envs, f.Geometry.Envelope())
		}
		return boundsFromEnvelopes(envs...)
	}

	var feat geom.GeoJSONFeature
	if err := json.Unmarshal(raw, &feat); err == nil {
		return boundsFromEnvelopes(feat.Geometry.Envelope())
	}

	return domain.ViewportBounds{}, false
}

// boundsFromEnvelopes unions envelopes into one lat/lng box. GeoJSON
// coordinates are lng-first, so X maps to longitude.
func boundsFromEnvelopes(envs ...geom.Envelope) (domain.ViewportBounds, bool) {
	north, east := math.Inf(-1), math.Inf(-1)
	south, west := math.Inf(1), math.Inf(1)
	any := false

	for _, env := range envs {
		min, max, ok := env.MinMaxXYs()
		if !ok {
			continue
		}
		any = true
		south = math.Min(south, min.Y)
		west = math.Min(west, min.X)
		north = math.Max(north, max.Y)
		east = math.Max(east, max.X)
	}

	if !any {
		return domain.ViewportBounds{}, false
	}
	b := domain.ViewportBounds{North: north, South: south, East: east, West: west}
	return b, b.Valid()
}
