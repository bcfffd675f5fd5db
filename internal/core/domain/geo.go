package domain

import "math"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ViewportBounds is the geographic rectangle currently visible on the
// map.
type ViewportBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Valid reports whether the bounds describe a non-degenerate box. Boxes
// crossing the antimeridian (east < west) are rejected rather than
// wrapped; callers treat invalid bounds as absent.
func (b ViewportBounds) Valid() bool {
	for _, v := range []float64{b.North, b.South, b.East, b.West} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.North > b.South && b.East > b.West
}

// Contains reports whether a point lies inside the bounds.
func (b ViewportBounds) Contains(p GeoPoint) bool {
	return p.Lat <= b.North && p.Lat >= b.South && p.Lng <= b.East && p.Lng >= b.West
}

// Viewport is a settled map view: bounds plus integer zoom level.
type Viewport struct {
	Bounds ViewportBounds `json:"bounds"`
	Zoom   int            `json:"zoom"`
}
