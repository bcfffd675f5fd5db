package domain

import "errors"

// ErrPlaqueNotFound is returned when a plaque lookup exhausted every
// endpoint form without finding a record.
var ErrPlaqueNotFound = errors.New("plaque not found")

// DefaultPlaqueText is substituted when a legacy record carries an empty
// text array.
const DefaultPlaqueText = "No text available"

// PlaqueRecord is the normalized view of one physical plaque. Records
// coming off the wire are folded into this shape by the data client;
// nothing past that boundary ever sees the legacy field aliases.
type PlaqueRecord struct {
	ID                  string               `json:"id"`
	Location            *GeoLocation         `json:"location,omitempty"`
	Bearing             *float64             `json:"bearing,omitempty"` // degrees [0,360)
	Text                string               `json:"text"`
	Confidence          *int                 `json:"confidence,omitempty"` // OCR confidence [0,100]
	Photo               *Photo               `json:"photo,omitempty"`
	CroppedImageURL     string               `json:"cropped_image_url,omitempty"`
	CroppingCoordinates *CroppingCoordinates `json:"cropping_coordinates,omitempty"`
}

// HasLocation reports whether the record can be placed on the map.
func (p *PlaqueRecord) HasLocation() bool {
	return p.Location != nil
}

// GeoLocation is a plaque's map placement. Latitude and longitude are
// always both present; records with partial coordinates never get one.
type GeoLocation struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Photo holds the source image a plaque was extracted from.
type Photo struct {
	URL            string          `json:"url"`
	CameraPosition *CameraPosition `json:"camera_position,omitempty"`
}

// CameraPosition records where the photo was taken from.
type CameraPosition struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Bearing   *float64 `json:"bearing,omitempty"`
}

// CroppingCoordinates describe the plaque's region inside the source
// photo. Presentation metadata, carried opaquely.
type CroppingCoordinates struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PlaqueBatch is one page of listing or search results together with
// pagination metadata reported by the API.
type PlaqueBatch struct {
	Records       []PlaqueRecord `json:"records"`
	TotalCount    int            `json:"total_count"`
	FilteredCount int            `json:"filtered_count,omitempty"`
	Offset        int            `json:"offset"`
	Limit         int            `json:"limit"`
}

// LoadState is the single source of truth for what the map is showing.
// It is owned by the load controller: handlers and render code only ever
// see copies.
type LoadState struct {
	Records     []PlaqueRecord `json:"records"`
	TotalCount  int            `json:"total_count"`
	Offset      int            `json:"offset"`
	Limit       int            `json:"limit"`
	HasMore     bool           `json:"has_more"`
	Loading     bool           `json:"loading"`
	LoadingMore bool           `json:"loading_more"`
	Error       string         `json:"error,omitempty"`
}

// ClusterGroup is a visual grouping of nearby plaques, recomputed on
// every render pass and never persisted.
type ClusterGroup struct {
	Key      string         `json:"key"`
	Members  []PlaqueRecord `json:"-"`
	Position GeoPoint       `json:"position"` // first member's raw coordinates
	Count    int            `json:"count"`
	// SpanMeters is the distance from the representative to the farthest
	// member, used to size the cluster icon.
	SpanMeters float64 `json:"span_meters"`
}

// MarkerKind distinguishes single-plaque markers from cluster markers.
type MarkerKind string

const (
	MarkerSingle  MarkerKind = "single"
	MarkerCluster MarkerKind = "cluster"
)

// Marker is one renderable map marker, either a plaque or a cluster.
type Marker struct {
	Kind     MarkerKind    `json:"kind"`
	Position GeoPoint      `json:"position"`
	Record   *PlaqueRecord `json:"record,omitempty"`
	Cluster  *ClusterGroup `json:"cluster,omitempty"`
	Bearing  *float64      `json:"bearing,omitempty"` // rounded to nearest 10 degrees
}
