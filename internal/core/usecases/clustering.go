package usecases

import (
	"math"
	"strconv"

	"github.com/dandedj/csp-client/internal/core/domain"
	"github.com/dandedj/csp-client/internal/pkg/geospatial"
	"github.com/dandedj/csp-client/internal/pkg/metrics"
)

// BuildMarkers turns the visible records into a render list, grouping
// nearby records into clusters when the density policy calls for it.
// Records without a location are skipped. Output order is deterministic
// for a stable input order: markers appear in first-seen key order, and
// the first record to claim a key becomes the group's representative.
func BuildMarkers(records []domain.PlaqueRecord, zoom int, policy DensityPolicy) []domain.Marker {
	placeable := 0
	for i := range records {
		if records[i].HasLocation() {
			placeable++
		}
	}

	if !policy.ShouldCluster(zoom, placeable) {
		return singleMarkers(records, placeable)
	}

	precision := policy.ClusterPrecision(zoom)
	groups := make(map[string]*domain.ClusterGroup)
	var order []string

	for i := range records {
		rec := &records[i]
		if !rec.HasLocation() {
			continue
		}
		key := clusterKey(rec.Location.Latitude, rec.Location.Longitude, precision)
		g, ok := groups[key]
		if !ok {
			g = &domain.ClusterGroup{
				Key: key,
				Position: domain.GeoPoint{
					Lat: rec.Location.Latitude,
					Lng: rec.Location.Longitude,
				},
			}
			groups[key] = g
			order = append(order, key)
		}
		g.Members = append(g.Members, *rec)
		g.Count++
	}

	markers := make([]domain.Marker, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.Count == 1 {
			markers = append(markers, singleMarker(&g.Members[0]))
			continue
		}
		g.SpanMeters = clusterSpan(g)
		metrics.ClustersBuilt.Inc()
		markers = append(markers, domain.Marker{
			Kind:     domain.MarkerCluster,
			Position: g.Position,
			Cluster:  g,
		})
	}

	metrics.MarkersRendered.Observe(float64(len(markers)))
	return markers
}

func singleMarkers(records []domain.PlaqueRecord, placeable int) []domain.Marker {
	markers := make([]domain.Marker, 0, placeable)
	for i := range records {
		if !records[i].HasLocation() {
			continue
		}
		markers = append(markers, singleMarker(&records[i]))
	}
	metrics.MarkersRendered.Observe(float64(len(markers)))
	return markers
}

func singleMarker(rec *domain.PlaqueRecord) domain.Marker {
	m := domain.Marker{
		Kind: domain.MarkerSingle,
		Position: domain.GeoPoint{
			Lat: rec.Location.Latitude,
			Lng: rec.Location.Longitude,
		},
		Record: rec,
	}
	if rec.Bearing != nil {
		b := geospatial.RoundBearing(*rec.Bearing)
		m.Bearing = &b
	}
	return m
}

// clusterKey renders rounded coordinates as the grouping key, e.g.
// "34.841,-82.398" at precision 3. Fixed-point formatting keeps keys
// stable across platforms.
func clusterKey(lat, lng float64, precision int) string {
	return strconv.FormatFloat(lat, 'f', precision, 64) + "," +
		strconv.FormatFloat(lng, 'f', precision, 64)
}

// clusterSpan is the distance in meters from the representative to the
// farthest member.
func clusterSpan(g *domain.ClusterGroup) float64 {
	var span float64
	for i := range g.Members {
		loc := g.Members[i].Location
		d := geospatial.Haversine(g.Position.Lat, g.Position.Lng, loc.Latitude, loc.Longitude)
		if d > span {
			span = d
		}
	}
	return span
}

// ClusterCenter is the pan target for a cluster click: the midpoint of
// the members' bounding box rather than the representative, so zooming
// in keeps the whole group on screen. Falls back to the representative
// position when no member carries coordinates.
func ClusterCenter(g *domain.ClusterGroup) domain.GeoPoint {
	north, south := math.Inf(-1), math.Inf(1)
	east, west := math.Inf(-1), math.Inf(1)
	found := false
	for i := range g.Members {
		loc := g.Members[i].Location
		if loc == nil {
			continue
		}
		found = true
		north = math.Max(north, loc.Latitude)
		south = math.Min(south, loc.Latitude)
		east = math.Max(east, loc.Longitude)
		west = math.Min(west, loc.Longitude)
	}
	if !found {
		return g.Position
	}
	lat, lng := geospatial.Center(north, south, east, west)
	return domain.GeoPoint{Lat: lat, Lng: lng}
}

// ClusterAction is what a cluster-marker click should do.
type ClusterAction int

const (
	// ActionZoomIn pans to the cluster and zooms one step closer.
	ActionZoomIn ClusterAction = iota
	// ActionOpenDetail opens the first member's detail view.
	ActionOpenDetail
)

// ResolveClusterClick decides between zooming in and opening detail.
// Below the policy's detail threshold the map zooms toward the cluster,
// capped at MaxZoom; at or above it the first member's detail opens
// directly.
func ResolveClusterClick(g *domain.ClusterGroup, zoom int, policy DensityPolicy) (ClusterAction, int) {
	if zoom >= policy.DetailZoom {
		return ActionOpenDetail, zoom
	}
	target := zoom + policy.ZoomStep
	if target > policy.MaxZoom {
		target = policy.MaxZoom
	}
	return ActionZoomIn, target
}
