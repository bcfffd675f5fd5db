package usecases_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/dandedj/csp-client/internal/core/domain"
	"github.com/dandedj/csp-client/internal/core/usecases"
)

func located(id string, lat, lng float64) domain.PlaqueRecord {
	return domain.PlaqueRecord{
		ID:       id,
		Text:     "test plaque " + id,
		Location: &domain.GeoLocation{Latitude: lat, Longitude: lng},
	}
}

func TestBuildMarkers_NoClusteringBelowThreshold(t *testing.T) {
	policy := usecases.DefaultDensityPolicy()

	// 25 records at identical coordinates: boundary count must not cluster.
	var records []domain.PlaqueRecord
	for i := 0; i < 25; i++ {
		records = append(records, located(fmt.Sprintf("p%d", i), 34.84132, -82.39848))
	}

	markers := usecases.BuildMarkers(records, 13, policy)
	if len(markers) != 25 {
		t.Fatalf("expected 25 single markers, got %d", len(markers))
	}
	for _, m := range markers {
		if m.Kind != domain.MarkerSingle {
			t.Fatalf("expected only single markers, got %v", m.Kind)
		}
	}
}

func TestBuildMarkers_RoundingMergesNearbyRecords(t *testing.T) {
	policy := usecases.DefaultDensityPolicy()

	// Two records that agree to 3 decimal places, plus filler far away so
	// the visible count exceeds the clustering threshold.
	records := []domain.PlaqueRecord{
		located("a", 34.84132, -82.39848),
		located("b", 34.84133, -82.39847),
	}
	for i := 0; i < 25; i++ {
		records = append(records, located(fmt.Sprintf("f%d", i), 35.0+float64(i)*0.1, -81.0))
	}

	markers := usecases.BuildMarkers(records, 13, policy) // precision 3

	if markers[0].Kind != domain.MarkerCluster {
		t.Fatalf("expected first marker to be the merged cluster, got %v", markers[0].Kind)
	}
	g := markers[0].Cluster
	if g.Count != 2 {
		t.Fatalf("expected cluster of 2, got %d", g.Count)
	}
	// Representative is the first-seen member at its raw coordinates.
	if g.Members[0].ID != "a" {
		t.Errorf("expected first-seen representative 'a', got %q", g.Members[0].ID)
	}
	if g.Position.Lat != 34.84132 || g.Position.Lng != -82.39848 {
		t.Errorf("cluster positioned at %v, want raw coordinates of first member", g.Position)
	}
}

func TestBuildMarkers_DeterministicOrder(t *testing.T) {
	policy := usecases.DefaultDensityPolicy()

	var records []domain.PlaqueRecord
	for i := 0; i < 30; i++ {
		// Three distinct rounding cells, visited round-robin.
		records = append(records, located(fmt.Sprintf("p%d", i),
			34.8+float64(i%3)*0.01, -82.4))
	}

	first := usecases.BuildMarkers(records, 13, policy)
	for run := 0; run < 5; run++ {
		again := usecases.BuildMarkers(records, 13, policy)
		if len(again) != len(first) {
			t.Fatalf("marker count changed between runs: %d vs %d", len(again), len(first))
		}
		for i := range again {
			if again[i].Cluster.Key != first[i].Cluster.Key {
				t.Fatalf("marker order changed at %d: %q vs %q",
					i, again[i].Cluster.Key, first[i].Cluster.Key)
			}
		}
	}
}

func TestBuildMarkers_SkipsRecordsWithoutLocation(t *testing.T) {
	policy := usecases.DefaultDensityPolicy()
	records := []domain.PlaqueRecord{
		located("a", 34.84, -82.39),
		{ID: "no-location", Text: "unplaced"},
	}

	markers := usecases.BuildMarkers(records, 18, policy)
	if len(markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(markers))
	}
	if markers[0].Record.ID != "a" {
		t.Errorf("unexpected marker record %q", markers[0].Record.ID)
	}
}

func TestBuildMarkers_BearingRounded(t *testing.T) {
	policy := usecases.DefaultDensityPolicy()
	bearing := 187.0
	rec := located("a", 34.84, -82.39)
	rec.Bearing = &bearing

	markers := usecases.BuildMarkers([]domain.PlaqueRecord{rec}, 18, policy)
	if len(markers) != 1 || markers[0].Bearing == nil {
		t.Fatal("expected one marker with a bearing")
	}
	if *markers[0].Bearing != 190 {
		t.Errorf("expected bearing rounded to 190, got %v", *markers[0].Bearing)
	}
}

func TestBuildMarkers_ZoomTransitionEndToEnd(t *testing.T) {
	policy := usecases.DefaultDensityPolicy()

	// 30 records with distinct coordinates, all rounding into the same
	// three-decimal cell (34.841,-82.398).
	var records []domain.PlaqueRecord
	for i := 0; i < 30; i++ {
		records = append(records, located(fmt.Sprintf("p%d", i),
			34.84100+float64(i)*0.00001, -82.39848))
	}

	// Zoom 19: clustering disabled, 30 individual markers.
	markers := usecases.BuildMarkers(records, 19, policy)
	if len(markers) != 30 {
		t.Fatalf("zoom 19: expected 30 markers, got %d", len(markers))
	}

	// Zoom 13: precision 3, every record rounds into the same cell.
	markers = usecases.BuildMarkers(records, 13, policy)
	if len(markers) != 1 {
		t.Fatalf("zoom 13: expected a single cluster marker, got %d", len(markers))
	}
	if markers[0].Kind != domain.MarkerCluster || markers[0].Cluster.Count != 30 {
		t.Fatalf("zoom 13: expected cluster of 30, got %+v", markers[0])
	}
}

func TestResolveClusterClick(t *testing.T) {
	policy := usecases.DefaultDensityPolicy()
	g := &domain.ClusterGroup{
		Members:  []domain.PlaqueRecord{located("a", 34.84, -82.39)},
		Position: domain.GeoPoint{Lat: 34.84, Lng: -82.39},
		Count:    1,
	}

	action, target := usecases.ResolveClusterClick(g, 13, policy)
	if action != usecases.ActionZoomIn || target != 15 {
		t.Errorf("zoom 13: got action %v target %d, want zoom-in to 15", action, target)
	}

	// Zoom-in is capped at MaxZoom.
	action, target = usecases.ResolveClusterClick(g, 17, policy)
	if action != usecases.ActionZoomIn {
		t.Fatalf("zoom 17 should still zoom in")
	}
	if target != 19 {
		t.Errorf("zoom 17: target %d, want 19", target)
	}
	policyCapped := policy
	policyCapped.MaxZoom = 18
	_, target = usecases.ResolveClusterClick(g, 17, policyCapped)
	if target != 18 {
		t.Errorf("capped: target %d, want 18", target)
	}

	// At the detail threshold, clicking opens detail.
	action, _ = usecases.ResolveClusterClick(g, 18, policy)
	if action != usecases.ActionOpenDetail {
		t.Errorf("zoom 18: expected open-detail, got %v", action)
	}
}

func TestClusterCenter(t *testing.T) {
	g := &domain.ClusterGroup{
		Members: []domain.PlaqueRecord{
			located("a", 34.840, -82.400),
			located("b", 34.844, -82.396),
			located("c", 34.842, -82.398),
		},
		Position: domain.GeoPoint{Lat: 34.840, Lng: -82.400},
		Count:    3,
	}

	center := usecases.ClusterCenter(g)
	if math.Abs(center.Lat-34.842) > 1e-9 || math.Abs(center.Lng+82.398) > 1e-9 {
		t.Errorf("center = %+v, want the bounding-box midpoint", center)
	}

	// No located members: fall back to the representative position.
	empty := &domain.ClusterGroup{Position: domain.GeoPoint{Lat: 1, Lng: 2}}
	if c := usecases.ClusterCenter(empty); c != empty.Position {
		t.Errorf("empty cluster center = %+v", c)
	}
}
