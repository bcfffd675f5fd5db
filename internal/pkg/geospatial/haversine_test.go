package geospatial

import (
	"math"
	"testing"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Two points roughly 1.11km apart along a meridian.
	d := Haversine(34.84, -82.40, 34.85, -82.40)
	if math.Abs(d-1112) > 10 {
		t.Errorf("expected ~1112m, got %.1fm", d)
	}
}

func TestHaversine_ZeroDistance(t *testing.T) {
	if d := Haversine(34.84, -82.40, 34.84, -82.40); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestRoundBearing(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{4, 0},
		{5, 10},
		{187, 190},
		{359, 0},
		{-10, 350},
	}
	for _, c := range cases {
		if got := RoundBearing(c.in); got != c.want {
			t.Errorf("RoundBearing(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCenter(t *testing.T) {
	lat, lng := Center(35, 34, -82, -83)
	if lat != 34.5 || lng != -82.5 {
		t.Errorf("got (%v,%v), want (34.5,-82.5)", lat, lng)
	}
}
