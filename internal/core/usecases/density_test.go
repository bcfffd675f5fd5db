package usecases_test

import (
	"testing"

	"github.com/dandedj/csp-client/internal/core/usecases"
)

func TestDensityPolicy_MarkerLimit(t *testing.T) {
	p := usecases.DefaultDensityPolicy()

	cases := []struct {
		zoom, want int
	}{
		{22, 800},
		{19, 800},
		{18, 800},
		{17, 500},
		{16, 500},
		{15, 300},
		{14, 300},
		{13, 200},
		{12, 200},
		{11, 100},
		{10, 100},
		{0, 100},
	}
	for _, c := range cases {
		if got := p.MarkerLimit(c.zoom); got != c.want {
			t.Errorf("MarkerLimit(%d) = %d, want %d", c.zoom, got, c.want)
		}
	}
}

func TestDensityPolicy_LimitNonIncreasing(t *testing.T) {
	p := usecases.DefaultDensityPolicy()
	prev := p.MarkerLimit(22)
	for zoom := 21; zoom >= 0; zoom-- {
		cur := p.MarkerLimit(zoom)
		if cur > prev {
			t.Fatalf("limit increased from %d to %d at zoom %d", prev, cur, zoom)
		}
		prev = cur
	}
}

func TestDensityPolicy_ClusterPrecision(t *testing.T) {
	p := usecases.DefaultDensityPolicy()

	cases := []struct {
		zoom, want int
	}{
		{10, 3},
		{13, 3},
		{14, 4},
		{15, 4},
		{16, 5},
		{18, 5},
		{22, 5},
	}
	for _, c := range cases {
		if got := p.ClusterPrecision(c.zoom); got != c.want {
			t.Errorf("ClusterPrecision(%d) = %d, want %d", c.zoom, got, c.want)
		}
	}
}

func TestDensityPolicy_ShouldCluster(t *testing.T) {
	p := usecases.DefaultDensityPolicy()

	if p.ShouldCluster(18, 1000) {
		t.Error("zoom 18 must never cluster")
	}
	if p.ShouldCluster(17, 25) {
		t.Error("exactly 25 visible records must not cluster")
	}
	if !p.ShouldCluster(17, 26) {
		t.Error("26 visible records below zoom 18 should cluster")
	}
	if p.ShouldCluster(10, 25) {
		t.Error("boundary count must not cluster at any zoom")
	}
	if !p.ShouldCluster(10, 26) {
		t.Error("low zoom with 26 records should cluster")
	}
}

func TestDensityPolicy_UseBoundsFilter(t *testing.T) {
	p := usecases.DefaultDensityPolicy()
	if p.UseBoundsFilter(13) {
		t.Error("zoom 13 should not send bounds")
	}
	if !p.UseBoundsFilter(14) {
		t.Error("zoom 14 should send bounds")
	}
}
