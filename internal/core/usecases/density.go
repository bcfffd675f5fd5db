package usecases

// DensityPolicy maps zoom level to fetch limits and clustering
// behavior. The zero value is unusable; construct with
// DefaultDensityPolicy. The default breakpoints are load-bearing:
// existing clients assume the exact 800/500/300/200/100 limits and the
// 3/4/5 precision ladder.
type DensityPolicy struct {
	// ClusterDisableZoom is the zoom at or above which every record
	// renders as its own marker.
	ClusterDisableZoom int
	// ClusterMinVisible is the record count that must be exceeded
	// before clustering kicks in.
	ClusterMinVisible int
	// BoundsFilterZoom is the zoom at or above which viewport bounds
	// are sent to the API as a spatial filter.
	BoundsFilterZoom int
	// DetailZoom is the zoom at or above which clicking a cluster opens
	// the first member's detail instead of zooming further.
	DetailZoom int
	// MaxZoom caps cluster-click zoom-in.
	MaxZoom int
	// ZoomStep is how far a cluster click zooms in.
	ZoomStep int
}

// DefaultDensityPolicy returns the policy with the stock breakpoints.
func DefaultDensityPolicy() DensityPolicy {
	return DensityPolicy{
		ClusterDisableZoom: 18,
		ClusterMinVisible:  25,
		BoundsFilterZoom:   14,
		DetailZoom:         18,
		MaxZoom:            22,
		ZoomStep:           2,
	}
}

// MarkerLimit returns how many records to request for a zoom level.
func (p DensityPolicy) MarkerLimit(zoom int) int {
	switch {
	case zoom >= 18:
		return 800
	case zoom >= 16:
		return 500
	case zoom >= 14:
		return 300
	case zoom >= 12:
		return 200
	default:
		return 100
	}
}

// ClusterPrecision returns the number of decimal places used to round
// coordinates into grouping keys.
func (p DensityPolicy) ClusterPrecision(zoom int) int {
	switch {
	case zoom < 14:
		return 3
	case zoom < 16:
		return 4
	default:
		return 5
	}
}

// ShouldCluster reports whether clustering applies at the given zoom
// and visible record count. Exactly ClusterMinVisible records do not
// cluster; the count must exceed it.
func (p DensityPolicy) ShouldCluster(zoom, visible int) bool {
	return zoom < p.ClusterDisableZoom && visible > p.ClusterMinVisible
}

// UseBoundsFilter reports whether the viewport bounds should be sent
// with listing fetches at this zoom.
func (p DensityPolicy) UseBoundsFilter(zoom int) bool {
	return zoom >= p.BoundsFilterZoom
}
