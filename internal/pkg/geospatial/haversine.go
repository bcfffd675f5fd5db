package geospatial

import "math"

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// RoundBearing snaps a bearing in degrees to the nearest 10, normalized
// into [0,360). Marker icons are only rendered at 10-degree steps.
func RoundBearing(deg float64) float64 {
	r := math.Round(deg/10) * 10
	r = math.Mod(r, 360)
	if r < 0 {
		r += 360
	}
	return r
}

// Center returns the midpoint of a north/south/east/west box.
func Center(north, south, east, west float64) (lat, lng float64) {
	return (north + south) / 2, (east + west) / 2
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
