// services/geo.go
package services

import "math"

const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance in meters between two
// coordinates.
func Haversine(aLat, aLng, bLat, bLng float64) float64 {
	dLat := toRadians(bLat - aLat)
	dLng := toRadians(bLng - aLng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(aLat))*math.Cos(toRadians(bLat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
