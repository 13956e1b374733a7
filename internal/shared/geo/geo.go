package geo

import "math"

// EarthRadiusKm is the radius the campus mini-app uses when it replays a
// track, so derived distances line up with the server-side checks.
const EarthRadiusKm = 6378.13649

// HaversineKm returns the great-circle distance in kilometres between two
// WGS84 coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	radLat1 := lat1 * math.Pi / 180
	radLat2 := lat2 * math.Pi / 180
	dLat := radLat1 - radLat2
	dLng := (lng1 - lng2) * math.Pi / 180

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(radLat1)*math.Cos(radLat2)*math.Pow(math.Sin(dLng/2), 2)
	return 2 * math.Asin(math.Sqrt(a)) * EarthRadiusKm
}
