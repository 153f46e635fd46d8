// Package geo provides great-circle distance helpers.
package geo

import (
	"math"

	"github.com/datenight/planner/internal/domain/model"
)

// EarthRadiusMiles is the mean Earth radius used for all distances.
const EarthRadiusMiles = 3959.0

// HaversineMiles returns the great-circle distance between a and b in miles.
func HaversineMiles(a, b model.Coordinate) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMiles * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// MilesToMeters converts miles to meters.
func MilesToMeters(miles float64) float64 {
	return miles * model.MetersPerMile
}

// MetersToMiles converts meters to miles.
func MetersToMiles(meters float64) float64 {
	return meters / model.MetersPerMile
}

// MilesPerDegreeLat is the north-south length of one degree of latitude.
const MilesPerDegreeLat = EarthRadiusMiles * math.Pi / 180

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
