package geo

import (
	"math"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

const earthRadiusKm = 6371.0

// HaversineKm calculates the great-circle distance between two points in kilometers
func HaversineKm(a, b models.Location) float64 {
	// Convert to radians
	lat1Rad := a.Latitude * math.Pi / 180
	lat2Rad := b.Latitude * math.Pi / 180
	deltaLat := (b.Latitude - a.Latitude) * math.Pi / 180
	deltaLon := (b.Longitude - a.Longitude) * math.Pi / 180

	// Haversine formula
	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}
