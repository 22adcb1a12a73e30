package models

import (
	"fmt"
	"math"
)

// Location is a WGS84 coordinate pair
type Location struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Valid reports whether both coordinates are finite and in range
func (l Location) Valid() bool {
	if math.IsNaN(l.Latitude) || math.IsInf(l.Latitude, 0) ||
		math.IsNaN(l.Longitude) || math.IsInf(l.Longitude, 0) {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

func (l Location) String() string {
	return fmt.Sprintf("%.5f,%.5f", l.Latitude, l.Longitude)
}

// Place is the outcome of resolving an address. An unresolved place never
// carries coordinates; callers must check Resolved before using Location.
type Place struct {
	Location         Location `json:"location"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Resolved         bool     `json:"resolved"`
	Reason           string   `json:"reason,omitempty"`
}

// ResolvedPlace builds a resolved place
func ResolvedPlace(loc Location, formattedAddress string) Place {
	return Place{Location: loc, FormattedAddress: formattedAddress, Resolved: true}
}

// UnresolvedPlace builds an unresolved place with a human-readable reason
func UnresolvedPlace(reason string) Place {
	return Place{Reason: reason}
}
