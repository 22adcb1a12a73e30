package models

import "strings"

// SizeRange is an inclusive wave height range in meters
type SizeRange struct {
	Min float64 `json:"min" validate:"min=0"`
	Max float64 `json:"max" validate:"gtefield=Min"`
}

// Contains reports whether v lies within the range, bounds included
func (r SizeRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Mid returns the midpoint of the range
func (r SizeRange) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// SwellCompat describes the swell a spot works best with
type SwellCompat struct {
	IdealSizeRangeM SizeRange `json:"ideal_size_range_m"`
	IdealDirection  string    `json:"ideal_direction"`
	Quality         float64   `json:"quality" validate:"min=0,max=1"`
}

// WindCompat describes the wind directions a spot works best with
type WindCompat struct {
	BestDirection []string `json:"best_direction" validate:"dive,compass"`
	Quality       float64  `json:"quality" validate:"min=0,max=1"`
}

// Favors reports whether dir is one of the preferred wind directions
func (w WindCompat) Favors(dir string) bool {
	dir = NormalizeDirection(dir)
	if dir == "" {
		return false
	}
	for _, d := range w.BestDirection {
		if NormalizeDirection(d) == dir {
			return true
		}
	}
	return false
}

// TideBehavior maps a tide state to the spot's quality at that state (0..1)
type TideBehavior map[TideState]float64

// SpotProfile is the static description of a surf spot. Profiles are loaded
// once and treated as read-only afterwards.
type SpotProfile struct {
	Name             string       `json:"name" validate:"notblank"`
	City             string       `json:"city" validate:"required_without=Location"`
	Location         *Location    `json:"location,omitempty" validate:"omitempty"` // nil when the catalog has no coordinates
	ForecastSourceID string       `json:"forecast_source_id"`
	Type             string       `json:"type"`                                     // e.g. "beach", "reef", "point"
	Orientation      string       `json:"orientation" validate:"omitempty,compass"` // direction the beach faces
	BestSeason       string       `json:"best_season"`                              // e.g. "autumn", "winter"
	SwellCompat      SwellCompat  `json:"swell_compat"`
	WindCompat       WindCompat   `json:"wind_compat"`
	TideBehavior     TideBehavior `json:"tide_behavior" validate:"dive,keys,oneof=low rising high falling,endkeys,min=0,max=1"`
}

// Address returns the free-text address used to geocode a spot without coordinates
func (s SpotProfile) Address() string {
	parts := make([]string, 0, 2)
	if n := strings.TrimSpace(s.Name); n != "" {
		parts = append(parts, n)
	}
	if c := strings.TrimSpace(s.City); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, ", ")
}

// compassPoints lists the 16-point compass in clockwise order
var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

var directionAliases = map[string]string{
	"NORTH": "N", "SOUTH": "S", "EAST": "E", "WEST": "W",
	"NORTHEAST": "NE", "NORTHWEST": "NW", "SOUTHEAST": "SE", "SOUTHWEST": "SW",
	"NORTH-EAST": "NE", "NORTH-WEST": "NW", "SOUTH-EAST": "SE", "SOUTH-WEST": "SW",
	"O": "W", // Portuguese/French "Oeste"/"Ouest"
}

// NormalizeDirection upper-cases a compass direction and maps long names to
// their abbreviation. Unknown input is returned upper-cased.
func NormalizeDirection(dir string) string {
	dir = strings.ToUpper(strings.TrimSpace(dir))
	if alias, ok := directionAliases[dir]; ok {
		return alias
	}
	return dir
}

// CompassIndex returns the position of dir on the 16-point compass, or -1
func CompassIndex(dir string) int {
	dir = NormalizeDirection(dir)
	for i, p := range compassPoints {
		if p == dir {
			return i
		}
	}
	return -1
}

// CompassPoint returns the compass point at index i (wrapping)
func CompassPoint(i int) string {
	n := len(compassPoints)
	return compassPoints[((i%n)+n)%n]
}
