package models

import "time"

// Provenance records where a forecast value came from
type Provenance string

const (
	ProvenanceMeasured    Provenance = "measured"
	ProvenanceSynthetic   Provenance = "synthetic"
	ProvenanceUnavailable Provenance = "unavailable"
	ProvenanceMixed       Provenance = "mixed"
)

// WaveHeight is a day's wave height summary in meters
type WaveHeight struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// ForecastReading is one day of surf conditions for a spot. A reading whose
// provenance is unavailable carries no measurement; its numeric fields are
// meaningless and must not be read as zeros.
type ForecastReading struct {
	Date          time.Time  `json:"date"`
	WaveHeightM   WaveHeight `json:"wave_height_m"`
	WavePeriodS   float64    `json:"wave_period_s"`
	WindSpeedMS   float64    `json:"wind_speed_ms"`
	WindDirection string     `json:"wind_direction"`
	TideState     TideState  `json:"tide_state"`
	Provenance    Provenance `json:"provenance"`
	Note          string     `json:"note,omitempty"`
}

// Available reports whether the reading holds measured or synthetic data
func (r ForecastReading) Available() bool {
	return r.Provenance == ProvenanceMeasured || r.Provenance == ProvenanceSynthetic
}

// UnavailableReading builds the placeholder for a day without data
func UnavailableReading(date time.Time, reason string) ForecastReading {
	return ForecastReading{Date: date, Provenance: ProvenanceUnavailable, Note: reason}
}

// RatedForecast is a reading with its suitability rating
type RatedForecast struct {
	ForecastReading
	DailyRating float64 `json:"daily_rating"` // weighted blend, 1 decimal
	Explanation string  `json:"explanation"`
}

// Day truncates t to midnight UTC
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
