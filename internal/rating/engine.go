package rating

import (
	"fmt"
	"math"
	"strings"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

// Component weights of the daily blend. They sum to 1.
const (
	WindWeight  = 0.3
	SwellWeight = 0.4
	TideWeight  = 0.3
)

// MaxRating is the upper clamp of a daily rating
const MaxRating = 10.0

// Rate scores one reading against the spot's profile. An unavailable reading
// scores 0 with a "no data" explanation; callers tell it apart from a poor
// measured day by the reading's provenance.
func Rate(spot models.SpotProfile, reading models.ForecastReading) models.RatedForecast {
	if !reading.Available() {
		explanation := "no data"
		if reading.Note != "" {
			explanation += ": " + reading.Note
		}
		return models.RatedForecast{ForecastReading: reading, DailyRating: 0, Explanation: explanation}
	}

	wind, windNote := windComponent(spot.WindCompat, reading.WindDirection)
	swell, swellNote := swellComponent(spot.SwellCompat, reading.WaveHeightM.Avg)
	tide, tideNote := tideComponent(spot.TideBehavior, reading.TideState)

	blend := wind*WindWeight + swell*SwellWeight + tide*TideWeight
	score := models.Round(blend, 1)
	score = math.Min(math.Max(score, 0), MaxRating)

	parts := []string{windNote, swellNote, tideNote}
	if reading.Provenance == models.ProvenanceSynthetic {
		parts = append(parts, "synthetic estimate")
	}

	return models.RatedForecast{
		ForecastReading: reading,
		DailyRating:     score,
		Explanation:     strings.Join(parts, "; "),
	}
}

// RateAll rates every reading of a window, preserving order
func RateAll(spot models.SpotProfile, readings []models.ForecastReading) []models.RatedForecast {
	out := make([]models.RatedForecast, len(readings))
	for i, r := range readings {
		out[i] = Rate(spot, r)
	}
	return out
}

func windComponent(w models.WindCompat, dir string) (float64, string) {
	q := clamp01(w.Quality)
	if w.Favors(dir) {
		return q, fmt.Sprintf("wind %s favoured (%.2f)", models.NormalizeDirection(dir), q)
	}
	return q / 2, fmt.Sprintf("wind %s not favoured (%.2f halved)", models.NormalizeDirection(dir), q)
}

func swellComponent(s models.SwellCompat, avg float64) (float64, string) {
	q := clamp01(s.Quality)
	r := s.IdealSizeRangeM
	if r.Contains(avg) {
		return q, fmt.Sprintf("swell %.1fm within %.1f-%.1fm (%.2f)", avg, r.Min, r.Max, q)
	}
	return q / 2, fmt.Sprintf("swell %.1fm outside %.1f-%.1fm (%.2f halved)", avg, r.Min, r.Max, q)
}

func tideComponent(tb models.TideBehavior, state models.TideState) (float64, string) {
	if q, ok := tb[state]; ok {
		return clamp01(q), fmt.Sprintf("%s tide (%.2f)", state, clamp01(q))
	}
	q := clamp01(tb.Quality(state))
	return q, fmt.Sprintf("%s tide unrated, using rising (%.2f)", state, q)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}
