package forecast

import (
	"context"
	"time"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

// Source fetches measured forecasts for a spot. On success it returns one
// reading per day of the window starting today; days it could not fill are
// unavailable readings. An error means nothing usable was fetched.
type Source interface {
	Fetch(ctx context.Context, spot models.SpotProfile, horizonDays int) ([]models.ForecastReading, error)
}

// Fallback produces plausible conditions when the source has none
type Fallback interface {
	// Synthesize returns one reading per day of the window. Readings are
	// tagged synthetic by the resolver regardless of what the fallback sets.
	Synthesize(ctx context.Context, spot models.SpotProfile, horizonDays int) ([]models.ForecastReading, error)

	// Summarize writes a short narrative of the spot's window
	Summarize(ctx context.Context, spot models.SpotProfile, readings []models.ForecastReading) (string, error)
}

const dateLayout = "2006-01-02"

// window returns the UTC dates of the forecast window starting at start
func window(start time.Time, horizonDays int) []time.Time {
	start = models.Day(start)
	days := make([]time.Time, horizonDays)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// alignWindow lays readings onto the window, one per date. Readings outside
// the window are dropped and missing days become unavailable.
func alignWindow(readings []models.ForecastReading, days []time.Time, missing string) []models.ForecastReading {
	byDate := make(map[string]models.ForecastReading, len(readings))
	for _, r := range readings {
		k := models.Day(r.Date).Format(dateLayout)
		if prev, ok := byDate[k]; ok && prev.Available() {
			continue
		}
		byDate[k] = r
	}

	out := make([]models.ForecastReading, len(days))
	for i, d := range days {
		r, ok := byDate[d.Format(dateLayout)]
		if !ok {
			out[i] = models.UnavailableReading(d, missing)
			continue
		}
		r.Date = d
		out[i] = r
	}
	return out
}

func unavailableWindow(days []time.Time, reason string) []models.ForecastReading {
	out := make([]models.ForecastReading, len(days))
	for i, d := range days {
		out[i] = models.UnavailableReading(d, reason)
	}
	return out
}

func countAvailable(readings []models.ForecastReading) int {
	n := 0
	for _, r := range readings {
		if r.Available() {
			n++
		}
	}
	return n
}
