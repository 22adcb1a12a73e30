package forecast

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

// replyDay is one day of a generated forecast
type replyDay struct {
	Date          string  `json:"date"`
	WaveMin       float64 `json:"wave_min"`
	WaveMax       float64 `json:"wave_max"`
	WaveAvg       float64 `json:"wave_avg"`
	Period        float64 `json:"period"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection string  `json:"wind_direction"`
	Tide          string  `json:"tide"`
}

// ParseForecastReply extracts the JSON array of days from a free-text model
// reply and lays it onto the window. Entries with zero or negative values,
// unknown directions or tides are dropped. It fails with
// models.ErrMalformedProviderResponse when no entry survives.
func ParseForecastReply(reply string, days []time.Time) ([]models.ForecastReading, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in reply: %w", models.ErrMalformedProviderResponse)
	}

	var entries []replyDay
	if err := json.Unmarshal([]byte(reply[start:end+1]), &entries); err != nil {
		return nil, fmt.Errorf("decoding reply: %w: %w", models.ErrMalformedProviderResponse, err)
	}

	readings := make([]models.ForecastReading, 0, len(entries))
	for _, e := range entries {
		r, ok := e.reading()
		if ok {
			readings = append(readings, r)
		}
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("reply has no usable days: %w", models.ErrMalformedProviderResponse)
	}

	return alignWindow(readings, days, "missing from generated forecast"), nil
}

func (e replyDay) reading() (models.ForecastReading, bool) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(e.Date))
	if err != nil {
		return models.ForecastReading{}, false
	}
	if e.WaveMin <= 0 || e.WaveMax < e.WaveMin || e.WaveAvg <= 0 || e.Period <= 0 || e.WindSpeed <= 0 {
		return models.ForecastReading{}, false
	}
	if models.CompassIndex(e.WindDirection) < 0 {
		return models.ForecastReading{}, false
	}
	tide, ok := models.ParseTideState(e.Tide)
	if !ok {
		return models.ForecastReading{}, false
	}

	avg := min(max(e.WaveAvg, e.WaveMin), e.WaveMax)
	return models.ForecastReading{
		Date:          date,
		WaveHeightM:   models.WaveHeight{Min: e.WaveMin, Max: e.WaveMax, Avg: avg},
		WavePeriodS:   e.Period,
		WindSpeedMS:   e.WindSpeed,
		WindDirection: models.NormalizeDirection(e.WindDirection),
		TideState:     tide,
		Provenance:    models.ProvenanceSynthetic,
	}, true
}
