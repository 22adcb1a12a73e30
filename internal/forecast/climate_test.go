package forecast

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

func testSpot() models.SpotProfile {
	return models.SpotProfile{
		Name:             "Supertubos",
		City:             "Peniche",
		Location:         &models.Location{Latitude: 39.3445, Longitude: -9.3638},
		ForecastSourceID: "peniche-supertubos",
		Type:             "beach",
		Orientation:      "SW",
		BestSeason:       "autumn",
		SwellCompat: models.SwellCompat{
			IdealSizeRangeM: models.SizeRange{Min: 1.5, Max: 3},
			IdealDirection:  "W",
			Quality:         0.9,
		},
		WindCompat:   models.WindCompat{BestDirection: []string{"E", "NE"}, Quality: 0.8},
		TideBehavior: models.TideBehavior{models.TideLow: 0.9, models.TideRising: 0.7},
	}
}

func TestClimateSynthesizer_Synthesize(t *testing.T) {
	c := &ClimateSynthesizer{now: fixedClock}

	first, err := c.Synthesize(context.Background(), testSpot(), 7)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	second, _ := c.Synthesize(context.Background(), testSpot(), 7)

	if len(first) != 7 {
		t.Fatalf("len = %d, want 7", len(first))
	}
	for i, r := range first {
		if r != second[i] {
			t.Errorf("day %d not deterministic: %+v vs %+v", i, r, second[i])
		}
		if r.Provenance != models.ProvenanceSynthetic {
			t.Errorf("day %d provenance = %s", i, r.Provenance)
		}
		if r.WaveHeightM.Min <= 0 || r.WaveHeightM.Avg <= 0 || r.WavePeriodS <= 0 || r.WindSpeedMS <= 0 {
			t.Errorf("day %d has zero values: %+v", i, r)
		}
		if r.WaveHeightM.Min > r.WaveHeightM.Avg || r.WaveHeightM.Avg > r.WaveHeightM.Max {
			t.Errorf("day %d wave range out of order: %+v", i, r.WaveHeightM)
		}
		if models.CompassIndex(r.WindDirection) < 0 {
			t.Errorf("day %d wind direction %q", i, r.WindDirection)
		}
		if !r.Date.Equal(models.Day(fixedNow).AddDate(0, 0, i)) {
			t.Errorf("day %d date = %v", i, r.Date)
		}
	}
}

func TestClimateSynthesizer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewClimateSynthesizer().Synthesize(ctx, testSpot(), 3); err == nil {
		t.Error("Synthesize() expected error for cancelled context")
	}
}

func TestInSeason(t *testing.T) {
	oct := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		season string
		date   time.Time
		lat    float64
		want   bool
	}{
		{"autumn", oct, 39, true},
		{"Fall", oct, 39, true},
		{"winter", oct, 39, false},
		{"winter", jan, 39, true},
		{"summer", jan, -33, true},
		{"spring", oct, -33, true},
		{"all year", jan, 10, true},
		{"", oct, 39, false},
	}
	for _, tt := range tests {
		if got := inSeason(tt.season, tt.date, tt.lat); got != tt.want {
			t.Errorf("inSeason(%q, %s, %v) = %v, want %v", tt.season, tt.date.Month(), tt.lat, got, tt.want)
		}
	}
}

func TestSummarizeReadings(t *testing.T) {
	spot := testSpot()
	days := window(fixedNow, 3)

	if s := SummarizeReadings(spot, unavailableWindow(days, "down")); !strings.Contains(s, "No forecast data") {
		t.Errorf("summary of empty window = %q", s)
	}

	readings := unavailableWindow(days, "down")
	readings[1] = models.ForecastReading{
		Date:          days[1],
		WaveHeightM:   models.WaveHeight{Min: 1.5, Max: 2.2, Avg: 1.8},
		WavePeriodS:   12,
		WindSpeedMS:   3.1,
		WindDirection: "E",
		TideState:     models.TideLow,
		Provenance:    models.ProvenanceMeasured,
	}
	s := SummarizeReadings(spot, readings)
	for _, want := range []string{"Supertubos", "Tue 20 Oct", "1.5-2.2m", "12s", "1 of 3 days"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary %q missing %q", s, want)
		}
	}
	if strings.Contains(s, "Estimated") {
		t.Errorf("measured summary flagged as estimate: %q", s)
	}
}
