package forecast

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

const forecastPage = `<!DOCTYPE html>
<html><body>
<table class="forecast-table">
  <tr data-row-name="time">
    <td data-date="2026-10-19">06h</td><td>12h</td>
    <td data-date="2026-10-20">06h</td><td>12h</td>
    <td data-date="2026-10-21">06h</td>
  </tr>
  <tr data-row-name="wave-height"><td>1.0</td><td><span>2.0</span> m</td><td>1,5</td><td>n/a</td><td>0.8</td></tr>
  <tr data-row-name="periods"><td>10</td><td>12</td><td>11</td><td>11</td><td>9</td></tr>
  <tr data-row-name="wind"><td>18</td><td>36</td><td>9</td><td>9</td><td>20</td></tr>
  <tr data-row-name="wind-direction"><td>NW</td><td>nw</td><td>E</td><td>E</td><td>??</td></tr>
  <tr data-row-name="tide"><td>rising</td><td>high</td><td>low</td><td>low</td><td>falling</td></tr>
</table>
</body></html>`

func newTestScrapeSource(url string) *ScrapeSource {
	s := NewScrapeSource(url, "test", 0, 5*time.Second)
	s.now = fixedClock
	return s
}

func TestScrapeSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ericeira-ribeira-d-ilhas/forecasts/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(forecastPage))
	}))
	defer server.Close()

	spot := models.SpotProfile{Name: "Ribeira d'Ilhas", ForecastSourceID: "ericeira-ribeira-d-ilhas"}
	readings, err := newTestScrapeSource(server.URL).Fetch(context.Background(), spot, 4)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(readings) != 4 {
		t.Fatalf("len(readings) = %d, want 4", len(readings))
	}

	for i, r := range readings {
		want := models.Day(fixedNow).AddDate(0, 0, i)
		if !r.Date.Equal(want) {
			t.Errorf("readings[%d].Date = %v, want %v", i, r.Date, want)
		}
	}

	day1 := readings[0]
	if day1.Provenance != models.ProvenanceMeasured {
		t.Fatalf("day 1 provenance = %s", day1.Provenance)
	}
	if day1.WaveHeightM != (models.WaveHeight{Min: 1, Max: 2, Avg: 1.5}) {
		t.Errorf("day 1 waves = %+v", day1.WaveHeightM)
	}
	if day1.WavePeriodS != 11 {
		t.Errorf("day 1 period = %v, want 11", day1.WavePeriodS)
	}
	if math.Abs(day1.WindSpeedMS-7.5) > 1e-9 {
		t.Errorf("day 1 wind = %v m/s, want 7.5", day1.WindSpeedMS)
	}
	if day1.WindDirection != "NW" {
		t.Errorf("day 1 wind direction = %s", day1.WindDirection)
	}
	if day1.TideState != models.TideRising {
		t.Errorf("day 1 tide = %s", day1.TideState)
	}

	// second slot of day 2 has no wave height; the first slot still counts
	if day2 := readings[1]; !day2.Available() || day2.WaveHeightM.Avg != 1.5 {
		t.Errorf("day 2 = %+v", day2)
	}

	// only slot of day 3 has an unknown direction
	if readings[2].Available() {
		t.Errorf("day 3 should be unavailable, got %+v", readings[2])
	}
	if !strings.Contains(readings[2].Note, "incomplete") {
		t.Errorf("day 3 note = %q", readings[2].Note)
	}

	if readings[3].Available() {
		t.Errorf("day 4 should be unavailable, got %+v", readings[3])
	}
}

func TestScrapeSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"no forecast table", http.StatusOK, `<html><body><p>Spot not found</p></body></html>`, models.ErrMalformedProviderResponse},
		{"server error", http.StatusBadGateway, `bad gateway`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			spot := models.SpotProfile{Name: "x", ForecastSourceID: "x"}
			_, err := newTestScrapeSource(server.URL).Fetch(context.Background(), spot, 3)
			if err == nil {
				t.Fatal("Fetch() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestScrapeSource_MissingSourceID(t *testing.T) {
	s := newTestScrapeSource("http://127.0.0.1:0")
	if _, err := s.Fetch(context.Background(), models.SpotProfile{Name: "x"}, 3); err == nil {
		t.Error("Fetch() expected error for spot without source id")
	}
}

func TestMostCommon(t *testing.T) {
	tests := []struct {
		values []string
		want   string
	}{
		{[]string{"NW"}, "NW"},
		{[]string{"NW", "W", "W"}, "W"},
		{[]string{"NW", "W"}, "NW"},
	}
	for _, tt := range tests {
		if got := mostCommon(tt.values); got != tt.want {
			t.Errorf("mostCommon(%v) = %s, want %s", tt.values, got, tt.want)
		}
	}
}
