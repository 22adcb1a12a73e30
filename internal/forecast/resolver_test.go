package forecast

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ngmaloney/surf-spotter/internal/cache"
	"github.com/ngmaloney/surf-spotter/internal/models"
)

type fakeSource struct {
	calls    int32
	readings []models.ForecastReading
	err      error
}

func (f *fakeSource) Fetch(ctx context.Context, spot models.SpotProfile, horizonDays int) ([]models.ForecastReading, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.readings, f.err
}

type fakeFallback struct {
	calls    int32
	readings []models.ForecastReading
	err      error
	summary  string
}

func (f *fakeFallback) Synthesize(ctx context.Context, spot models.SpotProfile, horizonDays int) ([]models.ForecastReading, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.readings, f.err
}

func (f *fakeFallback) Summarize(ctx context.Context, spot models.SpotProfile, readings []models.ForecastReading) (string, error) {
	return f.summary, f.err
}

func measuredDay(d time.Time) models.ForecastReading {
	return models.ForecastReading{
		Date:          d,
		WaveHeightM:   models.WaveHeight{Min: 1, Max: 2, Avg: 1.5},
		WavePeriodS:   11,
		WindSpeedMS:   4,
		WindDirection: "E",
		TideState:     models.TideLow,
		Provenance:    models.ProvenanceMeasured,
	}
}

func newTestResolver(src Source, fb Fallback) *Resolver {
	r := NewResolver(src, fb, cache.New(), DefaultTTL, time.Millisecond)
	r.now = fixedClock
	return r
}

func TestResolve_SourceWins(t *testing.T) {
	days := window(fixedNow, 3)
	src := &fakeSource{readings: []models.ForecastReading{
		measuredDay(days[0]),
		models.UnavailableReading(days[1], "gap"),
		measuredDay(days[2]),
	}}
	fb := &fakeFallback{}

	res, err := newTestResolver(src, fb).Resolve(context.Background(), testSpot(), 3)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if fb.calls != 0 {
		t.Errorf("fallback called %d times with usable source data", fb.calls)
	}
	if len(res.Readings) != 3 {
		t.Fatalf("len = %d, want 3", len(res.Readings))
	}
	if res.Readings[1].Available() {
		t.Error("partial day should stay unavailable, not be synthesized")
	}
	if res.Issue != "" {
		t.Errorf("Issue = %q, want empty", res.Issue)
	}
}

func TestResolve_FallbackWhenSourceUnusable(t *testing.T) {
	days := window(fixedNow, 2)
	// a fallback claiming measured data is still tagged synthetic
	fbReadings := []models.ForecastReading{measuredDay(days[0]), measuredDay(days[1])}

	tests := []struct {
		name string
		src  *fakeSource
	}{
		{"source error", &fakeSource{err: errors.New("connection refused")}},
		{"source all unavailable", &fakeSource{readings: unavailableWindow(days, "gap")}},
		{"source empty", &fakeSource{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeFallback{readings: fbReadings}
			res, err := newTestResolver(tt.src, fb).Resolve(context.Background(), testSpot(), 2)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if fb.calls != 1 {
				t.Errorf("fallback calls = %d, want 1", fb.calls)
			}
			for i, r := range res.Readings {
				if r.Provenance != models.ProvenanceSynthetic {
					t.Errorf("reading %d provenance = %s, want synthetic", i, r.Provenance)
				}
			}
			if res.Issue == "" {
				t.Error("Issue should explain synthetic data")
			}
		})
	}
}

func TestResolve_BothFail(t *testing.T) {
	tests := []struct {
		name string
		fb   Fallback
	}{
		{"fallback error", &fakeFallback{err: models.ErrMalformedProviderResponse}},
		{"fallback empty", &fakeFallback{}},
		{"no fallback", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{err: errors.New("timeout")}
			res, err := newTestResolver(src, tt.fb).Resolve(context.Background(), testSpot(), 4)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if len(res.Readings) != 4 {
				t.Fatalf("len = %d, want 4", len(res.Readings))
			}
			for i, r := range res.Readings {
				if r.Available() {
					t.Errorf("reading %d should be unavailable", i)
				}
			}
			if !strings.Contains(res.Issue, models.ErrForecastUnavailable.Error()) {
				t.Errorf("Issue = %q", res.Issue)
			}
		})
	}
}

func TestResolve_AlignsSourceWindow(t *testing.T) {
	days := window(fixedNow, 5)
	src := &fakeSource{readings: []models.ForecastReading{
		measuredDay(days[0].AddDate(0, 0, -1)), // yesterday
		measuredDay(days[2]),
		measuredDay(days[4].AddDate(0, 0, 3)), // past the window
	}}

	res, err := newTestResolver(src, nil).Resolve(context.Background(), testSpot(), 5)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(res.Readings) != 5 {
		t.Fatalf("len = %d, want 5", len(res.Readings))
	}
	for i, r := range res.Readings {
		if !r.Date.Equal(days[i]) {
			t.Errorf("reading %d date = %v, want %v", i, r.Date, days[i])
		}
		if r.Available() != (i == 2) {
			t.Errorf("reading %d available = %v", i, r.Available())
		}
	}
}

func TestResolve_CachesSourceResult(t *testing.T) {
	src := &fakeSource{readings: []models.ForecastReading{measuredDay(models.Day(fixedNow))}}
	r := newTestResolver(src, nil)

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(context.Background(), testSpot(), 1); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
	}
	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}

	// a different horizon is a different key
	r.Resolve(context.Background(), testSpot(), 2)
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2", src.calls)
	}
}

func TestResolve_RetriesTemporarySourceFailure(t *testing.T) {
	src := &flakySource{readings: []models.ForecastReading{measuredDay(models.Day(fixedNow))}}
	res, err := newTestResolver(src, nil).Resolve(context.Background(), testSpot(), 1)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.Readings[0].Available() {
		t.Error("retry should have recovered the reading")
	}
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2", src.calls)
	}
}

type flakySource struct {
	calls    int32
	readings []models.ForecastReading
}

func (f *flakySource) Fetch(ctx context.Context, spot models.SpotProfile, horizonDays int) ([]models.ForecastReading, error) {
	if atomic.AddInt32(&f.calls, 1) == 1 {
		return nil, &models.ProviderTransportError{Provider: "scrape", StatusCode: 503, Err: errors.New("busy")}
	}
	return f.readings, nil
}

func TestResolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{err: context.Canceled}
	_, err := newTestResolver(src, &fakeFallback{}).Resolve(ctx, testSpot(), 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve() error = %v, want context.Canceled", err)
	}
}

func TestResolverSummarize(t *testing.T) {
	readings := []models.ForecastReading{measuredDay(models.Day(fixedNow))}

	r := newTestResolver(&fakeSource{}, &fakeFallback{summary: "Pumping."})
	if s := r.Summarize(context.Background(), testSpot(), readings); s != "Pumping." {
		t.Errorf("Summarize() = %q", s)
	}

	r = newTestResolver(&fakeSource{}, &fakeFallback{err: errors.New("down")})
	if s := r.Summarize(context.Background(), testSpot(), readings); !strings.Contains(s, "Supertubos") {
		t.Errorf("Summarize() fallback template = %q", s)
	}
}
