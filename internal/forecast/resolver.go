package forecast

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ngmaloney/surf-spotter/internal/cache"
	"github.com/ngmaloney/surf-spotter/internal/logging"
	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/transport"
)

// DefaultTTL is how long a fetched forecast stays fresh
const DefaultTTL = time.Hour

// Resolution is the forecast window of one spot. Issue explains why data is
// missing or synthetic; it is empty for a fully measured window.
type Resolution struct {
	Readings []models.ForecastReading
	Issue    string
}

// Resolver produces a forecast window for a spot: the source first, the
// fallback only when the source has no usable day at all.
type Resolver struct {
	source   Source
	fallback Fallback
	cache    *cache.Cache
	ttl      time.Duration
	backoff  time.Duration
	now      func() time.Time
}

// NewResolver creates a resolver. fallback may be nil.
func NewResolver(source Source, fallback Fallback, c *cache.Cache, ttl, backoff time.Duration) *Resolver {
	if c == nil {
		c = cache.New()
	}
	return &Resolver{
		source:   source,
		fallback: fallback,
		cache:    c,
		ttl:      ttl,
		backoff:  backoff,
		now:      time.Now,
	}
}

// Resolve returns exactly horizonDays readings. Provider failures are folded
// into unavailable readings; the only error is the caller's cancellation.
func (r *Resolver) Resolve(ctx context.Context, spot models.SpotProfile, horizonDays int) (Resolution, error) {
	if horizonDays < 1 {
		horizonDays = 1
	}
	days := window(r.now(), horizonDays)
	log := logging.Ctx(ctx).With().Str("spot", spot.Name).Logger()

	readings, srcErr := r.fromSource(ctx, spot, days)
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}
	if srcErr != nil {
		log.Warn().Err(srcErr).Msg("forecast source failed")
		readings = unavailableWindow(days, "forecast source unavailable")
	}
	if countAvailable(readings) > 0 {
		return Resolution{Readings: readings}, nil
	}

	if r.fallback == nil {
		return Resolution{Readings: readings, Issue: issue(srcErr, nil)}, nil
	}

	synthetic, fbErr := r.fromFallback(ctx, spot, days)
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}
	if fbErr != nil {
		log.Warn().Err(fbErr).Msg("forecast fallback failed")
		return Resolution{Readings: readings, Issue: issue(srcErr, fbErr)}, nil
	}
	if countAvailable(synthetic) == 0 {
		return Resolution{Readings: readings, Issue: issue(srcErr, errors.New("fallback produced no usable day"))}, nil
	}

	log.Debug().Int("days", countAvailable(synthetic)).Msg("using synthetic forecast")
	return Resolution{Readings: synthetic, Issue: "no measured forecast; showing synthetic estimate"}, nil
}

// Summarize narrates readings through the fallback, or a template when the
// fallback is missing or fails.
func (r *Resolver) Summarize(ctx context.Context, spot models.SpotProfile, readings []models.ForecastReading) string {
	if r.fallback != nil && countAvailable(readings) > 0 {
		s, err := r.fallback.Summarize(ctx, spot, readings)
		if err == nil && s != "" {
			return s
		}
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("spot", spot.Name).Msg("summary failed")
		}
	}
	return SummarizeReadings(spot, readings)
}

func (r *Resolver) fromSource(ctx context.Context, spot models.SpotProfile, days []time.Time) ([]models.ForecastReading, error) {
	key := r.key("forecast", spot, days)
	readings, err := cache.Fetch(ctx, r.cache, key, r.ttl, func(ctx context.Context) ([]models.ForecastReading, error) {
		return transport.Retry(ctx, r.backoff, func(ctx context.Context) ([]models.ForecastReading, error) {
			return r.source.Fetch(ctx, spot, len(days))
		})
	})
	if err != nil {
		return nil, err
	}

	out := alignWindow(readings, days, "missing from forecast source")
	for i := range out {
		if out[i].Available() {
			out[i].Provenance = models.ProvenanceMeasured
		}
	}
	return out, nil
}

func (r *Resolver) fromFallback(ctx context.Context, spot models.SpotProfile, days []time.Time) ([]models.ForecastReading, error) {
	key := r.key("fallback", spot, days)
	readings, err := cache.Fetch(ctx, r.cache, key, r.ttl, func(ctx context.Context) ([]models.ForecastReading, error) {
		return r.fallback.Synthesize(ctx, spot, len(days))
	})
	if err != nil {
		return nil, err
	}

	out := alignWindow(readings, days, "missing from synthetic forecast")
	for i := range out {
		if out[i].Available() {
			out[i].Provenance = models.ProvenanceSynthetic
		}
	}
	return out, nil
}

func (r *Resolver) key(namespace string, spot models.SpotProfile, days []time.Time) cache.Key {
	id := spot.ForecastSourceID
	if id == "" {
		id = "name:" + spot.Name
	}
	return cache.NewKey(namespace, id, strconv.Itoa(len(days)), days[0].Format(dateLayout))
}

func issue(srcErr, fbErr error) string {
	reason := "source has no usable day"
	if srcErr != nil {
		reason = srcErr.Error()
	}
	if fbErr != nil {
		reason += "; fallback: " + fbErr.Error()
	}
	return fmt.Errorf("%w: %s", models.ErrForecastUnavailable, reason).Error()
}
