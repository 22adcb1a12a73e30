package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ngmaloney/surf-spotter/internal/forecast"
	"github.com/ngmaloney/surf-spotter/internal/logging"
	"github.com/ngmaloney/surf-spotter/internal/metrics"
	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/rating"
)

// Forecast window bounds in days
const (
	DefaultHorizonDays = 3
	MaxHorizonDays     = 16
)

// Geocoder resolves free-text addresses
type Geocoder interface {
	Resolve(ctx context.Context, address string) models.Place
}

// RouteCalculator prices the drive between two places
type RouteCalculator interface {
	Compute(ctx context.Context, origin, destination models.Place) (models.RouteCost, error)
}

// ForecastResolver produces a spot's forecast window
type ForecastResolver interface {
	Resolve(ctx context.Context, spot models.SpotProfile, horizonDays int) (forecast.Resolution, error)
}

// CatalogLoader supplies the spot catalog
type CatalogLoader interface {
	LoadSpots(ctx context.Context) ([]models.SpotProfile, error)
}

// Options are the user's filters for one request
type Options struct {
	MaxPriceEUR    float64               `json:"max_price_eur"`
	MaxDriveHours  float64               `json:"max_drive_hours"`
	ColorCriterion models.ColorCriterion `json:"color_criterion"`
	HorizonDays    int                   `json:"horizon_days"`
}

// Recommendation is the outcome of one request. Partial is set when the
// request was cancelled and only the spots completed by then are listed.
type Recommendation struct {
	RequestID string              `json:"request_id"`
	Origin    models.Place        `json:"origin"`
	Options   Options             `json:"options"`
	Spots     []models.SpotResult `json:"spots"`
	Trace     []State             `json:"-"`
	Partial   bool                `json:"partial"`
}

// Pipeline runs recommendation requests
type Pipeline struct {
	geocoder       Geocoder
	routes         RouteCalculator
	forecasts      ForecastResolver
	catalog        CatalogLoader
	workers        int
	defaultHorizon int
}

// New creates a pipeline fanning out to at most workers spots at a time
func New(geocoder Geocoder, routes RouteCalculator, forecasts ForecastResolver, catalog CatalogLoader, workers, defaultHorizon int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	if defaultHorizon < 1 || defaultHorizon > MaxHorizonDays {
		defaultHorizon = DefaultHorizonDays
	}
	return &Pipeline{
		geocoder:       geocoder,
		routes:         routes,
		forecasts:      forecasts,
		catalog:        catalog,
		workers:        workers,
		defaultHorizon: defaultHorizon,
	}
}

// spotRun carries one spot through the stages. Each is owned by exactly one
// goroutine per stage.
type spotRun struct {
	spot          models.SpotProfile
	place         models.Place
	route         *models.RouteCost
	routeIssue    string
	routed        bool
	readings      []models.ForecastReading
	forecastIssue string
	forecasted    bool
}

type run struct {
	id    string
	trace []State
}

func (r *run) enter(ctx context.Context, s State) {
	r.trace = append(r.trace, s)
	logging.Ctx(ctx).Debug().Str("state", s.String()).Msg("pipeline state")
}

// Run recommends spots reachable from originAddress. It fails only when the
// origin cannot be geocoded (models.ErrOriginUnresolved), the catalog cannot
// be loaded, or ctx ends before the origin is known. Cancellation later on
// returns the spots finished so far with Partial set.
func (p *Pipeline) Run(ctx context.Context, originAddress string, opts Options) (*Recommendation, error) {
	start := time.Now()
	opts = p.normalize(opts)

	r := &run{id: uuid.NewString()}
	ctx = logging.WithRequestID(ctx, r.id)
	r.enter(ctx, StateInit)

	// 1. Resolve the origin
	origin := p.geocoder.Resolve(ctx, originAddress)
	if err := ctx.Err(); err != nil {
		r.enter(ctx, StateErrored)
		observe(start, "cancelled")
		return nil, err
	}
	if !origin.Resolved {
		r.enter(ctx, StateErrored)
		observe(start, "origin_unresolved")
		return nil, &models.OriginUnresolvedError{Address: originAddress, Reason: origin.Reason}
	}
	r.enter(ctx, StateOriginResolved)

	spots, err := p.catalog.LoadSpots(ctx)
	if err != nil {
		r.enter(ctx, StateErrored)
		observe(start, "error")
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	runs := make([]*spotRun, len(spots))
	for i, s := range spots {
		runs[i] = &spotRun{spot: s}
	}

	// 2. Place and route every spot
	p.fanOut(ctx, runs, func(ctx context.Context, sr *spotRun) {
		sr.place = p.placeSpot(ctx, sr.spot)
		cost, err := p.routes.Compute(ctx, origin, sr.place)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("spot", sr.spot.Name).Msg("route unavailable")
			sr.routeIssue = err.Error()
		} else {
			sr.route = &cost
		}
		sr.routed = true
	})
	r.enter(ctx, StateRoutesComputed)

	// 3. Resolve forecasts for routed spots
	p.fanOut(ctx, runs, func(ctx context.Context, sr *spotRun) {
		if !sr.routed {
			return
		}
		res, err := p.forecasts.Resolve(ctx, sr.spot, opts.HorizonDays)
		if err != nil {
			return
		}
		sr.readings = res.Readings
		sr.forecastIssue = res.Issue
		sr.forecasted = true
	})
	r.enter(ctx, StateForecastsResolved)

	// 4. Rate, keeping only spots that made it through every stage
	results := make([]models.SpotResult, 0, len(runs))
	partial := false
	for _, sr := range runs {
		if !sr.routed || !sr.forecasted {
			partial = true
			continue
		}
		results = append(results, models.SpotResult{
			Spot:          sr.spot,
			Place:         sr.place,
			Route:         sr.route,
			RouteIssue:    sr.routeIssue,
			Forecasts:     rating.RateAll(sr.spot, sr.readings),
			ForecastIssue: sr.forecastIssue,
		})
	}
	r.enter(ctx, StateRated)

	// 5. Filter, band and sort
	kept := results[:0]
	for _, res := range results {
		if Keep(res, opts) {
			res.ColorBand = Band(res.Route, opts.ColorCriterion)
			kept = append(kept, res)
		}
	}
	SortResults(kept)
	r.enter(ctx, StateFiltered)

	for _, res := range kept {
		metrics.SpotResults.WithLabelValues(string(res.Provenance())).Inc()
	}
	r.enter(ctx, StateDone)

	outcome := "ok"
	if partial {
		outcome = "partial"
		logging.Ctx(ctx).Warn().Int("completed", len(results)).Int("spots", len(spots)).Msg("recommendation cut short")
	}
	observe(start, outcome)

	return &Recommendation{
		RequestID: r.id,
		Origin:    origin,
		Options:   opts,
		Spots:     kept,
		Trace:     r.trace,
		Partial:   partial,
	}, nil
}

// fanOut runs fn for every spot with at most p.workers in flight. Once ctx
// ends no new spot is started.
func (p *Pipeline) fanOut(ctx context.Context, runs []*spotRun, fn func(context.Context, *spotRun)) {
	var g errgroup.Group
	g.SetLimit(p.workers)
	for _, sr := range runs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fn(ctx, sr)
			// per-spot failures never abort the group
			return nil
		})
	}
	_ = g.Wait()
}

// placeSpot uses the catalog coordinates when present, else geocodes the
// spot's address.
func (p *Pipeline) placeSpot(ctx context.Context, spot models.SpotProfile) models.Place {
	if spot.Location != nil && spot.Location.Valid() {
		return models.ResolvedPlace(*spot.Location, spot.Address())
	}
	return p.geocoder.Resolve(ctx, spot.Address())
}

func (p *Pipeline) normalize(opts Options) Options {
	if opts.HorizonDays < 1 {
		opts.HorizonDays = p.defaultHorizon
	}
	if opts.HorizonDays > MaxHorizonDays {
		opts.HorizonDays = MaxHorizonDays
	}
	if c, ok := models.ParseColorCriterion(string(opts.ColorCriterion)); ok {
		opts.ColorCriterion = c
	} else {
		opts.ColorCriterion = models.ColorByDistance
	}
	return opts
}

func observe(start time.Time, outcome string) {
	metrics.PipelineDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// IsOriginUnresolved reports whether err aborted a request for lack of origin
func IsOriginUnresolved(err error) bool {
	return errors.Is(err, models.ErrOriginUnresolved)
}
