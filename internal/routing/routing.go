package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/ngmaloney/surf-spotter/internal/cache"
	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/transport"
)

// Route is a provider's driving route between two points
type Route struct {
	DistanceKm    float64
	DurationHours float64
	TollCostEUR   *float64 // nil when the provider has no toll information
}

// Provider computes driving routes. It returns nil, nil when no route exists.
type Provider interface {
	Route(ctx context.Context, origin, destination models.Location) (*Route, error)
}

// Costs holds the vehicle and road pricing assumptions
type Costs struct {
	ConsumptionPer100Km float64 `koanf:"consumption_l_per_100km"`
	FuelPricePerLiter   float64 `koanf:"fuel_price_eur_per_l"`
	TollRatePerKm       float64 `koanf:"toll_rate_eur_per_km"`
}

// DefaultCosts returns a typical European petrol car on tolled motorways
func DefaultCosts() Costs {
	return Costs{
		ConsumptionPer100Km: 6.5,
		FuelPricePerLiter:   1.5,
		TollRatePerKm:       0.05,
	}
}

// Price derives the trip cost of route. The provider's toll wins over the
// per-km estimate when present.
func (c Costs) Price(route Route) models.RouteCost {
	fuel := route.DistanceKm * c.ConsumptionPer100Km / 100 * c.FuelPricePerLiter
	toll := route.DistanceKm * c.TollRatePerKm
	if route.TollCostEUR != nil {
		toll = *route.TollCostEUR
	}
	return models.RouteCost{
		DistanceKm:    route.DistanceKm,
		DurationHours: route.DurationHours,
		TollCostEUR:   toll,
		FuelCostEUR:   fuel,
		TotalPriceEUR: toll + fuel,
	}
}

// Calculator turns places into route costs
type Calculator struct {
	provider Provider
	costs    Costs
	cache    *cache.Cache
	breaker  *transport.Breaker[*Route]
	backoff  time.Duration
}

// NewCalculator creates a calculator. Routes are cached for the process
// lifetime; costs are applied on every call.
func NewCalculator(provider Provider, costs Costs, c *cache.Cache, backoff time.Duration) *Calculator {
	if c == nil {
		c = cache.New()
	}
	return &Calculator{
		provider: provider,
		costs:    costs,
		cache:    c,
		breaker:  transport.NewBreaker[*Route]("routing", 30*time.Second),
		backoff:  backoff,
	}
}

// Compute returns the cost of driving from origin to destination. Every
// failure wraps models.ErrRouteUnavailable.
func (c *Calculator) Compute(ctx context.Context, origin, destination models.Place) (models.RouteCost, error) {
	if !origin.Resolved {
		return models.RouteCost{}, fmt.Errorf("origin unresolved: %w", models.ErrRouteUnavailable)
	}
	if !destination.Resolved {
		return models.RouteCost{}, fmt.Errorf("destination unresolved (%s): %w", destination.Reason, models.ErrRouteUnavailable)
	}

	key := cache.NewKey("route", origin.Location.String(), destination.Location.String())
	route, err := cache.Fetch(ctx, c.cache, key, cache.NoExpiry, func(ctx context.Context) (*Route, error) {
		return transport.Retry(ctx, c.backoff, func(ctx context.Context) (*Route, error) {
			return c.breaker.Execute(func() (*Route, error) {
				return c.provider.Route(ctx, origin.Location, destination.Location)
			})
		})
	})
	if err != nil {
		return models.RouteCost{}, fmt.Errorf("%w: %w", models.ErrRouteUnavailable, err)
	}
	if route == nil {
		return models.RouteCost{}, fmt.Errorf("no driving route: %w", models.ErrRouteUnavailable)
	}

	return c.costs.Price(*route), nil
}
