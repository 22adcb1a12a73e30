package pipeline

import (
	"sort"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

// Band thresholds: drive hours for the distance criterion, euros for price
var (
	hourBands  = [3]float64{4, 6, 8}
	priceBands = [3]float64{40, 70, 100}
)

// Band classifies a route. Unknown routes are gray.
func Band(route *models.RouteCost, criterion models.ColorCriterion) models.ColorBand {
	if route == nil {
		return models.BandGray
	}

	value, limits := route.DurationHours, hourBands
	if criterion == models.ColorByPrice {
		value, limits = route.TotalPriceEUR, priceBands
	}

	switch {
	case value < limits[0]:
		return models.BandGreen
	case value < limits[1]:
		return models.BandOrange
	case value < limits[2]:
		return models.BandRed
	}
	return models.BandGray
}

// Keep reports whether a result passes the thresholds. Zero or negative
// thresholds are unset; spots without a route are never filtered.
func Keep(r models.SpotResult, opts Options) bool {
	if !r.RouteKnown() {
		return true
	}
	if opts.MaxPriceEUR > 0 && r.Route.TotalPriceEUR > opts.MaxPriceEUR {
		return false
	}
	if opts.MaxDriveHours > 0 && r.Route.DurationHours > opts.MaxDriveHours {
		return false
	}
	return true
}

// SortResults orders results by ascending distance; spots without a route go
// last in their original order.
func SortResults(results []models.SpotResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.RouteKnown() != b.RouteKnown() {
			return a.RouteKnown()
		}
		if !a.RouteKnown() {
			return false
		}
		return a.Route.DistanceKm < b.Route.DistanceKm
	})
}
