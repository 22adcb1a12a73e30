package models

import "math"

// RouteCost is the travel cost from the origin to a spot. Values are kept at
// full precision; use Rounded for display only.
type RouteCost struct {
	DistanceKm    float64 `json:"distance_km"`
	DurationHours float64 `json:"duration_hours"`
	TollCostEUR   float64 `json:"toll_cost_eur"`
	FuelCostEUR   float64 `json:"fuel_cost_eur"`
	TotalPriceEUR float64 `json:"total_price_eur"`
}

// Rounded returns a copy rounded for display: one decimal for distance and
// duration, two for costs.
func (r RouteCost) Rounded() RouteCost {
	return RouteCost{
		DistanceKm:    Round(r.DistanceKm, 1),
		DurationHours: Round(r.DurationHours, 1),
		TollCostEUR:   Round(r.TollCostEUR, 2),
		FuelCostEUR:   Round(r.FuelCostEUR, 2),
		TotalPriceEUR: Round(r.TotalPriceEUR, 2),
	}
}

// Round rounds v half away from zero to the given number of decimals
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
