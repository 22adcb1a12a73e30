package models

// ColorCriterion selects the value a spot's colour band is derived from
type ColorCriterion string

const (
	ColorByDistance ColorCriterion = "distance"
	ColorByPrice    ColorCriterion = "price"
)

// ParseColorCriterion parses a criterion name, defaulting to distance
func ParseColorCriterion(s string) (ColorCriterion, bool) {
	switch ColorCriterion(s) {
	case ColorByDistance, "":
		return ColorByDistance, true
	case ColorByPrice:
		return ColorByPrice, true
	}
	return ColorByDistance, false
}

// ColorBand is a coarse visual classification of a spot
type ColorBand string

const (
	BandGreen  ColorBand = "green"
	BandOrange ColorBand = "orange"
	BandRed    ColorBand = "red"
	BandGray   ColorBand = "gray"
)

// SpotResult is one spot of a recommendation. Built once per request and not
// modified after the pipeline returns it.
type SpotResult struct {
	Spot          SpotProfile     `json:"spot"`
	Place         Place           `json:"place"`
	Route         *RouteCost      `json:"route,omitempty"` // nil when the route is unknown
	RouteIssue    string          `json:"route_issue,omitempty"`
	Forecasts     []RatedForecast `json:"forecasts"`
	ForecastIssue string          `json:"forecast_issue,omitempty"`
	ColorBand     ColorBand       `json:"color_band"`
}

// RouteKnown reports whether routing succeeded for this spot
func (r SpotResult) RouteKnown() bool {
	return r.Route != nil
}

// BestDay returns the highest rated available day
func (r SpotResult) BestDay() (RatedForecast, bool) {
	var best RatedForecast
	found := false
	for _, f := range r.Forecasts {
		if !f.Available() {
			continue
		}
		if !found || f.DailyRating > best.DailyRating {
			best = f
			found = true
		}
	}
	return best, found
}

// Provenance summarises where the spot's forecast came from
func (r SpotResult) Provenance() Provenance {
	var measured, synthetic int
	for _, f := range r.Forecasts {
		switch f.Provenance {
		case ProvenanceMeasured:
			measured++
		case ProvenanceSynthetic:
			synthetic++
		}
	}
	switch {
	case measured == 0 && synthetic == 0:
		return ProvenanceUnavailable
	case synthetic == 0:
		return ProvenanceMeasured
	case measured == 0:
		return ProvenanceSynthetic
	}
	return ProvenanceMixed
}
