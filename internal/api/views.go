package api

import (
	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/pipeline"
)

// Views round route figures for display. Filtering already happened on the
// raw values inside the pipeline.

type recommendationView struct {
	RequestID string           `json:"request_id"`
	Origin    models.Place     `json:"origin"`
	Options   pipeline.Options `json:"options"`
	Partial   bool             `json:"partial"`
	Spots     []resultView     `json:"spots"`
}

type resultView struct {
	Name          string                 `json:"name"`
	City          string                 `json:"city"`
	Location      *models.Location       `json:"location,omitempty"`
	ColorBand     models.ColorBand       `json:"color_band"`
	Route         *models.RouteCost      `json:"route"`
	RouteIssue    string                 `json:"route_issue,omitempty"`
	Provenance    models.Provenance      `json:"provenance"`
	BestDay       *models.RatedForecast  `json:"best_day,omitempty"`
	Forecasts     []models.RatedForecast `json:"forecasts"`
	ForecastIssue string                 `json:"forecast_issue,omitempty"`
}

type spotView struct {
	models.SpotProfile
	StraightLineKm *float64 `json:"straight_line_km,omitempty"`
}

func newRecommendationView(rec *pipeline.Recommendation) recommendationView {
	v := recommendationView{
		RequestID: rec.RequestID,
		Origin:    rec.Origin,
		Options:   rec.Options,
		Partial:   rec.Partial,
		Spots:     make([]resultView, 0, len(rec.Spots)),
	}
	for _, s := range rec.Spots {
		v.Spots = append(v.Spots, newResultView(s))
	}
	return v
}

func newResultView(s models.SpotResult) resultView {
	v := resultView{
		Name:          s.Spot.Name,
		City:          s.Spot.City,
		ColorBand:     s.ColorBand,
		RouteIssue:    s.RouteIssue,
		Provenance:    s.Provenance(),
		Forecasts:     s.Forecasts,
		ForecastIssue: s.ForecastIssue,
	}
	if s.Place.Resolved {
		loc := s.Place.Location
		v.Location = &loc
	}
	if s.Route != nil {
		rounded := s.Route.Rounded()
		v.Route = &rounded
	}
	if best, ok := s.BestDay(); ok {
		v.BestDay = &best
	}
	return v
}
