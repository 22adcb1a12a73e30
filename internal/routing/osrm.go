package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/ngmaloney/surf-spotter/internal/geo"
	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/transport"
)

const DefaultOSRMURL = "https://router.project-osrm.org"

// OSRMProvider queries an OSRM routing server
type OSRMProvider struct {
	baseURL string
	client  *transport.Client
}

// NewOSRMProvider creates a new OSRM provider
func NewOSRMProvider(baseURL, userAgent string, timeout time.Duration) *OSRMProvider {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	return &OSRMProvider{
		baseURL: baseURL,
		client:  transport.NewClient("osrm", userAgent, timeout),
	}
}

// osrmResponse represents the OSRM route service reply
type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
	} `json:"routes"`
}

// Route fetches the fastest driving route. OSRM has no toll data.
func (p *OSRMProvider) Route(ctx context.Context, origin, destination models.Location) (*Route, error) {
	// OSRM takes lon,lat pairs
	reqURL := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		p.baseURL, origin.Longitude, origin.Latitude, destination.Longitude, destination.Latitude)

	body, err := p.client.Get(ctx, reqURL, http.Header{"Accept": {"application/json"}})
	if err != nil {
		// OSRM answers NoRoute and NoSegment with a 400 carrying its JSON reply
		var te *models.ProviderTransportError
		if !errors.As(err, &te) || te.StatusCode != http.StatusBadRequest || len(te.Body) == 0 {
			return nil, fmt.Errorf("osrm route: %w", err)
		}
		body = te.Body
	}

	var resp osrmResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding osrm response: %w: %w", models.ErrMalformedProviderResponse, err)
	}

	switch resp.Code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return nil, nil
	default:
		return nil, fmt.Errorf("osrm code %s: %s", resp.Code, resp.Message)
	}
	if len(resp.Routes) == 0 {
		return nil, nil
	}

	route := &Route{
		DistanceKm:    resp.Routes[0].Distance / 1000,
		DurationHours: resp.Routes[0].Duration / 3600,
	}

	// A road route can't be meaningfully shorter than the great circle
	if straight := geo.HaversineKm(origin, destination); route.DistanceKm < straight*0.95 {
		return nil, fmt.Errorf("osrm distance %.1fkm shorter than straight line %.1fkm: %w",
			route.DistanceKm, straight, models.ErrMalformedProviderResponse)
	}
	return route, nil
}
