package geocoding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/transport"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	DefaultUserAgent    = "SurfSpotter/1.0" // Required by Nominatim ToS
)

// NominatimProvider queries the OpenStreetMap Nominatim search API
type NominatimProvider struct {
	baseURL string
	client  *transport.Client
}

// NewNominatimProvider creates a provider limited to ratePerSec requests per
// second (Nominatim's usage policy allows at most 1).
func NewNominatimProvider(baseURL, userAgent string, ratePerSec float64, timeout time.Duration) *NominatimProvider {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if ratePerSec <= 0 {
		ratePerSec = 1
	}

	client := transport.NewClient("nominatim", userAgent, timeout)
	client.Limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)

	return &NominatimProvider{baseURL: baseURL, client: client}
}

// nominatimResponse represents one Nominatim search result
type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search looks up query and returns at most one candidate
func (p *NominatimProvider) Search(ctx context.Context, query string) (*Response, error) {
	params := url.Values{}
	params.Add("format", "json")
	params.Add("limit", "1")
	params.Add("q", query)

	reqURL := fmt.Sprintf("%s?%s", p.baseURL, params.Encode())

	body, err := p.client.Get(ctx, reqURL, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, fmt.Errorf("nominatim search: %w", err)
	}

	var results []nominatimResponse
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decoding nominatim response: %w", err)
	}

	resp := &Response{Status: StatusZeroResults}
	for _, r := range results {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			continue
		}
		loc := models.Location{Latitude: lat, Longitude: lon}
		if !loc.Valid() {
			continue
		}
		resp.Candidates = append(resp.Candidates, Candidate{Location: loc, FormattedAddress: r.DisplayName})
	}
	if len(resp.Candidates) > 0 {
		resp.Status = StatusOK
	}
	return resp, nil
}
