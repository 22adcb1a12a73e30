package geocoding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ngmaloney/surf-spotter/internal/cache"
	"github.com/ngmaloney/surf-spotter/internal/logging"
	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/transport"
)

// Status is the provider's verdict for a lookup
type Status string

const (
	StatusOK          Status = "OK"
	StatusZeroResults Status = "ZERO_RESULTS"
)

// Candidate is one match returned by a provider
type Candidate struct {
	Location         models.Location
	FormattedAddress string
}

// Response is a provider's answer for one address
type Response struct {
	Status     Status
	Candidates []Candidate
}

// Provider looks up free-text addresses
type Provider interface {
	Search(ctx context.Context, query string) (*Response, error)
}

// Geocoder resolves addresses to places. It never returns an error: every
// failure becomes an unresolved place carrying the reason.
type Geocoder struct {
	provider Provider
	cache    *cache.Cache
	backoff  time.Duration
}

// NewGeocoder creates a geocoder backed by provider and c
func NewGeocoder(provider Provider, c *cache.Cache, backoff time.Duration) *Geocoder {
	if c == nil {
		c = cache.New()
	}
	return &Geocoder{provider: provider, cache: c, backoff: backoff}
}

// Resolve geocodes address. Blank input is unresolved without a provider call.
func (g *Geocoder) Resolve(ctx context.Context, address string) models.Place {
	query := normalizeSpace(address)
	if query == "" {
		return models.UnresolvedPlace("address is empty")
	}

	key := cache.NewKey("geocode", strings.ToLower(query))
	place, err := cache.Fetch(ctx, g.cache, key, cache.NoExpiry, func(ctx context.Context) (models.Place, error) {
		resp, err := transport.Retry(ctx, g.backoff, func(ctx context.Context) (*Response, error) {
			return g.provider.Search(ctx, query)
		})
		if err != nil {
			return models.Place{}, err
		}
		return placeFromResponse(query, resp), nil
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("address", query).Msg("geocoding failed")
		return models.UnresolvedPlace(fmt.Sprintf("geocoding %q failed: %v", query, err))
	}
	return place
}

func placeFromResponse(query string, resp *Response) models.Place {
	if resp == nil {
		return models.UnresolvedPlace("geocoder returned no response")
	}
	if resp.Status != StatusOK {
		return models.UnresolvedPlace(fmt.Sprintf("geocoder status %s for %q", resp.Status, query))
	}
	if len(resp.Candidates) == 0 {
		return models.UnresolvedPlace(fmt.Sprintf("no results found for %q", query))
	}

	first := resp.Candidates[0]
	if !first.Location.Valid() {
		return models.UnresolvedPlace(fmt.Sprintf("geocoder returned invalid coordinates for %q", query))
	}

	formatted := normalizeSpace(first.FormattedAddress)
	if formatted == "" {
		formatted = query
	}
	return models.ResolvedPlace(first.Location, formatted)
}

// normalizeSpace trims and collapses internal whitespace
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
