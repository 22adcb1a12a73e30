// Package transport issues HTTP calls to external providers and classifies
// their failures as *models.ProviderTransportError.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/ngmaloney/surf-spotter/internal/metrics"
	"github.com/ngmaloney/surf-spotter/internal/models"
)

const maxBodyBytes = 8 << 20

// Client wraps an http.Client for a single named provider
type Client struct {
	Provider  string
	HTTP      *http.Client
	UserAgent string
	Limiter   *rate.Limiter // optional; waits before every request
}

// NewClient creates a provider client with the given timeout
func NewClient(provider, userAgent string, timeout time.Duration) *Client {
	return &Client{
		Provider:  provider,
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Get performs a GET request and returns the body of a 200 response
func (c *Client) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.Do(req)
}

// PostJSON encodes payload as JSON, posts it and returns the response body
func (c *Client) PostJSON(ctx context.Context, url string, payload any, header http.Header) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.Do(req)
}

// Do executes req. Network failures and non-200 responses are returned as
// *models.ProviderTransportError; context cancellation is returned as is.
func (c *Client) Do(req *http.Request) ([]byte, error) {
	ctx := req.Context()

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		metrics.ProviderRequests.WithLabelValues(c.Provider, "transport_error").Inc()
		return nil, &models.ProviderTransportError{Provider: c.Provider, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(c.Provider, "transport_error").Inc()
		return nil, &models.ProviderTransportError{Provider: c.Provider, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues(c.Provider, "bad_status").Inc()
		return nil, &models.ProviderTransportError{
			Provider:   c.Provider,
			StatusCode: resp.StatusCode,
			Body:       body,
			Err:        fmt.Errorf("unexpected response: %s", snippet(body)),
		}
	}

	metrics.ProviderRequests.WithLabelValues(c.Provider, "success").Inc()
	return body, nil
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
