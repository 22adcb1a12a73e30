package models

import (
	"errors"
	"fmt"
)

var (
	// ErrOriginUnresolved is matched by every *OriginUnresolvedError
	ErrOriginUnresolved = errors.New("origin unresolved")

	// ErrRouteUnavailable means no route could be computed for a spot
	ErrRouteUnavailable = errors.New("route unavailable")

	// ErrForecastUnavailable means neither the source nor the fallback produced data
	ErrForecastUnavailable = errors.New("forecast unavailable")

	// ErrMalformedProviderResponse means a provider reply could not be parsed
	ErrMalformedProviderResponse = errors.New("malformed provider response")
)

// OriginUnresolvedError aborts a recommendation whose origin cannot be geocoded
type OriginUnresolvedError struct {
	Address string
	Reason  string
}

func (e *OriginUnresolvedError) Error() string {
	return fmt.Sprintf("origin %q unresolved: %s", e.Address, e.Reason)
}

func (e *OriginUnresolvedError) Is(target error) bool {
	return target == ErrOriginUnresolved
}

// ProviderTransportError wraps a failed call to an external provider
type ProviderTransportError struct {
	Provider   string
	StatusCode int // 0 when the request never got a response
	Body       []byte
	Err        error
}

func (e *ProviderTransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderTransportError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the call may succeed
func (e *ProviderTransportError) Temporary() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == 429 || e.StatusCode >= 500
}
