package transport

import (
	"context"
	"errors"
	"time"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

// IsTemporary reports whether err is a provider failure worth retrying
func IsTemporary(err error) bool {
	var pte *models.ProviderTransportError
	return errors.As(err, &pte) && pte.Temporary()
}

// Retry calls fn and, if it fails with a temporary transport error, calls it
// once more after backoff.
func Retry[T any](ctx context.Context, backoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err == nil || !IsTemporary(err) {
		return v, err
	}

	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-timer.C:
	}

	return fn(ctx)
}
