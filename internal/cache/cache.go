// Package cache memoizes expensive provider calls for the lifetime of the
// process. Concurrent lookups of the same key share one in-flight computation.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ngmaloney/surf-spotter/internal/metrics"
)

// NoExpiry keeps an entry until the process exits
const NoExpiry time.Duration = 0

// Key is an exact, ordered tuple of normalized inputs. The first element is
// the namespace (e.g. "geocode").
type Key []string

// NewKey builds a key from a namespace and its parts
func NewKey(namespace string, parts ...string) Key {
	return append(Key{namespace}, parts...)
}

func (k Key) String() string {
	return strings.Join(k, "\x1f")
}

func (k Key) namespace() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

type entry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

// Stats reports cache activity
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Shared int64 `json:"shared"`
	Keys   int   `json:"keys"`
}

// Cache is a TTL cache with single-flight computation per key
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
	now     func() time.Time

	flightsMu sync.Mutex
	flights   map[string]*flight

	statsMu sync.Mutex
	stats   Stats
}

// flight is the producer context shared by every waiter on one key
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// New creates an empty cache
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		flights: make(map[string]*flight),
		now:     time.Now,
	}
}

// Get returns a live entry for key
func (c *Cache) Get(key Key) (any, bool) {
	k := key.String()

	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.entries[k]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, k)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. ttl <= 0 means NoExpiry.
func (c *Cache) Set(key Key, value any, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key.String()] = e
	c.mu.Unlock()
}

// GetOrCompute returns the cached value for key or runs producer to fill it.
// Concurrent callers for the same key wait on the same producer call. Errors
// are returned to every waiter and are not cached. The producer outlives any
// single caller's cancellation so other waiters still get a result; a
// cancelled caller stops waiting and returns ctx.Err(). When the last waiter
// leaves, the producer's context is cancelled.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, ttl time.Duration, producer func(context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		c.record(key, "hit")
		return v, nil
	}

	k := key.String()
	f := c.join(ctx, k)
	defer c.leave(k, f)

	produceCtx := f.ctx
	ch := c.group.DoChan(k, func() (any, error) {
		// another flight may have filled the entry while we queued
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := producer(produceCtx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.record(key, "shared")
		} else {
			c.record(key, "miss")
		}
		return res.Val, res.Err
	}
}

// join registers a waiter on the flight for k, starting one if needed
func (c *Cache) join(ctx context.Context, k string) *flight {
	c.flightsMu.Lock()
	defer c.flightsMu.Unlock()

	f, ok := c.flights[k]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[k] = f
	}
	f.waiters++
	return f
}

// leave drops a waiter. The last one out cancels the producer and makes the
// next caller start a fresh flight instead of joining the abandoned one.
func (c *Cache) leave(k string, f *flight) {
	c.flightsMu.Lock()
	defer c.flightsMu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if c.flights[k] == f {
		delete(c.flights, k)
		c.group.Forget(k)
	}
}

// Fetch is the typed form of GetOrCompute
func Fetch[T any](ctx context.Context, c *Cache, key Key, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	v, err := c.GetOrCompute(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return producer(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: key %v holds %T", []string(key), v)
	}
	return typed, nil
}

// Stats returns a snapshot of cache activity
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	s := c.stats
	s.Keys = n
	return s
}

func (c *Cache) record(key Key, result string) {
	c.statsMu.Lock()
	switch result {
	case "hit":
		c.stats.Hits++
	case "shared":
		c.stats.Shared++
	default:
		c.stats.Misses++
	}
	c.statsMu.Unlock()
	metrics.CacheRequests.WithLabelValues(key.namespace(), result).Inc()
}
