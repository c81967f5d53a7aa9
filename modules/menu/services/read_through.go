package services

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/tablemaster/tablemaster/pkg/cache"
	"github.com/tablemaster/tablemaster/pkg/composables"
)

const (
	itemsCacheKey      = "menu:items"
	prefixedCacheKey   = "menu:prefixed"
	categoriesCacheKey = "menu:categories"
)

type BreakerOptions struct {
	MaxFailures uint32
	Timeout     time.Duration
}

// NewReadBreaker trips after MaxFailures consecutive store failures and probes
// again once Timeout has passed.
func NewReadBreaker(name string, opts BreakerOptions) *gobreaker.CircuitBreaker {
	maxFailures := opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = 3
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
}

// readThrough loads a view from the store and remembers it. When the store read
// fails, or the breaker is open, the last cached copy is served instead; with no
// cached copy the original error is returned.
func readThrough[T any](
	ctx context.Context,
	c cache.Cache,
	breaker *gobreaker.CircuitBreaker,
	key string,
	load func(context.Context) (T, error),
) (T, error) {
	logger := composables.UseLogger(ctx).WithField("cache-key", key)

	v, err := breaker.Execute(func() (interface{}, error) {
		return load(ctx)
	})
	if err == nil {
		fresh := v.(T)
		if werr := c.Write(ctx, key, fresh); werr != nil {
			logger.WithError(werr).Warn("failed to refresh menu cache")
		}
		return fresh, nil
	}

	var cached T
	ok, cerr := c.Read(ctx, key, &cached)
	if cerr != nil {
		logger.WithError(cerr).Warn("failed to read menu cache")
	}
	if ok {
		logger.WithError(err).Warn("serving cached menu data")
		return cached, nil
	}
	var zero T
	return zero, err
}
