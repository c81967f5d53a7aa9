package middleware

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/tablemaster/tablemaster/pkg/cache"
)

type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
	Store             limiter.Store
	KeyFunc           func(r *http.Request) string
}

func NewMemoryStore() limiter.Store {
	return memory.NewStore()
}

func NewRedisStore(redisURL string) (limiter.Store, error) {
	store, err := sredis.NewStoreWithOptions(cache.NewRedisClient(redisURL), limiter.StoreOptions{
		Prefix: "tablemaster:ratelimit",
	})
	if err != nil {
		return nil, errors.Wrap(err, "create redis rate limit store")
	}
	return store, nil
}

// RateLimit limits requests per client IP (or KeyFunc) and answers 429 when exceeded.
func RateLimit(cfg RateLimitConfig) mux.MiddlewareFunc {
	if cfg.RequestsPerPeriod <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	period := cfg.Period
	if period == 0 {
		period = time.Second
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	instance := limiter.New(store, limiter.Rate{Period: period, Limit: int64(cfg.RequestsPerPeriod)})

	opts := []stdlib.Option{}
	if cfg.KeyFunc != nil {
		opts = append(opts, stdlib.WithKeyGetter(cfg.KeyFunc))
	}
	mw := stdlib.NewMiddleware(instance, opts...)
	return mw.Handler
}
