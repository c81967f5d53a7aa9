package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/tablemaster/tablemaster/pkg/application"
	"github.com/tablemaster/tablemaster/pkg/configuration"
	"github.com/tablemaster/tablemaster/pkg/constants"
	"github.com/tablemaster/tablemaster/pkg/httpapi"
	"github.com/tablemaster/tablemaster/pkg/middleware"
	"github.com/tablemaster/tablemaster/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	// Pool is nil when running on the in-memory store.
	Pool *pgxpool.Pool
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	loggerOpts := middleware.DefaultLoggerOptions()
	loggerOpts.RequestIDHeader = conf.RequestIDHeader
	loggerOpts.RealIPHeader = conf.RealIPHeader

	// WithLogger opens the root span for each request.
	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, loggerOpts),
		middleware.TracedMiddleware("database"),
		middleware.Provide(constants.AppKey, app),
	}
	if options.Pool != nil {
		middlewares = append(middlewares, middleware.Provide(constants.PoolKey, options.Pool))
	}
	middlewares = append(middlewares,
		middleware.TracedMiddleware("identity"),
		middleware.WithActor(middleware.ActorOptions{
			UserIDHeader: conf.Identity.UserIDHeader,
			EmailHeader:  conf.Identity.EmailHeader,
			NameHeader:   conf.Identity.NameHeader,
			RoleHeader:   conf.Identity.RoleHeader,
			AdminRole:    conf.Identity.AdminRole,
			AdminEmails:  conf.Identity.AdminEmails(),
		}),
		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.CorsOrigins...),
	)

	if conf.RateLimit.Enabled {
		var store limiter.Store
		var err error

		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
			}),
		)
	}

	app.RegisterMiddleware(middlewares...)

	serverInstance := server.NewHTTPServer(
		app,
		http.HandlerFunc(notFound),
		http.HandlerFunc(methodNotAllowed),
	)
	return serverInstance, nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	_ = httpapi.WriteAPIError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = httpapi.WriteAPIError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}
