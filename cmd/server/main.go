package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tablemaster/tablemaster/internal/server"
	"github.com/tablemaster/tablemaster/modules"
	"github.com/tablemaster/tablemaster/pkg/application"
	"github.com/tablemaster/tablemaster/pkg/cache"
	"github.com/tablemaster/tablemaster/pkg/configuration"
	"github.com/tablemaster/tablemaster/pkg/eventbus"
	"github.com/tablemaster/tablemaster/pkg/logging"
	"github.com/tablemaster/tablemaster/pkg/metrics"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
	}

	var (
		pool  *pgxpool.Pool
		store recordstore.Store
	)
	if conf.StorageBackend == configuration.StorageBackendPostgres {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		var err error
		pool, err = pgxpool.New(ctx, conf.Database.Opts)
		if err != nil {
			panic(err)
		}
		defer pool.Close()
		store = recordstore.NewPostgresStore(nil)
	} else {
		logger.Warn("STORAGE_BACKEND=memory: data is lost on restart")
		store = recordstore.NewMemoryStore(nil)
	}

	var menuCache cache.Cache
	if conf.Cache.Backend == configuration.CacheBackendRedis {
		client := cache.NewRedisClient(conf.RedisURL)
		defer client.Close()
		menuCache = cache.NewRedisCache(client, conf.Cache.Prefix, conf.Cache.TTL)
	} else {
		menuCache = cache.NewMemoryCache(conf.Cache.TTL)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		Store:    store,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules(conf, menuCache, logger)...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path, nil))
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := serverInstance.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("graceful shutdown failed")
		}
	}()

	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to start server: %v", err)
	}
}
