package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tablemaster/tablemaster/modules"
	"github.com/tablemaster/tablemaster/pkg/application"
	"github.com/tablemaster/tablemaster/pkg/cache"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/configuration"
	"github.com/tablemaster/tablemaster/pkg/eventbus"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

// session is a loaded application bound to a Postgres pool. Commands run
// against ctx, which carries the pool and the admin actor.
type session struct {
	app  application.Application
	pool *pgxpool.Pool
	ctx  context.Context
}

func (s *session) Close() {
	s.pool.Close()
}

func connectDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return pool, nil
}

// openSession always uses the Postgres backend; the in-memory backend only
// lives as long as a server process.
func openSession(ctx context.Context, admin *adminFlags) (*session, error) {
	conf := configuration.Use()
	logger := conf.Logger()

	pool, err := connectDB(ctx, conf.Database.Opts)
	if err != nil {
		return nil, err
	}
	conf.StorageBackend = configuration.StorageBackendPostgres

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		Store:    recordstore.NewPostgresStore(nil),
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules(conf, cache.NewMemoryCache(conf.Cache.TTL), logger)...); err != nil {
		pool.Close()
		return nil, fmt.Errorf("load modules: %w", err)
	}

	ctx = composables.WithPool(ctx, pool)
	ctx = composables.WithActor(ctx, admin.actor())
	return &session{app: app, pool: pool, ctx: ctx}, nil
}

func (f *adminFlags) actor() composables.Actor {
	return composables.Actor{
		ID:       f.id,
		Email:    f.email,
		FullName: "tablemaster cli",
		Admin:    true,
	}
}
