// Package itf sets up throwaway PostgreSQL databases for integration tests.
package itf

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tablemaster/tablemaster/pkg/composables"
)

// TestContext provides a fluent API for building test contexts
type TestContext struct {
	ctx    context.Context
	actor  *composables.Actor
	dbName string
}

func NewTestContext() *TestContext {
	return &TestContext{ctx: context.Background()}
}

// WithActor attaches the identity the code under test sees.
func (tc *TestContext) WithActor(actor composables.Actor) *TestContext {
	tc.actor = &actor
	return tc
}

// WithDBName sets a custom database name
func (tc *TestContext) WithDBName(name string) *TestContext {
	tc.dbName = name
	return tc
}

// Build creates a migrated database and opens a transaction that is rolled
// back when the test ends. The test is skipped when PostgreSQL is unreachable.
func (tc *TestContext) Build(tb testing.TB) *TestEnvironment {
	tb.Helper()
	if !Available() {
		tb.Skip("postgres is not available")
	}
	if tc.dbName == "" {
		tc.dbName = tb.Name()
	}
	if err := CreateDB(tc.dbName); err != nil {
		tb.Fatal(err)
	}
	if err := Migrate(tc.ctx, tc.dbName); err != nil {
		tb.Fatal(err)
	}
	pool, err := NewPool(DbOpts(tc.dbName))
	if err != nil {
		tb.Fatal(err)
	}
	tx, err := pool.Begin(tc.ctx)
	if err != nil {
		pool.Close()
		tb.Fatal(err)
	}

	ctx := composables.WithPool(tc.ctx, pool)
	ctx = composables.WithTx(ctx, tx)
	if tc.actor != nil {
		ctx = composables.WithActor(ctx, *tc.actor)
	}

	tb.Cleanup(func() {
		if err := tx.Rollback(context.Background()); err != nil && err != pgx.ErrTxClosed {
			tb.Logf("Warning: failed to rollback transaction: %v", err)
		}
		pool.Close()
	})

	return &TestEnvironment{Ctx: ctx, Pool: pool, Tx: tx}
}

// TestEnvironment contains all test dependencies
type TestEnvironment struct {
	Ctx  context.Context
	Pool *pgxpool.Pool
	Tx   pgx.Tx
}

// Setup is shorthand for NewTestContext().Build(tb).
func Setup(tb testing.TB) *TestEnvironment {
	tb.Helper()
	return NewTestContext().Build(tb)
}
