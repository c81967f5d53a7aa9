package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/modules/menu/domain/menuitem"
	"github.com/tablemaster/tablemaster/modules/menu/domain/prefixedmenu"
	"github.com/tablemaster/tablemaster/modules/menu/infrastructure/persistence"
	"github.com/tablemaster/tablemaster/modules/menu/services"
	"github.com/tablemaster/tablemaster/pkg/cache"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

var errStoreDown = errors.New("store unavailable")

// outage wraps the record store repositories and fails every read while down.
type outage struct {
	down  atomic.Bool
	calls atomic.Int32
}

func (o *outage) check() error {
	o.calls.Add(1)
	if o.down.Load() {
		return errStoreDown
	}
	return nil
}

type flakyItems struct {
	menuitem.Repository
	o *outage
}

func (r flakyItems) List(ctx context.Context) ([]menuitem.MenuItem, error) {
	if err := r.o.check(); err != nil {
		return nil, err
	}
	return r.Repository.List(ctx)
}

type flakyPrefixed struct {
	prefixedmenu.Repository
	o *outage
}

func (r flakyPrefixed) List(ctx context.Context) ([]prefixedmenu.PrefixedMenu, error) {
	if err := r.o.check(); err != nil {
		return nil, err
	}
	return r.Repository.List(ctx)
}

type fixture struct {
	store      recordstore.Store
	cache      cache.Cache
	outage     *outage
	categories *services.CategoryService
	items      *services.MenuItemService
	prefixed   *services.PrefixedMenuService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithCache(t, cache.NewMemoryCache(0))
}

func newFixtureWithCache(t *testing.T, c cache.Cache) *fixture {
	t.Helper()
	store := recordstore.NewMemoryStore(nil)
	o := &outage{}
	categoryRepo := persistence.NewCategoryRepository(store)
	opts := services.BreakerOptions{MaxFailures: 2, Timeout: time.Hour}
	return &fixture{
		store:      store,
		cache:      c,
		outage:     o,
		categories: services.NewCategoryService(categoryRepo, c, services.NewReadBreaker("categories", opts)),
		items: services.NewMenuItemService(
			flakyItems{Repository: persistence.NewMenuItemRepository(store, categoryRepo), o: o},
			c, services.NewReadBreaker("items", opts),
		),
		prefixed: services.NewPrefixedMenuService(
			flakyPrefixed{Repository: persistence.NewPrefixedMenuRepository(store), o: o},
			c, services.NewReadBreaker("prefixed", opts),
		),
	}
}

func (f *fixture) insert(t *testing.T, collection string, rec recordstore.Record) recordstore.Record {
	t.Helper()
	coll, err := f.store.Collection(collection)
	require.NoError(t, err)
	out, err := coll.Insert(context.Background(), rec)
	require.NoError(t, err)
	return out
}

func (f *fixture) category(t *testing.T, slug, name string, sortOrder int) string {
	t.Helper()
	return f.insert(t, recordstore.MenuCategories, recordstore.Record{
		"slug": slug, "name": name, "sort_order": sortOrder,
	}).ID()
}
