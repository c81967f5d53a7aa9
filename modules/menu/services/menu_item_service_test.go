package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/modules/menu/domain/menuitem"
	"github.com/tablemaster/tablemaster/modules/menu/services"
	"github.com/tablemaster/tablemaster/pkg/cache"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

func names(items []menuitem.MenuItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func seedMenu(t *testing.T, f *fixture) (steaksID string) {
	t.Helper()
	steaksID = f.category(t, "steaks", "Steaks", 1)
	appsID := f.category(t, "appetizers", "Appetizers", 0)
	f.insert(t, recordstore.MenuItems, recordstore.Record{
		"name": "Ribeye", "category_id": steaksID, "price": 54, "cut": "Ribeye", "aging_days": 28,
	})
	f.insert(t, recordstore.MenuItems, recordstore.Record{
		"name": "Wagyu Striploin $105.00", "category_id": steaksID, "is_unavailable": true,
	})
	f.insert(t, recordstore.MenuItems, recordstore.Record{
		"name": "Shrimp Cocktail", "category_id": appsID, "price": "19.5", "allergens": []string{"shellfish"},
	})
	return steaksID
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		raw       string
		wantName  string
		wantPrice string
	}{
		{raw: "Wagyu Striploin $105.00", wantName: "Wagyu Striploin", wantPrice: "105"},
		{raw: "Tomahawk $1,250", wantName: "Tomahawk", wantPrice: "1250"},
		{raw: "Caesar Salad", wantName: "Caesar Salad"},
		{raw: "$12", wantName: "$12", wantPrice: "12"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, price := menuitem.CleanName(tt.raw)
			assert.Equal(t, tt.wantName, name)
			if tt.wantPrice == "" {
				assert.False(t, price.Valid)
				return
			}
			require.True(t, price.Valid)
			assert.True(t, decimal.RequireFromString(tt.wantPrice).Equal(price.Decimal))
		})
	}
}

func TestMenuItemService_ListJoinsCategory(t *testing.T) {
	f := newFixture(t)
	steaksID := seedMenu(t, f)

	items, err := f.items.List(context.Background(), menuitem.FindParams{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Ribeye", "Wagyu Striploin", "Shrimp Cocktail"}, names(items))

	byName := map[string]menuitem.MenuItem{}
	for _, item := range items {
		byName[item.Name] = item
	}
	wagyu := byName["Wagyu Striploin"]
	assert.Equal(t, steaksID, wagyu.CategoryID)
	assert.Equal(t, "steaks", wagyu.CategorySlug)
	assert.Equal(t, "Steaks", wagyu.CategoryName)
	assert.Equal(t, "105.00", wagyu.Price.StringFixed(2))
	assert.Equal(t, menuitem.DefaultCurrency, wagyu.Currency)

	shrimp := byName["Shrimp Cocktail"]
	assert.Equal(t, "19.50", shrimp.Price.StringFixed(2))
	assert.Equal(t, []string{"shellfish"}, shrimp.Allergens)

	ribeye := byName["Ribeye"]
	require.NotNil(t, ribeye.AgingDays)
	assert.InDelta(t, 28, *ribeye.AgingDays, 0.001)
	assert.Nil(t, ribeye.Origin)
}

func TestMenuItemService_Filters(t *testing.T) {
	f := newFixture(t)
	seedMenu(t, f)
	ctx := context.Background()

	steaks, err := f.items.List(ctx, menuitem.FindParams{CategorySlug: " Steaks "})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Ribeye", "Wagyu Striploin"}, names(steaks))

	available, err := f.items.List(ctx, menuitem.FindParams{CategorySlug: "steaks", Available: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ribeye"}, names(available))
}

func TestMenuItemService_Search(t *testing.T) {
	f := newFixture(t)
	seedMenu(t, f)
	ctx := context.Background()

	found, err := f.items.Search(ctx, "rbey", menuitem.FindParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ribeye"}, names(found))

	found, err = f.items.Search(ctx, "STRIP", menuitem.FindParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Wagyu Striploin"}, names(found))

	found, err = f.items.Search(ctx, "lobster", menuitem.FindParams{})
	require.NoError(t, err)
	assert.Empty(t, found)

	all, err := f.items.Search(ctx, "  ", menuitem.FindParams{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMenuItemService_GetByID(t *testing.T) {
	f := newFixture(t)
	steaksID := f.category(t, "steaks", "Steaks", 1)
	rec := f.insert(t, recordstore.MenuItems, recordstore.Record{"name": "Ribeye", "category_id": steaksID})

	item, err := f.items.GetByID(context.Background(), rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "Ribeye", item.Name)
	assert.Equal(t, "steaks", item.Category)

	_, err = f.items.GetByID(context.Background(), "5b0f3f4e-8f59-4a64-9a50-2f0f8f1f0c11")
	require.ErrorIs(t, err, services.ErrMenuItemNotFound)
}

func TestMenuItemService_ServesCacheDuringOutage(t *testing.T) {
	f := newFixture(t)
	seedMenu(t, f)
	ctx := context.Background()

	warm, err := f.items.List(ctx, menuitem.FindParams{})
	require.NoError(t, err)

	f.outage.down.Store(true)
	for i := 0; i < 4; i++ {
		cached, err := f.items.List(ctx, menuitem.FindParams{})
		require.NoError(t, err)
		assert.ElementsMatch(t, names(warm), names(cached))
	}
	// Two failures trip the breaker; later reads skip the store entirely.
	assert.Equal(t, int32(3), f.outage.calls.Load())
}

func TestMenuItemService_OutageWithoutCacheFails(t *testing.T) {
	f := newFixture(t)
	seedMenu(t, f)
	f.outage.down.Store(true)

	_, err := f.items.List(context.Background(), menuitem.FindParams{})
	require.ErrorIs(t, err, errStoreDown)

	_, err = f.items.List(context.Background(), menuitem.FindParams{})
	require.ErrorIs(t, err, errStoreDown)

	_, err = f.items.List(context.Background(), menuitem.FindParams{})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestMenuItemService_InvalidateDropsFallback(t *testing.T) {
	f := newFixture(t)
	seedMenu(t, f)
	ctx := context.Background()

	_, err := f.items.List(ctx, menuitem.FindParams{})
	require.NoError(t, err)
	require.NoError(t, f.items.Invalidate(ctx))

	f.outage.down.Store(true)
	_, err = f.items.List(ctx, menuitem.FindParams{})
	require.ErrorIs(t, err, errStoreDown)
}

func TestMenuItemService_RedisFallback(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixtureWithCache(t, cache.NewRedisCache(client, "tm:", time.Hour))
	seedMenu(t, f)
	ctx := context.Background()

	_, err := f.items.List(ctx, menuitem.FindParams{})
	require.NoError(t, err)
	assert.True(t, mr.Exists("tm:menu:items"))

	f.outage.down.Store(true)
	cached, err := f.items.List(ctx, menuitem.FindParams{CategorySlug: "appetizers"})
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "Shrimp Cocktail", cached[0].Name)
	assert.Equal(t, "19.50", cached[0].Price.StringFixed(2))
}
