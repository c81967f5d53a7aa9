package recordstore_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

func menuItems(t *testing.T) recordstore.Collection {
	t.Helper()
	c, err := recordstore.NewMemoryStore(nil).Collection(recordstore.MenuItems)
	require.NoError(t, err)
	return c
}

func TestMemoryStore_UnknownCollection(t *testing.T) {
	_, err := recordstore.NewMemoryStore(nil).Collection("reservations")
	require.ErrorIs(t, err, recordstore.ErrUnknownCollection)
}

func TestMemoryCollection_InsertCoercesAndDropsUnknownFields(t *testing.T) {
	c := menuItems(t)
	rec, err := c.Insert(context.Background(), recordstore.Record{
		"name":          "Ribeye",
		"price":         json.Number("54.5"),
		"weight_oz":     "16",
		"aging_days":    "",
		"allergens":     []any{"dairy", "nuts"},
		"category_slug": "steaks",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID())
	assert.Equal(t, "Ribeye", rec["name"])
	assert.InDelta(t, 54.5, rec["price"], 0.0001)
	assert.InDelta(t, 16.0, rec["weight_oz"], 0.0001)
	assert.Nil(t, rec["aging_days"])
	assert.Equal(t, []any{"dairy", "nuts"}, rec["allergens"])
	assert.NotContains(t, rec, "category_slug")
	assert.NotNil(t, rec["created_at"])
}

func TestMemoryCollection_InsertRejectsBadValues(t *testing.T) {
	c := menuItems(t)
	_, err := c.Insert(context.Background(), recordstore.Record{"name": "Soup", "price": "twelve"})
	var writeErr *recordstore.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "insert", writeErr.Op)
	assert.Equal(t, recordstore.MenuItems, writeErr.Collection)
}

func TestMemoryCollection_UpdateDeleteGet(t *testing.T) {
	ctx := context.Background()
	c := menuItems(t)
	rec, err := c.Insert(ctx, recordstore.Record{"name": "Oysters", "price": 3})
	require.NoError(t, err)

	updated, err := c.Update(ctx, rec.ID(), recordstore.Record{"price": 4, "id": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, rec.ID(), updated.ID())
	assert.InDelta(t, 4.0, updated["price"], 0.0001)
	assert.Equal(t, "Oysters", updated["name"])

	_, err = c.Update(ctx, "missing", recordstore.Record{"price": 1})
	require.ErrorIs(t, err, recordstore.ErrNotFound)

	got, err := c.Get(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "Oysters", got["name"])

	require.NoError(t, c.Delete(ctx, rec.ID()))
	require.ErrorIs(t, c.Delete(ctx, rec.ID()), recordstore.ErrNotFound)

	got, err = c.Get(ctx, rec.ID())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCollection_ListFilterOrderLimit(t *testing.T) {
	ctx := context.Background()
	store := recordstore.NewMemoryStore(nil)
	guests, err := store.Collection(recordstore.Guests)
	require.NoError(t, err)

	tableA := "6f1b9f0e-3c47-4a53-9d7a-0d5d7f9f1a01"
	tableB := "6f1b9f0e-3c47-4a53-9d7a-0d5d7f9f1a02"
	for _, g := range []recordstore.Record{
		{"table_id": tableA, "guest_number": 3},
		{"table_id": tableB, "guest_number": 1},
		{"table_id": tableA, "guest_number": 1},
		{"table_id": tableA, "guest_number": 2},
	} {
		_, err := guests.Insert(ctx, g)
		require.NoError(t, err)
	}

	list, err := guests.List(ctx, recordstore.ListParams{
		Filter:  map[string]any{"table_id": tableA},
		OrderBy: []recordstore.Order{{Field: "guest_number"}},
	})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(1), list[0]["guest_number"])
	assert.Equal(t, int64(3), list[2]["guest_number"])

	list, err = guests.List(ctx, recordstore.ListParams{
		OrderBy: []recordstore.Order{{Field: "guest_number", Desc: true}},
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0]["guest_number"])

	_, err = guests.List(ctx, recordstore.ListParams{Filter: map[string]any{"nope": 1}})
	require.ErrorIs(t, err, recordstore.ErrUnknownField)
}

func TestRecord_Accessors(t *testing.T) {
	rec := recordstore.Record{"id": 12, "name": "Bar"}
	assert.Equal(t, "12", rec.ID())
	assert.Equal(t, "Bar", rec.String("name"))
	assert.Empty(t, rec.String("missing"))
	assert.Empty(t, recordstore.Record{}.ID())
}
