package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	changeservices "github.com/tablemaster/tablemaster/modules/changes/services"
	"github.com/tablemaster/tablemaster/modules/floor/domain/table"
	"github.com/tablemaster/tablemaster/modules/floor/services"
)

func TestTableService_CreateDefaults(t *testing.T) {
	f := newFixture(t)

	created, err := f.tables.Create(signedIn(), services.TableFields{
		TableNumber: ptr("  12 "),
		Section:     ptr("Patio"),
		GuestCount:  ptr(-3),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "12", created.TableNumber)
	assert.Equal(t, 0, created.GuestCount)
	assert.Equal(t, table.StatusAvailable, created.Status)
	assert.Equal(t, server.ID, created.UserID)

	require.Len(t, f.events, 1)
	assert.Equal(t, changerequest.EntityTable, f.events[0].EntityType)
	assert.Equal(t, changerequest.ActionCreate, f.events[0].Action)
	assert.Equal(t, created.ID, f.events[0].RecordID)
}

func TestTableService_NumberRules(t *testing.T) {
	f := newFixture(t)
	ctx := signedIn()

	_, err := f.tables.Create(ctx, services.TableFields{TableNumber: ptr("   ")})
	require.ErrorIs(t, err, table.ErrNumberRequired)

	_, err = f.tables.Create(ctx, services.TableFields{})
	require.ErrorIs(t, err, table.ErrNumberRequired)

	a12, err := f.tables.Create(ctx, services.TableFields{TableNumber: ptr("A12")})
	require.NoError(t, err)
	_, err = f.tables.Create(ctx, services.TableFields{TableNumber: ptr(" a12")})
	require.ErrorIs(t, err, table.ErrDuplicateNumber)

	b4, err := f.tables.Create(ctx, services.TableFields{TableNumber: ptr("B4")})
	require.NoError(t, err)
	_, err = f.tables.Update(ctx, b4.ID, services.TableFields{TableNumber: ptr("a12")})
	require.ErrorIs(t, err, table.ErrDuplicateNumber)

	// Renumbering a table to its own number is not a clash.
	_, err = f.tables.Update(ctx, a12.ID, services.TableFields{TableNumber: ptr("A12"), Notes: ptr("window")})
	require.NoError(t, err)
}

func TestTableService_UpdateKeepsUnsetFields(t *testing.T) {
	f := newFixture(t)
	ctx := signedIn()
	created, err := f.tables.Create(ctx, services.TableFields{
		TableNumber: ptr("7"), Section: ptr("Bar"), GuestCount: ptr(4), Status: ptr("seated"),
	})
	require.NoError(t, err)

	updated, err := f.tables.Update(ctx, created.ID, services.TableFields{GuestCount: ptr(6), Status: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "7", updated.TableNumber)
	assert.Equal(t, "Bar", updated.Section)
	assert.Equal(t, 6, updated.GuestCount)
	assert.Equal(t, "seated", updated.Status)

	got, err := f.tables.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.GuestCount)
}

func TestTableService_ListBySection(t *testing.T) {
	f := newFixture(t)
	ctx := signedIn()
	for _, in := range []struct{ number, section string }{
		{"1", "Patio"}, {"2", "Bar"}, {"3", "Patio"},
	} {
		_, err := f.tables.Create(ctx, services.TableFields{TableNumber: ptr(in.number), Section: ptr(in.section)})
		require.NoError(t, err)
	}

	patio, err := f.tables.ListBySection(ctx, "Patio")
	require.NoError(t, err)
	require.Len(t, patio, 2)
	assert.ElementsMatch(t, []string{"1", "3"}, []string{patio[0].TableNumber, patio[1].TableNumber})

	all, err := f.tables.List(ctx, table.FindParams{UserID: server.ID})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := f.tables.List(ctx, table.FindParams{UserID: "someone-else"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTableService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := signedIn()
	created, err := f.tables.Create(ctx, services.TableFields{TableNumber: ptr("9")})
	require.NoError(t, err)

	require.NoError(t, f.tables.Delete(ctx, created.ID))
	_, err = f.tables.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, table.ErrNotFound)
	require.ErrorIs(t, f.tables.Delete(ctx, created.ID), table.ErrNotFound)
	assert.True(t, services.IsNotFound(err))

	require.Len(t, f.events, 2)
	assert.Equal(t, changerequest.ActionDelete, f.events[1].Action)
}

func TestTableService_RequiresActor(t *testing.T) {
	f := newFixture(t)
	_, err := f.tables.Create(context.Background(), services.TableFields{TableNumber: ptr("1")})
	require.ErrorIs(t, err, changeservices.ErrUnauthenticated)
	require.ErrorIs(t, f.tables.Delete(context.Background(), "x"), changeservices.ErrUnauthenticated)
	assert.Empty(t, f.events)
}
