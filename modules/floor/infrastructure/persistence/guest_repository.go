package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/tablemaster/tablemaster/modules/floor/domain/guest"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

type GuestRepository struct {
	store recordstore.Store
}

func NewGuestRepository(store recordstore.Store) guest.Repository {
	return &GuestRepository{store: store}
}

func (r *GuestRepository) collection() (recordstore.Collection, error) {
	return r.store.Collection(recordstore.Guests)
}

func (r *GuestRepository) ListByTable(ctx context.Context, tableID string) ([]guest.Guest, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}
	rows, err := coll.List(ctx, recordstore.ListParams{
		Filter:  map[string]any{"table_id": tableID},
		OrderBy: []recordstore.Order{{Field: "guest_number"}, {Field: "created_at"}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list guests")
	}
	out := make([]guest.Guest, 0, len(rows))
	for _, row := range rows {
		out = append(out, toGuest(row))
	}
	return out, nil
}

func (r *GuestRepository) GetByID(ctx context.Context, id string) (*guest.Guest, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}
	row, err := coll.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get guest")
	}
	if row == nil {
		return nil, guest.ErrNotFound
	}
	g := toGuest(row)
	return &g, nil
}

func (r *GuestRepository) Create(ctx context.Context, g *guest.Guest) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	row, err := coll.Insert(ctx, guestRecord(g))
	if err != nil {
		return err
	}
	*g = toGuest(row)
	return nil
}

func (r *GuestRepository) Update(ctx context.Context, g *guest.Guest) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	row, err := coll.Update(ctx, g.ID, guestRecord(g))
	if err != nil {
		return missing(err, guest.ErrNotFound)
	}
	*g = toGuest(row)
	return nil
}

func (r *GuestRepository) Delete(ctx context.Context, id string) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	return missing(coll.Delete(ctx, id), guest.ErrNotFound)
}

func guestRecord(g *guest.Guest) recordstore.Record {
	allergies := g.Allergies
	if allergies == nil {
		allergies = []string{}
	}
	return recordstore.Record{
		"table_id":     g.TableID,
		"guest_number": g.GuestNumber,
		"name":         g.Name,
		"notes":        g.Notes,
		"allergies":    allergies,
	}
}

func toGuest(row recordstore.Record) guest.Guest {
	return guest.Guest{
		ID:          row.ID(),
		TableID:     text(row, "table_id"),
		GuestNumber: integer(row, "guest_number"),
		Name:        text(row, "name"),
		Notes:       text(row, "notes"),
		Allergies:   stringList(row, "allergies"),
		CreatedAt:   timestamp(row, "created_at"),
	}
}
