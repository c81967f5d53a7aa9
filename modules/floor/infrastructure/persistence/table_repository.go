package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tablemaster/tablemaster/modules/floor/domain/table"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

const uniqueViolation = "23505"

type TableRepository struct {
	store recordstore.Store
}

func NewTableRepository(store recordstore.Store) table.Repository {
	return &TableRepository{store: store}
}

func (r *TableRepository) collection() (recordstore.Collection, error) {
	return r.store.Collection(recordstore.Tables)
}

func (r *TableRepository) List(ctx context.Context, params table.FindParams) ([]table.Table, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}
	filter := map[string]any{}
	if params.Section != "" {
		filter["section"] = params.Section
	}
	if params.UserID != "" {
		filter["user_id"] = params.UserID
	}
	rows, err := coll.List(ctx, recordstore.ListParams{
		Filter:  filter,
		OrderBy: []recordstore.Order{{Field: "created_at"}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list tables")
	}
	out := make([]table.Table, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTable(row))
	}
	return out, nil
}

func (r *TableRepository) GetByID(ctx context.Context, id string) (*table.Table, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}
	row, err := coll.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get table")
	}
	if row == nil {
		return nil, table.ErrNotFound
	}
	t := toTable(row)
	return &t, nil
}

func (r *TableRepository) Create(ctx context.Context, t *table.Table) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	row, err := coll.Insert(ctx, tableRecord(t))
	if err != nil {
		return duplicateNumber(err)
	}
	*t = toTable(row)
	return nil
}

func (r *TableRepository) Update(ctx context.Context, t *table.Table) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	row, err := coll.Update(ctx, t.ID, tableRecord(t))
	if err != nil {
		return duplicateNumber(missing(err, table.ErrNotFound))
	}
	*t = toTable(row)
	return nil
}

func (r *TableRepository) Delete(ctx context.Context, id string) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	return missing(coll.Delete(ctx, id), table.ErrNotFound)
}

// duplicateNumber reports a unique index violation on table_number as the
// domain error; the service checks first, the index settles races.
func duplicateNumber(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return table.ErrDuplicateNumber
	}
	return err
}

func tableRecord(t *table.Table) recordstore.Record {
	rec := recordstore.Record{
		"table_number": t.TableNumber,
		"section":      t.Section,
		"guest_count":  t.GuestCount,
		"status":       t.Status,
		"notes":        t.Notes,
	}
	if t.UserID != "" {
		rec["user_id"] = t.UserID
	}
	return rec
}

func toTable(row recordstore.Record) table.Table {
	return table.Table{
		ID:          row.ID(),
		TableNumber: text(row, "table_number"),
		Section:     text(row, "section"),
		GuestCount:  integer(row, "guest_count"),
		Status:      text(row, "status"),
		Notes:       text(row, "notes"),
		UserID:      text(row, "user_id"),
		CreatedAt:   timestamp(row, "created_at"),
		UpdatedAt:   timestamp(row, "updated_at"),
	}
}
