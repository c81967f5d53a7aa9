package recordstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/repo"
)

type pgStore struct {
	schemas map[string]Schema
}

// NewPostgresStore returns a store that runs every statement on the transaction
// or pool found in the request context.
func NewPostgresStore(schemas map[string]Schema) Store {
	if schemas == nil {
		schemas = DefaultSchemas
	}
	return &pgStore{schemas: schemas}
}

func (s *pgStore) Collection(name string) (Collection, error) {
	schema, ok := s.schemas[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownCollection, name)
	}
	return &pgCollection{name: name, schema: schema}, nil
}

type pgCollection struct {
	name   string
	schema Schema
}

func (c *pgCollection) Name() string {
	return c.name
}

func (c *pgCollection) writeErr(op string, err error) error {
	return &WriteError{Collection: c.name, Op: op, Err: err}
}

func (c *pgCollection) Insert(ctx context.Context, payload Record) (Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	fields, args, err := c.schema.writable(payload)
	if err != nil {
		return nil, c.writeErr("insert", err)
	}
	if id, ok := payload["id"]; ok && id != nil && fmt.Sprint(id) != "" {
		parsed, err := coerce(KindUUID, id)
		if err != nil {
			return nil, c.writeErr("insert", err)
		}
		fields = append(fields, "id")
		args = append(args, parsed)
	}

	rows, err := tx.Query(ctx, repo.Insert(c.schema.Table, fields, "*"), args...)
	if err != nil {
		return nil, c.writeErr("insert", err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, c.writeErr("insert", err)
	}
	return normalizeRecord(row), nil
}

func (c *pgCollection) Update(ctx context.Context, id string, payload Record) (Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "%s %s", c.name, id)
	}
	fields, args, err := c.schema.writable(payload)
	if err != nil {
		return nil, c.writeErr("update", err)
	}
	if _, ok := c.schema.Columns["updated_at"]; ok {
		fields = append(fields, "updated_at")
		args = append(args, time.Now().UTC())
	}
	args = append(args, key)
	query := repo.Join(
		repo.Update(c.schema.Table, fields, fmt.Sprintf("id = $%d", len(args))),
		"RETURNING *",
	)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, c.writeErr("update", err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "%s %s", c.name, id)
		}
		return nil, c.writeErr("update", err)
	}
	return normalizeRecord(row), nil
}

func (c *pgCollection) Delete(ctx context.Context, id string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	key, err := uuid.Parse(id)
	if err != nil {
		return errors.Wrapf(ErrNotFound, "%s %s", c.name, id)
	}
	tag, err := tx.Exec(ctx, repo.Join("DELETE FROM", c.schema.Table, "WHERE id = $1"), key)
	if err != nil {
		return c.writeErr("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(ErrNotFound, "%s %s", c.name, id)
	}
	return nil
}

func (c *pgCollection) Get(ctx context.Context, id string) (Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	rows, err := tx.Query(ctx, repo.Join("SELECT * FROM", c.schema.Table, "WHERE id = $1"), key)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", c.name)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get %s", c.name)
	}
	return normalizeRecord(row), nil
}

func (c *pgCollection) List(ctx context.Context, params ListParams) ([]Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	where, args, err := c.buildFilters(params.Filter)
	if err != nil {
		return nil, err
	}
	order, err := c.orderClause(params.OrderBy)
	if err != nil {
		return nil, err
	}
	query := repo.Join(
		"SELECT * FROM", c.schema.Table,
		repo.JoinWhere(where...),
		order,
		repo.FormatLimitOffset(params.Limit, 0),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", c.name)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", c.name)
	}
	out := make([]Record, 0, len(maps))
	for _, m := range maps {
		out = append(out, normalizeRecord(m))
	}
	return out, nil
}

func (c *pgCollection) buildFilters(filter map[string]any) ([]string, []any, error) {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		conditions []string
		args       []any
	)
	for _, k := range keys {
		kind, ok := c.schema.Columns[k]
		if !ok {
			return nil, nil, errors.Wrapf(ErrUnknownField, "%s.%s", c.name, k)
		}
		if filter[k] == nil {
			conditions = append(conditions, k+" IS NULL")
			continue
		}
		v, err := coerce(kind, filter[k])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "filter %s", k)
		}
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", k, len(args)))
	}
	return conditions, args, nil
}

func (c *pgCollection) orderClause(orders []Order) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		if _, ok := c.schema.Columns[o.Field]; !ok {
			return "", errors.Wrapf(ErrUnknownField, "%s.%s", c.name, o.Field)
		}
		dir := repo.SortAsc
		if o.Desc {
			dir = repo.SortDesc
		}
		parts = append(parts, fmt.Sprintf("%s %s", o.Field, dir))
	}
	return "ORDER BY " + strings.Join(parts, ", "), nil
}
