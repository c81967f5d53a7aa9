package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/tablemaster/tablemaster/modules/menu/domain/category"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

type CategoryRepository struct {
	store recordstore.Store
}

func NewCategoryRepository(store recordstore.Store) category.Repository {
	return &CategoryRepository{store: store}
}

func (r *CategoryRepository) collection() (recordstore.Collection, error) {
	return r.store.Collection(recordstore.MenuCategories)
}

func (r *CategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}
	rows, err := coll.List(ctx, recordstore.ListParams{
		OrderBy: []recordstore.Order{{Field: "sort_order"}, {Field: "name"}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list menu categories")
	}
	out := make([]category.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCategory(row))
	}
	return out, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*category.Category, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}
	row, err := coll.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get menu category")
	}
	if row == nil {
		return nil, category.ErrNotFound
	}
	c := toCategory(row)
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	row, err := coll.Insert(ctx, recordstore.Record{
		"slug":       c.Slug,
		"name":       c.Name,
		"sort_order": c.SortOrder,
	})
	if err != nil {
		return err
	}
	*c = toCategory(row)
	return nil
}

func toCategory(row recordstore.Record) category.Category {
	return category.Category{
		ID:        row.ID(),
		Slug:      text(row, "slug"),
		Name:      text(row, "name"),
		SortOrder: integer(row, "sort_order"),
	}
}
