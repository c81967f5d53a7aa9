package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/tablemaster/tablemaster/modules/menu/domain/prefixedmenu"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

type PrefixedMenuRepository struct {
	store recordstore.Store
}

func NewPrefixedMenuRepository(store recordstore.Store) prefixedmenu.Repository {
	return &PrefixedMenuRepository{store: store}
}

func (r *PrefixedMenuRepository) List(ctx context.Context) ([]prefixedmenu.PrefixedMenu, error) {
	coll, err := r.store.Collection(recordstore.PrefixedMenus)
	if err != nil {
		return nil, err
	}
	rows, err := coll.List(ctx, recordstore.ListParams{
		OrderBy: []recordstore.Order{{Field: "created_at", Desc: true}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list prefixed menus")
	}
	out := make([]prefixedmenu.PrefixedMenu, 0, len(rows))
	for _, row := range rows {
		out = append(out, toPrefixedMenu(row))
	}
	return out, nil
}

func (r *PrefixedMenuRepository) GetByID(ctx context.Context, id string) (*prefixedmenu.PrefixedMenu, error) {
	coll, err := r.store.Collection(recordstore.PrefixedMenus)
	if err != nil {
		return nil, err
	}
	row, err := coll.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get prefixed menu")
	}
	if row == nil {
		return nil, prefixedmenu.ErrNotFound
	}
	m := toPrefixedMenu(row)
	return &m, nil
}

func toPrefixedMenu(row recordstore.Record) prefixedmenu.PrefixedMenu {
	courses, _ := row["courses"].([]any)
	if courses == nil {
		courses = []any{}
	}
	return prefixedmenu.PrefixedMenu{
		ID:          row.ID(),
		Name:        text(row, "name"),
		Description: text(row, "description"),
		Price:       money(row, "price"),
		Courses:     courses,
		IsActive:    boolean(row, "is_active"),
		CreatedAt:   timestamp(row, "created_at"),
	}
}
