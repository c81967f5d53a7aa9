package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/tablemaster/tablemaster/modules/menu/domain/category"
	"github.com/tablemaster/tablemaster/modules/menu/domain/menuitem"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

// MenuItemRepository reads menu items joined with their category.
type MenuItemRepository struct {
	store      recordstore.Store
	categories category.Repository
}

func NewMenuItemRepository(store recordstore.Store, categories category.Repository) menuitem.Repository {
	return &MenuItemRepository{store: store, categories: categories}
}

func (r *MenuItemRepository) List(ctx context.Context) ([]menuitem.MenuItem, error) {
	coll, err := r.store.Collection(recordstore.MenuItems)
	if err != nil {
		return nil, err
	}
	rows, err := coll.List(ctx, recordstore.ListParams{
		OrderBy: []recordstore.Order{{Field: "created_at", Desc: true}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list menu items")
	}
	byID, err := r.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]menuitem.MenuItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, toMenuItem(row, byID))
	}
	return out, nil
}

func (r *MenuItemRepository) GetByID(ctx context.Context, id string) (*menuitem.MenuItem, error) {
	coll, err := r.store.Collection(recordstore.MenuItems)
	if err != nil {
		return nil, err
	}
	row, err := coll.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get menu item")
	}
	if row == nil {
		return nil, menuitem.ErrNotFound
	}
	byID, err := r.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	item := toMenuItem(row, byID)
	return &item, nil
}

func (r *MenuItemRepository) categoryIndex(ctx context.Context) (map[string]category.Category, error) {
	cats, err := r.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]category.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	return byID, nil
}

// toMenuItem fills display fields from the category and falls back to a price
// embedded in the name when the row has none.
func toMenuItem(row recordstore.Record, categories map[string]category.Category) menuitem.MenuItem {
	name, namePrice := menuitem.CleanName(text(row, "name"))
	item := menuitem.MenuItem{
		ID:            row.ID(),
		Name:          name,
		Description:   text(row, "description"),
		CategoryID:    text(row, "category_id"),
		Category:      text(row, "category"),
		Currency:      text(row, "currency"),
		Allergens:     stringList(row, "allergens"),
		CommonMods:    stringList(row, "common_mods"),
		IsUnavailable: boolean(row, "is_unavailable"),
		Country:       textPtr(row, "country"),
		Origin:        textPtr(row, "origin"),
		Cut:           textPtr(row, "cut"),
		WeightOz:      floatPtr(row, "weight_oz"),
		AgingDays:     floatPtr(row, "aging_days"),
		Notes:         textPtr(row, "notes"),
		CreatedAt:     timestamp(row, "created_at"),
	}
	if c, ok := categories[item.CategoryID]; ok {
		item.CategorySlug = c.Slug
		item.CategoryName = c.Name
		if item.Category == "" {
			item.Category = c.Slug
		}
	}
	switch price := money(row, "price"); {
	case price.Valid:
		item.Price = price.Decimal
	case namePrice.Valid:
		item.Price = namePrice.Decimal
	}
	if item.Currency == "" {
		item.Currency = menuitem.DefaultCurrency
	}
	return item
}
