package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/tablemaster/tablemaster/modules/floor/domain/order"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

// OrderRepository keeps orders and their items, which are listed per table
// independently of the order they belong to.
type OrderRepository struct {
	store recordstore.Store
}

func NewOrderRepository(store recordstore.Store) order.Repository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) listByTable(ctx context.Context, collection, tableID string) ([]recordstore.Record, error) {
	coll, err := r.store.Collection(collection)
	if err != nil {
		return nil, err
	}
	rows, err := coll.List(ctx, recordstore.ListParams{
		Filter:  map[string]any{"table_id": tableID},
		OrderBy: []recordstore.Order{{Field: "created_at"}},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", collection)
	}
	return rows, nil
}

func (r *OrderRepository) get(ctx context.Context, collection, id string, notFound error) (recordstore.Record, error) {
	coll, err := r.store.Collection(collection)
	if err != nil {
		return nil, err
	}
	row, err := coll.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", collection)
	}
	if row == nil {
		return nil, notFound
	}
	return row, nil
}

func (r *OrderRepository) insert(ctx context.Context, collection string, rec recordstore.Record) (recordstore.Record, error) {
	coll, err := r.store.Collection(collection)
	if err != nil {
		return nil, err
	}
	return coll.Insert(ctx, rec)
}

func (r *OrderRepository) update(ctx context.Context, collection, id string, rec recordstore.Record, notFound error) (recordstore.Record, error) {
	coll, err := r.store.Collection(collection)
	if err != nil {
		return nil, err
	}
	row, err := coll.Update(ctx, id, rec)
	if err != nil {
		return nil, missing(err, notFound)
	}
	return row, nil
}

func (r *OrderRepository) delete(ctx context.Context, collection, id string, notFound error) error {
	coll, err := r.store.Collection(collection)
	if err != nil {
		return err
	}
	return missing(coll.Delete(ctx, id), notFound)
}

func (r *OrderRepository) ListByTable(ctx context.Context, tableID string) ([]order.Order, error) {
	rows, err := r.listByTable(ctx, recordstore.Orders, tableID)
	if err != nil {
		return nil, err
	}
	out := make([]order.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, toOrder(row))
	}
	return out, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	row, err := r.get(ctx, recordstore.Orders, id, order.ErrNotFound)
	if err != nil {
		return nil, err
	}
	o := toOrder(row)
	return &o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	row, err := r.insert(ctx, recordstore.Orders, orderRecord(o))
	if err != nil {
		return err
	}
	*o = toOrder(row)
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	row, err := r.update(ctx, recordstore.Orders, o.ID, orderRecord(o), order.ErrNotFound)
	if err != nil {
		return err
	}
	*o = toOrder(row)
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, recordstore.Orders, id, order.ErrNotFound)
}

func (r *OrderRepository) ListItemsByTable(ctx context.Context, tableID string) ([]order.Item, error) {
	rows, err := r.listByTable(ctx, recordstore.OrderItems, tableID)
	if err != nil {
		return nil, err
	}
	out := make([]order.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, toItem(row))
	}
	return out, nil
}

func (r *OrderRepository) GetItem(ctx context.Context, id string) (*order.Item, error) {
	row, err := r.get(ctx, recordstore.OrderItems, id, order.ErrItemNotFound)
	if err != nil {
		return nil, err
	}
	item := toItem(row)
	return &item, nil
}

func (r *OrderRepository) CreateItem(ctx context.Context, item *order.Item) error {
	row, err := r.insert(ctx, recordstore.OrderItems, itemRecord(item))
	if err != nil {
		return err
	}
	*item = toItem(row)
	return nil
}

func (r *OrderRepository) UpdateItem(ctx context.Context, item *order.Item) error {
	row, err := r.update(ctx, recordstore.OrderItems, item.ID, itemRecord(item), order.ErrItemNotFound)
	if err != nil {
		return err
	}
	*item = toItem(row)
	return nil
}

func (r *OrderRepository) DeleteItem(ctx context.Context, id string) error {
	return r.delete(ctx, recordstore.OrderItems, id, order.ErrItemNotFound)
}

func orderRecord(o *order.Order) recordstore.Record {
	return recordstore.Record{
		"table_id": o.TableID,
		"guest_id": optional(o.GuestID),
		"status":   o.Status,
		"notes":    o.Notes,
	}
}

func toOrder(row recordstore.Record) order.Order {
	return order.Order{
		ID:        row.ID(),
		TableID:   text(row, "table_id"),
		GuestID:   textPtr(row, "guest_id"),
		Status:    text(row, "status"),
		Notes:     text(row, "notes"),
		CreatedAt: timestamp(row, "created_at"),
	}
}

func itemRecord(item *order.Item) recordstore.Record {
	modifiers := item.Modifiers
	if modifiers == nil {
		modifiers = []string{}
	}
	return recordstore.Record{
		"order_id":     optional(item.OrderID),
		"table_id":     item.TableID,
		"guest_id":     optional(item.GuestID),
		"menu_item_id": optional(item.MenuItemID),
		"name":         item.Name,
		"quantity":     item.Quantity,
		"modifiers":    modifiers,
		"notes":        item.Notes,
		"course":       item.Course,
		"status":       item.Status,
	}
}

func toItem(row recordstore.Record) order.Item {
	return order.Item{
		ID:         row.ID(),
		OrderID:    textPtr(row, "order_id"),
		TableID:    text(row, "table_id"),
		GuestID:    textPtr(row, "guest_id"),
		MenuItemID: textPtr(row, "menu_item_id"),
		Name:       text(row, "name"),
		Quantity:   integer(row, "quantity"),
		Modifiers:  stringList(row, "modifiers"),
		Notes:      text(row, "notes"),
		Course:     text(row, "course"),
		Status:     text(row, "status"),
		CreatedAt:  timestamp(row, "created_at"),
	}
}
