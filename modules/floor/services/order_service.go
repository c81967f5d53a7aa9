package services

import (
	"context"
	"errors"
	"strings"

	"github.com/tablemaster/tablemaster/modules/floor/domain/guest"
	"github.com/tablemaster/tablemaster/modules/floor/domain/order"
	"github.com/tablemaster/tablemaster/modules/floor/domain/table"
	"github.com/tablemaster/tablemaster/modules/menu/domain/menuitem"
	"github.com/tablemaster/tablemaster/pkg/serrors"
)

var ErrMenuItemUnavailable = serrors.NewError("MENU_ITEM_UNAVAILABLE", "menu item is unavailable", "Errors.MenuItemUnavailable")

// MenuItemLookup resolves menu items ordered by reference.
type MenuItemLookup interface {
	GetByID(ctx context.Context, id string) (*menuitem.MenuItem, error)
}

type OrderFields struct {
	GuestID *string
	Status  *string
	Notes   *string
}

type ItemFields struct {
	OrderID    *string
	GuestID    *string
	MenuItemID *string
	Name       *string
	Quantity   *int
	Modifiers  []string
	Notes      *string
	Course     *string
	Status     *string
}

// TableOrders is everything ordered at a table, oldest first.
type TableOrders struct {
	Orders []order.Order
	Items  []order.Item
}

type OrderService struct {
	repo   order.Repository
	tables table.Repository
	guests guest.Repository
	menu   MenuItemLookup
}

func NewOrderService(repo order.Repository, tables table.Repository, guests guest.Repository, menu MenuItemLookup) *OrderService {
	return &OrderService{repo: repo, tables: tables, guests: guests, menu: menu}
}

func (s *OrderService) ListByTable(ctx context.Context, tableID string) (TableOrders, error) {
	if _, err := s.tables.GetByID(ctx, tableID); err != nil {
		return TableOrders{}, err
	}
	orders, err := s.repo.ListByTable(ctx, tableID)
	if err != nil {
		return TableOrders{}, err
	}
	items, err := s.repo.ListItemsByTable(ctx, tableID)
	if err != nil {
		return TableOrders{}, err
	}
	return TableOrders{Orders: orders, Items: items}, nil
}

// Open starts an order at a table, optionally for one guest.
func (s *OrderService) Open(ctx context.Context, tableID string, fields OrderFields) (*order.Order, error) {
	if _, err := signedIn(ctx); err != nil {
		return nil, err
	}
	if _, err := s.tables.GetByID(ctx, tableID); err != nil {
		return nil, err
	}
	o := &order.Order{TableID: tableID, Status: order.StatusOpen}
	if err := s.applyOrder(ctx, o, fields); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) Update(ctx context.Context, id string, fields OrderFields) (*order.Order, error) {
	if _, err := signedIn(ctx); err != nil {
		return nil, err
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyOrder(ctx, o, fields); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	if _, err := signedIn(ctx); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddItem puts a line on a table's ticket. When the item belongs to an order
// it inherits the order's guest; a menu reference supplies the name and must
// not be marked unavailable.
func (s *OrderService) AddItem(ctx context.Context, tableID string, fields ItemFields) (*order.Item, error) {
	if _, err := signedIn(ctx); err != nil {
		return nil, err
	}
	if _, err := s.tables.GetByID(ctx, tableID); err != nil {
		return nil, err
	}
	item := &order.Item{TableID: tableID, Quantity: 1, Status: order.ItemStatusPending}
	if fields.OrderID != nil && *fields.OrderID != "" {
		o, err := s.repo.GetByID(ctx, *fields.OrderID)
		if err != nil {
			return nil, err
		}
		if o.TableID != tableID {
			return nil, order.ErrNotFound
		}
		item.OrderID = &o.ID
		item.GuestID = o.GuestID
	}
	if fields.MenuItemID != nil && *fields.MenuItemID != "" {
		m, err := s.menu.GetByID(ctx, *fields.MenuItemID)
		if err != nil {
			return nil, err
		}
		if m.IsUnavailable {
			return nil, ErrMenuItemUnavailable
		}
		item.MenuItemID = &m.ID
		item.Name = m.Name
	}
	if err := s.applyItem(ctx, item, fields); err != nil {
		return nil, err
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *OrderService) UpdateItem(ctx context.Context, id string, fields ItemFields) (*order.Item, error) {
	if _, err := signedIn(ctx); err != nil {
		return nil, err
	}
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyItem(ctx, item, fields); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *OrderService) RemoveItem(ctx context.Context, id string) error {
	if _, err := signedIn(ctx); err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, id)
}

func (s *OrderService) applyOrder(ctx context.Context, o *order.Order, fields OrderFields) error {
	if fields.GuestID != nil {
		guestID, err := s.guestAt(ctx, o.TableID, *fields.GuestID)
		if err != nil {
			return err
		}
		o.GuestID = guestID
	}
	if fields.Status != nil && strings.TrimSpace(*fields.Status) != "" {
		o.Status = strings.TrimSpace(*fields.Status)
	}
	if fields.Notes != nil {
		o.Notes = *fields.Notes
	}
	return nil
}

func (s *OrderService) applyItem(ctx context.Context, item *order.Item, fields ItemFields) error {
	if fields.GuestID != nil {
		guestID, err := s.guestAt(ctx, item.TableID, *fields.GuestID)
		if err != nil {
			return err
		}
		item.GuestID = guestID
	}
	if fields.Name != nil && strings.TrimSpace(*fields.Name) != "" {
		item.Name = strings.TrimSpace(*fields.Name)
	}
	if strings.TrimSpace(item.Name) == "" {
		return order.ErrItemName
	}
	if fields.Quantity != nil {
		item.Quantity = *fields.Quantity
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if fields.Modifiers != nil {
		item.Modifiers = trimAll(fields.Modifiers)
	}
	if fields.Notes != nil {
		item.Notes = *fields.Notes
	}
	if fields.Course != nil {
		item.Course = strings.TrimSpace(*fields.Course)
	}
	if fields.Status != nil && strings.TrimSpace(*fields.Status) != "" {
		item.Status = strings.TrimSpace(*fields.Status)
	}
	return nil
}

// guestAt checks that guestID is seated at tableID. An empty id clears the
// guest.
func (s *OrderService) guestAt(ctx context.Context, tableID, guestID string) (*string, error) {
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return nil, nil
	}
	g, err := s.guests.GetByID(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if g.TableID != tableID {
		return nil, guest.ErrNotFound
	}
	return &g.ID, nil
}

// IsNotFound reports whether err names a missing floor record.
func IsNotFound(err error) bool {
	return errors.Is(err, table.ErrNotFound) ||
		errors.Is(err, guest.ErrNotFound) ||
		errors.Is(err, order.ErrNotFound) ||
		errors.Is(err, order.ErrItemNotFound)
}
