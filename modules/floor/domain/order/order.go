package order

import (
	"context"
	"time"

	"github.com/tablemaster/tablemaster/pkg/serrors"
)

const (
	StatusOpen        = "open"
	ItemStatusPending = "pending"
)

var (
	ErrNotFound     = serrors.NewError("ORDER_NOT_FOUND", "order not found", "Errors.OrderNotFound")
	ErrItemNotFound = serrors.NewError("ORDER_ITEM_NOT_FOUND", "order item not found", "Errors.OrderItemNotFound")
	ErrItemName     = serrors.NewError("ORDER_ITEM_NAME_REQUIRED", "order item name is required", "Errors.OrderItemNameRequired")
)

type Order struct {
	ID        string
	TableID   string
	GuestID   *string
	Status    string
	Notes     string
	CreatedAt time.Time
}

// Item is one line of an order as the kitchen sees it.
type Item struct {
	ID         string
	OrderID    *string
	TableID    string
	GuestID    *string
	MenuItemID *string
	Name       string
	Quantity   int
	Modifiers  []string
	Notes      string
	Course     string
	Status     string
	CreatedAt  time.Time
}

type Repository interface {
	ListByTable(ctx context.Context, tableID string) ([]Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id string) error

	ListItemsByTable(ctx context.Context, tableID string) ([]Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	CreateItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, id string) error
}
