package guest

import (
	"context"
	"time"

	"github.com/tablemaster/tablemaster/pkg/serrors"
)

var ErrNotFound = serrors.NewError("GUEST_NOT_FOUND", "guest not found", "Errors.GuestNotFound")

// Guest is a seat at a table. Orders and allergies are tracked per guest.
type Guest struct {
	ID          string
	TableID     string
	GuestNumber int
	Name        string
	Notes       string
	Allergies   []string
	CreatedAt   time.Time
}

type Repository interface {
	// ListByTable returns the guests of a table by guest number.
	ListByTable(ctx context.Context, tableID string) ([]Guest, error)
	GetByID(ctx context.Context, id string) (*Guest, error)
	Create(ctx context.Context, g *Guest) error
	Update(ctx context.Context, g *Guest) error
	Delete(ctx context.Context, id string) error
}
