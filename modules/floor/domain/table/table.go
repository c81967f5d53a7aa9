package table

import (
	"context"
	"strings"
	"time"

	"github.com/tablemaster/tablemaster/pkg/serrors"
)

const StatusAvailable = "available"

var (
	ErrNotFound        = serrors.NewError("TABLE_NOT_FOUND", "table not found", "Errors.TableNotFound")
	ErrNumberRequired  = serrors.NewError("TABLE_NUMBER_REQUIRED", "table number is required", "Errors.TableNumberRequired")
	ErrDuplicateNumber = serrors.NewError("TABLE_NUMBER_TAKEN", "table number already exists", "Errors.TableNumberTaken")
)

type Table struct {
	ID          string
	TableNumber string
	Section     string
	GuestCount  int
	Status      string
	Notes       string
	// UserID is the server who opened the table.
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SameNumber compares table numbers the way the unique index does.
func SameNumber(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

type FindParams struct {
	Section string
	UserID  string
}

type Repository interface {
	List(ctx context.Context, params FindParams) ([]Table, error)
	GetByID(ctx context.Context, id string) (*Table, error)
	Create(ctx context.Context, t *Table) error
	Update(ctx context.Context, t *Table) error
	Delete(ctx context.Context, id string) error
}
