package prefixedmenu

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("prefixed menu not found")

type PrefixedMenu struct {
	ID          string              `msgpack:"id"`
	Name        string              `msgpack:"name"`
	Description string              `msgpack:"description"`
	Price       decimal.NullDecimal `msgpack:"price"`
	// Courses is kept as authored: a list of strings or course objects.
	Courses   []any     `msgpack:"courses"`
	IsActive  bool      `msgpack:"is_active"`
	CreatedAt time.Time `msgpack:"created_at"`
}

type Repository interface {
	List(ctx context.Context) ([]PrefixedMenu, error)
	GetByID(ctx context.Context, id string) (*PrefixedMenu, error)
}
