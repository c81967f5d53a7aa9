// Package recordstore is the generic CRUD layer over floor and menu records.
// Workflows address collections by name and exchange plain maps so a change
// request snapshot can be written without knowing the concrete entity type.
package recordstore

import (
	"context"
	"errors"
	"fmt"
)

const (
	Tables         = "tables"
	Guests         = "guests"
	Orders         = "orders"
	OrderItems     = "order_items"
	MenuCategories = "menu_categories"
	MenuItems      = "menu_items"
	PrefixedMenus  = "prefixed_menus"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownField      = errors.New("unknown field")
)

// WriteError wraps a failure reported by the backing store during a mutation.
type WriteError struct {
	Collection string
	Op         string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Record is a single row keyed by column name.
type Record map[string]any

// ID returns the record identifier as a string, or "" when absent.
func (r Record) ID() string {
	v, ok := r["id"]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// String returns the value stored under key when it is a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

type Order struct {
	Field string
	Desc  bool
}

type ListParams struct {
	// Filter matches columns by equality; a nil value matches NULL.
	Filter  map[string]any
	OrderBy []Order
	Limit   int
}

type Collection interface {
	Name() string
	Insert(ctx context.Context, payload Record) (Record, error)
	Update(ctx context.Context, id string, payload Record) (Record, error)
	Delete(ctx context.Context, id string) error
	// Get returns nil without error when the record does not exist.
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, params ListParams) ([]Record, error)
}

type Store interface {
	Collection(name string) (Collection, error)
}
