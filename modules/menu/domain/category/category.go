package category

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrNotFound = errors.New("menu category not found")

type Category struct {
	ID        string `msgpack:"id"`
	Slug      string `msgpack:"slug"`
	Name      string `msgpack:"name"`
	SortOrder int    `msgpack:"sort_order"`
}

// NormalizeSlug trims and lowercases a category reference.
func NormalizeSlug(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}

// DisplayName turns a slug such as "raw_bar" into "Raw Bar".
func DisplayName(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(strings.TrimSpace(slug), "_", " "))
}

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, c *Category) error
}
