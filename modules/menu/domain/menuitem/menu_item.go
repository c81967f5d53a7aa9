package menuitem

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "CAD"

var ErrNotFound = errors.New("menu item not found")

var (
	trailingPrice     = regexp.MustCompile(`\$([\d.,]+)\s*$`)
	trailingPriceTail = regexp.MustCompile(`\s+\$[\d.,]+\s*$`)
)

type MenuItem struct {
	ID            string          `msgpack:"id"`
	Name          string          `msgpack:"name"`
	Description   string          `msgpack:"description"`
	CategoryID    string          `msgpack:"category_id"`
	Category      string          `msgpack:"category"`
	CategorySlug  string          `msgpack:"category_slug"`
	CategoryName  string          `msgpack:"category_name"`
	Price         decimal.Decimal `msgpack:"price"`
	Currency      string          `msgpack:"currency"`
	Allergens     []string        `msgpack:"allergens"`
	CommonMods    []string        `msgpack:"common_mods"`
	IsUnavailable bool            `msgpack:"is_unavailable"`
	Country       *string         `msgpack:"country"`
	Origin        *string         `msgpack:"origin"`
	Cut           *string         `msgpack:"cut"`
	WeightOz      *float64        `msgpack:"weight_oz"`
	AgingDays     *float64        `msgpack:"aging_days"`
	Notes         *string         `msgpack:"notes"`
	CreatedAt     time.Time       `msgpack:"created_at"`
}

// CleanName strips a trailing "$105.00" style price that imports leave in item
// names and returns the parsed amount when there was one.
func CleanName(raw string) (string, decimal.NullDecimal) {
	var price decimal.NullDecimal
	if m := trailingPrice.FindStringSubmatch(raw); m != nil {
		if d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil {
			price = decimal.NewNullDecimal(d)
		}
	}
	cleaned := strings.TrimSpace(trailingPriceTail.ReplaceAllString(raw, ""))
	if cleaned == "" {
		return raw, price
	}
	return cleaned, price
}

type FindParams struct {
	CategorySlug string
	Available    bool
}

type Repository interface {
	List(ctx context.Context) ([]MenuItem, error)
	GetByID(ctx context.Context, id string) (*MenuItem, error)
}
