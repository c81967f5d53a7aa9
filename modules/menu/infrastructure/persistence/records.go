package persistence

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

func text(rec recordstore.Record, key string) string {
	switch v := rec[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func textPtr(rec recordstore.Record, key string) *string {
	if rec[key] == nil {
		return nil
	}
	s := text(rec, key)
	return &s
}

func number(rec recordstore.Record, key string) (float64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func floatPtr(rec recordstore.Record, key string) *float64 {
	f, ok := number(rec, key)
	if !ok {
		return nil
	}
	return &f
}

func integer(rec recordstore.Record, key string) int {
	f, _ := number(rec, key)
	return int(f)
}

func money(rec recordstore.Record, key string) decimal.NullDecimal {
	f, ok := number(rec, key)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(f).Round(2))
}

func boolean(rec recordstore.Record, key string) bool {
	b, _ := rec[key].(bool)
	return b
}

func stringList(rec recordstore.Record, key string) []string {
	items, _ := rec[key].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func timestamp(rec recordstore.Record, key string) time.Time {
	t, _ := rec[key].(time.Time)
	return t
}
