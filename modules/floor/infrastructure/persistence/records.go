package persistence

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"

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

func integer(rec recordstore.Record, key string) int {
	switch v := rec[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
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

// optional maps an unset reference to SQL NULL.
func optional(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

// missing translates the store's not-found error into the domain one.
func missing(err, notFound error) error {
	if errors.Is(err, recordstore.ErrNotFound) {
		return notFound
	}
	return err
}
