package recordstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

type Kind int

const (
	KindText Kind = iota
	KindUUID
	KindInt
	KindNumeric
	KindBool
	KindTextArray
	KindJSON
	KindTime
)

// Schema is the column allowlist of a collection. Payload keys outside it are dropped.
type Schema struct {
	Table   string
	Columns map[string]Kind
}

var managedColumns = map[string]bool{"id": true, "created_at": true, "updated_at": true}

var DefaultSchemas = map[string]Schema{
	Tables: {Table: "tables", Columns: map[string]Kind{
		"id": KindUUID, "table_number": KindText, "section": KindText, "guest_count": KindInt,
		"status": KindText, "notes": KindText, "user_id": KindText,
		"created_at": KindTime, "updated_at": KindTime,
	}},
	Guests: {Table: "guests", Columns: map[string]Kind{
		"id": KindUUID, "table_id": KindUUID, "guest_number": KindInt, "name": KindText,
		"notes": KindText, "allergies": KindTextArray,
		"created_at": KindTime, "updated_at": KindTime,
	}},
	Orders: {Table: "orders", Columns: map[string]Kind{
		"id": KindUUID, "table_id": KindUUID, "guest_id": KindUUID, "status": KindText, "notes": KindText,
		"created_at": KindTime, "updated_at": KindTime,
	}},
	OrderItems: {Table: "order_items", Columns: map[string]Kind{
		"id": KindUUID, "order_id": KindUUID, "table_id": KindUUID, "guest_id": KindUUID,
		"menu_item_id": KindUUID, "name": KindText, "quantity": KindInt, "modifiers": KindTextArray,
		"notes": KindText, "course": KindText, "status": KindText,
		"created_at": KindTime, "updated_at": KindTime,
	}},
	MenuCategories: {Table: "menu_categories", Columns: map[string]Kind{
		"id": KindUUID, "slug": KindText, "name": KindText, "sort_order": KindInt,
		"created_at": KindTime, "updated_at": KindTime,
	}},
	MenuItems: {Table: "menu_items", Columns: map[string]Kind{
		"id": KindUUID, "name": KindText, "description": KindText, "category_id": KindUUID,
		"category": KindText, "price": KindNumeric, "currency": KindText,
		"allergens": KindTextArray, "common_mods": KindTextArray, "is_unavailable": KindBool,
		"country": KindText, "origin": KindText, "cut": KindText, "weight_oz": KindNumeric,
		"aging_days": KindNumeric, "notes": KindText,
		"created_at": KindTime, "updated_at": KindTime,
	}},
	PrefixedMenus: {Table: "prefixed_menus", Columns: map[string]Kind{
		"id": KindUUID, "name": KindText, "description": KindText, "price": KindNumeric,
		"courses": KindJSON, "is_active": KindBool,
		"created_at": KindTime, "updated_at": KindTime,
	}},
}

// writable returns the allowed, non-managed payload columns in a stable order
// together with their coerced values.
func (s Schema) writable(payload Record) ([]string, []any, error) {
	fields := make([]string, 0, len(payload))
	for k := range payload {
		if _, ok := s.Columns[k]; !ok || managedColumns[k] {
			continue
		}
		fields = append(fields, k)
	}
	sort.Strings(fields)
	values := make([]any, len(fields))
	for i, f := range fields {
		v, err := coerce(s.Columns[f], payload[f])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "field %s", f)
		}
		values[i] = v
	}
	return fields, values, nil
}

// coerce converts a loosely typed JSON value into the Go value written for kind.
func coerce(kind Kind, v any) (any, error) {
	if v == nil {
		if kind == KindTextArray {
			return []string{}, nil
		}
		return nil, nil
	}
	switch kind {
	case KindText:
		switch t := v.(type) {
		case string:
			return t, nil
		case json.Number:
			return t.String(), nil
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64), nil
		default:
			return fmt.Sprint(t), nil
		}
	case KindUUID:
		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" {
			return nil, nil
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid identifier %q", s)
		}
		return id, nil
	case KindInt:
		f, ok, err := toFloat(v)
		if err != nil || !ok {
			return nil, err
		}
		return int64(f), nil
	case KindNumeric:
		f, ok, err := toFloat(v)
		if err != nil || !ok {
			return nil, err
		}
		return f, nil
	case KindBool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(t))
			if err != nil {
				return nil, errors.Wrapf(err, "invalid boolean %q", t)
			}
			return b, nil
		default:
			f, ok, err := toFloat(v)
			if err != nil || !ok {
				return nil, err
			}
			return f != 0, nil
		}
	case KindTextArray:
		switch t := v.(type) {
		case []string:
			return t, nil
		case []any:
			out := make([]string, 0, len(t))
			for _, item := range t {
				if item == nil {
					continue
				}
				s, _ := coerce(KindText, item)
				out = append(out, s.(string))
			}
			return out, nil
		case string:
			if strings.TrimSpace(t) == "" {
				return []string{}, nil
			}
			return []string{t}, nil
		default:
			return nil, errors.Errorf("expected a list, got %T", v)
		}
	case KindJSON:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "encode json")
		}
		return data, nil
	case KindTime:
		switch t := v.(type) {
		case time.Time:
			return t, nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid timestamp %q", t)
			}
			return parsed, nil
		default:
			return nil, errors.Errorf("expected a timestamp, got %T", v)
		}
	}
	return v, nil
}

// toFloat parses numeric input; ok is false for an empty string.
func toFloat(v any) (float64, bool, error) {
	switch t := v.(type) {
	case float64:
		return t, true, nil
	case float32:
		return float64(t), true, nil
	case int:
		return float64(t), true, nil
	case int32:
		return float64(t), true, nil
	case int64:
		return float64(t), true, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false, errors.Wrapf(err, "invalid number %q", t.String())
		}
		return f, true, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, errors.Wrapf(err, "invalid number %q", t)
		}
		return f, true, nil
	default:
		return 0, false, errors.Errorf("expected a number, got %T", v)
	}
}
