package recordstore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// normalize converts driver and coerced values into JSON-friendly Go values.
func normalize(v any) any {
	switch t := v.(type) {
	case uuid.UUID:
		return t.String()
	case [16]byte:
		return uuid.UUID(t).String()
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case json.RawMessage:
		return decodeJSON(t)
	case []byte:
		return decodeJSON(t)
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case time.Time:
		return t.UTC()
	default:
		return v
	}
}

func decodeJSON(data []byte) any {
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return string(data)
	}
	return out
}

func normalizeRecord(row map[string]any) Record {
	out := make(Record, len(row))
	for k, v := range row {
		out[k] = normalize(v)
	}
	return out
}

// compareValues orders nil first, then numbers, strings, times, and falls back to text.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if fa, ok, _ := toFloat(a); ok && isNumber(a) {
		if fb, ok, _ := toFloat(b); ok && isNumber(b) {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64, json.Number:
		return true
	}
	return false
}
