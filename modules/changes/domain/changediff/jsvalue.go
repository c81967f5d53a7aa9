package changediff

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
)

// Reviewers compare summaries against what the browser inbox used to show, so
// values are rendered with JavaScript conversion rules rather than Go's.

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		// Out-of-range literals come back as ±Inf, as JSON.parse does.
		f, _ := strconv.ParseFloat(string(n), 64)
		return f, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// formatNumber renders f the way Number.prototype.toString does.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, expPart, _ := strings.Cut(sci, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	exp, _ := strconv.Atoi(expPart)
	k := len(digits)
	n := exp + 1

	var out string
	switch {
	case k <= n && n <= 21:
		out = digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		out = digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		out = "0." + strings.Repeat("0", -n) + digits
	default:
		e := n - 1
		esign := "+"
		if e < 0 {
			esign = "-"
			e = -e
		}
		if k == 1 {
			out = digits + "e" + esign + strconv.Itoa(e)
		} else {
			out = digits[:1] + "." + digits[1:] + "e" + esign + strconv.Itoa(e)
		}
	}
	return sign + out
}

// toJSString mirrors String(v).
func toJSString(v any) string {
	if v == nil {
		return "null"
	}
	if f, ok := toFloat(v); ok {
		return formatNumber(f)
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		return joinValues(t, ",")
	case *snapshot.Object:
		if t == nil {
			return "null"
		}
		return "[object Object]"
	}
	return "[object Object]"
}

// joinValues mirrors Array.prototype.join, where nullish elements become "".
func joinValues(items []any, sep string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		if isNullish(item) {
			continue
		}
		parts[i] = toJSString(item)
	}
	return strings.Join(parts, sep)
}

func isNullish(v any) bool {
	if v == nil {
		return true
	}
	if o, ok := v.(*snapshot.Object); ok && o == nil {
		return true
	}
	return false
}

func truthy(v any) bool {
	if isNullish(v) {
		return false
	}
	if f, ok := toFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case bool:
		return t
	}
	return true
}

// stringify mirrors JSON.stringify. The flag is false for values JSON cannot represent.
func stringify(v any) (string, bool) {
	var b strings.Builder
	if !writeJSON(&b, v) {
		return "", false
	}
	return b.String(), true
}

func writeJSON(b *strings.Builder, v any) bool {
	if isNullish(v) {
		b.WriteString("null")
		return true
	}
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			b.WriteString("null")
		} else {
			b.WriteString(formatNumber(f))
		}
		return true
	}
	switch t := v.(type) {
	case string:
		writeQuoted(b, t)
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case []any:
		b.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			if !writeJSON(b, item) {
				return false
			}
		}
		b.WriteByte(']')
	case *snapshot.Object:
		b.WriteByte('{')
		for i, k := range ownKeys(t) {
			if i > 0 {
				b.WriteByte(',')
			}
			writeQuoted(b, k)
			b.WriteByte(':')
			val, _ := t.Get(k)
			if !writeJSON(b, val) {
				return false
			}
		}
		b.WriteByte('}')
	default:
		return false
	}
	return true
}

func writeQuoted(b *strings.Builder, s string) {
	const hex = "0123456789abcdef"
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hex[r>>4])
				b.WriteByte(hex[r&0xf])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

// ownKeys mirrors Object.keys ordering: array-index keys ascending, then the
// rest in insertion order.
func ownKeys(o *snapshot.Object) []string {
	keys := o.Keys()
	var indexes []string
	var rest []string
	for _, k := range keys {
		if isArrayIndex(k) {
			indexes = append(indexes, k)
		} else {
			rest = append(rest, k)
		}
	}
	if len(indexes) == 0 {
		return rest
	}
	sort.SliceStable(indexes, func(i, j int) bool {
		a, _ := strconv.ParseUint(indexes[i], 10, 64)
		c, _ := strconv.ParseUint(indexes[j], 10, 64)
		return a < c
	})
	return append(indexes, rest...)
}

func isArrayIndex(k string) bool {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return false
	}
	n, err := strconv.ParseUint(k, 10, 64)
	if err != nil {
		return false
	}
	return n < math.MaxUint32
}

// setKey identifies a value under SameValueZero. Objects and arrays only equal
// themselves, so they get a per-position key unless they share a pointer.
func setKey(v any, pos int) string {
	if isNullish(v) {
		return "null"
	}
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) {
			return "n:NaN"
		}
		// -0 and +0 are the same member.
		if f == 0 {
			f = 0
		}
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	switch t := v.(type) {
	case string:
		return "s:" + t
	case bool:
		return "b:" + strconv.FormatBool(t)
	case *snapshot.Object:
		return fmt.Sprintf("o:%p", t)
	}
	return "r:" + strconv.Itoa(pos)
}

// uniq mirrors [...new Set(items)].
func uniq(items []any) []any {
	seen := make(map[string]struct{}, len(items))
	out := make([]any, 0, len(items))
	for i, item := range items {
		key := setKey(item, i)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// sortDefault mirrors Array.prototype.sort with no comparator: elements are
// compared as strings by UTF-16 code units.
func sortDefault(items []any) []any {
	out := make([]any, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return compareUTF16(toJSString(out[i]), toJSString(out[j])) < 0
	})
	return out
}

func compareUTF16(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ua) < len(ub):
		return -1
	case len(ua) > len(ub):
		return 1
	}
	return 0
}

// truncate keeps the first keep UTF-16 units of s and appends "..." when s is
// longer than limit units. A surrogate pair is never split.
func truncate(s string, limit, keep int) string {
	units := utf16.Encode([]rune(s))
	if len(units) <= limit {
		return s
	}
	cut := keep
	if cut > 0 && utf16.IsSurrogate(rune(units[cut-1])) && units[cut-1] < 0xdc00 {
		cut--
	}
	return string(utf16.Decode(units[:cut])) + "..."
}
